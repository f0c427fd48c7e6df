// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package oracle defines the boundary through which a journal.State pulls
// account data it does not yet have cached. Implementations talk to
// whatever backs the chain's world state (a JSON-RPC endpoint, a local
// database, a test fixture); none of that machinery lives in this
// module.
package oracle

import (
	"context"

	"github.com/solenoid-evm/solenoid/tosca"
)

//go:generate mockgen -source oracle.go -destination oracle_mock.go -package oracle

// WorldStateOracle answers point-in-time queries about account state as
// of a fixed block. Each journal.State issues its lookups one at a time,
// synchronously; an implementation shared by several States must be safe
// for concurrent use.
//
// Every method must behave as if querying an account that does not exist
// returns the zero value for that field (zero balance, zero nonce, empty
// code, zero storage) rather than an error: "no such account" and "such
// an account but with field==zero" are indistinguishable to the EVM.
type WorldStateOracle interface {
	GetBlockHeader(ctx context.Context, number int64) (tosca.BlockHeader, error)
	GetBalance(ctx context.Context, addr tosca.Address) (tosca.Value, error)
	GetNonce(ctx context.Context, addr tosca.Address) (uint64, error)
	GetCode(ctx context.Context, addr tosca.Address) (tosca.Code, error)
	GetCodeHash(ctx context.Context, addr tosca.Address) (tosca.Hash, error)
	GetStorage(ctx context.Context, addr tosca.Address, key tosca.Key) (tosca.Word, error)
}
