// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package gas

import (
	"github.com/ethereum/go-ethereum/params"

	"github.com/solenoid-evm/solenoid/tosca"
)

// Log returns the dynamic cost of a LOGn instruction with the given
// number of topics and data length, on top of the opcode's static base
// cost.
func Log(topics int, dataLen int) tosca.Gas {
	return tosca.Gas(topics)*tosca.Gas(params.LogTopicGas) + tosca.Gas(dataLen)*tosca.Gas(params.LogDataGas)
}

// Exp returns the dynamic cost of an EXP instruction given the byte
// length of the exponent. EIP-160's 50-gas per-byte price (ExpByteEIP158)
// predates every revision this module supports, so no revision branching
// is needed.
func Exp(exponentByteLen int) tosca.Gas {
	return tosca.Gas(exponentByteLen) * tosca.Gas(params.ExpByteEIP158)
}
