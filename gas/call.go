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

// CallStipend is the free gas credited to a call carrying non-zero value,
// added on top of whatever the 63/64 rule leaves available.
const CallStipend = tosca.Gas(params.CallStipend)

// ForwardableGas applies the EIP-150 63/64 rule: at most
// available - available/64 gas may be forwarded to a nested call.
func ForwardableGas(available tosca.Gas) tosca.Gas {
	return available - available/64
}

// CallCost computes the gas charged at the call site for a
// CALL/CALLCODE/DELEGATECALL/STATICCALL on top of the opcode's static
// cost: the EIP-2929 account-access cost plus the value-transfer and
// new-account surcharges, excluding the gas actually forwarded to the
// callee. valueTransfer is true for Call/CallCode with
// non-zero value; newAccount is true when kind == Call, value != 0, and
// the recipient does not yet exist (EIP-161 new-account surcharge).
func CallCost(warm bool, revision tosca.Revision, valueTransfer, newAccount bool) tosca.Gas {
	cost := AccountAccessCost(warm, revision)
	if valueTransfer {
		cost += tosca.Gas(params.CallValueTransferGas)
	}
	if newAccount {
		cost += tosca.Gas(params.CallNewAccountGas)
	}
	return cost
}
