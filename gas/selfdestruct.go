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

// SelfdestructRefund is the EIP-3529 post-London refund for SELFDESTRUCT:
// zero. Pre-London it was SelfdestructRefundGas.
func SelfdestructRefund(revision tosca.Revision) tosca.Gas {
	if revision >= tosca.R10_London {
		return 0
	}
	return tosca.Gas(params.SelfdestructRefundGas)
}

// SelfdestructCost returns the gas charged for a SELFDESTRUCT given
// whether the beneficiary address was already warm and whether it is a
// new account being funded with non-zero value (the only case in which
// EIP-161's new-account surcharge applies to SELFDESTRUCT).
func SelfdestructCost(warm bool, newAccountFundedWithValue bool, revision tosca.Revision) tosca.Gas {
	cost := tosca.Gas(0)
	if revision >= tosca.R09_Berlin && !warm {
		cost += tosca.Gas(params.ColdAccountAccessCostEIP2929)
	}
	if newAccountFundedWithValue {
		cost += tosca.Gas(params.CreateBySelfdestructGas)
	}
	return cost
}
