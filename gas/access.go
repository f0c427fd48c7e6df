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

// AccountAccessCost returns the EIP-2929 cost of accessing an account,
// given whether it was already warm before this access. Pre-Berlin this
// is always zero: the account-access surcharge is folded into the
// opcode's static price instead.
func AccountAccessCost(warm bool, revision tosca.Revision) tosca.Gas {
	if revision < tosca.R09_Berlin {
		return 0
	}
	if warm {
		return tosca.Gas(params.WarmStorageReadCostEIP2929)
	}
	return tosca.Gas(params.ColdAccountAccessCostEIP2929)
}

// SLoadCost returns the cost of a SLOAD, combining the opcode's static
// price with the EIP-2929 cold-slot surcharge when applicable.
func SLoadCost(warm bool, revision tosca.Revision) tosca.Gas {
	if revision < tosca.R09_Berlin {
		return tosca.Gas(params.SloadGasEIP2200)
	}
	if warm {
		return tosca.Gas(params.WarmStorageReadCostEIP2929)
	}
	return tosca.Gas(params.ColdSloadCostEIP2929)
}

// AccessListWarmingCost returns the intrinsic cost of pre-warming the
// accounts and storage keys named in a transaction's EIP-2930 access
// list.
func AccessListWarmingCost(addresses, storageKeys int) tosca.Gas {
	return tosca.Gas(addresses)*tosca.Gas(params.TxAccessListAddressGas) +
		tosca.Gas(storageKeys)*tosca.Gas(params.TxAccessListStorageKeyGas)
}
