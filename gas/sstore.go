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

// ErrSStoreSentry is returned when SSTORE is attempted with less than the
// EIP-2200 minimum sentry gas remaining, outside of a static call.
const ErrSStoreSentry = tosca.ConstError("not enough gas for EIP-2200 SSTORE sentry")

// ErrSStoreSentryGas is the EIP-2200 minimum gas an SSTORE requires to
// even be attempted, from Istanbul onward.
const ErrSStoreSentryGas = tosca.Gas(params.SstoreSentryGasEIP2200)

// SStore computes the gas cost and refund delta of writing new into a
// storage slot whose value was original at the start of the transaction
// and current immediately before this write, following EIP-2200 (and,
// from Berlin onward, its EIP-2929/EIP-3529 amendments). From Berlin the
// reset cost is SstoreResetGasEIP2200 less ColdSloadCostEIP2929, with the
// cold-slot surcharge charged separately.
//
// Cases, matching the original EIP-2200 specification:
//
//	0. new == current: sload cost only, no refund change.
//	2.1.1 original == current, new == 0, original != 0: clear + refund.
//	2.1.2 original == current, new != 0, original == 0: set cost.
//	2.2: original != current:
//	  2.2.1.1 original != 0, current == 0: restore the clear refund.
//	  2.2.1.2 original != 0, new == 0: grant a clear refund.
//	  2.2.2.1 new == original, original == 0: refund the set cost less sload.
//	  2.2.2.2 new == original, original != 0: refund the reset cost less sload.
func SStore(original, current, new tosca.Word, warm bool, revision tosca.Revision) (cost tosca.Gas, refundDelta tosca.Gas) {
	clearRefund := tosca.Gas(params.SstoreClearsScheduleRefundEIP2200)
	if revision >= tosca.R10_London {
		clearRefund = tosca.Gas(params.SstoreClearsScheduleRefundEIP3529)
	}

	var zero tosca.Word
	sload := tosca.Gas(params.SloadGasEIP2200)
	accessSurcharge := tosca.Gas(0)
	resetCost := tosca.Gas(params.SstoreResetGasEIP2200)
	if revision >= tosca.R09_Berlin {
		sload = tosca.Gas(params.WarmStorageReadCostEIP2929)
		resetCost -= tosca.Gas(params.ColdSloadCostEIP2929)
		if !warm {
			accessSurcharge = tosca.Gas(params.ColdSloadCostEIP2929)
		}
	}

	if current == new {
		return sload + accessSurcharge, 0
	}

	if original == current {
		if original == zero {
			return tosca.Gas(params.SstoreSetGasEIP2200) + accessSurcharge, 0
		}
		if new == zero {
			return resetCost + accessSurcharge, clearRefund
		}
		return resetCost + accessSurcharge, 0
	}

	// original != current: slot was already modified earlier in this
	// transaction; subsequent writes are priced at the warm sload rate.
	var deltaRefund tosca.Gas
	if original != zero {
		if current == zero {
			deltaRefund -= clearRefund
		}
		if new == zero {
			deltaRefund += clearRefund
		}
	}
	if new == original {
		if original == zero {
			deltaRefund += tosca.Gas(params.SstoreSetGasEIP2200) - sload
		} else {
			deltaRefund += resetCost - sload
		}
	}
	return sload + accessSurcharge, deltaRefund
}
