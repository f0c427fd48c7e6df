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

// ErrGasUintOverflow is returned when computing intrinsic gas overflows.
const ErrGasUintOverflow = tosca.ConstError("gas uint64 overflow")

// IntrinsicGas computes the gas a transaction must pay before a single
// byte of its code runs: the base transaction fee, per-byte data cost
// (EIP-2028 on post-Istanbul revisions), the contract-creation surcharge
// plus its EIP-3860 init-code-size cost, access-list warming, and
// EIP-7702 authorization-list warming.
func IntrinsicGas(
	isContractCreation bool,
	data []byte,
	accessListAddresses, accessListStorageKeys int,
	authorizationCount int,
	revision tosca.Revision,
) (tosca.Gas, error) {
	var g uint64 = params.TxGas
	if isContractCreation {
		g = params.TxGasContractCreation
	}

	if len(data) > 0 {
		var nz uint64
		for _, b := range data {
			if b != 0 {
				nz++
			}
		}
		nonZeroGas := uint64(params.TxDataNonZeroGasEIP2028)
		if g > (^uint64(0)-g)/nonZeroGas {
			return 0, ErrGasUintOverflow
		}
		g += nz * nonZeroGas

		zero := uint64(len(data)) - nz
		zeroGas := uint64(params.TxDataZeroGas)
		if g > (^uint64(0)-g)/zeroGas {
			return 0, ErrGasUintOverflow
		}
		g += zero * zeroGas

		if isContractCreation {
			g += uint64(InitCodeWordCost(len(data), revision))
		}
	}

	g += uint64(accessListAddresses) * params.TxAccessListAddressGas
	g += uint64(accessListStorageKeys) * params.TxAccessListStorageKeyGas

	// EIP-7702: each authorization tuple is charged the new-account cost
	// (CallNewAccountGas), since the authority's account may be created by
	// the delegation.
	g += uint64(authorizationCount) * params.CallNewAccountGas

	return tosca.Gas(g), nil
}

// RefundCap returns the maximum refund permitted against gasUsed: 1/2
// before London, 1/5 (the EIP-3529 quotient) from London onward.
func RefundCap(gasUsed tosca.Gas, revision tosca.Revision) tosca.Gas {
	if revision >= tosca.R10_London {
		return gasUsed / tosca.Gas(params.RefundQuotientEIP3529)
	}
	return gasUsed / 2
}
