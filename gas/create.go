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

// MaxCodeSize is the EIP-170 cap on deployed contract code length.
const MaxCodeSize = params.MaxCodeSize

// MaxInitCodeSize is the EIP-3860 cap on CREATE/CREATE2 init-code length,
// twice MaxCodeSize.
const MaxInitCodeSize = 2 * params.MaxCodeSize

// ErrInitCodeTooLarge is returned when init code exceeds MaxInitCodeSize.
const ErrInitCodeTooLarge = tosca.ConstError("init code larger than allowed")

// ErrCodeTooLarge is returned when the deployed code exceeds MaxCodeSize.
const ErrCodeTooLarge = tosca.ConstError("code larger than allowed")

// ErrInvalidCodeStartByte is returned when deployed code begins with the
// EIP-3541 reserved 0xEF byte.
const ErrInvalidCodeStartByte = tosca.ConstError("invalid code: starts with 0xEF")

// InitCodeWordCost returns the EIP-3860 Shanghai+ charge for the size of
// init code supplied to CREATE/CREATE2, zero before Shanghai.
func InitCodeWordCost(initCodeLen int, revision tosca.Revision) tosca.Gas {
	if revision < tosca.R12_Shanghai {
		return 0
	}
	words := tosca.SizeInWords(uint64(initCodeLen))
	return tosca.Gas(words) * tosca.Gas(params.InitCodeWordGas)
}

// Create2HashCost returns the extra cost of hashing the init code for a
// CREATE2 address derivation: 6 gas per word.
func Create2HashCost(initCodeLen int) tosca.Gas {
	return Keccak256Cost(uint64(initCodeLen))
}

// CodeDepositCost returns the per-byte deposit cost charged for the code
// actually installed at the end of a successful contract creation.
func CodeDepositCost(codeLen int) tosca.Gas {
	return tosca.Gas(codeLen) * tosca.Gas(params.CreateDataGas)
}
