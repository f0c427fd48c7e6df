// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package precompiles dispatches calls to addresses 1-10 to go-ethereum's
// precompiled contract implementations, rather than reimplementing
// ECRECOVER, MODEXP, the BN254/BLS12-381 pairing families, or KZG by hand.
package precompiles

import (
	"github.com/ethereum/go-ethereum/common"
	geth "github.com/ethereum/go-ethereum/core/vm"

	"github.com/solenoid-evm/solenoid/tosca"
)

// Run dispatches a call to the precompiled contract at addr, charging its
// RequiredGas cost out of gasLimit before executing. If addr names no
// precompile under revision, Run returns no output, the full gasLimit and
// success true; IsPrecompile reports whether addr names one.
//
// Address 10 (KZG point evaluation) runs go-ethereum's own Cancun
// implementation, which verifies against the real trusted setup via
// github.com/crate-crypto/go-kzg-4844.
func Run(addr tosca.Address, input []byte, gasLimit tosca.Gas, revision tosca.Revision) (output []byte, gasLeft tosca.Gas, success bool) {
	contract, ok := contractFor(addr, revision)
	if !ok {
		return nil, gasLimit, true
	}

	cost := tosca.Gas(contract.RequiredGas(input))
	if gasLimit < cost {
		return nil, 0, false
	}
	gasLimit -= cost

	out, err := contract.Run(input)
	if err != nil {
		return nil, gasLimit, false
	}
	return out, gasLimit, true
}

// IsPrecompile reports whether addr names a precompiled contract under
// revision.
func IsPrecompile(addr tosca.Address, revision tosca.Revision) bool {
	_, ok := contractFor(addr, revision)
	return ok
}

func contractFor(addr tosca.Address, revision tosca.Revision) (geth.PrecompiledContract, bool) {
	var set map[common.Address]geth.PrecompiledContract
	switch {
	case revision >= tosca.R13_Cancun:
		set = geth.PrecompiledContractsCancun
	case revision >= tosca.R09_Berlin:
		set = geth.PrecompiledContractsBerlin
	default:
		set = geth.PrecompiledContractsIstanbul
	}
	contract, ok := set[common.Address(addr)]
	return contract, ok
}
