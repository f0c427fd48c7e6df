// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package gas implements the EVM's gas schedule: static per-opcode costs,
// dynamic costs for memory expansion, storage writes, calls, creation,
// logs, and transaction intrinsic gas. Every named constant is sourced
// from go-ethereum's params package rather than redeclared here.
package gas

import (
	"github.com/ethereum/go-ethereum/params"
	"golang.org/x/exp/constraints"

	"github.com/solenoid-evm/solenoid/tosca"
	"github.com/solenoid-evm/solenoid/tosca/opcodes"
)

const unknown tosca.Gas = -1

// Static returns the fixed gas cost charged for op before any dynamic
// component is computed, for the given revision.
func Static(op opcodes.OpCode, revision tosca.Revision) tosca.Gas {
	if revision >= tosca.R09_Berlin {
		if cost, ok := berlinStatic[op]; ok {
			return cost
		}
	}
	if cost, ok := staticGas[op]; ok {
		return cost
	}
	return unknown
}

func ceilDiv[T constraints.Integer](a, b T) T {
	return (a + b - 1) / b
}

var staticGas = buildStatic()

func buildStatic() map[opcodes.OpCode]tosca.Gas {
	m := map[opcodes.OpCode]tosca.Gas{
		opcodes.STOP: 0, opcodes.ADD: 3, opcodes.MUL: 5, opcodes.SUB: 3,
		opcodes.DIV: 5, opcodes.SDIV: 5, opcodes.MOD: 5, opcodes.SMOD: 5,
		opcodes.ADDMOD: 8, opcodes.MULMOD: 8, opcodes.EXP: 10, opcodes.SIGNEXTEND: 5,
		opcodes.LT: 3, opcodes.GT: 3, opcodes.SLT: 3, opcodes.SGT: 3, opcodes.EQ: 3,
		opcodes.ISZERO: 3, opcodes.AND: 3, opcodes.OR: 3, opcodes.XOR: 3, opcodes.NOT: 3,
		opcodes.BYTE: 3, opcodes.SHL: 3, opcodes.SHR: 3, opcodes.SAR: 3,
		opcodes.SHA3: tosca.Gas(params.Keccak256Gas),
		opcodes.ADDRESS: 2, opcodes.BALANCE: 700, opcodes.ORIGIN: 2, opcodes.CALLER: 2,
		opcodes.CALLVALUE: 2, opcodes.CALLDATALOAD: 3, opcodes.CALLDATASIZE: 2,
		opcodes.CALLDATACOPY: 3, opcodes.CODESIZE: 2, opcodes.CODECOPY: 3,
		opcodes.GASPRICE: 2, opcodes.EXTCODESIZE: 700, opcodes.EXTCODECOPY: 700,
		opcodes.RETURNDATASIZE: 2, opcodes.RETURNDATACOPY: 3, opcodes.EXTCODEHASH: 700,
		opcodes.BLOCKHASH: 20, opcodes.COINBASE: 2, opcodes.TIMESTAMP: 2,
		opcodes.NUMBER: 2, opcodes.PREVRANDAO: 2, opcodes.GASLIMIT: 2, opcodes.CHAINID: 2,
		opcodes.SELFBALANCE: 5, opcodes.BASEFEE: 2, opcodes.BLOBHASH: 3, opcodes.BLOBBASEFEE: 2,
		opcodes.POP: 2, opcodes.MLOAD: 3, opcodes.MSTORE: 3, opcodes.MSTORE8: 3,
		opcodes.SLOAD: 0, // dynamic, see SLoadCost
		opcodes.SSTORE: 0, // dynamic, see SStore in sstore.go
		opcodes.JUMP: 8, opcodes.JUMPI: 10, opcodes.PC: 2, opcodes.MSIZE: 2, opcodes.GAS: 2,
		opcodes.JUMPDEST: 1, opcodes.TLOAD: 100, opcodes.TSTORE: 100, opcodes.MCOPY: 3,
		opcodes.PUSH0: 2,
		opcodes.LOG0: 375, opcodes.LOG1: 375, opcodes.LOG2: 375, opcodes.LOG3: 375, opcodes.LOG4: 375,
		opcodes.CREATE: 32000, opcodes.CALL: 700, opcodes.CALLCODE: 700, opcodes.RETURN: 0,
		opcodes.DELEGATECALL: 700, opcodes.CREATE2: 32000, opcodes.STATICCALL: 700,
		opcodes.REVERT: 0, opcodes.INVALID: 0, opcodes.SELFDESTRUCT: 5000,
	}
	for i := opcodes.PUSH1; i <= opcodes.PUSH32; i++ {
		m[i] = 3
	}
	for i := opcodes.DUP1; i <= opcodes.DUP16; i++ {
		m[i] = 3
	}
	for i := opcodes.SWAP1; i <= opcodes.SWAP16; i++ {
		m[i] = 3
	}
	return m
}

// berlinStatic overrides the pre-Berlin static costs of opcodes whose
// account/storage access cost moved to the dynamic, cold/warm-aware
// EIP-2929 schedule.
var berlinStatic = map[opcodes.OpCode]tosca.Gas{
	opcodes.SLOAD:        0,
	opcodes.EXTCODECOPY:  0,
	opcodes.EXTCODESIZE:  0,
	opcodes.EXTCODEHASH:  0,
	opcodes.BALANCE:      0,
	opcodes.CALL:         0,
	opcodes.CALLCODE:     0,
	opcodes.STATICCALL:   0,
	opcodes.DELEGATECALL: 0,
	opcodes.SELFDESTRUCT: 5000,
}
