// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package interpreter

import "github.com/solenoid-evm/solenoid/tosca/opcodes"

// CodeAnalysis is the immutable, cacheable result of analyzing one piece
// of code: which byte offsets are PUSH-immediate data, as opposed to
// real instructions, so that JUMPDEST validation and the dispatch loop
// never mistake push-data bytes for opcodes.
type CodeAnalysis struct {
	// isData[i] is set when code[i] is part of a PUSH instruction's
	// immediate argument rather than an opcode in its own right.
	isData []bool
}

// IsJumpDest reports whether pos is both in range, holds the JUMPDEST
// opcode, and was not reached by skipping into a PUSH immediate.
func (a *CodeAnalysis) IsJumpDest(pos uint64, code []byte) bool {
	if pos >= uint64(len(code)) {
		return false
	}
	if code[pos] != byte(opcodes.JUMPDEST) {
		return false
	}
	return !a.isData[pos]
}

// Analyze computes the JUMPDEST validity map for code in a single
// left-to-right pass, grounded on the standard Ethereum code-bitmap
// algorithm (skip PUSH-immediate bytes so their contents are never
// mistaken for opcodes), implemented here as a plain bool slice rather
// than a packed bitvec: this analysis runs once per distinct code hash
// and is cached (see cache.go), so the packing the teacher applies to
// its hot per-step bitvec lookups buys nothing here.
func Analyze(code []byte) *CodeAnalysis {
	isData := make([]bool, len(code))
	for pc := 0; pc < len(code); {
		op := opcodes.OpCode(code[pc])
		if op >= opcodes.PUSH1 && op <= opcodes.PUSH32 {
			width := op.Width()
			for i := pc + 1; i < pc+width && i < len(code); i++ {
				isData[i] = true
			}
			pc += width
			continue
		}
		pc++
	}
	return &CodeAnalysis{isData: isData}
}
