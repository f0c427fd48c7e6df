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

import "github.com/solenoid-evm/solenoid/tosca"

// MemoryExpansionCost returns the total cost of having memory grown to
// hold sizeWords 32-byte words, following the quadratic
// words^2/512 + 3*words formula.
func MemoryExpansionCost(sizeWords uint64) tosca.Gas {
	linear := 3 * sizeWords
	quadratic := (sizeWords * sizeWords) / 512
	return tosca.Gas(linear + quadratic)
}

// MemoryExpansionDelta returns the incremental cost of growing memory
// from currentWords to newWords, charging only the difference between
// the two total costs (never negative: memory never shrinks).
func MemoryExpansionDelta(currentWords, newWords uint64) tosca.Gas {
	if newWords <= currentWords {
		return 0
	}
	return MemoryExpansionCost(newWords) - MemoryExpansionCost(currentWords)
}

// CopyCost returns the cost of copying length bytes for *COPY family
// opcodes: 3 gas per word, rounded up.
func CopyCost(length uint64) tosca.Gas {
	return tosca.Gas(3 * ceilDiv(length, 32))
}

// Keccak256Cost returns the dynamic cost of hashing length bytes with
// SHA3: 6 gas per word, rounded up.
func Keccak256Cost(length uint64) tosca.Gas {
	return tosca.Gas(6 * ceilDiv(length, 32))
}
