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

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/solenoid-evm/solenoid/tosca"
	"github.com/solenoid-evm/solenoid/tosca/opcodes"
)

func TestAnalyze_PushImmediateIsNotAJumpDest(t *testing.T) {
	// PUSH1 0x5B JUMPDEST: the pushed byte happens to equal the JUMPDEST
	// opcode but must not be treated as a valid jump target.
	code := []byte{byte(opcodes.PUSH1), byte(opcodes.JUMPDEST), byte(opcodes.JUMPDEST)}
	a := Analyze(code)

	require.False(t, a.IsJumpDest(1, code))
	require.True(t, a.IsJumpDest(2, code))
}

func TestAnalyze_OutOfRangeIsNeverAJumpDest(t *testing.T) {
	code := []byte{byte(opcodes.STOP)}
	a := Analyze(code)
	require.False(t, a.IsJumpDest(10, code))
}

func TestAnalysisCache_MemoizesByHash(t *testing.T) {
	c := NewAnalysisCache()
	code := []byte{byte(opcodes.PUSH1), 0x00, byte(opcodes.JUMPDEST)}
	hash := tosca.Hash(crypto.Keccak256Hash(code))

	first := c.Get(hash, code)
	second := c.Get(hash, code)
	require.Same(t, first, second)
}
