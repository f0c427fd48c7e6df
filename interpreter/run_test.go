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
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solenoid-evm/solenoid/calls"
	"github.com/solenoid-evm/solenoid/journal"
	"github.com/solenoid-evm/solenoid/oracle"
	"github.com/solenoid-evm/solenoid/tosca"
	"github.com/solenoid-evm/solenoid/tosca/opcodes"
)

func newRunContext() tosca.RunContext {
	state := journal.New(context.Background(), oracle.NewFixture(), nil)
	interp := New(Config{})
	return calls.New(state, interp, tosca.BlockParameters{Revision: tosca.R13_Cancun}, tosca.TransactionParameters{})
}

// TestRun_AddAndReturn executes PUSH1 1 PUSH1 2 ADD PUSH1 0 MSTORE PUSH1 32
// PUSH1 0 RETURN, a minimal "counter" style program that returns a single
// 32-byte word equal to 3.
func TestRun_AddAndReturn(t *testing.T) {
	code := []byte{
		byte(opcodes.PUSH1), 1,
		byte(opcodes.PUSH1), 2,
		byte(opcodes.ADD),
		byte(opcodes.PUSH1), 0,
		byte(opcodes.MSTORE),
		byte(opcodes.PUSH1), 32,
		byte(opcodes.PUSH1), 0,
		byte(opcodes.RETURN),
	}

	in := New(Config{})
	result, err := in.Run(tosca.Parameters{
		BlockParameters: tosca.BlockParameters{Revision: tosca.R13_Cancun},
		Context:         newRunContext(),
		Gas:             100_000,
		Code:            tosca.Code(code),
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, tosca.NewWord(3), tosca.Word(result.Output))
}

func TestRun_InvalidOpcode_Fails(t *testing.T) {
	in := New(Config{})
	result, err := in.Run(tosca.Parameters{
		BlockParameters: tosca.BlockParameters{Revision: tosca.R13_Cancun},
		Context:         newRunContext(),
		Gas:             100_000,
		Code:            tosca.Code{byte(opcodes.INVALID)},
	})
	require.NoError(t, err)
	require.False(t, result.Success)
}

func TestRun_OutOfGas_Fails(t *testing.T) {
	in := New(Config{})
	result, err := in.Run(tosca.Parameters{
		BlockParameters: tosca.BlockParameters{Revision: tosca.R13_Cancun},
		Context:         newRunContext(),
		Gas:             1,
		Code:            tosca.Code{byte(opcodes.PUSH1), 1},
	})
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Zero(t, result.GasLeft)
}

func TestRun_JumpToPushData_Fails(t *testing.T) {
	// offset 4 holds 0x5B, but as the immediate of the PUSH1 at offset 3 it
	// is data, not a real JUMPDEST.
	code := []byte{
		byte(opcodes.PUSH1), 4,
		byte(opcodes.JUMP),
		byte(opcodes.PUSH1), byte(opcodes.JUMPDEST),
	}
	in := New(Config{})
	result, err := in.Run(tosca.Parameters{
		BlockParameters: tosca.BlockParameters{Revision: tosca.R13_Cancun},
		Context:         newRunContext(),
		Gas:             100_000,
		Code:            tosca.Code(code),
	})
	require.NoError(t, err)
	require.False(t, result.Success)
}
