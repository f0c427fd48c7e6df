// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package txprocessor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solenoid-evm/solenoid/interpreter"
	"github.com/solenoid-evm/solenoid/journal"
	"github.com/solenoid-evm/solenoid/oracle"
	"github.com/solenoid-evm/solenoid/tosca"
	"github.com/solenoid-evm/solenoid/tosca/opcodes"
)

func newTestSetup() (tosca.Processor, *journal.State, tosca.BlockParameters) {
	fixture := oracle.NewFixture()
	state := journal.New(context.Background(), fixture, nil)
	p := New(interpreter.New(interpreter.Config{}))
	block := tosca.BlockParameters{Revision: tosca.R13_Cancun, Coinbase: tosca.Address{0xC0}}
	return p, state, block
}

// TestRun_CounterIncrement deploys no code; it simply calls an existing
// "counter" contract that loads slot 0, adds 1, and stores it back, then
// checks the stored value, the sender's nonce, and that gas was charged.
func TestRun_CounterIncrement_UpdatesStorageAndChargesGas(t *testing.T) {
	p, state, block := newTestSetup()

	sender := tosca.Address{1}
	contract := tosca.Address{2}
	state.SetBalance(sender, tosca.NewWord(1_000_000_000))

	code := tosca.Code{
		byte(opcodes.PUSH1), 0,
		byte(opcodes.SLOAD),
		byte(opcodes.PUSH1), 1,
		byte(opcodes.ADD),
		byte(opcodes.PUSH1), 0,
		byte(opcodes.SSTORE),
		byte(opcodes.STOP),
	}
	state.SetCode(contract, code)

	receipt, err := p.Run(block, tosca.Transaction{
		Sender:    sender,
		Recipient: &contract,
		Nonce:     0,
		GasLimit:  100_000,
		GasPrice:  tosca.NewWord(1),
	}, state)

	require.NoError(t, err)
	require.True(t, receipt.Success)
	require.Equal(t, tosca.NewWord(1), state.GetStorage(contract, tosca.Key{}))
	require.Equal(t, uint64(1), state.GetNonce(sender))
	require.Greater(t, int64(receipt.GasUsed), int64(0))
}

func TestRun_NonceMismatch_RejectsWithoutCharging(t *testing.T) {
	p, state, block := newTestSetup()
	sender := tosca.Address{1}
	state.SetBalance(sender, tosca.NewWord(1_000_000))
	before := state.GetBalance(sender)

	recipient := tosca.Address{2}
	receipt, err := p.Run(block, tosca.Transaction{
		Sender:    sender,
		Recipient: &recipient,
		Nonce:     5, // state nonce is 0
		GasLimit:  100_000,
		GasPrice:  tosca.NewWord(1),
	}, state)

	require.NoError(t, err)
	require.False(t, receipt.Success)
	require.Equal(t, before, state.GetBalance(sender))
}

func TestRun_ContractCreation_InstallsCode(t *testing.T) {
	p, state, block := newTestSetup()
	sender := tosca.Address{3}
	state.SetBalance(sender, tosca.NewWord(1_000_000_000))

	// init code: returns a single STOP byte as the deployed code.
	initCode := tosca.Code{
		byte(opcodes.PUSH1), byte(opcodes.STOP),
		byte(opcodes.PUSH1), 0,
		byte(opcodes.MSTORE8),
		byte(opcodes.PUSH1), 1,
		byte(opcodes.PUSH1), 0,
		byte(opcodes.RETURN),
	}

	receipt, err := p.Run(block, tosca.Transaction{
		Sender:    sender,
		Recipient: nil,
		Nonce:     0,
		Input:     tosca.Data(initCode),
		GasLimit:  200_000,
		GasPrice:  tosca.NewWord(1),
	}, state)

	require.NoError(t, err)
	require.True(t, receipt.Success)
	require.NotNil(t, receipt.ContractAddress)
	require.Equal(t, tosca.Code{byte(opcodes.STOP)}, state.GetCode(*receipt.ContractAddress))
}

func TestRun_AuthorizationList_InstallsDelegationIndicator(t *testing.T) {
	p, state, block := newTestSetup()
	block.ChainID = tosca.NewWord(1)

	sender := tosca.Address{4}
	authority := tosca.Address{5}
	delegate := tosca.Address{6}
	state.SetBalance(sender, tosca.NewWord(1_000_000_000))

	recipient := tosca.Address{7}
	state.SetCode(recipient, tosca.Code{byte(opcodes.STOP)})

	receipt, err := p.Run(block, tosca.Transaction{
		Sender:    sender,
		Recipient: &recipient,
		Nonce:     0,
		GasLimit:  100_000,
		GasPrice:  tosca.NewWord(1),
		AuthorizationList: []tosca.Authorization{
			{ChainID: 1, Address: delegate, Nonce: 0, Authority: authority},
		},
	}, state)

	require.NoError(t, err)
	require.True(t, receipt.Success)

	code := state.GetCode(authority)
	require.Len(t, code, 23)
	require.Equal(t, []byte{0xef, 0x01, 0x00}, []byte(code[:3]))
	require.Equal(t, delegate[:], []byte(code[3:]))
	require.Equal(t, uint64(1), state.GetNonce(authority))
}

func TestRun_SelfdestructRefund_CappedByFifth(t *testing.T) {
	p, state, block := newTestSetup()

	sender := tosca.Address{8}
	contract := tosca.Address{9}
	beneficiary := tosca.Address{11}
	state.SetBalance(sender, tosca.NewWord(1_000_000_000))
	state.SetBalance(contract, tosca.NewWord(42))
	// the slot is set through the journal, so its original value for the
	// transaction stays 0; clearing it is a 0->1->0 restore worth a 19900
	// refund.
	state.SetStorage(contract, tosca.Key{}, tosca.NewWord(1))

	code := tosca.Code{
		byte(opcodes.PUSH1), 0,
		byte(opcodes.PUSH1), 0,
		byte(opcodes.SSTORE), // clear slot 0, 19900 refund (see above)
		byte(opcodes.PUSH20),
	}
	// append the 20 address bytes for PUSH20, then SELFDESTRUCT.
	addrBytes := make([]byte, 20)
	copy(addrBytes, beneficiary[:])
	code = append(code, addrBytes...)
	code = append(code, byte(opcodes.SELFDESTRUCT))
	state.SetCode(contract, code)

	receipt, err := p.Run(block, tosca.Transaction{
		Sender:    sender,
		Recipient: &contract,
		Nonce:     0,
		GasLimit:  100_000,
		GasPrice:  tosca.NewWord(1),
	}, state)

	require.NoError(t, err)
	require.True(t, receipt.Success)
	// the 19900 refund exceeds gasUsed/5 (about 55809 gas is used before the
	// refund, so the cap is about 11161), so the post-London cap applies;
	// the test only asserts that the gas used stays above 21000.
	require.Greater(t, int64(receipt.GasUsed), int64(21000))
	require.Equal(t, tosca.NewWord(42), state.GetBalance(beneficiary))
	require.Zero(t, state.GetBalance(contract))
}
