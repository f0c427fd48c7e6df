// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package calls

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solenoid-evm/solenoid/journal"
	"github.com/solenoid-evm/solenoid/oracle"
	"github.com/solenoid-evm/solenoid/tosca"
)

// stubInterpreter lets tests control exactly what a nested Run call
// returns, without depending on the real bytecode dispatch loop.
type stubInterpreter struct {
	result tosca.Result
	err    error
	seen   []tosca.Parameters
}

func (s *stubInterpreter) Run(p tosca.Parameters) (tosca.Result, error) {
	s.seen = append(s.seen, p)
	return s.result, s.err
}

func newState() *journal.State {
	return journal.New(context.Background(), oracle.NewFixture(), nil)
}

func TestCall_PrecompileDispatch_BypassesInterpreter(t *testing.T) {
	state := newState()
	stub := &stubInterpreter{}
	c := New(state, stub, tosca.BlockParameters{Revision: tosca.R13_Cancun}, tosca.TransactionParameters{})

	sha256 := tosca.Address{19: 2}
	result, err := c.Call(tosca.Call, tosca.CallParameters{
		Recipient:   sha256,
		CodeAddress: sha256,
		Input:       []byte("hi"),
		Gas:         10_000,
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Output, 32)
	require.Empty(t, stub.seen) // never reached the interpreter
}

func TestCall_EmptyAccountZeroValue_IsNoopSuccess(t *testing.T) {
	state := newState()
	stub := &stubInterpreter{}
	c := New(state, stub, tosca.BlockParameters{Revision: tosca.R13_Cancun}, tosca.TransactionParameters{})

	target := tosca.Address{0xAB}
	result, err := c.Call(tosca.Call, tosca.CallParameters{
		Recipient:   target,
		CodeAddress: target,
		Gas:         10_000,
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Empty(t, stub.seen)
}

func TestCall_InsufficientBalance_FailsWithoutTransfer(t *testing.T) {
	state := newState()
	stub := &stubInterpreter{}
	c := New(state, stub, tosca.BlockParameters{Revision: tosca.R13_Cancun}, tosca.TransactionParameters{})

	sender := tosca.Address{1}
	recipient := tosca.Address{2}
	state.SetCode(recipient, tosca.Code{0x00}) // give it code so it's not the empty-account no-op path

	result, err := c.Call(tosca.Call, tosca.CallParameters{
		Sender:      sender,
		Recipient:   recipient,
		CodeAddress: recipient,
		Value:       tosca.NewWord(100),
		Gas:         10_000,
	})
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Zero(t, state.GetBalance(recipient))
}

func TestCall_DepthLimit_RejectsWithoutPanicking(t *testing.T) {
	state := newState()
	stub := &stubInterpreter{}
	c := New(state, stub, tosca.BlockParameters{Revision: tosca.R13_Cancun}, tosca.TransactionParameters{})
	deep := c
	for i := 0; i < MaxRecursiveDepth; i++ {
		deep = deep.child(false)
	}
	result, err := deep.Call(tosca.Call, tosca.CallParameters{Gas: 10_000})
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, tosca.Gas(10_000), result.GasLeft)
}

func TestCreate_NewAccount_GetsNonceOne(t *testing.T) {
	state := newState()
	stub := &stubInterpreter{result: tosca.Result{Success: true}}
	c := New(state, stub, tosca.BlockParameters{Revision: tosca.R13_Cancun}, tosca.TransactionParameters{})

	sender := tosca.Address{7}
	result, err := c.Call(tosca.Create, tosca.CallParameters{Sender: sender, Gas: 100_000})
	require.NoError(t, err)
	require.True(t, result.Success)

	// A successful CREATE sets the new account's nonce to 1, which is what
	// makes a later CREATE at the same address a collision.
	require.Equal(t, uint64(1), state.GetNonce(result.CreatedAddress))
}
