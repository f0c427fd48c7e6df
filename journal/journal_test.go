// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solenoid-evm/solenoid/oracle"
	"github.com/solenoid-evm/solenoid/tosca"
)

func newTestState() (*State, *oracle.Fixture) {
	f := oracle.NewFixture()
	return New(context.Background(), f, nil), f
}

func TestSetBalance_RestoreSnapshot_UndoesChange(t *testing.T) {
	s, _ := newTestState()
	addr := tosca.Address{1}

	before := s.GetBalance(addr)
	snap := s.CreateSnapshot()
	s.SetBalance(addr, tosca.NewWord(42))
	require.Equal(t, tosca.NewWord(42), s.GetBalance(addr))

	s.RestoreSnapshot(snap)
	require.Equal(t, before, s.GetBalance(addr))
}

func TestSetStorage_OriginalValueFixedAtFirstTouch(t *testing.T) {
	s, f := newTestState()
	addr := tosca.Address{2}
	key := tosca.Key{3}
	f.SetAccount(addr, oracle.Account{Storage: map[tosca.Key]tosca.Word{key: tosca.NewWord(7)}})

	require.Equal(t, tosca.NewWord(7), s.GetOriginalStorage(addr, key))

	s.SetStorage(addr, key, tosca.NewWord(9))
	s.SetStorage(addr, key, tosca.NewWord(11))

	// original must still read 7, regardless of how many writes happened.
	require.Equal(t, tosca.NewWord(7), s.GetOriginalStorage(addr, key))
	require.Equal(t, tosca.NewWord(11), s.GetStorage(addr, key))
}

func TestSetStorage_StatusClassification(t *testing.T) {
	s, _ := newTestState()
	addr := tosca.Address{4}
	key := tosca.Key{5}

	status := s.SetStorage(addr, key, tosca.NewWord(1))
	require.Equal(t, tosca.StorageAdded, status)

	status = s.SetStorage(addr, key, tosca.Word{})
	require.Equal(t, tosca.StorageAddedDeleted, status)
}

func TestAccessAccount_ColdThenWarm(t *testing.T) {
	s, _ := newTestState()
	addr := tosca.Address{6}

	require.Equal(t, tosca.ColdAccess, s.AccessAccount(addr))
	require.Equal(t, tosca.WarmAccess, s.AccessAccount(addr))
}

func TestAccessAccount_RestoreSnapshot_UndoesWarmth(t *testing.T) {
	s, _ := newTestState()
	addr := tosca.Address{7}

	snap := s.CreateSnapshot()
	s.AccessAccount(addr)
	s.RestoreSnapshot(snap)

	require.Equal(t, tosca.ColdAccess, s.AccessAccount(addr))
}

func TestNestedSnapshots_RestoreInnerOnly(t *testing.T) {
	s, _ := newTestState()
	addr := tosca.Address{8}

	s.SetBalance(addr, tosca.NewWord(1))
	outer := s.CreateSnapshot()
	s.SetBalance(addr, tosca.NewWord(2))
	inner := s.CreateSnapshot()
	s.SetBalance(addr, tosca.NewWord(3))

	s.RestoreSnapshot(inner)
	require.Equal(t, tosca.NewWord(2), s.GetBalance(addr))

	s.RestoreSnapshot(outer)
	require.Equal(t, tosca.NewWord(1), s.GetBalance(addr))
}

func TestSelfDestruct_FirstCallReturnsTrue(t *testing.T) {
	s, _ := newTestState()
	addr := tosca.Address{9}
	beneficiary := tosca.Address{10}

	require.True(t, s.SelfDestruct(addr, beneficiary))
	require.False(t, s.SelfDestruct(addr, beneficiary))
}

func TestSelfDestruct_CreditsBeneficiaryAndZeroesSource(t *testing.T) {
	s, _ := newTestState()
	addr := tosca.Address{12}
	beneficiary := tosca.Address{13}

	s.SetBalance(addr, tosca.NewWord(100))
	s.SetBalance(beneficiary, tosca.NewWord(5))

	s.SelfDestruct(addr, beneficiary)

	require.Zero(t, s.GetBalance(addr))
	require.Equal(t, tosca.NewWord(105), s.GetBalance(beneficiary))
}

func TestSelfDestruct_ToSelf_BurnsBalance(t *testing.T) {
	s, _ := newTestState()
	addr := tosca.Address{14}
	s.SetBalance(addr, tosca.NewWord(100))

	s.SelfDestruct(addr, addr)

	require.Zero(t, s.GetBalance(addr))
}

func TestEmitLog_RestoreSnapshot_RemovesLog(t *testing.T) {
	s, _ := newTestState()
	snap := s.CreateSnapshot()
	s.EmitLog(tosca.Log{Address: tosca.Address{11}})
	require.Len(t, s.GetLogs(), 1)

	s.RestoreSnapshot(snap)
	require.Len(t, s.GetLogs(), 0)
}

func TestAddRefund_ClampedAtZero(t *testing.T) {
	s, _ := newTestState()
	s.AddRefund(-10)
	require.Equal(t, tosca.Gas(0), s.Refund())

	s.AddRefund(15)
	require.Equal(t, tosca.Gas(5), s.Refund())
}
