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

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"pgregory.net/rand"
)

func TestStack_PushPopRoundtrip(t *testing.T) {
	s := NewStack()
	defer ReturnStack(s)

	v := uint256.NewInt(42)
	require.NoError(t, s.Push(v))
	require.Equal(t, 1, s.Len())

	got, err := s.Pop()
	require.NoError(t, err)
	require.Equal(t, uint64(42), got.Uint64())
	require.Equal(t, 0, s.Len())
}

func TestStack_PopEmpty_Underflows(t *testing.T) {
	s := NewStack()
	defer ReturnStack(s)

	_, err := s.Pop()
	require.ErrorIs(t, err, errStackUnderflow)
}

func TestStack_PushBeyondLimit_Overflows(t *testing.T) {
	s := NewStack()
	defer ReturnStack(s)

	for i := 0; i < StackLimit; i++ {
		require.NoError(t, s.Push(uint256.NewInt(uint64(i))))
	}
	require.ErrorIs(t, s.Push(uint256.NewInt(0)), errStackOverflow)
}

func TestStack_Dup_CopiesWithoutConsuming(t *testing.T) {
	s := NewStack()
	defer ReturnStack(s)

	require.NoError(t, s.Push(uint256.NewInt(1)))
	require.NoError(t, s.Push(uint256.NewInt(2)))
	require.NoError(t, s.Dup(2))
	require.Equal(t, 3, s.Len())

	top, err := s.Pop()
	require.NoError(t, err)
	require.Equal(t, uint64(1), top.Uint64())
}

func TestStack_Swap_ExchangesTopAndNth(t *testing.T) {
	s := NewStack()
	defer ReturnStack(s)

	require.NoError(t, s.Push(uint256.NewInt(1)))
	require.NoError(t, s.Push(uint256.NewInt(2)))
	require.NoError(t, s.Swap(1))

	top, err := s.Pop()
	require.NoError(t, err)
	require.Equal(t, uint64(1), top.Uint64())
}

// TestStack_RandomPushPop_PreservesLIFOOrder pushes a random sequence of
// words up to the stack limit and checks they come back off in reverse.
func TestStack_RandomPushPop_PreservesLIFOOrder(t *testing.T) {
	rnd := rand.New(1)
	s := NewStack()
	defer ReturnStack(s)

	n := 1 + rnd.Intn(StackLimit)
	pushed := make([]uint64, n)
	for i := 0; i < n; i++ {
		v := rnd.Uint64()
		pushed[i] = v
		require.NoError(t, s.Push(uint256.NewInt(v)))
	}

	for i := n - 1; i >= 0; i-- {
		got, err := s.Pop()
		require.NoError(t, err)
		require.Equal(t, pushed[i], got.Uint64())
	}
	require.Equal(t, 0, s.Len())
}
