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

	"github.com/stretchr/testify/require"
)

func TestMemory_EnsureCapacity_RoundsUpToWord(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.EnsureCapacity(1))
	require.Equal(t, 32, m.Len())
}

func TestMemory_EnsureCapacity_DoesNotShrink(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.EnsureCapacity(64))
	require.NoError(t, m.EnsureCapacity(1))
	require.Equal(t, 64, m.Len())
}

func TestMemory_SetAndGetSlice_Roundtrip(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.EnsureCapacity(32))
	m.Set(0, []byte("hello"))
	require.Equal(t, []byte("hello"), m.GetSlice(0, 5))
}

func TestMemory_CopyWithin_HandlesOverlap(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.EnsureCapacity(32))
	m.Set(0, []byte("abcdef"))
	m.CopyWithin(2, 0, 4)
	require.Equal(t, []byte("ababcd"), m.GetSlice(0, 6))
}

func TestMemory_ExpansionCost_ChargesOnlyTheDelta(t *testing.T) {
	m := NewMemory()
	require.Greater(t, int64(m.ExpansionCost(32)), int64(0))
	require.NoError(t, m.EnsureCapacity(32))
	require.Zero(t, m.ExpansionCost(32))
}
