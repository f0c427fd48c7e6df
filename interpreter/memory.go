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
	"github.com/holiman/uint256"

	"github.com/solenoid-evm/solenoid/gas"
	"github.com/solenoid-evm/solenoid/tosca"
)

// maxMemoryExpansionSize bounds the memory size this interpreter will
// ever attempt to grow to, regardless of how much gas is available; it
// is far larger than any amount of gas that could realistically be
// supplied could pay for, and exists only to keep a pathological
// request (e.g. 2^64-1) from causing an out-of-memory panic before the
// gas check has a chance to reject it.
const maxMemoryExpansionSize = 0x1FFFFFFFE0

// Memory is the EVM's linear, word-addressable, growable byte memory.
type Memory struct {
	store          []byte
	currentWords   uint64
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Len() int {
	return len(m.store)
}

// toValidMemorySize rounds size up to the next multiple of 32.
func toValidMemorySize(size uint64) uint64 {
	return tosca.SizeInWords(size) * 32
}

// ExpansionCost returns the additional cost of growing memory to size
// bytes (rounded up to a word boundary), beyond what the current size has
// already paid for; it is zero if memory is already that large.
func (m *Memory) ExpansionCost(size uint64) tosca.Gas {
	if size == 0 {
		return 0
	}
	words := tosca.SizeInWords(size)
	return gas.MemoryExpansionDelta(m.currentWords, words)
}

// EnsureCapacity grows memory to hold at least size bytes, if it does
// not already, returning an error if size exceeds the sanity bound.
func (m *Memory) EnsureCapacity(size uint64) error {
	if size == 0 {
		return nil
	}
	if size > maxMemoryExpansionSize {
		return errMemoryOutOfBounds
	}
	newSize := toValidMemorySize(size)
	if uint64(len(m.store)) >= newSize {
		return nil
	}
	m.currentWords = newSize / 32
	grown := make([]byte, newSize)
	copy(grown, m.store)
	m.store = grown
	return nil
}

func (m *Memory) GetSlice(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// Set writes value into memory at offset. It does not grow memory: the
// caller must first cover the range with EnsureCapacity.
func (m *Memory) Set(offset uint64, value []byte) {
	if len(value) == 0 {
		return
	}
	copy(m.store[offset:offset+uint64(len(value))], value)
}

// SetWord writes a 32-byte big-endian word at offset.
func (m *Memory) SetWord(offset uint64, value *uint256.Int) {
	b := value.Bytes32()
	copy(m.store[offset:offset+32], b[:])
}

// SetByte writes a single byte at offset.
func (m *Memory) SetByte(offset uint64, value byte) {
	m.store[offset] = value
}

// CopyWithin copies length bytes from src to dst inside memory,
// correctly handling overlap (used by MCOPY).
func (m *Memory) CopyWithin(dst, src, length uint64) {
	if length == 0 {
		return
	}
	copy(m.store[dst:dst+length], m.store[src:src+length])
}

// Data returns the backing byte slice; callers must not retain it past
// the next mutation.
func (m *Memory) Data() []byte {
	return m.store
}
