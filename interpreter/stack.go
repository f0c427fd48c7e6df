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
	"sync"

	"github.com/holiman/uint256"
)

// StackLimit is the maximum depth of the EVM operand stack.
const StackLimit = 1024

// Stack is a fixed-capacity, zero-allocation-after-warmup operand stack.
type Stack struct {
	data     [StackLimit]uint256.Int
	stackPtr int
}

var stackPool = sync.Pool{
	New: func() any { return new(Stack) },
}

// NewStack obtains a Stack from the shared pool, ready for reuse.
func NewStack() *Stack {
	s := stackPool.Get().(*Stack)
	s.stackPtr = 0
	return s
}

// ReturnStack releases s back to the pool.
func ReturnStack(s *Stack) {
	stackPool.Put(s)
}

func (s *Stack) Len() int {
	return s.stackPtr
}

func (s *Stack) Push(v *uint256.Int) error {
	if s.stackPtr >= StackLimit {
		return errStackOverflow
	}
	s.data[s.stackPtr].Set(v)
	s.stackPtr++
	return nil
}

// PushEmpty grows the stack by one slot and returns a pointer to it for
// the caller to fill in place, avoiding a redundant copy.
func (s *Stack) PushEmpty() (*uint256.Int, error) {
	if s.stackPtr >= StackLimit {
		return nil, errStackOverflow
	}
	v := &s.data[s.stackPtr]
	s.stackPtr++
	return v, nil
}

func (s *Stack) Pop() (*uint256.Int, error) {
	if s.stackPtr == 0 {
		return nil, errStackUnderflow
	}
	s.stackPtr--
	return &s.data[s.stackPtr], nil
}

// Peek returns the top of the stack without popping it.
func (s *Stack) Peek() (*uint256.Int, error) {
	if s.stackPtr == 0 {
		return nil, errStackUnderflow
	}
	return &s.data[s.stackPtr-1], nil
}

// Back returns the n-th value from the top (0 is the top itself).
func (s *Stack) Back(n int) (*uint256.Int, error) {
	if s.stackPtr <= n {
		return nil, errStackUnderflow
	}
	return &s.data[s.stackPtr-1-n], nil
}

func (s *Stack) Swap(n int) error {
	if s.stackPtr <= n {
		return errStackUnderflow
	}
	top := s.stackPtr - 1
	s.data[top], s.data[top-n] = s.data[top-n], s.data[top]
	return nil
}

func (s *Stack) Dup(n int) error {
	if s.stackPtr < n {
		return errStackUnderflow
	}
	if s.stackPtr >= StackLimit {
		return errStackOverflow
	}
	s.data[s.stackPtr].Set(&s.data[s.stackPtr-n])
	s.stackPtr++
	return nil
}
