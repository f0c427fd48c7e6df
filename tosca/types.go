// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package tosca

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// Address is a 20 byte Ethereum account address.
type Address [20]byte

// Hash is a 32 byte Keccak256 hash.
type Hash [32]byte

// Key is a 32 byte storage slot key.
type Key [32]byte

// Word is a 32 byte, big-endian encoded, unsigned 256 bit integer.
type Word [32]byte

// Value is an alias of Word used where an amount of network currency is
// represented.
type Value = Word

// Code is the byte-code of a contract.
type Code []byte

// Gas represents the type used to represent gas values throughout this
// module. It is a signed type so that intermediate computations (e.g.
// subtracting a charge before checking for sufficiency) can be observed
// to have gone negative rather than wrapping.
type Gas int64

// Snapshot identifies a point in a TransactionContext's journal to which
// the context can be reverted.
type Snapshot int

func (a Address) String() string {
	return fmt.Sprintf("0x%x", a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalText() ([]byte, error) {
	return bytesToText(a[:])
}

func (a *Address) UnmarshalText(data []byte) error {
	return textToBytes(a[:], data)
}

func (h Hash) String() string {
	return fmt.Sprintf("0x%x", h[:])
}

func (k Key) String() string {
	return fmt.Sprintf("0x%x", k[:])
}

func (w Word) String() string {
	return fmt.Sprintf("0x%x", w[:])
}

func (w Word) IsZero() bool {
	return w == Word{}
}

// ToBig converts a Word into a big.Int.
func (w Word) ToBig() *big.Int {
	return new(big.Int).SetBytes(w[:])
}

// ToUint256 converts a Word into a *uint256.Int.
func (w Word) ToUint256() *uint256.Int {
	return new(uint256.Int).SetBytes32(w[:])
}

// NewWord builds a Word from a single uint64, useful in tests.
func NewWord(v uint64) (result Word) {
	result[31] = byte(v)
	result[30] = byte(v >> 8)
	result[29] = byte(v >> 16)
	result[28] = byte(v >> 24)
	result[27] = byte(v >> 32)
	result[26] = byte(v >> 40)
	result[25] = byte(v >> 48)
	result[24] = byte(v >> 56)
	return result
}

// FromUint256 converts a *uint256.Int into a Word.
func FromUint256(v *uint256.Int) (result Word) {
	if v == nil {
		return result
	}
	return v.Bytes32()
}

// AddressFromUint256 truncates a uint256 value down to the low 20 bytes,
// matching the EVM's address-from-stack-word convention.
func AddressFromUint256(v *uint256.Int) (result Address) {
	b := v.Bytes32()
	copy(result[:], b[12:])
	return result
}

func (w Word) MarshalText() ([]byte, error) {
	return bytesToText(w[:])
}

func (w *Word) UnmarshalText(data []byte) error {
	return textToBytes(w[:], data)
}

func bytesToText(data []byte) ([]byte, error) {
	return []byte(fmt.Sprintf("0x%x", data)), nil
}

func textToBytes(trg []byte, data []byte) error {
	s := string(data)
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("invalid format, does not start with 0x: %v", s)
	}
	decoded, err := hex.DecodeString(s[2:])
	if err != nil {
		return err
	}
	if want, got := len(trg), len(decoded); want != got {
		return fmt.Errorf("invalid format, wanted %d bytes, got %d", want, got)
	}
	copy(trg, decoded)
	return nil
}

// SizeInWords returns the number of 32-byte words required to hold size
// bytes, rounding up.
func SizeInWords(size uint64) uint64 {
	return (size + 31) / 32
}
