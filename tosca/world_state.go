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

//go:generate mockgen -source world_state.go -destination world_state_mock.go -package tosca

// WorldState is the interface through which instructions and the call
// orchestrator observe and mutate account state. Every mutation is
// buffered by the implementation (see the journal package) so it can be
// undone by RestoreSnapshot.
type WorldState interface {
	AccountExists(Address) bool

	GetBalance(Address) Value
	SetBalance(Address, Value)

	GetNonce(Address) uint64
	SetNonce(Address, uint64)

	GetCodeHash(Address) Hash
	GetCode(Address) Code
	GetCodeSize(Address) int
	SetCode(Address, Code)

	GetStorage(Address, Key) Word
	SetStorage(Address, Key, Word) StorageStatus

	// SelfDestruct records that the account at addr should be deleted at
	// the end of the transaction, crediting its balance to beneficiary.
	// It returns true the first time it is called for addr within the
	// current transaction.
	SelfDestruct(addr Address, beneficiary Address) bool
}

// StorageStatus classifies a SSTORE according to the EIP-2200 / EIP-3529
// original -> current -> new transition table.
type StorageStatus int

const (
	// StorageAssigned: current == new, or any transition not listed below
	// (e.g. a further change of an already-modified slot to another
	// non-zero value).
	StorageAssigned StorageStatus = iota
	// StorageAdded: 0 -> 0 -> Z
	StorageAdded
	// StorageDeleted: X -> X -> 0
	StorageDeleted
	// StorageModified: X -> X -> Z (Z != X, Z != 0)
	StorageModified
	// StorageDeletedAdded: X -> 0 -> Z (Z != X)
	StorageDeletedAdded
	// StorageModifiedDeleted: X -> Y -> 0 (Y != X, Y != 0)
	StorageModifiedDeleted
	// StorageDeletedRestored: X -> 0 -> X
	StorageDeletedRestored
	// StorageAddedDeleted: 0 -> Y -> 0
	StorageAddedDeleted
	// StorageModifiedRestored: X -> Y -> X (Y != X, Y != 0)
	StorageModifiedRestored
)

// GetStorageStatus classifies the transition of a storage slot given its
// original (start-of-transaction), current (pre-write), and new
// (post-write) values.
func GetStorageStatus(original, current, new Word) StorageStatus {
	var zero Word

	if current == new {
		return StorageAssigned
	}
	if original == zero && current == zero && new != zero {
		return StorageAdded
	}
	if original != zero && current == original && new == zero {
		return StorageDeleted
	}
	if original != zero && current == original && new != zero && new != original {
		return StorageModified
	}
	if original != zero && current == zero && new != original && new != zero {
		return StorageDeletedAdded
	}
	if original != zero && current != original && current != zero && new == zero {
		return StorageModifiedDeleted
	}
	if original != zero && current == zero && new == original {
		return StorageDeletedRestored
	}
	if original == zero && current != zero && new == zero {
		return StorageAddedDeleted
	}
	if original != zero && current != original && current != zero && new == original {
		return StorageModifiedRestored
	}
	return StorageAssigned
}

func IsPrecompiledContract(addr Address) bool {
	for i := 0; i < 19; i++ {
		if addr[i] != 0 {
			return false
		}
	}
	return 1 <= addr[19] && addr[19] <= 10
}
