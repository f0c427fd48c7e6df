// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package journal implements tosca.TransactionContext as a layered cache
// in front of an oracle.WorldStateOracle: every account touched by a
// transaction is pulled once, then mutated in memory, with every
// mutation recorded in an append-only log that RestoreSnapshot can
// replay backwards to undo a failed call frame without disturbing its
// caller's state.
package journal

import (
	"context"

	"github.com/solenoid-evm/solenoid/oracle"
	"github.com/solenoid-evm/solenoid/tosca"
)

type accountState struct {
	balance tosca.Value
	nonce   uint64

	code       tosca.Code
	codeHash   tosca.Hash
	codeLoaded bool

	storage         map[tosca.Key]tosca.Word
	originalStorage map[tosca.Key]tosca.Word

	loaded bool
}

// State is a concrete, journaled tosca.TransactionContext.
type State struct {
	ctx    context.Context
	source oracle.WorldStateOracle

	accounts map[tosca.Address]*accountState

	warmAccounts map[tosca.Address]bool
	warmSlots    map[tosca.Address]map[tosca.Key]bool

	transient map[tosca.Address]map[tosca.Key]tosca.Word

	log    []journalEntry
	refund tosca.Gas
	logs   []tosca.Log

	createdThisTx map[tosca.Address]bool
	destructed    map[tosca.Address]tosca.Address

	// getBlockHash resolves BLOCKHASH queries; it is supplied by the
	// embedder (typically backed by a small ring buffer of recent
	// headers, since only the last 256 blocks are ever a valid answer).
	getBlockHash func(number int64) tosca.Hash
}

// New creates an empty State backed by source. getBlockHash may be nil,
// in which case GetBlockHash always returns the zero hash.
func New(ctx context.Context, source oracle.WorldStateOracle, getBlockHash func(int64) tosca.Hash) *State {
	if getBlockHash == nil {
		getBlockHash = func(int64) tosca.Hash { return tosca.Hash{} }
	}
	return &State{
		ctx:           ctx,
		source:        source,
		accounts:      map[tosca.Address]*accountState{},
		warmAccounts:  map[tosca.Address]bool{},
		warmSlots:     map[tosca.Address]map[tosca.Key]bool{},
		transient:     map[tosca.Address]map[tosca.Key]tosca.Word{},
		createdThisTx: map[tosca.Address]bool{},
		destructed:    map[tosca.Address]tosca.Address{},
		getBlockHash:  getBlockHash,
	}
}

// account returns the cached accountState for addr, pulling it from the
// oracle on first access. It never returns nil.
func (s *State) account(addr tosca.Address) *accountState {
	if a, ok := s.accounts[addr]; ok {
		return a
	}
	a := &accountState{storage: map[tosca.Key]tosca.Word{}, originalStorage: map[tosca.Key]tosca.Word{}}
	s.accounts[addr] = a
	return a
}

// touch pulls balance/nonce for addr from the oracle the first
// time the account is observed, recording a touchChange so the account
// map entry itself can be rolled back if it was newly created by this
// touch.
func (s *State) touch(addr tosca.Address) *accountState {
	_, existed := s.accounts[addr]
	a := s.account(addr)
	if !existed {
		s.log = append(s.log, touchChange{addr: addr, wasExisting: false})
	}
	if !a.loaded {
		a.loaded = true
		if balance, err := s.source.GetBalance(s.ctx, addr); err == nil {
			a.balance = balance
		}
		if nonce, err := s.source.GetNonce(s.ctx, addr); err == nil {
			a.nonce = nonce
		}
	}
	return a
}

func (s *State) ensureCode(a *accountState, addr tosca.Address) {
	if a.codeLoaded {
		return
	}
	a.codeLoaded = true
	if code, err := s.source.GetCode(s.ctx, addr); err == nil {
		a.code = code
	}
	if hash, err := s.source.GetCodeHash(s.ctx, addr); err == nil {
		a.codeHash = hash
	}
}

func (s *State) ensureSlot(a *accountState, addr tosca.Address, key tosca.Key) tosca.Word {
	if v, ok := a.storage[key]; ok {
		return v
	}
	v, _ := s.source.GetStorage(s.ctx, addr, key)
	a.storage[key] = v
	if _, ok := a.originalStorage[key]; !ok {
		a.originalStorage[key] = v
	}
	return v
}

// ---------------------------------------------------------------------------
// WorldState
// ---------------------------------------------------------------------------

func (s *State) AccountExists(addr tosca.Address) bool {
	a := s.touch(addr)
	if a.nonce != 0 {
		return true
	}
	if a.balance != (tosca.Value{}) {
		return true
	}
	s.ensureCode(a, addr)
	return len(a.code) > 0
}

func (s *State) GetBalance(addr tosca.Address) tosca.Value {
	return s.touch(addr).balance
}

func (s *State) SetBalance(addr tosca.Address, value tosca.Value) {
	a := s.touch(addr)
	if a.balance == value {
		return
	}
	s.log = append(s.log, balanceChange{addr: addr, prev: a.balance})
	a.balance = value
}

func (s *State) GetNonce(addr tosca.Address) uint64 {
	return s.touch(addr).nonce
}

func (s *State) SetNonce(addr tosca.Address, nonce uint64) {
	a := s.touch(addr)
	if a.nonce == nonce {
		return
	}
	s.log = append(s.log, nonceChange{addr: addr, prev: a.nonce})
	a.nonce = nonce
}

func (s *State) GetCodeHash(addr tosca.Address) tosca.Hash {
	a := s.touch(addr)
	s.ensureCode(a, addr)
	return a.codeHash
}

func (s *State) GetCode(addr tosca.Address) tosca.Code {
	a := s.touch(addr)
	s.ensureCode(a, addr)
	return a.code
}

func (s *State) GetCodeSize(addr tosca.Address) int {
	return len(s.GetCode(addr))
}

func (s *State) SetCode(addr tosca.Address, code tosca.Code) {
	a := s.touch(addr)
	s.ensureCode(a, addr)
	s.log = append(s.log, codeChange{addr: addr, prevCode: a.code, prevCodeHash: a.codeHash, prevLoaded: a.codeLoaded})
	a.code = code
	a.codeHash = keccak256(code)
	a.codeLoaded = true
}

func (s *State) GetStorage(addr tosca.Address, key tosca.Key) tosca.Word {
	a := s.touch(addr)
	return s.ensureSlot(a, addr, key)
}

// GetOriginalStorage returns the value of a slot as it stood at the
// start of the transaction, fixed at its first touch and never updated
// afterward, regardless of how many times the slot is written.
func (s *State) GetOriginalStorage(addr tosca.Address, key tosca.Key) tosca.Word {
	a := s.touch(addr)
	s.ensureSlot(a, addr, key)
	return a.originalStorage[key]
}

func (s *State) SetStorage(addr tosca.Address, key tosca.Key, value tosca.Word) tosca.StorageStatus {
	a := s.touch(addr)
	current := s.ensureSlot(a, addr, key)
	original := a.originalStorage[key]
	status := tosca.GetStorageStatus(original, current, value)
	if current != value {
		prev, had := a.storage[key]
		s.log = append(s.log, storageChange{addr: addr, key: key, prev: prev, had: had})
		a.storage[key] = value
	}
	return status
}

func (s *State) SelfDestruct(addr tosca.Address, beneficiary tosca.Address) bool {
	prevBenefit, wasMarked := s.destructed[addr]
	s.log = append(s.log, selfDestructChange{addr: addr, wasMarked: wasMarked, prevBenefits: prevBenefit})
	s.destructed[addr] = beneficiary

	balance := s.GetBalance(addr)
	s.SetBalance(addr, tosca.Value{})
	if addr != beneficiary && balance != (tosca.Value{}) {
		creditor := s.GetBalance(beneficiary).ToUint256()
		s.SetBalance(beneficiary, tosca.FromUint256(creditor.Add(creditor, balance.ToUint256())))
	}
	return !wasMarked
}

// HasSelfDestructed reports whether addr has been marked for destruction
// in the current transaction.
func (s *State) HasSelfDestructed(addr tosca.Address) bool {
	_, ok := s.destructed[addr]
	return ok
}

// WasCreatedInTransaction reports whether addr was created by a CREATE
// or CREATE2 executed earlier in the current transaction, which is what
// EIP-6780 conditions SELFDESTRUCT's account-deletion behavior on.
func (s *State) WasCreatedInTransaction(addr tosca.Address) bool {
	return s.createdThisTx[addr]
}

// MarkCreated records that addr was just created by CREATE/CREATE2
// during this transaction.
func (s *State) MarkCreated(addr tosca.Address) {
	if s.createdThisTx[addr] {
		return
	}
	s.log = append(s.log, createdChange{addr: addr})
	s.createdThisTx[addr] = true
}

// ---------------------------------------------------------------------------
// TransactionContext
// ---------------------------------------------------------------------------

func (s *State) CreateSnapshot() tosca.Snapshot {
	return tosca.Snapshot(len(s.log))
}

func (s *State) RestoreSnapshot(id tosca.Snapshot) {
	for i := len(s.log) - 1; i >= int(id); i-- {
		s.log[i].undo(s)
	}
	s.log = s.log[:id]
}

func (s *State) GetTransientStorage(addr tosca.Address, key tosca.Key) tosca.Word {
	m, ok := s.transient[addr]
	if !ok {
		return tosca.Word{}
	}
	return m[key]
}

func (s *State) SetTransientStorage(addr tosca.Address, key tosca.Key, value tosca.Word) {
	m, ok := s.transient[addr]
	if !ok {
		m = map[tosca.Key]tosca.Word{}
		s.transient[addr] = m
	}
	prev, had := m[key]
	if had && prev == value {
		return
	}
	s.log = append(s.log, transientChange{addr: addr, key: key, prev: prev, had: had})
	m[key] = value
}

func (s *State) AccessAccount(addr tosca.Address) tosca.AccessStatus {
	if s.warmAccounts[addr] {
		return tosca.WarmAccess
	}
	s.log = append(s.log, warmAccountChange{addr: addr})
	s.warmAccounts[addr] = true
	return tosca.ColdAccess
}

func (s *State) AccessStorage(addr tosca.Address, key tosca.Key) tosca.AccessStatus {
	m, ok := s.warmSlots[addr]
	if !ok {
		m = map[tosca.Key]bool{}
		s.warmSlots[addr] = m
	}
	if m[key] {
		return tosca.WarmAccess
	}
	s.log = append(s.log, warmSlotChange{addr: addr, key: key})
	m[key] = true
	return tosca.ColdAccess
}

func (s *State) EmitLog(log tosca.Log) {
	s.logs = append(s.logs, log)
	s.log = append(s.log, logChange{})
}

func (s *State) GetLogs() []tosca.Log {
	return s.logs
}

func (s *State) GetBlockHash(number int64) tosca.Hash {
	return s.getBlockHash(number)
}

// ---------------------------------------------------------------------------
// Refund tracking
// ---------------------------------------------------------------------------

// AddRefund adjusts the pending gas refund by delta, which may be
// negative; the running total is clamped to zero at Refund().
func (s *State) AddRefund(delta tosca.Gas) {
	if delta == 0 {
		return
	}
	s.log = append(s.log, refundChange{delta: delta})
	s.refund += delta
}

// Refund returns the current, possibly negative-clamped, refund total.
func (s *State) Refund() tosca.Gas {
	if s.refund < 0 {
		return 0
	}
	return s.refund
}

// ---------------------------------------------------------------------------
// End of transaction bookkeeping
// ---------------------------------------------------------------------------

// DestroyedAccounts returns the set of accounts marked for destruction
// this transaction, together with their beneficiary. Per EIP-6780, the
// caller (txprocessor) should only actually delete the entries whose
// address satisfies WasCreatedInTransaction.
func (s *State) DestroyedAccounts() map[tosca.Address]tosca.Address {
	return s.destructed
}
