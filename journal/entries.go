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

import "github.com/solenoid-evm/solenoid/tosca"

// journalEntry is one undoable mutation recorded by State. Every
// state-changing method on State appends one entry per mutation it makes
// (none, if the mutation is a no-op) before applying it, so that
// RestoreSnapshot can replay entries in reverse to undo them.
type journalEntry interface {
	undo(s *State)
}

type balanceChange struct {
	addr tosca.Address
	prev tosca.Value
}

func (e balanceChange) undo(s *State) { s.account(e.addr).balance = e.prev }

type nonceChange struct {
	addr tosca.Address
	prev uint64
}

func (e nonceChange) undo(s *State) { s.account(e.addr).nonce = e.prev }

type codeChange struct {
	addr         tosca.Address
	prevCode     tosca.Code
	prevCodeHash tosca.Hash
	prevLoaded   bool
}

func (e codeChange) undo(s *State) {
	a := s.account(e.addr)
	a.code = e.prevCode
	a.codeHash = e.prevCodeHash
	a.codeLoaded = e.prevLoaded
}

type storageChange struct {
	addr tosca.Address
	key  tosca.Key
	prev tosca.Word
	had  bool
}

func (e storageChange) undo(s *State) {
	a := s.account(e.addr)
	if e.had {
		a.storage[e.key] = e.prev
	} else {
		delete(a.storage, e.key)
	}
}

type transientChange struct {
	addr tosca.Address
	key  tosca.Key
	prev tosca.Word
	had  bool
}

func (e transientChange) undo(s *State) {
	m := s.transient[e.addr]
	if e.had {
		m[e.key] = e.prev
	} else {
		delete(m, e.key)
	}
}

type touchChange struct {
	addr        tosca.Address
	wasExisting bool
}

func (e touchChange) undo(s *State) {
	if !e.wasExisting {
		delete(s.accounts, e.addr)
	}
}

type warmAccountChange struct {
	addr tosca.Address
}

func (e warmAccountChange) undo(s *State) { delete(s.warmAccounts, e.addr) }

type warmSlotChange struct {
	addr tosca.Address
	key  tosca.Key
}

func (e warmSlotChange) undo(s *State) {
	if m, ok := s.warmSlots[e.addr]; ok {
		delete(m, e.key)
	}
}

type refundChange struct {
	delta tosca.Gas
}

func (e refundChange) undo(s *State) { s.refund -= e.delta }

type logChange struct{}

func (e logChange) undo(s *State) { s.logs = s.logs[:len(s.logs)-1] }

type selfDestructChange struct {
	addr         tosca.Address
	wasMarked    bool
	prevBenefits tosca.Address
}

func (e selfDestructChange) undo(s *State) {
	if e.wasMarked {
		s.destructed[e.addr] = e.prevBenefits
	} else {
		delete(s.destructed, e.addr)
	}
}

type createdChange struct {
	addr tosca.Address
}

func (e createdChange) undo(s *State) { delete(s.createdThisTx, e.addr) }
