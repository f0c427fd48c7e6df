// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package oracle

import (
	"context"

	"golang.org/x/exp/maps"

	"github.com/solenoid-evm/solenoid/tosca"
)

// Account is the pre-state of one account in a Fixture.
type Account struct {
	Balance tosca.Value
	Nonce   uint64
	Code    tosca.Code
	Storage map[tosca.Key]tosca.Word
}

func (a Account) Clone() Account {
	return Account{
		Balance: a.Balance,
		Nonce:   a.Nonce,
		Code:    append(tosca.Code(nil), a.Code...),
		Storage: maps.Clone(a.Storage),
	}
}

// Fixture is an in-memory WorldStateOracle backed by a fixed map of
// accounts and a fixed list of block headers, intended for unit and
// scenario tests that do not need a live chain.
type Fixture struct {
	Accounts map[tosca.Address]Account
	Headers  map[int64]tosca.BlockHeader
}

func NewFixture() *Fixture {
	return &Fixture{
		Accounts: map[tosca.Address]Account{},
		Headers:  map[int64]tosca.BlockHeader{},
	}
}

func (f *Fixture) SetAccount(addr tosca.Address, account Account) {
	f.Accounts[addr] = account
}

func (f *Fixture) SetHeader(header tosca.BlockHeader) {
	f.Headers[header.Number] = header
}

func (f *Fixture) GetBlockHeader(_ context.Context, number int64) (tosca.BlockHeader, error) {
	return f.Headers[number], nil
}

func (f *Fixture) GetBalance(_ context.Context, addr tosca.Address) (tosca.Value, error) {
	return f.Accounts[addr].Balance, nil
}

func (f *Fixture) GetNonce(_ context.Context, addr tosca.Address) (uint64, error) {
	return f.Accounts[addr].Nonce, nil
}

func (f *Fixture) GetCode(_ context.Context, addr tosca.Address) (tosca.Code, error) {
	return f.Accounts[addr].Code, nil
}

func (f *Fixture) GetCodeHash(_ context.Context, addr tosca.Address) (tosca.Hash, error) {
	code := f.Accounts[addr].Code
	if len(code) == 0 {
		return tosca.Hash{}, nil
	}
	return hashCode(code), nil
}

func (f *Fixture) GetStorage(_ context.Context, addr tosca.Address, key tosca.Key) (tosca.Word, error) {
	return f.Accounts[addr].Storage[key], nil
}
