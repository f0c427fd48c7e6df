// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package txprocessor drives whole-transaction execution: intrinsic gas
// and nonce checks, fee prepayment, access-list and EIP-7702
// authorization-list warming, the top-level CALL or CREATE, coinbase fee
// settlement, refund capping, and the EIP-6780 post-transaction sweep of
// self-destructed accounts. Empty accounts touched by the transaction are
// not removed.
package txprocessor

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/solenoid-evm/solenoid/calls"
	"github.com/solenoid-evm/solenoid/gas"
	"github.com/solenoid-evm/solenoid/journal"
	"github.com/solenoid-evm/solenoid/tosca"
)

// processor implements tosca.Processor on top of the journal/calls
// packages, grounded on floria's processor.go shape with opera's
// refund-capping and coinbase-settlement logic folded in.
type processor struct {
	interpreter tosca.Interpreter
}

// New builds a tosca.Processor that executes transactions with interp as
// its bytecode interpreter.
func New(interp tosca.Interpreter) tosca.Processor {
	return &processor{interpreter: interp}
}

func (p *processor) Run(block tosca.BlockParameters, transaction tosca.Transaction, context tosca.TransactionContext) (tosca.Receipt, error) {
	state, ok := context.(*journal.State)
	if !ok {
		return tosca.Receipt{}, fmt.Errorf("txprocessor requires a *journal.State TransactionContext, got %T", context)
	}

	errorReceipt := tosca.Receipt{GasUsed: transaction.GasLimit}

	if err := checkNonce(transaction, state); err != nil {
		return errorReceipt, nil
	}

	effectiveGasPrice := effectiveGasPrice(transaction, block)
	if err := buyGas(transaction, effectiveGasPrice, state); err != nil {
		return errorReceipt, nil
	}

	isCreate := transaction.Recipient == nil
	intrinsic, err := gas.IntrinsicGas(
		isCreate,
		transaction.Input,
		countAccessListAddresses(transaction.AccessList),
		countAccessListKeys(transaction.AccessList),
		len(transaction.AuthorizationList),
		block.Revision,
	)
	if err != nil {
		refund(transaction, effectiveGasPrice, transaction.GasLimit, state)
		return errorReceipt, nil
	}
	gasRemaining := transaction.GasLimit
	if gasRemaining < intrinsic {
		refund(transaction, effectiveGasPrice, transaction.GasLimit, state)
		return errorReceipt, nil
	}
	gasRemaining -= intrinsic

	state.SetNonce(transaction.Sender, state.GetNonce(transaction.Sender)+1)

	warmAccessList(state, transaction, block.Revision)
	installDelegations(state, transaction.AuthorizationList, block.ChainID)

	c := calls.New(state, p.interpreter, block, tosca.TransactionParameters{
		Origin:     transaction.Sender,
		GasPrice:   effectiveGasPrice,
		BlobHashes: transaction.BlobHashes,
	})

	var result tosca.CallResult
	if isCreate {
		result, err = c.Call(tosca.Create, tosca.CallParameters{
			Sender: transaction.Sender,
			Value:  transaction.Value,
			Input:  transaction.Input,
			Gas:    gasRemaining,
		})
	} else {
		result, err = c.Call(tosca.Call, tosca.CallParameters{
			Sender:      transaction.Sender,
			Recipient:   *transaction.Recipient,
			CodeAddress: *transaction.Recipient,
			Value:       transaction.Value,
			Input:       transaction.Input,
			Gas:         gasRemaining,
		})
	}
	if err != nil {
		refund(transaction, effectiveGasPrice, transaction.GasLimit, state)
		return errorReceipt, err
	}

	gasUsed := transaction.GasLimit - result.GasLeft
	maxRefund := gas.RefundCap(gasUsed, block.Revision)
	actualRefund := state.Refund()
	if actualRefund > maxRefund {
		actualRefund = maxRefund
	}
	result.GasLeft += actualRefund
	gasUsed = transaction.GasLimit - result.GasLeft

	refund(transaction, effectiveGasPrice, result.GasLeft, state)
	settleCoinbaseFee(transaction, effectiveGasPrice, block, gasUsed, state)
	sweepDestroyedAccounts(state)

	var createdAddress *tosca.Address
	if isCreate && result.Success {
		addr := result.CreatedAddress
		createdAddress = &addr
	}

	return tosca.Receipt{
		Success:         result.Success,
		Output:          result.Output,
		ContractAddress: createdAddress,
		GasUsed:         gasUsed,
		Logs:            state.GetLogs(),
	}, nil
}

func checkNonce(tx tosca.Transaction, state *journal.State) error {
	if got := state.GetNonce(tx.Sender); got != tx.Nonce {
		return fmt.Errorf("nonce mismatch: tx has %d, state has %d", tx.Nonce, got)
	}
	return nil
}

// effectiveGasPrice resolves the per-gas price a transaction actually
// pays: GasPrice for legacy/EIP-2930 transactions, or
// min(GasFeeCap, BaseFee+GasTipCap) for EIP-1559 transactions.
func effectiveGasPrice(tx tosca.Transaction, block tosca.BlockParameters) tosca.Value {
	if tx.GasFeeCap == nil {
		return tx.GasPrice
	}
	tip := tx.GasFeeCap.ToUint256()
	if tx.GasTipCap != nil {
		baseFee := block.BaseFee.ToUint256()
		candidate := new(uint256.Int).Add(baseFee, tx.GasTipCap.ToUint256())
		if candidate.Lt(tip) {
			tip = candidate
		}
	}
	return tosca.FromUint256(tip)
}

func buyGas(tx tosca.Transaction, gasPrice tosca.Value, state *journal.State) error {
	cost := new(uint256.Int).Mul(uint256.NewInt(uint64(tx.GasLimit)), gasPrice.ToUint256())
	balance := state.GetBalance(tx.Sender).ToUint256()
	if balance.Lt(cost) {
		return fmt.Errorf("insufficient balance: have %v, want %v", balance, cost)
	}
	state.SetBalance(tx.Sender, tosca.FromUint256(balance.Sub(balance, cost)))
	return nil
}

// refund credits the sender back for gasLeft unspent gas, at the same
// price it was bought at.
func refund(tx tosca.Transaction, gasPrice tosca.Value, gasLeft tosca.Gas, state *journal.State) {
	amount := new(uint256.Int).Mul(uint256.NewInt(uint64(gasLeft)), gasPrice.ToUint256())
	balance := state.GetBalance(tx.Sender).ToUint256()
	state.SetBalance(tx.Sender, tosca.FromUint256(balance.Add(balance, amount)))
}

// settleCoinbaseFee pays the block's coinbase its share of the gas spent:
// the full effective price pre-London, or just the tip above the base fee
// from London onward (the base-fee portion is burned, not paid out).
func settleCoinbaseFee(tx tosca.Transaction, gasPrice tosca.Value, block tosca.BlockParameters, gasUsed tosca.Gas, state *journal.State) {
	minerPrice := gasPrice.ToUint256()
	if block.Revision >= tosca.R10_London {
		baseFee := block.BaseFee.ToUint256()
		tipPrice := new(uint256.Int).Sub(minerPrice, baseFee)
		if tipPrice.Sign() < 0 {
			tipPrice = uint256.NewInt(0)
		}
		minerPrice = tipPrice
	}
	fee := new(uint256.Int).Mul(uint256.NewInt(uint64(gasUsed)), minerPrice)
	if fee.IsZero() {
		return
	}
	coinbaseBalance := state.GetBalance(block.Coinbase).ToUint256()
	state.SetBalance(block.Coinbase, tosca.FromUint256(coinbaseBalance.Add(coinbaseBalance, fee)))
}

func countAccessListAddresses(list []tosca.AccessTuple) int {
	return len(list)
}

func countAccessListKeys(list []tosca.AccessTuple) int {
	n := 0
	for _, t := range list {
		n += len(t.Keys)
	}
	return n
}

// warmAccessList pre-warms the sender, recipient, precompiles, and every
// address/slot named in the transaction's EIP-2930 access list before
// execution starts, per EIP-2929's definition of the initial warm set.
func warmAccessList(state *journal.State, tx tosca.Transaction, revision tosca.Revision) {
	if revision < tosca.R09_Berlin {
		return
	}
	state.AccessAccount(tx.Sender)
	if tx.Recipient != nil {
		state.AccessAccount(*tx.Recipient)
	}
	for i := 1; i <= 10; i++ {
		var addr tosca.Address
		addr[19] = byte(i)
		state.AccessAccount(addr)
	}
	for _, tuple := range tx.AccessList {
		state.AccessAccount(tuple.Address)
		for _, key := range tuple.Keys {
			state.AccessStorage(tuple.Address, key)
		}
	}
}

// installDelegations applies every valid EIP-7702 authorization: warms
// the authority, checks its nonce and that it is either empty or already
// delegated, and writes the 0xef0100 ++ address delegation indicator (or
// clears it, if Address is the zero address) as the authority's code.
// It returns the set of authorities whose code was rewritten, in case a
// caller wants to audit the outcome.
func installDelegations(state *journal.State, list []tosca.Authorization, chainID tosca.Word) []tosca.Address {
	var touched []tosca.Address
	for _, auth := range list {
		if auth.ChainID != 0 && tosca.NewWord(auth.ChainID) != chainID {
			continue
		}
		state.AccessAccount(auth.Authority)
		if !isDelegatableAccount(state, auth.Authority) {
			continue
		}
		if state.GetNonce(auth.Authority) != auth.Nonce {
			continue
		}
		state.SetNonce(auth.Authority, auth.Nonce+1)
		if auth.Address == (tosca.Address{}) {
			state.SetCode(auth.Authority, nil)
		} else {
			indicator := make([]byte, 23)
			indicator[0], indicator[1], indicator[2] = 0xef, 0x01, 0x00
			copy(indicator[3:], auth.Address[:])
			state.SetCode(auth.Authority, tosca.Code(indicator))
		}
		touched = append(touched, auth.Authority)
	}
	return touched
}

// isDelegatableAccount reports whether addr may accept an EIP-7702
// delegation: it must have no code, or code that is already itself a
// delegation indicator (re-delegation is allowed).
func isDelegatableAccount(state *journal.State, addr tosca.Address) bool {
	code := state.GetCode(addr)
	if len(code) == 0 {
		return true
	}
	return len(code) == 23 && code[0] == 0xef && code[1] == 0x01 && code[2] == 0x00
}

// sweepDestroyedAccounts finalizes SELFDESTRUCT per EIP-6780: only
// accounts created earlier in this same transaction are swept, and for
// those the code and balance are cleared while nonce and storage are left
// as they are;
// accounts destructed but created in an earlier transaction keep their
// balance-zeroing effect (already applied by the transfer in the
// SELFDESTRUCT opcode handler) but retain their storage and code.
func sweepDestroyedAccounts(state *journal.State) {
	for addr := range state.DestroyedAccounts() {
		if state.WasCreatedInTransaction(addr) {
			state.SetCode(addr, nil)
			state.SetBalance(addr, tosca.Value{})
		}
	}
}
