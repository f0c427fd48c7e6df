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

// opCall implements CALL, CALLCODE, DELEGATECALL, and STATICCALL. It
// follows the teacher's genericCall shape: pop arguments (value only for
// Call/CallCode), fetch the in/out memory slices before charging the
// account-access cost (so a memory-expansion failure is observed before
// any state is touched), charge EIP-2929/161 surcharges, apply the
// EIP-150 63/64 forwarding rule plus the EIP-2929-exempt 2300 stipend,
// and finally delegate to the RunContext.
func opCall(f *frame, kind tosca.CallKind) {
	gasArg, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	addrW, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	var value uint256.Int
	if kind == tosca.Call || kind == tosca.CallCode {
		v, err := f.stack.Pop()
		if err != nil {
			f.fail(err)
			return
		}
		value = *v
	}
	inOffset, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	inSize, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	outOffset, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	outSize, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}

	if f.isStatic() && kind == tosca.Call && !value.IsZero() {
		f.fail(errWriteProtection)
		return
	}

	addr := tosca.AddressFromUint256(addrW)
	inOff, inSz := inOffset.Uint64(), inSize.Uint64()
	outOff, outSz := outOffset.Uint64(), outSize.Uint64()

	maxOff := inOff + inSz
	if outOff+outSz > maxOff {
		maxOff = outOff + outSz
	}
	if !f.chargeMemory(maxOff, 0) {
		return
	}
	if !f.chargeMemory(inOff, inSz) || !f.chargeMemory(outOff, outSz) {
		return
	}
	input := append([]byte(nil), f.memory.GetSlice(inOff, inSz)...)

	warm := true
	if f.params.Revision >= tosca.R09_Berlin {
		warm = f.context().AccessAccount(addr) == tosca.WarmAccess
	}
	valueTransfer := (kind == tosca.Call || kind == tosca.CallCode) && !value.IsZero()
	newAccount := kind == tosca.Call && valueTransfer && !f.context().AccountExists(addr)
	if !f.useGas(gas.CallCost(warm, f.params.Revision, valueTransfer, newAccount)) {
		return
	}

	effectiveKind := kind
	if f.isStatic() && effectiveKind == tosca.Call {
		effectiveKind = tosca.StaticCall
	}

	if valueTransfer {
		balance := f.context().GetBalance(f.params.Recipient)
		if balance.ToUint256().Lt(&value) {
			pushUint64(f, 0)
			f.lastCallReturnData = nil
			return
		}
	}

	forwarded := gas.ForwardableGas(f.gas)
	if gasArg.IsUint64() && tosca.Gas(gasArg.Uint64()) < forwarded {
		forwarded = tosca.Gas(gasArg.Uint64())
	}
	if !f.useGas(forwarded) {
		return
	}
	if valueTransfer {
		forwarded += gas.CallStipend
	}

	sender := f.params.Recipient
	recipient := addr
	codeAddress := addr
	callValue := tosca.FromUint256(&value)
	switch kind {
	case tosca.CallCode:
		recipient = f.params.Recipient
	case tosca.DelegateCall:
		sender = f.params.Sender
		recipient = f.params.Recipient
		callValue = f.params.Value
	}

	result, err := f.context().Call(effectiveKind, tosca.CallParameters{
		Sender:      sender,
		Recipient:   recipient,
		Value:       callValue,
		Input:       input,
		Gas:         forwarded,
		CodeAddress: codeAddress,
	})
	if err != nil {
		f.fail(err)
		return
	}

	f.gas += result.GasLeft
	f.refund += result.GasRefund
	f.lastCallReturnData = result.Output

	n := outSz
	if uint64(len(result.Output)) < n {
		n = uint64(len(result.Output))
	}
	if n > 0 {
		f.memory.Set(outOff, result.Output[:n])
	}

	if result.Success {
		pushUint64(f, 1)
	} else {
		pushUint64(f, 0)
	}
}

// opCreate implements CREATE and CREATE2.
func opCreate(f *frame, isCreate2 bool) {
	if f.isStatic() {
		f.fail(errWriteProtection)
		return
	}
	value, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	offset, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	size, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	var salt uint256.Int
	if isCreate2 {
		s, err := f.stack.Pop()
		if err != nil {
			f.fail(err)
			return
		}
		salt = *s
	}

	off, sz := offset.Uint64(), size.Uint64()
	if sz > gas.MaxInitCodeSize {
		f.fail(gas.ErrInitCodeTooLarge)
		return
	}
	if !f.chargeMemory(off, sz) {
		return
	}
	if !f.useGas(gas.InitCodeWordCost(int(sz), f.params.Revision)) {
		return
	}
	if isCreate2 {
		if !f.useGas(gas.Create2HashCost(int(sz))) {
			return
		}
	}

	initCode := append([]byte(nil), f.memory.GetSlice(off, sz)...)

	balance := f.context().GetBalance(f.params.Recipient)
	if balance.ToUint256().Lt(value) {
		pushUint64(f, 0)
		return
	}

	forwarded := gas.ForwardableGas(f.gas)
	if !f.useGas(forwarded) {
		return
	}

	kind := tosca.Create
	if isCreate2 {
		kind = tosca.Create2
	}
	saltHash := tosca.Hash(salt.Bytes32())

	result, err := f.context().Call(kind, tosca.CallParameters{
		Sender: f.params.Recipient,
		Value:  tosca.FromUint256(value),
		Input:  initCode,
		Gas:    forwarded,
		Salt:   saltHash,
	})
	if err != nil {
		f.fail(err)
		return
	}

	f.gas += result.GasLeft
	f.refund += result.GasRefund
	f.lastCallReturnData = result.Output

	if result.Success {
		p, err := f.stack.PushEmpty()
		if err != nil {
			f.fail(err)
			return
		}
		p.SetBytes(result.CreatedAddress[:])
	} else {
		pushUint64(f, 0)
	}
}

func opSelfDestruct(f *frame) {
	if f.isStatic() {
		f.fail(errWriteProtection)
		return
	}
	beneficiaryW, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	beneficiary := tosca.AddressFromUint256(beneficiaryW)

	warm := true
	if f.params.Revision >= tosca.R09_Berlin {
		warm = f.context().AccessAccount(beneficiary) == tosca.WarmAccess
	}
	balance := f.context().GetBalance(f.params.Recipient)
	newAccountFunded := !f.context().AccountExists(beneficiary) && !balance.ToUint256().IsZero()
	if !f.useGas(gas.SelfdestructCost(warm, newAccountFunded, f.params.Revision)) {
		return
	}

	firstTime := f.context().SelfDestruct(f.params.Recipient, beneficiary)
	if firstTime {
		f.refund += gas.SelfdestructRefund(f.params.Revision)
	}
	f.status = suicided
}
