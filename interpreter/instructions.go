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
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/solenoid-evm/solenoid/gas"
	"github.com/solenoid-evm/solenoid/tosca"
	"github.com/solenoid-evm/solenoid/tosca/opcodes"
)

func staticCostOf(op opcodes.OpCode, revision tosca.Revision) tosca.Gas {
	return gas.Static(op, revision)
}

// execute dispatches op to its handler. Stack/memory bound violations and
// out-of-gas conditions are reported by failing the frame rather than by
// returning an error value, matching the teacher's status-field style.
func execute(in *Interpreter, f *frame, op opcodes.OpCode) {
	switch {
	case op >= opcodes.PUSH1 && op <= opcodes.PUSH32:
		opPush(f, op)
		return
	case op >= opcodes.DUP1 && op <= opcodes.DUP16:
		if err := f.stack.Dup(int(op - opcodes.DUP1 + 1)); err != nil {
			f.fail(err)
		}
		return
	case op >= opcodes.SWAP1 && op <= opcodes.SWAP16:
		if err := f.stack.Swap(int(op - opcodes.SWAP1 + 1)); err != nil {
			f.fail(err)
		}
		return
	}

	switch op {
	case opcodes.STOP:
		f.status = stopped
	case opcodes.ADD:
		binaryOp(f, func(a, b *uint256.Int) { a.Add(a, b) })
	case opcodes.MUL:
		binaryOp(f, func(a, b *uint256.Int) { a.Mul(a, b) })
	case opcodes.SUB:
		binaryOp(f, func(a, b *uint256.Int) { a.Sub(a, b) })
	case opcodes.DIV:
		binaryOp(f, func(a, b *uint256.Int) { a.Div(a, b) })
	case opcodes.SDIV:
		binaryOp(f, func(a, b *uint256.Int) { a.SDiv(a, b) })
	case opcodes.MOD:
		binaryOp(f, func(a, b *uint256.Int) { a.Mod(a, b) })
	case opcodes.SMOD:
		binaryOp(f, func(a, b *uint256.Int) { a.SMod(a, b) })
	case opcodes.ADDMOD:
		ternaryOp(f, func(a, b, c *uint256.Int) { a.AddMod(a, b, c) })
	case opcodes.MULMOD:
		ternaryOp(f, func(a, b, c *uint256.Int) { a.MulMod(a, b, c) })
	case opcodes.EXP:
		opExp(f)
	case opcodes.SIGNEXTEND:
		binaryOp(f, func(a, b *uint256.Int) { a.Set(b.ExtendSign(b, a)) })
	case opcodes.LT:
		binaryOp(f, func(a, b *uint256.Int) { setBoolean(a, a.Lt(b)) })
	case opcodes.GT:
		binaryOp(f, func(a, b *uint256.Int) { setBoolean(a, a.Gt(b)) })
	case opcodes.SLT:
		binaryOp(f, func(a, b *uint256.Int) { setBoolean(a, a.Slt(b)) })
	case opcodes.SGT:
		binaryOp(f, func(a, b *uint256.Int) { setBoolean(a, a.Sgt(b)) })
	case opcodes.EQ:
		binaryOp(f, func(a, b *uint256.Int) { setBoolean(a, a.Eq(b)) })
	case opcodes.ISZERO:
		unaryOp(f, func(a *uint256.Int) { setBoolean(a, a.IsZero()) })
	case opcodes.AND:
		binaryOp(f, func(a, b *uint256.Int) { a.And(a, b) })
	case opcodes.OR:
		binaryOp(f, func(a, b *uint256.Int) { a.Or(a, b) })
	case opcodes.XOR:
		binaryOp(f, func(a, b *uint256.Int) { a.Xor(a, b) })
	case opcodes.NOT:
		unaryOp(f, func(a *uint256.Int) { a.Not(a) })
	case opcodes.BYTE:
		binaryOp(f, func(a, b *uint256.Int) { a.Set(b.Byte(a)) })
	case opcodes.SHL:
		binaryOp(f, func(a, b *uint256.Int) { a.Lsh(b, uint(a.Uint64())) })
	case opcodes.SHR:
		binaryOp(f, func(a, b *uint256.Int) { a.Rsh(b, uint(a.Uint64())) })
	case opcodes.SAR:
		opSar(f)
	case opcodes.SHA3:
		opSha3(f)
	case opcodes.ADDRESS:
		pushAddress(f, f.params.Recipient)
	case opcodes.BALANCE:
		opBalance(f)
	case opcodes.ORIGIN:
		pushAddress(f, f.params.Origin)
	case opcodes.CALLER:
		pushAddress(f, f.params.Sender)
	case opcodes.CALLVALUE:
		push(f, f.params.Value.ToUint256())
	case opcodes.CALLDATALOAD:
		opCallDataLoad(f)
	case opcodes.CALLDATASIZE:
		pushUint64(f, uint64(len(f.params.Input)))
	case opcodes.CALLDATACOPY:
		opDataCopy(f, []byte(f.params.Input))
	case opcodes.CODESIZE:
		pushUint64(f, uint64(len(f.code)))
	case opcodes.CODECOPY:
		opDataCopy(f, f.code)
	case opcodes.GASPRICE:
		push(f, f.params.GasPrice.ToUint256())
	case opcodes.EXTCODESIZE:
		opExtCodeSize(f)
	case opcodes.EXTCODECOPY:
		opExtCodeCopy(f)
	case opcodes.RETURNDATASIZE:
		pushUint64(f, uint64(len(f.lastCallReturnData)))
	case opcodes.RETURNDATACOPY:
		opReturnDataCopy(f)
	case opcodes.EXTCODEHASH:
		opExtCodeHash(f)
	case opcodes.BLOCKHASH:
		opBlockHash(f)
	case opcodes.COINBASE:
		pushAddress(f, f.params.Coinbase)
	case opcodes.TIMESTAMP:
		pushUint64(f, uint64(f.params.Timestamp))
	case opcodes.NUMBER:
		pushUint64(f, uint64(f.params.BlockNumber))
	case opcodes.PREVRANDAO:
		push(f, new(uint256.Int).SetBytes(f.params.PrevRandao[:]))
	case opcodes.GASLIMIT:
		pushUint64(f, uint64(f.params.GasLimit))
	case opcodes.CHAINID:
		push(f, f.params.ChainID.ToUint256())
	case opcodes.SELFBALANCE:
		v := f.context().GetBalance(f.params.Recipient)
		push(f, v.ToUint256())
	case opcodes.BASEFEE:
		push(f, f.params.BaseFee.ToUint256())
	case opcodes.BLOBHASH:
		opBlobHash(f)
	case opcodes.BLOBBASEFEE:
		push(f, f.params.BlobBaseFee.ToUint256())
	case opcodes.POP:
		if _, err := f.stack.Pop(); err != nil {
			f.fail(err)
		}
	case opcodes.MLOAD:
		opMLoad(f)
	case opcodes.MSTORE:
		opMStore(f)
	case opcodes.MSTORE8:
		opMStore8(f)
	case opcodes.SLOAD:
		opSLoad(f)
	case opcodes.SSTORE:
		opSStore(f)
	case opcodes.JUMP:
		opJump(f)
	case opcodes.JUMPI:
		opJumpi(f)
	case opcodes.PC:
		pushUint64(f, uint64(f.pc))
	case opcodes.MSIZE:
		pushUint64(f, uint64(f.memory.Len()))
	case opcodes.GAS:
		pushUint64(f, uint64(f.gas))
	case opcodes.JUMPDEST:
		// no-op marker
	case opcodes.TLOAD:
		opTLoad(f)
	case opcodes.TSTORE:
		opTStore(f)
	case opcodes.MCOPY:
		opMCopy(f)
	case opcodes.PUSH0:
		if _, err := f.stack.PushEmpty(); err != nil {
			f.fail(err)
		}
	case opcodes.LOG0, opcodes.LOG1, opcodes.LOG2, opcodes.LOG3, opcodes.LOG4:
		opLog(f, int(op-opcodes.LOG0))
	case opcodes.CREATE:
		opCreate(f, false)
	case opcodes.CREATE2:
		opCreate(f, true)
	case opcodes.CALL:
		opCall(f, tosca.Call)
	case opcodes.CALLCODE:
		opCall(f, tosca.CallCode)
	case opcodes.RETURN:
		opReturnOrRevert(f, returnedStatus)
	case opcodes.DELEGATECALL:
		opCall(f, tosca.DelegateCall)
	case opcodes.STATICCALL:
		opCall(f, tosca.StaticCall)
	case opcodes.REVERT:
		opReturnOrRevert(f, reverted)
	case opcodes.INVALID:
		f.fail(errInvalidOpcode)
	case opcodes.SELFDESTRUCT:
		opSelfDestruct(f)
	default:
		f.fail(errInvalidOpcode)
	}
}

// ---------------------------------------------------------------------------
// Stack helpers
// ---------------------------------------------------------------------------

func push(f *frame, v *uint256.Int) {
	if err := f.stack.Push(v); err != nil {
		f.fail(err)
	}
}

func pushUint64(f *frame, v uint64) {
	p, err := f.stack.PushEmpty()
	if err != nil {
		f.fail(err)
		return
	}
	p.SetUint64(v)
}

func pushAddress(f *frame, addr tosca.Address) {
	p, err := f.stack.PushEmpty()
	if err != nil {
		f.fail(err)
		return
	}
	p.SetBytes(addr[:])
}

func unaryOp(f *frame, op func(a *uint256.Int)) {
	a, err := f.stack.Peek()
	if err != nil {
		f.fail(err)
		return
	}
	op(a)
}

func binaryOp(f *frame, op func(a, b *uint256.Int)) {
	a, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	b, err := f.stack.Peek()
	if err != nil {
		f.fail(err)
		return
	}
	op(a, b)
	// op leaves its result in a, which replaces b on top of the stack.
	b.Set(a)
}

func ternaryOp(f *frame, op func(a, b, c *uint256.Int)) {
	a, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	b, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	c, err := f.stack.Peek()
	if err != nil {
		f.fail(err)
		return
	}
	op(a, b, c)
	c.Set(a)
}

func opPush(f *frame, op opcodes.OpCode) {
	width := op.Width() - 1
	start := f.pc + 1
	end := start + width
	var buf [32]byte
	if end > len(f.code) {
		end = len(f.code)
	}
	copy(buf[32-width:], f.code[start:end])
	p, err := f.stack.PushEmpty()
	if err != nil {
		f.fail(err)
		return
	}
	p.SetBytes(buf[32-width:])
	f.pc += width
}

func opSar(f *frame) {
	shift, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	value, err := f.stack.Peek()
	if err != nil {
		f.fail(err)
		return
	}
	if shift.GtUint64(255) {
		if value.Sign() < 0 {
			value.SetAllOne()
		} else {
			value.Clear()
		}
		return
	}
	value.SRsh(value, uint(shift.Uint64()))
}

func opExp(f *frame) {
	base, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	exponent, err := f.stack.Peek()
	if err != nil {
		f.fail(err)
		return
	}
	cost := gas.Exp(exponent.ByteLen())
	if !f.useGas(cost) {
		return
	}
	exponent.Exp(base, exponent)
}

// ---------------------------------------------------------------------------
// Memory / hashing
// ---------------------------------------------------------------------------

func (f *frame) chargeMemory(offset, size uint64) bool {
	if size == 0 {
		return true
	}
	if offset+size < offset {
		f.fail(errGasUintOverflow)
		return false
	}
	cost := f.memory.ExpansionCost(offset + size)
	if !f.useGas(cost) {
		return false
	}
	if err := f.memory.EnsureCapacity(offset + size); err != nil {
		f.fail(err)
		return false
	}
	return true
}

func opSha3(f *frame) {
	offset, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	size, err := f.stack.Peek()
	if err != nil {
		f.fail(err)
		return
	}
	off, sz := offset.Uint64(), size.Uint64()
	if !f.chargeMemory(off, sz) {
		return
	}
	if !f.useGas(gas.Keccak256Cost(sz)) {
		return
	}
	hash := crypto.Keccak256(f.memory.GetSlice(off, sz))
	size.SetBytes(hash)
}

func opMLoad(f *frame) {
	offset, err := f.stack.Peek()
	if err != nil {
		f.fail(err)
		return
	}
	off := offset.Uint64()
	if !f.chargeMemory(off, 32) {
		return
	}
	offset.SetBytes(f.memory.GetSlice(off, 32))
}

func opMStore(f *frame) {
	offset, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	value, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	off := offset.Uint64()
	if !f.chargeMemory(off, 32) {
		return
	}
	f.memory.SetWord(off, value)
}

func opMStore8(f *frame) {
	offset, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	value, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	off := offset.Uint64()
	if !f.chargeMemory(off, 1) {
		return
	}
	f.memory.SetByte(off, byte(value.Uint64()))
}

func opMCopy(f *frame) {
	dst, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	src, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	size, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	d, s, sz := dst.Uint64(), src.Uint64(), size.Uint64()
	max := d
	if s > max {
		max = s
	}
	if !f.chargeMemory(max, sz) {
		return
	}
	if !f.useGas(gas.CopyCost(sz)) {
		return
	}
	f.memory.CopyWithin(d, s, sz)
}

func opDataCopy(f *frame, src []byte) {
	destOffset, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	dataOffset, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	length, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	d, l := destOffset.Uint64(), length.Uint64()
	if !f.chargeMemory(d, l) {
		return
	}
	if !f.useGas(gas.CopyCost(l)) {
		return
	}
	data := getData(src, dataOffset.Uint64(), l)
	f.memory.Set(d, data)
}

func opReturnDataCopy(f *frame) {
	destOffset, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	dataOffset, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	length, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	start, l := dataOffset.Uint64(), length.Uint64()
	if start+l > uint64(len(f.lastCallReturnData)) || start+l < start {
		f.fail(errReturnDataOutOfBounds)
		return
	}
	d := destOffset.Uint64()
	if !f.chargeMemory(d, l) {
		return
	}
	if !f.useGas(gas.CopyCost(l)) {
		return
	}
	f.memory.Set(d, f.lastCallReturnData[start:start+l])
}

// getData returns a right-padded-with-zeros slice of src[offset:offset+length].
func getData(src []byte, offset, length uint64) []byte {
	if offset > uint64(len(src)) {
		offset = uint64(len(src))
	}
	end := offset + length
	if end > uint64(len(src)) {
		end = uint64(len(src))
	}
	data := make([]byte, length)
	copy(data, src[offset:end])
	return data
}

// ---------------------------------------------------------------------------
// Calldata / code introspection
// ---------------------------------------------------------------------------

func opCallDataLoad(f *frame) {
	offset, err := f.stack.Peek()
	if err != nil {
		f.fail(err)
		return
	}
	data := getData([]byte(f.params.Input), offset.Uint64(), 32)
	offset.SetBytes(data)
}

func opBlobHash(f *frame) {
	index, err := f.stack.Peek()
	if err != nil {
		f.fail(err)
		return
	}
	i := index.Uint64()
	if i >= uint64(len(f.params.BlobHashes)) {
		index.Clear()
		return
	}
	index.SetBytes(f.params.BlobHashes[i][:])
}

func opExtCodeSize(f *frame) {
	addrW, err := f.stack.Peek()
	if err != nil {
		f.fail(err)
		return
	}
	addr := tosca.AddressFromUint256(addrW)
	if !f.chargeAccountAccess(addr) {
		return
	}
	addrW.SetUint64(uint64(f.context().GetCodeSize(addr)))
}

func opExtCodeCopy(f *frame) {
	addrW, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	destOffset, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	codeOffset, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	length, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	addr := tosca.AddressFromUint256(addrW)
	if !f.chargeAccountAccess(addr) {
		return
	}
	d, l := destOffset.Uint64(), length.Uint64()
	if !f.chargeMemory(d, l) {
		return
	}
	if !f.useGas(gas.CopyCost(l)) {
		return
	}
	code := f.context().GetCode(addr)
	data := getData(code, codeOffset.Uint64(), l)
	f.memory.Set(d, data)
}

func opExtCodeHash(f *frame) {
	addrW, err := f.stack.Peek()
	if err != nil {
		f.fail(err)
		return
	}
	addr := tosca.AddressFromUint256(addrW)
	if !f.chargeAccountAccess(addr) {
		return
	}
	if !f.context().AccountExists(addr) {
		addrW.Clear()
		return
	}
	hash := f.context().GetCodeHash(addr)
	addrW.SetBytes(hash[:])
}

func (f *frame) chargeAccountAccess(addr tosca.Address) bool {
	if f.params.Revision < tosca.R09_Berlin {
		return true
	}
	warm := f.context().AccessAccount(addr) == tosca.WarmAccess
	return f.useGas(gas.AccountAccessCost(warm, f.params.Revision))
}

func opBalance(f *frame) {
	addrW, err := f.stack.Peek()
	if err != nil {
		f.fail(err)
		return
	}
	addr := tosca.AddressFromUint256(addrW)
	if !f.chargeAccountAccess(addr) {
		return
	}
	balance := f.context().GetBalance(addr)
	addrW.SetBytes32(balance[:])
}

func opBlockHash(f *frame) {
	number, err := f.stack.Peek()
	if err != nil {
		f.fail(err)
		return
	}
	n := int64(number.Uint64())
	upper := f.params.BlockNumber
	if n >= upper || n < upper-256 {
		number.Clear()
		return
	}
	hash := f.context().GetBlockHash(n)
	number.SetBytes(hash[:])
}

// ---------------------------------------------------------------------------
// Storage
// ---------------------------------------------------------------------------

func opSLoad(f *frame) {
	key, err := f.stack.Peek()
	if err != nil {
		f.fail(err)
		return
	}
	k := tosca.Key(key.Bytes32())
	warm := true
	if f.params.Revision >= tosca.R09_Berlin {
		warm = f.context().AccessStorage(f.params.Recipient, k) == tosca.WarmAccess
	}
	if !f.useGas(gas.SLoadCost(warm, f.params.Revision)) {
		return
	}
	value := f.context().GetStorage(f.params.Recipient, k)
	key.SetBytes32(value[:])
}

func opSStore(f *frame) {
	if f.gas <= gas.ErrSStoreSentryGas {
		f.fail(gas.ErrSStoreSentry)
		return
	}
	key, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	value, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	k := tosca.Key(key.Bytes32())
	v := tosca.Word(value.Bytes32())

	warm := true
	if f.params.Revision >= tosca.R09_Berlin {
		warm = f.context().AccessStorage(f.params.Recipient, k) == tosca.WarmAccess
	}

	ctx := f.context()
	current := ctx.GetStorage(f.params.Recipient, k)
	var original tosca.Word
	if withOriginal, ok := ctx.(interface {
		GetOriginalStorage(tosca.Address, tosca.Key) tosca.Word
	}); ok {
		original = withOriginal.GetOriginalStorage(f.params.Recipient, k)
	} else {
		original = current
	}

	cost, refundDelta := gas.SStore(original, current, v, warm, f.params.Revision)
	if !f.useGas(cost) {
		return
	}
	ctx.SetStorage(f.params.Recipient, k, v)
	if withRefund, ok := ctx.(interface{ AddRefund(tosca.Gas) }); ok {
		withRefund.AddRefund(refundDelta)
	} else {
		f.refund += refundDelta
	}
}

func opTLoad(f *frame) {
	key, err := f.stack.Peek()
	if err != nil {
		f.fail(err)
		return
	}
	k := tosca.Key(key.Bytes32())
	value := f.context().GetTransientStorage(f.params.Recipient, k)
	key.SetBytes32(value[:])
}

func opTStore(f *frame) {
	key, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	value, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	k := tosca.Key(key.Bytes32())
	v := tosca.Word(value.Bytes32())
	f.context().SetTransientStorage(f.params.Recipient, k, v)
}

// ---------------------------------------------------------------------------
// Control flow
// ---------------------------------------------------------------------------

func opJump(f *frame) {
	dest, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	f.jumpTo(dest)
}

func opJumpi(f *frame) {
	dest, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	cond, err := f.stack.Pop()
	if err != nil {
		f.fail(err)
		return
	}
	if cond.IsZero() {
		return
	}
	f.jumpTo(dest)
}

func (f *frame) jumpTo(dest *uint256.Int) {
	if !dest.IsUint64() {
		f.fail(errInvalidJump)
		return
	}
	pos := dest.Uint64()
	if !f.analysis.IsJumpDest(pos, f.code) {
		f.fail(errInvalidJump)
		return
	}
	f.pc = int(pos) - 1 // step() increments pc after execute returns
}

func opReturnOrRevert(f *frame, final status) {
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
	off, sz := offset.Uint64(), size.Uint64()
	if !f.chargeMemory(off, sz) {
		return
	}
	f.resultOffset.SetUint64(off)
	f.resultSize.SetUint64(sz)
	f.status = final
}

// ---------------------------------------------------------------------------
// Logs
// ---------------------------------------------------------------------------

func opLog(f *frame, topicCount int) {
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
	topics := make([]tosca.Hash, topicCount)
	for i := 0; i < topicCount; i++ {
		t, err := f.stack.Pop()
		if err != nil {
			f.fail(err)
			return
		}
		topics[i] = tosca.Hash(t.Bytes32())
	}
	off, sz := offset.Uint64(), size.Uint64()
	if !f.chargeMemory(off, sz) {
		return
	}
	if !f.useGas(gas.Log(topicCount, int(sz))) {
		return
	}
	data := append([]byte(nil), f.memory.GetSlice(off, sz)...)
	f.context().EmitLog(tosca.Log{
		Address: f.params.Recipient,
		Topics:  topics,
		Data:    data,
	})
}

func setBoolean(z *uint256.Int, cond bool) *uint256.Int {
	if cond {
		return z.SetOne()
	}
	return z.Clear()
}
