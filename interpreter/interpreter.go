// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package interpreter implements the EVM bytecode dispatch loop: fetch,
// check, charge, execute, trace, advance.
package interpreter

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/solenoid-evm/solenoid/tosca"
	"github.com/solenoid-evm/solenoid/tosca/opcodes"
)

type status int

const (
	running status = iota
	stopped
	reverted
	returnedStatus
	suicided
	invalidInstruction
	outOfGas
	errored
)

// Config controls interpreter-wide, non-per-call behavior.
type Config struct {
	// AnalysisCache, if nil, is replaced with a private, unshared cache;
	// callers embedding this interpreter long-term should supply a
	// shared one so analyses survive across transactions.
	AnalysisCache *AnalysisCache
}

// Interpreter is the concrete, tosca.Interpreter-compatible bytecode
// dispatch engine.
type Interpreter struct {
	cache *AnalysisCache
}

func New(cfg Config) *Interpreter {
	cache := cfg.AnalysisCache
	if cache == nil {
		cache = NewAnalysisCache()
	}
	return &Interpreter{cache: cache}
}

// frame holds all per-call mutable execution state.
type frame struct {
	params tosca.Parameters

	pc     int
	gas    tosca.Gas
	refund tosca.Gas

	stack  *Stack
	memory *Memory

	code     []byte
	analysis *CodeAnalysis

	lastCallReturnData []byte

	resultOffset uint256.Int
	resultSize   uint256.Int

	status status
	err    error
}

// Run executes one frame of code to completion.
func (in *Interpreter) Run(params tosca.Parameters) (tosca.Result, error) {
	if !params.Revision.IsValid() {
		return tosca.Result{}, &tosca.ErrUnsupportedRevision{Revision: params.Revision}
	}

	code := []byte(params.Code)
	var hash tosca.Hash
	if params.CodeHash != nil {
		hash = *params.CodeHash
	} else {
		hash = tosca.Hash(crypto.Keccak256Hash(code))
	}

	f := &frame{
		params:   params,
		gas:      params.Gas,
		stack:    NewStack(),
		memory:   NewMemory(),
		code:     code,
		analysis: in.cache.Get(hash, code),
	}
	defer ReturnStack(f.stack)

	for f.status == running {
		in.step(f)
	}

	result := tosca.Result{
		GasLeft:   f.gas,
		GasRefund: f.refund,
	}
	switch f.status {
	case stopped, suicided:
		result.Success = true
	case returnedStatus:
		result.Success = true
		result.Output = f.output()
	case reverted:
		result.Success = false
		result.Output = f.output()
	default:
		result.Success = false
		result.GasLeft = 0
		result.GasRefund = 0
	}
	return result, nil
}

func (f *frame) output() tosca.Data {
	offset := f.resultOffset.Uint64()
	size := f.resultSize.Uint64()
	if size == 0 {
		return nil
	}
	return tosca.Data(append([]byte(nil), f.memory.GetSlice(offset, size)...))
}

func (f *frame) fail(err error) {
	f.status = errored
	f.err = err
}

// useGas deducts cost from the remaining gas, failing the frame with
// errOutOfGas if that would drive it negative.
func (f *frame) useGas(cost tosca.Gas) bool {
	if cost < 0 || f.gas < cost {
		f.fail(errOutOfGas)
		return false
	}
	f.gas -= cost
	return true
}

func (f *frame) isStatic() bool {
	return f.params.Static
}

func (f *frame) context() tosca.RunContext {
	return f.params.Context
}

// step executes exactly one instruction, or transitions the frame to a
// terminal status.
func (in *Interpreter) step(f *frame) {
	if f.pc >= len(f.code) {
		f.status = stopped
		return
	}

	op := opcodes.OpCode(f.code[f.pc])

	if f.isStatic() && isWriteInstruction(op) {
		f.fail(errWriteProtection)
		return
	}

	staticCost := staticCostOf(op, f.params.Revision)
	if staticCost < 0 {
		f.fail(errInvalidOpcode)
		return
	}
	if !f.useGas(staticCost) {
		return
	}

	trace := f.params.Tracer
	var gasBefore tosca.Gas
	if trace != nil {
		gasBefore = f.gas
	}

	execute(in, f, op)

	if trace != nil && f.status != errored {
		trace.OnStep(tosca.TraceRecord{
			PC:      f.pc,
			Op:      op,
			Name:    op.String(),
			Depth:   f.params.Depth,
			GasLeft: f.gas,
			GasCost: gasBefore - f.gas,
		})
	}

	if f.status == running {
		f.pc++
	}
}

func isWriteInstruction(op opcodes.OpCode) bool {
	switch op {
	case opcodes.SSTORE, opcodes.CREATE, opcodes.CREATE2, opcodes.SELFDESTRUCT,
		opcodes.LOG0, opcodes.LOG1, opcodes.LOG2, opcodes.LOG3, opcodes.LOG4,
		opcodes.TSTORE:
		return true
	default:
		return false
	}
}
