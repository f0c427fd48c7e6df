// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package calls implements the recursive call/create orchestrator: the
// component that turns a tosca.CallParameters request from a running
// frame into a nested Interpreter.Run invocation, handling snapshotting,
// value transfer, precompile dispatch, and contract creation.
package calls

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/solenoid-evm/solenoid/journal"
	"github.com/solenoid-evm/solenoid/precompiles"
	"github.com/solenoid-evm/solenoid/tosca"
)

// MaxRecursiveDepth is the maximum nesting depth of CALL/CREATE frames,
// matching the go-ethereum / Ethereum mainnet limit of 1024.
const MaxRecursiveDepth = 1024

// Context implements tosca.RunContext on top of a journaled state and an
// interpreter. Embedding *journal.State promotes every WorldState and
// TransactionContext method, including the extra ones (GetOriginalStorage,
// AddRefund, ...) the interpreter package optionally uses via a type
// assertion.
type Context struct {
	*journal.State

	interpreter tosca.Interpreter
	block       tosca.BlockParameters
	tx          tosca.TransactionParameters

	depth  int
	static bool
}

// New builds a call Context ready to run the outermost frame of a
// transaction (depth 0).
func New(state *journal.State, interp tosca.Interpreter, block tosca.BlockParameters, tx tosca.TransactionParameters) *Context {
	return &Context{State: state, interpreter: interp, block: block, tx: tx}
}

// child returns a Context sharing the same journal and interpreter but
// one level deeper, used for the nested frame of a recursive call. static
// carries forward once set: a DELEGATECALL or CALL made from within a
// STATICCALL's subtree must remain write-protected even though its own
// Kind is not StaticCall.
func (c *Context) child(static bool) *Context {
	return &Context{
		State:       c.State,
		interpreter: c.interpreter,
		block:       c.block,
		tx:          c.tx,
		depth:       c.depth + 1,
		static:      c.static || static,
	}
}

// Call implements tosca.RunContext.
func (c *Context) Call(kind tosca.CallKind, params tosca.CallParameters) (tosca.CallResult, error) {
	if c.depth >= MaxRecursiveDepth {
		return tosca.CallResult{Success: false, GasLeft: params.Gas}, nil
	}
	switch kind {
	case tosca.Create, tosca.Create2:
		return c.executeCreate(kind, params)
	default:
		return c.executeCall(kind, params)
	}
}

func (c *Context) executeCall(kind tosca.CallKind, params tosca.CallParameters) (tosca.CallResult, error) {
	snapshot := c.CreateSnapshot()

	// EIP-2929 Berlin optimization: a zero-value call to an account that
	// does not exist and isn't a precompile is a pure no-op success,
	// since it cannot possibly have any observable effect.
	if (kind == tosca.Call || kind == tosca.StaticCall) &&
		params.Value == (tosca.Value{}) &&
		!tosca.IsPrecompiledContract(params.CodeAddress) &&
		!c.AccountExists(params.Recipient) {
		return tosca.CallResult{Success: true, GasLeft: params.Gas}, nil
	}

	if kind == tosca.Call || kind == tosca.CallCode {
		if params.Value != (tosca.Value{}) {
			if !c.transferValue(params.Sender, params.Recipient, params.Value, kind == tosca.CallCode) {
				c.RestoreSnapshot(snapshot)
				return tosca.CallResult{Success: false, GasLeft: params.Gas}, nil
			}
		}
	}

	if tosca.IsPrecompiledContract(params.CodeAddress) {
		output, gasLeft, success := precompiles.Run(params.CodeAddress, []byte(params.Input), params.Gas, c.block.Revision)
		if !success {
			c.RestoreSnapshot(snapshot)
		}
		return tosca.CallResult{Output: output, GasLeft: gasLeft, Success: success}, nil
	}

	code := c.GetCode(params.CodeAddress)
	code = resolveDelegation(c, code)
	if len(code) == 0 {
		return tosca.CallResult{Success: true, GasLeft: params.Gas}, nil
	}
	hash := c.GetCodeHash(params.CodeAddress)

	static := c.static || kind == tosca.StaticCall
	result, err := c.interpreter.Run(tosca.Parameters{
		BlockParameters:       c.block,
		TransactionParameters: c.tx,
		Context:               c.child(kind == tosca.StaticCall),
		Kind:                  kind,
		Static:                static,
		Depth:                 c.depth + 1,
		Gas:                   params.Gas,
		Recipient:             params.Recipient,
		Sender:                params.Sender,
		Input:                 params.Input,
		Value:                 params.Value,
		CodeHash:              &hash,
		Code:                  code,
	})
	if err != nil {
		c.RestoreSnapshot(snapshot)
		return tosca.CallResult{}, err
	}
	if !result.Success {
		if !isRevert(result) {
			result.GasLeft = 0
			result.GasRefund = 0
		}
		c.RestoreSnapshot(snapshot)
	}
	return tosca.CallResult{
		Output:    result.Output,
		GasLeft:   result.GasLeft,
		GasRefund: result.GasRefund,
		Success:   result.Success,
	}, nil
}

// isRevert distinguishes an explicit REVERT (which preserves gas and
// output) from any other halt (which does not). The interpreter package
// does not expose its internal status enum, so this is inferred from the
// result shape: a REVERT always carries output together with failure,
// while other aborts (out of gas, invalid opcode, ...) zero everything.
func isRevert(result tosca.Result) bool {
	return !result.Success && (result.GasLeft != 0 || len(result.Output) != 0)
}

func (c *Context) transferValue(from, to tosca.Address, value tosca.Value, skipDebit bool) bool {
	v := value.ToUint256()
	if !skipDebit {
		balance := c.GetBalance(from).ToUint256()
		if balance.Lt(v) {
			return false
		}
		c.SetBalance(from, tosca.FromUint256(balance.Sub(balance, v)))
	}
	toBalance := c.GetBalance(to).ToUint256()
	c.SetBalance(to, tosca.FromUint256(toBalance.Add(toBalance, v)))
	return true
}

// resolveDelegation follows one level of EIP-7702 delegation indicator
// (0xef0100 ++ address) if code begins with it, returning the delegate's
// code instead of the 23-byte indicator itself.
func resolveDelegation(c *Context, code tosca.Code) tosca.Code {
	if len(code) != 23 || code[0] != 0xef || code[1] != 0x01 || code[2] != 0x00 {
		return code
	}
	var target tosca.Address
	copy(target[:], code[3:])
	return c.GetCode(target)
}

func hashOf(code []byte) tosca.Hash {
	return tosca.Hash(crypto.Keccak256Hash(code))
}
