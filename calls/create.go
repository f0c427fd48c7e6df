// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package calls

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/solenoid-evm/solenoid/gas"
	"github.com/solenoid-evm/solenoid/tosca"
)

// emptyCodeHash is the Keccak256 hash of the empty byte string, the
// GetCodeHash value of an account that has never had code, as opposed to
// tosca.Hash{} which also means "no account" to the journal.
var emptyCodeHash = tosca.Hash(crypto.Keccak256Hash(nil))

// executeCreate implements CREATE and CREATE2: sender nonce bump, address
// derivation, collision check, value transfer, nested init-code execution,
// and EIP-170/EIP-3541 checks on the deployed code (the EIP-3860 init-code
// limit is enforced by the interpreter's CREATE handlers).
func (c *Context) executeCreate(kind tosca.CallKind, params tosca.CallParameters) (tosca.CallResult, error) {
	failed := tosca.CallResult{Success: false, GasLeft: params.Gas}

	if params.Value != (tosca.Value{}) {
		if c.GetBalance(params.Sender).ToUint256().Lt(params.Value.ToUint256()) {
			return failed, nil
		}
	}

	nonce := c.GetNonce(params.Sender)
	if nonce+1 < nonce {
		return failed, nil
	}
	c.SetNonce(params.Sender, nonce+1)

	code := tosca.Code(params.Input)
	codeHash := hashOf(code)
	createdAddress := createAddress(kind, params.Sender, nonce, params.Salt, codeHash)

	if c.block.Revision >= tosca.R09_Berlin {
		c.AccessAccount(createdAddress)
	}

	if c.GetNonce(createdAddress) != 0 ||
		(c.GetCodeHash(createdAddress) != tosca.Hash{} && c.GetCodeHash(createdAddress) != emptyCodeHash) {
		// Address collision: fails the CREATE without aborting the
		// calling frame, mirroring any other unsuccessful call.
		return tosca.CallResult{GasLeft: params.Gas}, nil
	}

	snapshot := c.CreateSnapshot()
	c.SetNonce(createdAddress, 1)

	if params.Value != (tosca.Value{}) {
		c.transferValue(params.Sender, createdAddress, params.Value, false)
	}
	c.MarkCreated(createdAddress)

	result, err := c.interpreter.Run(tosca.Parameters{
		BlockParameters:       c.block,
		TransactionParameters: c.tx,
		Context:               c.child(false),
		Kind:                  kind,
		Depth:                 c.depth + 1,
		Gas:                   params.Gas,
		Recipient:             createdAddress,
		Sender:                params.Sender,
		Value:                 params.Value,
		CodeHash:              &codeHash,
		Code:                  code,
	})
	if err != nil {
		c.RestoreSnapshot(snapshot)
		return tosca.CallResult{}, err
	}
	if !result.Success {
		if !isRevert(result) {
			c.RestoreSnapshot(snapshot)
			return tosca.CallResult{CreatedAddress: createdAddress}, nil
		}
		c.RestoreSnapshot(snapshot)
		return tosca.CallResult{Output: result.Output, GasLeft: result.GasLeft, CreatedAddress: createdAddress}, nil
	}

	outCode := result.Output
	if len(outCode) > gas.MaxCodeSize {
		result.Success = false
	}
	if c.block.Revision >= tosca.R10_London && len(outCode) > 0 && outCode[0] == 0xEF {
		result.Success = false
	}
	depositCost := gas.CodeDepositCost(len(outCode))
	if result.GasLeft < depositCost {
		result.Success = false
	} else {
		result.GasLeft -= depositCost
	}

	if result.Success {
		c.SetCode(createdAddress, tosca.Code(outCode))
	} else {
		c.RestoreSnapshot(snapshot)
		result.GasLeft = 0
		result.Output = nil
	}

	return tosca.CallResult{
		Output:         result.Output,
		GasLeft:        result.GasLeft,
		GasRefund:      result.GasRefund,
		Success:        result.Success,
		CreatedAddress: createdAddress,
	}, nil
}

func createAddress(kind tosca.CallKind, sender tosca.Address, nonce uint64, salt tosca.Hash, initHash tosca.Hash) tosca.Address {
	if kind == tosca.Create {
		return tosca.Address(crypto.CreateAddress(common.Address(sender), nonce))
	}
	return tosca.Address(crypto.CreateAddress2(common.Address(sender), common.Hash(salt), initHash[:]))
}
