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

//go:generate mockgen -source processor.go -destination processor_mock.go -package tosca

// Processor is the component capable of executing whole transactions. It
// charges gas fees, validates nonces, drives recursive contract calls and
// contract creation, applies precompiled contracts, and settles
// transaction fees against the coinbase.
type Processor interface {
	Run(BlockParameters, Transaction, TransactionContext) (Receipt, error)
}

// Transaction summarizes the parameters of a transaction to be executed.
// It covers the union of legacy, EIP-2930 access-list, EIP-1559 fee-market,
// EIP-4844 blob, and EIP-7702 authorization-list transaction shapes; a
// caller populates only the fields relevant to the transaction type being
// replayed.
type Transaction struct {
	Sender     Address
	Recipient  *Address // nil if this transaction creates a contract
	Nonce      uint64
	Input      Data
	Value      Value
	GasLimit   Gas

	// Legacy / EIP-2930 gas price. Ignored if GasFeeCap is set.
	GasPrice Value

	// EIP-1559 fee market. GasFeeCap is the maximum total fee per gas the
	// sender is willing to pay; GasTipCap is the portion of that fee paid
	// to the block's coinbase above the base fee.
	GasFeeCap *Value
	GasTipCap *Value

	AccessList []AccessTuple

	// EIP-4844 blob fields.
	BlobHashes  []Hash
	BlobFeeCap  *Value

	// EIP-7702 authorization list: each entry grants the transaction's
	// sender permission to install a delegation indicator pointing at
	// Address into the Authority account's code.
	AuthorizationList []Authorization
}

// AccessTuple lists accounts and storage slots a transaction hints it
// will touch, letting the processor pre-warm them per EIP-2930.
type AccessTuple struct {
	Address Address
	Keys    []Key
}

// Authorization is one entry of an EIP-7702 authorization list: a
// signed statement by Authority that their account's code should become
// a delegation to Address for the chain identified by ChainID (or any
// chain, if ChainID is zero).
type Authorization struct {
	ChainID   uint64
	Address   Address
	Nonce     uint64
	Authority Address // recovered signer, already verified by the caller
}

// Receipt summarizes the outcome of executing a transaction.
type Receipt struct {
	Success         bool
	Output          Data
	ContractAddress *Address
	GasUsed         Gas
	BlobGasUsed     Gas
	Logs            []Log
}

// BlockHeader carries the subset of block header fields the processor
// and oracle need: enough to build BlockParameters and to answer
// BLOCKHASH queries for the preceding 256 blocks.
type BlockHeader struct {
	Number        int64
	Timestamp     int64
	Coinbase      Address
	GasLimit      Gas
	BaseFee       Value
	BlobBaseFee   Value
	PrevRandao    Hash
	Hash          Hash
	ParentHash    Hash
}
