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

//go:generate mockgen -source interpreter.go -destination interpreter_mock.go -package tosca

import "github.com/solenoid-evm/solenoid/tosca/opcodes"

// Interpreter is a component capable of executing EVM byte-code. It is
// the core of a full EVM; a full EVM additionally handles recursive
// contract calls and transaction bookkeeping (see calls and txprocessor).
type Interpreter interface {
	// Run executes the code provided by the parameters in the specified
	// context and returns the processing result. The resulting error is
	// nil whenever the code was correctly processed, even if execution
	// was aborted for a code-internal reason (out of gas, revert, ...).
	// A non-nil error indicates a problem within the interpreter itself;
	// in that case the result is undefined.
	Run(Parameters) (Result, error)
}

// Parameters summarizes everything required to execute one frame of code.
type Parameters struct {
	BlockParameters
	TransactionParameters
	Context   RunContext
	Kind      CallKind
	Static    bool
	Depth     int
	Gas       Gas
	Recipient Address
	Sender    Address
	Input     Data
	Value     Value
	CodeHash  *Hash
	Code      Code
	Tracer    Tracer
}

// BlockParameters contains the properties of the block a transaction is
// being executed in.
type BlockParameters struct {
	ChainID     Word
	BlockNumber int64
	Timestamp   int64
	Coinbase    Address
	GasLimit    Gas
	PrevRandao  Hash
	BaseFee     Value
	BlobBaseFee Value
	Revision    Revision
}

// TransactionParameters contains the properties of the transaction whose
// execution is in progress.
type TransactionParameters struct {
	Origin     Address
	GasPrice   Value
	BlobHashes []Hash
}

// RunContext is the interface through which a running frame of code
// performs recursive calls into other code.
type RunContext interface {
	TransactionContext

	Call(kind CallKind, parameters CallParameters) (CallResult, error)
}

// TransactionContext gives instructions access to world state, transient
// storage, access-list bookkeeping, logs, and snapshots, all scoped to the
// lifetime of one transaction.
type TransactionContext interface {
	WorldState

	CreateSnapshot() Snapshot
	RestoreSnapshot(Snapshot)

	GetTransientStorage(Address, Key) Word
	SetTransientStorage(Address, Key, Word)

	AccessAccount(Address) AccessStatus
	AccessStorage(Address, Key) AccessStatus

	EmitLog(Log)
	GetLogs() []Log

	// GetBlockHash returns the hash of the block with the given number,
	// or the zero hash if the number is outside the last 256 blocks.
	GetBlockHash(number int64) Hash
}

// AccessStatus indicates whether an account or storage slot had already
// been touched (warm) or not (cold) before the current access.
type AccessStatus bool

const (
	ColdAccess AccessStatus = false
	WarmAccess AccessStatus = true
)

// Result summarizes the outcome of running one frame of code.
type Result struct {
	Success   bool
	Output    Data
	GasLeft   Gas
	GasRefund Gas
}

// Data is the input or output byte-string of a contract invocation.
type Data []byte

// Log is a message emitted as a side effect of executing a LOG* opcode.
type Log struct {
	Address Address
	Topics  []Hash
	Data    Data
}

// CallKind distinguishes the flavors of recursive contract invocation.
type CallKind int

const (
	Call CallKind = iota
	DelegateCall
	StaticCall
	CallCode
	Create
	Create2
)

func (k CallKind) String() string {
	switch k {
	case Call:
		return "call"
	case StaticCall:
		return "static_call"
	case DelegateCall:
		return "delegate_call"
	case CallCode:
		return "call_code"
	case Create:
		return "create"
	case Create2:
		return "create2"
	default:
		return "unknown"
	}
}

// CallParameters describes a recursive call or contract creation.
type CallParameters struct {
	Sender      Address
	Recipient   Address
	Value       Value
	Input       Data
	Gas         Gas
	Salt        Hash
	CodeAddress Address
}

// CallResult is the outcome of a recursive call or contract creation.
type CallResult struct {
	Output         Data
	GasLeft        Gas
	GasRefund      Gas
	CreatedAddress Address
	Success        bool
}

// ProfilingInterpreter is an optional extension implemented by
// interpreters that collect per-opcode statistics.
type ProfilingInterpreter interface {
	Interpreter

	ResetProfile()
	DumpProfile()
}

// Tracer receives a stream of TraceRecords as code executes. A nil Tracer
// disables tracing with zero overhead beyond the nil check.
type Tracer interface {
	OnStep(TraceRecord)
}

// TraceRecord captures the state of one interpreter step, matching the
// structured trace format external tooling expects to consume. The
// interpreter fills PC, Op, Name, Depth, GasLeft and GasCost; GasUsed,
// GasBack, Stack, Memory and Extra are left at their zero values.
type TraceRecord struct {
	PC       int
	Op       opcodes.OpCode
	Name     string
	Depth    int
	GasUsed  Gas
	GasLeft  Gas
	GasCost  Gas
	GasBack  Gas
	Stack    []Word
	Memory   []byte
	Extra    string
}
