// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package precompiles

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solenoid-evm/solenoid/tosca"
)

func TestRun_ZeroAddress_NotAPrecompile(t *testing.T) {
	_, _, success := Run(tosca.Address{}, nil, 1000, tosca.R13_Cancun)
	require.True(t, success)
	require.False(t, IsPrecompile(tosca.Address{}, tosca.R13_Cancun))
}

func TestRun_SHA256_ChargesGasAndProducesOutput(t *testing.T) {
	addr := tosca.Address{19: 2}
	require.True(t, IsPrecompile(addr, tosca.R13_Cancun))

	output, gasLeft, success := Run(addr, []byte("hello"), 1000, tosca.R13_Cancun)
	require.True(t, success)
	require.Len(t, output, 32)
	require.Less(t, int64(gasLeft), int64(1000))
}

func TestRun_InsufficientGas_Fails(t *testing.T) {
	addr := tosca.Address{19: 2}
	_, gasLeft, success := Run(addr, []byte("hello"), 1, tosca.R13_Cancun)
	require.False(t, success)
	require.Zero(t, gasLeft)
}

func TestRun_KZGPointEvaluation_RejectsInvalidProof(t *testing.T) {
	addr := tosca.Address{19: 10}
	require.True(t, IsPrecompile(addr, tosca.R13_Cancun))

	// an all-zero input is not a valid versioned-hash/commitment/proof
	// triple, so the real go-ethereum precompile rejects it; the fixed
	// RequiredGas cost is still charged, matching reference-client
	// behavior for a failed precompile call.
	_, gasLeft, success := Run(addr, make([]byte, 192), 1_000_000, tosca.R13_Cancun)
	require.False(t, success)
	require.Less(t, int64(gasLeft), int64(1_000_000))
}

func TestIsPrecompile_KZGAbsentBeforeCancun(t *testing.T) {
	require.False(t, IsPrecompile(tosca.Address{19: 10}, tosca.R10_London))
}
