// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package gas

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solenoid-evm/solenoid/tosca"
)

func TestSStore_NoopWrite_ChargesSloadOnly(t *testing.T) {
	var zero, one tosca.Word = tosca.NewWord(0), tosca.NewWord(1)
	cost, refund := SStore(zero, one, one, true, tosca.R09_Berlin)
	require.Equal(t, tosca.Gas(100), cost) // WarmStorageReadCostEIP2929
	require.Equal(t, tosca.Gas(0), refund)
}

func TestSStore_FreshSet_ChargesSetGas(t *testing.T) {
	var zero, one tosca.Word = tosca.NewWord(0), tosca.NewWord(1)
	cost, refund := SStore(zero, zero, one, true, tosca.R09_Berlin)
	require.Equal(t, tosca.Gas(20000), cost)
	require.Equal(t, tosca.Gas(0), refund)
}

func TestSStore_ClearExistingSlot_GrantsRefund(t *testing.T) {
	var zero, one tosca.Word = tosca.NewWord(0), tosca.NewWord(1)
	cost, refund := SStore(one, one, zero, true, tosca.R10_London)
	require.Equal(t, tosca.Gas(2900), cost)
	require.Equal(t, tosca.Gas(4800), refund) // EIP-3529 clear refund
}

func TestSStore_RestoreToOriginal_RefundsResetCostLessSload(t *testing.T) {
	one := tosca.NewWord(1)
	// original == current == 1, set to 2, then back to 1 within the same tx.
	two := tosca.NewWord(2)
	_, _ = SStore(one, one, two, true, tosca.R10_London)
	cost, refund := SStore(one, two, one, true, tosca.R10_London)
	require.Equal(t, tosca.Gas(100), cost)
	require.Equal(t, tosca.Gas(2900-100), refund)
}

func TestMemoryExpansionCost_IsQuadratic(t *testing.T) {
	require.Equal(t, tosca.Gas(0), MemoryExpansionCost(0))
	small := MemoryExpansionCost(1)
	large := MemoryExpansionCost(1000)
	require.Greater(t, int64(large), int64(small)*10)
}

func TestCallCost_ColdAccountAndNewAccountSurcharges(t *testing.T) {
	warm := CallCost(true, tosca.R09_Berlin, false, false)
	cold := CallCost(false, tosca.R09_Berlin, false, false)
	require.Greater(t, int64(cold), int64(warm))

	withNewAccount := CallCost(true, tosca.R09_Berlin, true, true)
	require.Greater(t, int64(withNewAccount), int64(warm))
}

func TestForwardableGas_Is63Of64ths(t *testing.T) {
	got := ForwardableGas(6400)
	require.Equal(t, tosca.Gas(6400-6400/64), got)
}

func TestIntrinsicGas_ContractCreationIsMoreExpensiveThanCall(t *testing.T) {
	callGas, err := IntrinsicGas(false, nil, 0, 0, 0, tosca.R13_Cancun)
	require.NoError(t, err)
	createGas, err := IntrinsicGas(true, nil, 0, 0, 0, tosca.R13_Cancun)
	require.NoError(t, err)
	require.Greater(t, int64(createGas), int64(callGas))
}

func TestIntrinsicGas_AccessListAndAuthorizationListAreCharged(t *testing.T) {
	base, err := IntrinsicGas(false, nil, 0, 0, 0, tosca.R13_Cancun)
	require.NoError(t, err)
	withExtras, err := IntrinsicGas(false, nil, 2, 3, 1, tosca.R13_Cancun)
	require.NoError(t, err)
	require.Greater(t, int64(withExtras), int64(base))
}

func TestRefundCap_QuotientChangesAtLondon(t *testing.T) {
	require.Equal(t, tosca.Gas(50), RefundCap(100, tosca.R09_Berlin))
	require.Equal(t, tosca.Gas(20), RefundCap(100, tosca.R10_London))
}

func TestCodeDepositCost_IsPerByte(t *testing.T) {
	require.Equal(t, tosca.Gas(0), CodeDepositCost(0))
	require.Equal(t, tosca.Gas(200), CodeDepositCost(1))
}
