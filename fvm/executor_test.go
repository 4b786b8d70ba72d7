package fvm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/fvm"
	"github.com/servicechain/executor/fvm/errors"
	"github.com/servicechain/executor/fvm/meter"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/asset"
	"github.com/servicechain/executor/services/common"
	"github.com/servicechain/executor/services/timestamp"
	"github.com/servicechain/executor/utils/unittest"
)

func transfer(
	h *unittest.ExecutionHarness,
	from types.Address,
	to types.Address,
	value uint64,
	opts ...unittest.TransactionOption,
) types.SignedTransaction {
	return h.Tx(
		from,
		asset.ServiceName,
		"transfer",
		asset.TransferPayload{
			AssetID: unittest.NativeAssetID,
			To:      to,
			Value:   value,
		},
		opts...)
}

func eventTopics(receipt types.Receipt) []string {
	topics := make([]string, 0, len(receipt.Events))
	for _, event := range receipt.Events {
		topics = append(topics, event.Topic)
	}
	return topics
}

func TestExec_Transfer(t *testing.T) {
	a := unittest.AddressFixture()
	b := unittest.AddressFixture()
	h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, a, 1000), nil)
	genesisRoot := h.Root

	tx := transfer(h, a, b, 100, unittest.WithCycles(100, 1))
	resp := h.ExecBlock(tx)

	require.Len(t, resp.Receipts, 1)
	receipt := resp.Receipts[0]
	require.False(t, receipt.Failed(), receipt.Response.String())
	assert.Equal(t, uint64(10), receipt.CyclesUsed)
	assert.Equal(t, uint64(10), resp.AllCyclesUsed)
	assert.Equal(t, tx.TxHash, receipt.TxHash)
	assert.Equal(t, uint64(1), receipt.Height)
	assert.Equal(t, resp.StateRoot, receipt.StateRoot)
	assert.Equal(t, []string{"transfer", "transfer_fee"}, eventTopics(receipt))
	assert.Empty(t, resp.SkippedTransactions)
	assert.NotEqual(t, types.Hash(genesisRoot), resp.StateRoot)

	assert.Equal(t, uint64(890), h.NativeBalance(a))
	assert.Equal(t, uint64(100), h.NativeBalance(b))
	assert.Equal(t, uint64(10), h.NativeBalance(h.Proposer))

	// the previous root is left untouched
	h.Root = genesisRoot
	assert.Equal(t, uint64(1000), h.NativeBalance(a))
}

func TestExec_CyclesWeights(t *testing.T) {
	a := unittest.AddressFixture()
	b := unittest.AddressFixture()
	h := unittest.NewExecutionHarness(
		t,
		unittest.GenesisFixture(t, a, 1000),
		nil,
		fvm.WithCyclesWeights(meter.ExecutionWeights{
			meter.ComputationKindEmitEvent: 5,
		}))

	resp := h.ExecBlock(transfer(h, a, b, 100, unittest.WithCycles(100, 1)))

	require.Len(t, resp.Receipts, 1)
	receipt := resp.Receipts[0]
	require.False(t, receipt.Failed(), receipt.Response.String())
	// the transfer event weighs 5 instead of 1
	assert.Equal(t, uint64(14), receipt.CyclesUsed)
	assert.Equal(t, uint64(14), h.NativeBalance(h.Proposer))
}

func TestExec_CyclesExhausted(t *testing.T) {
	a := unittest.AddressFixture()
	b := unittest.AddressFixture()
	h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, a, 1000), nil)

	// the first balance write would be the 9th cycle
	resp := h.ExecBlock(transfer(h, a, b, 100, unittest.WithCycles(6, 1)))

	require.Len(t, resp.Receipts, 1)
	receipt := resp.Receipts[0]
	require.True(t, receipt.Failed())
	assert.Equal(t, uint64(errors.ErrCodeCyclesExhaustedError), receipt.Response.Code)
	assert.Equal(t, uint64(6), receipt.CyclesUsed)
	assert.Equal(t, []string{"transfer_fee"}, eventTopics(receipt))

	assert.Equal(t, uint64(994), h.NativeBalance(a))
	assert.Equal(t, uint64(0), h.NativeBalance(b))
	assert.Equal(t, uint64(6), h.NativeBalance(h.Proposer))
}

func TestExec_ServiceErrorRevertsBody(t *testing.T) {
	a := unittest.AddressFixture()
	b := unittest.AddressFixture()
	h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, a, 1000), nil)

	// transfers more than the balance after the first one
	resp := h.ExecBlock(
		transfer(h, a, b, 600),
		transfer(h, a, b, 600))

	require.Len(t, resp.Receipts, 2)
	assert.False(t, resp.Receipts[0].Failed())

	failed := resp.Receipts[1]
	require.True(t, failed.Failed())
	assert.Equal(t, common.CodeInsufficientBalance, failed.Response.Code)
	assert.Equal(t, []string{"transfer_fee"}, eventTopics(failed))
	// invoke and 2 balance reads, plus the asset read
	assert.Equal(t, uint64(7), failed.CyclesUsed)

	assert.Equal(t, uint64(1000-600-10-7), h.NativeBalance(a))
	assert.Equal(t, uint64(600), h.NativeBalance(b))
	assert.Equal(t, uint64(17), h.NativeBalance(h.Proposer))
}

func TestExec_InsufficientPayerBalance(t *testing.T) {
	a := unittest.AddressFixture()
	poor := unittest.AddressFixture()
	h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, a, 1000), nil)

	resp := h.ExecBlock(transfer(h, poor, a, 0, unittest.WithCycles(100, 1)))

	require.Len(t, resp.Receipts, 1)
	receipt := resp.Receipts[0]
	require.True(t, receipt.Failed())
	assert.Equal(t, uint64(errors.ErrCodeInsufficientPayerBalance), receipt.Response.Code)
	assert.Equal(t, uint64(0), receipt.CyclesUsed)
	assert.Empty(t, receipt.Events)
	assert.Equal(t, uint64(0), h.NativeBalance(h.Proposer))
}

func TestExec_FeeDeductionFailure(t *testing.T) {
	a := unittest.AddressFixture()
	b := unittest.AddressFixture()
	h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, a, 105), nil)

	// the transfer leaves 5, less than its fee of 10
	resp := h.ExecBlock(transfer(h, a, b, 100, unittest.WithCycles(100, 1)))

	require.Len(t, resp.Receipts, 1)
	receipt := resp.Receipts[0]
	require.True(t, receipt.Failed())
	assert.Equal(t, uint64(errors.ErrCodeTransactionFeeDeductionFailedError), receipt.Response.Code)
	assert.Equal(t, []string{"transfer_fee"}, eventTopics(receipt))

	assert.Equal(t, uint64(95), h.NativeBalance(a))
	assert.Equal(t, uint64(0), h.NativeBalance(b))
	assert.Equal(t, uint64(10), h.NativeBalance(h.Proposer))
}

func TestExec_SkipsTransactionsAboveBlockLimit(t *testing.T) {
	a := unittest.AddressFixture()
	b := unittest.AddressFixture()
	h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, a, 1000), nil)
	h.BlockCycles = 105

	first := transfer(h, a, b, 1, unittest.WithCycles(100, 1))
	second := transfer(h, a, b, 1, unittest.WithCycles(100, 1))
	third := transfer(h, a, b, 1, unittest.WithCycles(10, 1))
	resp := h.ExecBlock(first, second, third)

	// the second does not fit the 95 cycles left, the third is never tried
	require.Len(t, resp.Receipts, 1)
	assert.Equal(t, first.TxHash, resp.Receipts[0].TxHash)
	assert.Equal(t, []types.Hash{second.TxHash, third.TxHash}, resp.SkippedTransactions)

	assert.Equal(t, uint64(1000-1-10), h.NativeBalance(a))
	assert.Equal(t, uint64(1), h.NativeBalance(b))
}

func TestExec_Failures(t *testing.T) {
	a := unittest.AddressFixture()

	t.Run("unknown root service", func(t *testing.T) {
		h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, a, 1000), nil)

		_, err := h.Executor.Exec(
			context.Background(),
			h.NextParams(),
			[]types.SignedTransaction{
				transfer(h, a, a, 1),
				h.Tx(a, "unknown", "method", ""),
			})
		require.Error(t, err)
		assert.True(t, errors.IsUnknownServiceFailure(err))
		assert.True(t, errors.IsFailure(err))
	})

	t.Run("unknown state root", func(t *testing.T) {
		h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, a, 1000), nil)

		params := h.NextParams()
		params.StateRoot = unittest.HashFixture()
		_, err := h.Executor.Exec(context.Background(), params, nil)
		require.Error(t, err)
		assert.True(t, errors.IsStateNotFoundFailure(err))

		_, err = h.Executor.Read(
			context.Background(),
			params,
			a,
			1,
			types.TransactionRequest{ServiceName: asset.ServiceName, Method: "get_native_asset"})
		require.Error(t, err)
		assert.True(t, errors.IsStateNotFoundFailure(err))
	})
}

func TestExec_EmptyBlock(t *testing.T) {
	a := unittest.AddressFixture()
	h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, a, 1000), nil)

	resp := h.ExecBlock()
	assert.Empty(t, resp.Receipts)
	assert.Equal(t, uint64(0), resp.AllCyclesUsed)
	assert.Equal(t, types.Bloom{}, resp.LogsBloom)
}

func TestExec_BlockHooks(t *testing.T) {
	a := unittest.AddressFixture()
	h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, a, 1000), nil)

	var now timestamp.TimestampResponse
	h.ReadInto(a, timestamp.ServiceName, "get_timestamp", "", &now)
	assert.Equal(t, uint64(unittest.GenesisTimestamp), now.Timestamp)

	genesisRoot := h.Root
	resp := h.ExecBlock()
	h.ReadInto(a, timestamp.ServiceName, "get_timestamp", "", &now)
	assert.Equal(t, h.Timestamp, now.Timestamp)

	// hook writes are part of the block, hook events are not
	assert.NotEqual(t, types.Hash(genesisRoot), resp.StateRoot)
	assert.Empty(t, resp.Receipts)
	assert.Equal(t, types.Bloom{}, resp.LogsBloom)
}

func TestExec_FeesDisabled(t *testing.T) {
	a := unittest.AddressFixture()
	b := unittest.AddressFixture()
	h := unittest.NewExecutionHarness(
		t,
		unittest.GenesisFixture(t, a, 1000),
		nil,
		fvm.WithTransactionFeesEnabled(false))

	resp := h.ExecBlock(transfer(h, a, b, 100))
	unittest.RequireSuccess(t, resp)
	assert.Equal(t, uint64(10), resp.Receipts[0].CyclesUsed)
	assert.Equal(t, []string{"transfer"}, eventTopics(resp.Receipts[0]))

	assert.Equal(t, uint64(900), h.NativeBalance(a))
	assert.Equal(t, uint64(0), h.NativeBalance(h.Proposer))
}
