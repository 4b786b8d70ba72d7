package fvm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/fvm"
	"github.com/servicechain/executor/fvm/errors"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/asset"
	"github.com/servicechain/executor/services/common"
	"github.com/servicechain/executor/utils/unittest"
)

func balanceRequest(t *testing.T, user types.Address) types.TransactionRequest {
	return types.TransactionRequest{
		ServiceName: asset.ServiceName,
		Method:      "get_balance",
		Payload: unittest.Encode(t, asset.GetBalancePayload{
			AssetID: unittest.NativeAssetID,
			User:    user,
		}),
	}
}

func TestRead(t *testing.T) {
	a := unittest.AddressFixture()
	h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, a, 1000), nil)

	t.Run("returns the service response", func(t *testing.T) {
		var balance asset.GetBalanceResponse
		h.ReadInto(a, asset.ServiceName, "get_balance", asset.GetBalancePayload{
			AssetID: unittest.NativeAssetID,
			User:    a,
		}, &balance)
		assert.Equal(t, uint64(1000), balance.Balance)
	})

	t.Run("write methods are rejected", func(t *testing.T) {
		response := h.Read(a, asset.ServiceName, "transfer", asset.TransferPayload{
			AssetID: unittest.NativeAssetID,
			To:      unittest.AddressFixture(),
			Value:   1,
		})
		require.True(t, response.IsError())
		assert.Equal(t, uint64(errors.ErrCodeWriteInReadContextError), response.Code)
		assert.Equal(t, uint64(1000), h.NativeBalance(a))
	})

	t.Run("unknown methods are errors", func(t *testing.T) {
		response := h.Read(a, asset.ServiceName, "no_such_method", "")
		require.True(t, response.IsError())
		assert.Equal(t, uint64(errors.ErrCodeMethodNotFoundError), response.Code)
	})

	t.Run("invalid payloads are errors", func(t *testing.T) {
		response := h.Read(a, asset.ServiceName, "get_balance", "{")
		require.True(t, response.IsError())
		assert.Equal(t, uint64(errors.ErrCodeInvalidPayloadError), response.Code)
	})

	t.Run("reads are metered", func(t *testing.T) {
		params := h.NextParams()
		params.StateRoot = types.Hash(h.Root)
		params.CyclesLimit = 1

		response, err := h.Executor.Read(context.Background(), params, a, h.Height, balanceRequest(t, a))
		require.NoError(t, err)
		require.True(t, response.IsError())
		assert.Equal(t, uint64(errors.ErrCodeCyclesExhaustedError), response.Code)
	})

	t.Run("unknown services are failures", func(t *testing.T) {
		params := h.NextParams()
		params.StateRoot = types.Hash(h.Root)

		_, err := h.Executor.Read(
			context.Background(),
			params,
			a,
			h.Height,
			types.TransactionRequest{ServiceName: "unknown", Method: "get"})
		require.Error(t, err)
		assert.True(t, errors.IsUnknownServiceFailure(err))
	})
}

func TestReadBatch(t *testing.T) {
	users := unittest.AddressListFixture(8)
	h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, users[0], 1000), nil)

	txs := make([]types.SignedTransaction, 0, len(users)-1)
	for i, user := range users[1:] {
		txs = append(txs, transfer(h, users[0], user, uint64(i+1)))
	}
	unittest.RequireSuccess(t, h.ExecBlock(txs...))

	requests := make([]types.TransactionRequest, 0, len(users))
	for _, user := range users {
		requests = append(requests, balanceRequest(t, user))
	}

	params := h.NextParams()
	params.StateRoot = types.Hash(h.Root)
	root := h.Root

	for _, concurrency := range []int{0, 1, 3, fvm.DefaultReadConcurrency * 4} {
		responses, err := h.Executor.ReadBatch(
			context.Background(),
			params,
			users[0],
			h.Height,
			requests,
			concurrency)
		require.NoError(t, err)
		require.Len(t, responses, len(users))

		for i, response := range responses {
			var balance asset.GetBalanceResponse
			require.NoError(t, common.DecodeResponse(response, &balance))
			assert.Equal(t, users[i], balance.User)
			if i > 0 {
				assert.Equal(t, uint64(i), balance.Balance)
			}
		}
	}

	// reads never commit
	assert.Equal(t, root, h.Root)
	assert.True(t, h.Ledger.HasState(root))
}
