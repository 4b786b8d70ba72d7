package fvm_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/fvm"
	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/errors"
	"github.com/servicechain/executor/fvm/registry"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/utils/unittest"
)

// blockingService holds its write method until released.
type blockingService struct {
	started chan struct{}
	release chan struct{}
}

func (s *blockingService) Name() string {
	return "blocking"
}

func (s *blockingService) Methods() []environment.Method {
	return []environment.Method{
		{
			Name:   "wait",
			Kind:   environment.MethodKindWrite,
			Cycles: 1,
			Handler: func(string) types.ServiceResponse {
				close(s.started)
				<-s.release
				return types.NewSuccessResponse("")
			},
		},
		{
			Name:   "peek",
			Kind:   environment.MethodKindRead,
			Cycles: 1,
			Handler: func(string) types.ServiceResponse {
				return types.NewSuccessResponse("ok")
			},
		},
	}
}

func TestExec_RejectsConcurrentExecution(t *testing.T) {
	service := &blockingService{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	mapping := registry.NewRegistry().MustRegister(
		service.Name(),
		nil,
		func(environment.ServiceSDK, registry.Dependencies) (registry.Service, error) {
			return service, nil
		})

	genesis := &types.Genesis{Timestamp: unittest.GenesisTimestamp}
	h := unittest.NewExecutionHarness(t, genesis, mapping, fvm.WithTransactionFeesEnabled(false))
	params := h.NextParams()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		resp, err := h.Executor.Exec(
			context.Background(),
			params,
			[]types.SignedTransaction{h.Tx(unittest.AddressFixture(), service.Name(), "wait", "")})
		assert.NoError(t, err)
		if assert.NotNil(t, resp) && assert.Len(t, resp.Receipts, 1) {
			assert.False(t, resp.Receipts[0].Failed())
		}
	}()

	unittest.RequireReturnsBefore(t, func() { <-service.started }, 5*time.Second)

	_, err := h.Executor.Exec(context.Background(), params, nil)
	require.Error(t, err)
	assert.True(t, errors.IsConcurrentExecutionFailure(err))

	_, err = h.Executor.CreateGenesis(context.Background(), genesis)
	require.Error(t, err)
	assert.True(t, errors.IsConcurrentExecutionFailure(err))

	// reads do not wait for the running block
	response := h.Read(unittest.AddressFixture(), service.Name(), "peek", "")
	assert.Equal(t, "ok", response.SucceedData)

	close(service.release)
	unittest.RequireReturnsBefore(t, wg.Wait, 5*time.Second)

	// the executor is free again
	_, err = h.Executor.Exec(context.Background(), params, nil)
	require.NoError(t, err)
}
