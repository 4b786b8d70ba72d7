package fvm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/errors"
	"github.com/servicechain/executor/ledger"
	"github.com/servicechain/executor/module/trace"
	"github.com/servicechain/executor/model/types"
)

// DefaultReadConcurrency is the number of reads ReadBatch runs in parallel
// when no concurrency is given.
const DefaultReadConcurrency = 4

// Read runs a read method at params.StateRoot, metered by
// params.CyclesLimit. Nothing is committed. Transaction errors, such as an
// attempt to write, are returned as error responses; the returned error is
// always a failure.
func (executor *ServiceExecutor) Read(
	ctx context.Context,
	params types.ExecutorParams,
	caller types.Address,
	height uint64,
	request types.TransactionRequest,
) (
	types.ServiceResponse,
	error,
) {
	span, _ := executor.ctx.startSpan(ctx, trace.EXEExecuteRead)
	span.SetAttributes(
		attribute.String("service", request.ServiceName),
		attribute.String("method", request.Method))
	defer span.End()

	log := executor.ctx.Logger.With().
		Str("state_root", params.StateRoot.Hex()).
		Str("service", request.ServiceName).
		Str("method", request.Method).
		Logger()

	start := time.Now()

	root := ledger.State(params.StateRoot)
	if err := executor.checkState(root); err != nil {
		return types.ServiceResponse{}, err
	}

	sess := executor.newSession(
		root,
		environment.BlockInfo{
			Height:    height,
			Timestamp: params.Timestamp,
			Proposer:  params.Proposer,
		},
		true)

	sess.env.BeginTransaction(environment.TransactionInfo{
		Caller:      caller,
		CyclesLimit: params.CyclesLimit,
	})

	_, err := sess.factory.Get(request.ServiceName)
	if err != nil {
		log.Err(err).Msg("failed to resolve read service")
		return types.ServiceResponse{}, err
	}

	_, _, err = sess.txnState.BeginNestedTransactionWithMeter(params.CyclesLimit)
	if err != nil {
		return types.ServiceResponse{}, errors.NewStateMergeFailure(err)
	}

	response, err := sess.env.InvokeRead(request)
	cyclesUsed := sess.txnState.TotalComputationUsed()
	if err != nil {
		txErr, failure := errors.SplitErrorTypes(err)
		if failure != nil {
			log.Err(err).Msg("fatal error when handling a read")
			return types.ServiceResponse{}, failure
		}
		response = types.NewErrorResponse(
			uint64(txErr.Code()),
			"%s",
			txErr.Error())
	}

	executor.ctx.Metrics.ExecutionReadExecuted(
		time.Since(start),
		cyclesUsed,
		response.IsError())
	span.SetAttributes(attribute.Int64("cycles_used", int64(cyclesUsed)))

	return response, nil
}

// ReadBatch runs the reads concurrently on the same immutable root, at most
// concurrency at a time. Responses are returned in request order.
func (executor *ServiceExecutor) ReadBatch(
	ctx context.Context,
	params types.ExecutorParams,
	caller types.Address,
	height uint64,
	requests []types.TransactionRequest,
	concurrency int,
) (
	[]types.ServiceResponse,
	error,
) {
	span, ctx := executor.ctx.startSpan(ctx, trace.EXEExecuteReadBatch)
	span.SetAttributes(attribute.Int("requests", len(requests)))
	defer span.End()

	if concurrency <= 0 {
		concurrency = DefaultReadConcurrency
	}

	root := ledger.State(params.StateRoot)
	if err := executor.checkState(root); err != nil {
		return nil, err
	}

	responses := make([]types.ServiceResponse, len(requests))

	group := errgroup.Group{}
	group.SetLimit(concurrency)
	for i, request := range requests {
		i, request := i, request
		group.Go(func() error {
			response, err := executor.Read(ctx, params, caller, height, request)
			if err != nil {
				return err
			}
			responses[i] = response
			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, err
	}
	return responses, nil
}
