package fvm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelTrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"

	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/errors"
	"github.com/servicechain/executor/fvm/meter"
	"github.com/servicechain/executor/fvm/registry"
	"github.com/servicechain/executor/fvm/storage/snapshot"
	"github.com/servicechain/executor/fvm/storage/state"
	"github.com/servicechain/executor/ledger"
	"github.com/servicechain/executor/module"
	"github.com/servicechain/executor/module/trace"
	"github.com/servicechain/executor/model/types"
)

// ServiceExecutor applies ordered batches of transactions to the ledger
// and answers read-only queries against any retained state root.
//
// A single Exec may run at a time. Reads may run concurrently with each
// other and with Exec.
type ServiceExecutor struct {
	ctx     Context
	ledger  ledger.Ledger
	mapping registry.ServiceMapping

	executing *atomic.Bool
}

func NewServiceExecutor(
	l ledger.Ledger,
	mapping registry.ServiceMapping,
	opts ...Option,
) *ServiceExecutor {
	return &ServiceExecutor{
		ctx:       NewContext(opts...),
		ledger:    l,
		mapping:   mapping,
		executing: atomic.NewBool(false),
	}
}

func (executor *ServiceExecutor) Context() Context {
	return executor.ctx
}

// session is the execution state of one genesis, block or read: a
// transaction state on top of a ledger root, the environment shared by all
// service SDK handles, and the service graph built on it.
type session struct {
	root     ledger.State
	txnState *state.TransactionState
	env      *environment.Environment
	factory  *registry.Factory
}

func (executor *ServiceExecutor) newSession(
	root ledger.State,
	block environment.BlockInfo,
	readOnly bool,
) *session {
	txnState := state.NewTransactionState(
		snapshot.NewLedgerSnapshot(executor.ledger, root),
		executor.ctx.stateParameters())

	env := environment.NewEnvironment(
		environment.EnvironmentParams{
			Logger:   executor.ctx.Logger,
			Block:    block,
			ReadOnly: readOnly,
		},
		txnState)

	factory := registry.NewFactory(executor.mapping, env)
	env.SetServiceResolver(factory)

	return &session{
		root:     root,
		txnState: txnState,
		env:      env,
		factory:  factory,
	}
}

func (executor *ServiceExecutor) checkState(root ledger.State) error {
	if !executor.ledger.HasState(root) {
		return errors.NewStateNotFoundFailure(ledger.NewErrStateNotFound(root))
	}
	return nil
}

// feeCollector returns the fee collecting service of the session, or nil if
// fees are disabled or the mapping has no such service.
func (executor *ServiceExecutor) feeCollector(
	sess *session,
) (
	registry.FeeCollector,
	error,
) {
	if !executor.ctx.TransactionFeesEnabled {
		return nil, nil
	}

	registered := false
	for _, name := range executor.mapping.ListServiceName() {
		if name == executor.ctx.FeeService {
			registered = true
			break
		}
	}
	if !registered {
		executor.ctx.Logger.Warn().
			Str("fee_service", executor.ctx.FeeService).
			Msg("fee service is not registered, transaction fees are skipped")
		return nil, nil
	}

	service, err := sess.factory.Get(executor.ctx.FeeService)
	if err != nil {
		return nil, err
	}

	collector, ok := service.(registry.FeeCollector)
	if !ok {
		executor.ctx.Logger.Warn().
			Str("fee_service", executor.ctx.FeeService).
			Msg("fee service does not collect fees, transaction fees are skipped")
		return nil, nil
	}
	return collector, nil
}

// Exec executes the transactions in order on params.StateRoot and commits
// the resulting state. Transaction errors are recorded in the receipts; the
// returned error is always a failure, in which case nothing is committed.
func (executor *ServiceExecutor) Exec(
	ctx context.Context,
	params types.ExecutorParams,
	txs []types.SignedTransaction,
) (
	*types.ExecutorResp,
	error,
) {
	if !executor.executing.CompareAndSwap(false, true) {
		return nil, errors.NewConcurrentExecutionFailure()
	}
	defer executor.executing.Store(false)

	span, _ := executor.ctx.startSpan(ctx, trace.EXEExecuteBlock)
	span.SetAttributes(
		attribute.Int64("height", int64(params.Height)),
		attribute.Int("transactions", len(txs)))
	defer span.End()

	log := executor.ctx.Logger.With().
		Uint64("height", params.Height).
		Str("state_root", params.StateRoot.Hex()).
		Logger()

	start := time.Now()
	resp, stats, err := executor.execBlock(span, params, txs)
	if err != nil {
		log.Err(err).Msg("failed to execute block")
		return nil, err
	}

	executor.ctx.Metrics.ExecutionBlockExecuted(time.Since(start), stats)
	executor.ctx.Metrics.ExecutionLastExecutedBlockHeight(params.Height)

	log.Info().
		Str("new_state_root", resp.StateRoot.Hex()).
		Int("receipts", len(resp.Receipts)).
		Int("skipped", len(resp.SkippedTransactions)).
		Uint64("cycles_used", resp.AllCyclesUsed).
		Dur("duration", time.Since(start)).
		Msg("block executed")

	return resp, nil
}

func (executor *ServiceExecutor) execBlock(
	span otelTrace.Span,
	params types.ExecutorParams,
	txs []types.SignedTransaction,
) (
	*types.ExecutorResp,
	module.ExecutionResultStats,
	error,
) {
	stats := module.ExecutionResultStats{}

	root := ledger.State(params.StateRoot)
	if err := executor.checkState(root); err != nil {
		return nil, stats, err
	}

	sess := executor.newSession(
		root,
		environment.BlockInfoFromParams(params),
		false)

	services, err := executor.buildServiceGraph(span, sess)
	if err != nil {
		return nil, stats, err
	}

	feeCollector, err := executor.feeCollector(sess)
	if err != nil {
		return nil, stats, err
	}

	err = executor.runBlockHooks(span, sess, services, params, hookBefore)
	if err != nil {
		return nil, stats, err
	}

	blockMeter := meter.NewBlockMeter(
		params.CyclesLimit,
		meter.WithComputationWeights(executor.ctx.CyclesWeights))
	intensities := make(meter.MeteredComputationIntensities)

	resp := &types.ExecutorResp{
		Receipts: make([]types.Receipt, 0, len(txs)),
	}
	for i, tx := range txs {
		if !blockMeter.Admit(tx.Raw.CyclesLimit) {
			for _, skipped := range txs[i:] {
				resp.SkippedTransactions = append(resp.SkippedTransactions, skipped.TxHash)
				executor.ctx.Metrics.ExecutionTransactionSkipped()
			}
			executor.ctx.Logger.Info().
				Uint64("height", params.Height).
				Int("tx_index", i).
				Uint64("remaining_cycles", blockMeter.Remaining()).
				Int("skipped", len(txs)-i).
				Msg("block cycles limit reached, skipping remaining transactions")
			break
		}

		txExecutor := newTransactionExecutor(
			executor.ctx,
			sess,
			feeCollector,
			blockMeter,
			params,
			i,
			tx,
			span)
		output, err := txExecutor.Execute()
		if err != nil {
			return nil, stats, err
		}

		for kind, intensity := range output.ComputationIntensities {
			intensities[kind] += intensity
		}

		resp.Receipts = append(resp.Receipts, output.Receipt)
		resp.AllCyclesUsed += output.Receipt.CyclesUsed
		stats.EventCounts += len(output.Receipt.Events)
		if output.Receipt.Failed() {
			stats.NumberOfFailedTransactions++
		}
	}

	err = executor.runBlockHooks(span, sess, services, params, hookAfter)
	if err != nil {
		return nil, stats, err
	}

	newRoot, executionSnapshot, err := executor.commitBlockState(span, sess)
	if err != nil {
		return nil, stats, err
	}

	resp.StateRoot = types.Hash(newRoot)
	for i := range resp.Receipts {
		resp.Receipts[i].StateRoot = resp.StateRoot
		types.AddEventsToBloom(&resp.LogsBloom, resp.Receipts[i].Events)
	}

	for kind, intensity := range intensities {
		executor.ctx.Metrics.ExecutionBlockCyclesVectorComponent(kind.String(), intensity)
	}

	stats.CyclesUsed = resp.AllCyclesUsed
	stats.NumberOfTransactions = len(resp.Receipts)
	stats.NumberOfSkippedTransactions = len(resp.SkippedTransactions)
	stats.NumberOfRegistersTouched = len(executionSnapshot.AllRegisterIDs())
	for _, entry := range executionSnapshot.UpdatedRegisters() {
		stats.NumberOfBytesWrittenToRegisters += entry.Key.Size() + entry.Value.Size()
	}

	return resp, stats, nil
}

// buildServiceGraph constructs every service of the mapping, dependencies
// first.
func (executor *ServiceExecutor) buildServiceGraph(
	parent otelTrace.Span,
	sess *session,
) (
	[]registry.Service,
	error,
) {
	span := executor.ctx.startChildSpan(parent, trace.EXEResolveServiceGraph)
	defer span.End()

	services, err := sess.factory.GetAll()
	if err != nil {
		return nil, err
	}

	for _, service := range services {
		executor.ctx.Metrics.ExecutionServiceConstructed(service.Name())
	}
	span.SetAttributes(attribute.Int("services", len(services)))
	return services, nil
}

type hookKind string

const (
	hookBefore hookKind = "hook_before"
	hookAfter  hookKind = "hook_after"
)

// runBlockHooks runs the given hook of every service implementing
// registry.BlockHook, in mapping order and unmetered. Events emitted by
// hooks are not part of any receipt.
func (executor *ServiceExecutor) runBlockHooks(
	parent otelTrace.Span,
	sess *session,
	services []registry.Service,
	params types.ExecutorParams,
	kind hookKind,
) error {
	span := executor.ctx.startChildSpan(parent, trace.EXERunBlockHooks)
	span.SetAttributes(attribute.String("hook", string(kind)))
	defer span.End()

	for _, service := range services {
		hook, ok := service.(registry.BlockHook)
		if !ok {
			continue
		}

		sess.env.BeginTransaction(environment.TransactionInfo{})

		var err error
		sess.txnState.RunWithAllLimitsDisabled(func() {
			err = sess.env.RunAs(service.Name(), func() error {
				if kind == hookBefore {
					return hook.HookBefore(params)
				}
				return hook.HookAfter(params)
			})
		})
		if err != nil {
			return errors.NewBlockHookFailure(service.Name(), string(kind), err)
		}
	}

	sess.env.Reset()
	return nil
}

// commitBlockState finalizes the session state and commits its write set
// as a single ledger update.
func (executor *ServiceExecutor) commitBlockState(
	parent otelTrace.Span,
	sess *session,
) (
	ledger.State,
	*snapshot.ExecutionSnapshot,
	error,
) {
	span := executor.ctx.startChildSpan(parent, trace.EXECommitBlockState)
	defer span.End()

	executionSnapshot, err := sess.txnState.FinalizeMainTransaction()
	if err != nil {
		return ledger.DummyState, nil, errors.NewStateMergeFailure(err)
	}

	update, err := executionSnapshot.Update(sess.root)
	if err != nil {
		return ledger.DummyState, nil, errors.NewLedgerFailure(err)
	}

	newRoot, err := executor.ledger.Set(update)
	if err != nil {
		if ledger.IsStateNotFound(err) {
			return ledger.DummyState, nil, errors.NewStateNotFoundFailure(err)
		}
		return ledger.DummyState, nil, errors.NewLedgerFailure(err)
	}

	span.SetAttributes(attribute.Int("registers", update.Size()))
	return newRoot, executionSnapshot, nil
}
