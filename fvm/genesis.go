package fvm

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/errors"
	"github.com/servicechain/executor/fvm/registry"
	"github.com/servicechain/executor/ledger"
	"github.com/servicechain/executor/module/trace"
	"github.com/servicechain/executor/model/types"
)

// CreateGenesis initializes the services listed by the genesis, in order,
// on the empty state of the ledger and commits the result once.
func CreateGenesis(
	ctx context.Context,
	genesis *types.Genesis,
	l ledger.Ledger,
	mapping registry.ServiceMapping,
	opts ...Option,
) (
	ledger.State,
	error,
) {
	return NewServiceExecutor(l, mapping, opts...).CreateGenesis(ctx, genesis)
}

// CreateGenesis runs InitGenesis of every service listed by the genesis,
// unmetered. Any error is a GenesisServiceFailure and nothing is committed.
func (executor *ServiceExecutor) CreateGenesis(
	ctx context.Context,
	genesis *types.Genesis,
) (
	ledger.State,
	error,
) {
	if !executor.executing.CompareAndSwap(false, true) {
		return ledger.DummyState, errors.NewConcurrentExecutionFailure()
	}
	defer executor.executing.Store(false)

	span, _ := executor.ctx.startSpan(ctx, trace.EXECreateGenesis)
	defer span.End()

	if genesis == nil {
		return ledger.DummyState, errors.NewGenesisServiceFailure(
			"",
			fmt.Errorf("no genesis"))
	}
	span.SetAttributes(attribute.Int("services", len(genesis.Services)))

	start := time.Now()
	sess := executor.newSession(
		executor.ledger.InitialState(),
		environment.BlockInfo{
			Height:    0,
			Timestamp: genesis.Timestamp,
		},
		false)

	for _, param := range genesis.Services {
		err := executor.initGenesis(sess, param)
		if err != nil {
			executor.ctx.Logger.Err(err).
				Str("service", param.Name).
				Msg("failed to initialize genesis")
			return ledger.DummyState, errors.NewGenesisServiceFailure(param.Name, err)
		}
	}

	root, _, err := executor.commitBlockState(span, sess)
	if err != nil {
		return ledger.DummyState, err
	}

	executor.ctx.Metrics.ExecutionGenesisCreated(time.Since(start), len(genesis.Services))
	executor.ctx.Logger.Info().
		Str("state_root", root.String()).
		Int("services", len(genesis.Services)).
		Msg("genesis created")

	return root, nil
}

func (executor *ServiceExecutor) initGenesis(
	sess *session,
	param types.ServiceParam,
) error {
	service, err := sess.factory.Get(param.Name)
	if err != nil {
		return err
	}

	genesisService, ok := service.(registry.Genesis)
	if !ok {
		return fmt.Errorf("service %s does not accept a genesis payload", param.Name)
	}

	sess.env.BeginTransaction(environment.TransactionInfo{})
	sess.txnState.RunWithAllLimitsDisabled(func() {
		err = sess.env.RunAs(param.Name, func() error {
			return genesisService.InitGenesis(param.Payload)
		})
	})
	return err
}
