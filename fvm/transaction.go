package fvm

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/errors"
	"github.com/servicechain/executor/fvm/meter"
	"github.com/servicechain/executor/fvm/registry"
	"github.com/servicechain/executor/fvm/storage/state"
	"github.com/servicechain/executor/module/trace"
	"github.com/servicechain/executor/model/types"
)

// TransactionOutput is the outcome of executing a single transaction.
type TransactionOutput struct {
	Receipt types.Receipt
	// Err is the transaction error recorded in the receipt, if any.
	Err errors.CodedError

	ComputationIntensities meter.MeteredComputationIntensities
}

type transactionExecutor struct {
	ctx          Context
	session      *session
	feeCollector registry.FeeCollector
	blockMeter   *meter.BlockMeter

	params types.ExecutorParams
	index  int
	tx     types.SignedTransaction

	span otelTrace.Span
	log  zerolog.Logger

	errs *errors.ErrorsCollector

	startedTransactionBodyExecution bool
	nestedTxnId                     state.NestedTransactionId

	response   types.ServiceResponse
	cyclesUsed uint64

	output TransactionOutput
}

func newTransactionExecutor(
	ctx Context,
	sess *session,
	feeCollector registry.FeeCollector,
	blockMeter *meter.BlockMeter,
	params types.ExecutorParams,
	index int,
	tx types.SignedTransaction,
	parent otelTrace.Span,
) *transactionExecutor {
	span := ctx.startChildSpan(parent, trace.EXEExecuteTransaction)
	span.SetAttributes(
		attribute.String("tx_hash", tx.TxHash.Hex()),
		attribute.Int("tx_index", index))

	log := ctx.Logger.With().
		Str("tx_hash", tx.TxHash.Hex()).
		Int("tx_index", index).
		Str("service", tx.Raw.Request.ServiceName).
		Str("method", tx.Raw.Request.Method).
		Logger()

	return &transactionExecutor{
		ctx:          ctx,
		session:      sess,
		feeCollector: feeCollector,
		blockMeter:   blockMeter,
		params:       params,
		index:        index,
		tx:           tx,
		span:         span,
		log:          log,
		errs:         errors.NewErrorsCollector(),
	}
}

func (executor *transactionExecutor) env() *environment.Environment {
	return executor.session.env
}

func (executor *transactionExecutor) txnState() *state.TransactionState {
	return executor.session.txnState
}

// Execute runs the transaction. It returns an error only on failures, in
// which case the whole block must be discarded.
func (executor *transactionExecutor) Execute() (TransactionOutput, error) {
	defer executor.span.End()

	start := time.Now()
	executor.env().BeginTransaction(
		environment.TransactionInfoFromTransaction(executor.tx))

	err := executor.handleError(executor.execute(), "executing")
	if err != nil {
		return TransactionOutput{}, err
	}

	executor.populateOutput()

	receipt := executor.output.Receipt
	executor.ctx.Metrics.ExecutionTransactionExecuted(
		time.Since(start),
		receipt.CyclesUsed,
		len(receipt.Events),
		receipt.Failed())
	executor.span.SetAttributes(
		attribute.Int64("cycles_used", int64(receipt.CyclesUsed)),
		attribute.Bool("failed", receipt.Failed()))

	return executor.output, nil
}

func (executor *transactionExecutor) handleError(
	err error,
	step string,
) error {
	txErr, failure := errors.SplitErrorTypes(err)
	if failure != nil {
		// log the full error path
		executor.log.Err(err).
			Str("step", step).
			Msg("fatal error when handling a transaction")
		return failure
	}

	if txErr != nil && executor.output.Err == nil {
		executor.output.Err = txErr
	}

	return nil
}

func (executor *transactionExecutor) execute() error {
	request := executor.tx.Raw.Request

	// the root service must exist, whatever the outcome of the transaction
	_, err := executor.session.factory.Get(request.ServiceName)
	if err != nil {
		return err
	}

	err = executor.CheckPayerBalance()
	if err != nil {
		// nothing was executed, nothing is charged
		return err
	}

	txnId, err := executor.txnState().BeginMeteredNestedTransaction(
		executor.blockMeter.Open(executor.tx.Raw.CyclesLimit))
	if err != nil {
		return err
	}
	executor.startedTransactionBodyExecution = true
	executor.nestedTxnId = txnId

	return executor.ExecuteTransactionBody()
}

func (executor *transactionExecutor) ExecuteTransactionBody() error {
	if !executor.errs.CollectedError() {
		txError := executor.normalExecution()
		if executor.errs.Collect(txError).CollectedFailure() {
			return executor.errs.ErrorOrNil()
		}
		if txError != nil {
			// the first transaction error is the one recorded in the receipt
			_ = executor.handleError(txError, "body")
		}
	}

	if executor.errs.CollectedError() {
		executor.txnState().RunWithAllLimitsDisabled(executor.errorExecution)
		if executor.errs.CollectedFailure() {
			return executor.errs.ErrorOrNil()
		}
	}

	// log the execution intensities here, so that they do not contain data
	// from transaction fee deduction, because the payer is not charged for that.
	executor.logExecutionIntensities()

	executor.errs.Collect(executor.commit())

	return executor.errs.ErrorOrNil()
}

func (executor *transactionExecutor) normalExecution() error {
	bodyTxnId, err := executor.txnState().BeginNestedTransaction()
	if err != nil {
		return err
	}

	request := executor.tx.Raw.Request
	response, err := executor.env().Invoke(request)
	executor.response = response
	if err != nil {
		return err
	}
	if response.IsError() {
		return errors.NewServiceResponseError(
			request.ServiceName,
			request.Method,
			response.Code,
			response.ErrorMessage)
	}

	_, err = executor.txnState().CommitNestedTransaction(bodyTxnId)
	if err != nil {
		return err
	}

	executor.txnState().RunWithAllLimitsDisabled(func() {
		err = executor.deductTransactionFees()
	})
	return err
}

// Clear changes and try to deduct fees again.
func (executor *transactionExecutor) errorExecution() {
	// log transaction as failed
	executor.log.Info().
		Err(executor.output.Err).
		Msg("transaction executed with error")

	executor.env().Reset()

	// drop delta since transaction failed
	restartErr := executor.txnState().RestartNestedTransaction(executor.nestedTxnId)
	if executor.errs.Collect(restartErr).CollectedFailure() {
		return
	}

	// try to deduct fees again, to get the fee deduction events
	feesError := executor.deductTransactionFees()

	// if fee deduction fails just do clean up and exit
	if feesError != nil {
		executor.log.Info().
			Err(feesError).
			Msg("transaction fee deduction executed with error")

		if executor.errs.Collect(feesError).CollectedFailure() {
			return
		}

		executor.env().Reset()

		// drop delta
		executor.errs.Collect(
			executor.txnState().RestartNestedTransaction(executor.nestedTxnId))
	}
}

func (executor *transactionExecutor) commit() error {
	if executor.txnState().NumNestedTransactions() > 1 {
		// This is an executor internal programming error. We forgot to call
		// Commit somewhere in the control flow. We should halt.
		return errors.NewStateMergeFailure(fmt.Errorf(
			"successfully executed transaction has unexpected " +
				"nested transactions"))
	}

	executor.cyclesUsed = executor.txnCyclesUsed()
	executor.output.ComputationIntensities = make(meter.MeteredComputationIntensities)
	for kind, intensity := range executor.txnState().ComputationIntensities() {
		executor.output.ComputationIntensities[kind] = intensity
	}

	_, commitErr := executor.txnState().CommitNestedTransaction(
		executor.nestedTxnId)
	if commitErr != nil {
		return errors.NewStateMergeFailure(commitErr)
	}

	executor.blockMeter.Charge(executor.cyclesUsed)
	return nil
}

// txnCyclesUsed returns the cycles used by the current transaction, capped
// at its limit.
func (executor *transactionExecutor) txnCyclesUsed() uint64 {
	if !executor.startedTransactionBodyExecution {
		return 0
	}

	used := executor.txnState().TotalComputationUsed()
	if limit := executor.txnState().TotalComputationLimit(); used > limit {
		used = limit
	}
	return used
}

func (executor *transactionExecutor) populateOutput() {
	request := executor.tx.Raw.Request

	response := executor.response
	if txErr := executor.output.Err; txErr != nil {
		// a failure response of the service is recorded as is
		if !errors.IsServiceResponseError(txErr) || !response.IsError() {
			response = types.NewErrorResponse(
				uint64(txErr.Code()),
				"%s",
				txErr.Error())
		}
	}

	events := executor.env().Events()
	if len(events) > 0 {
		events = append([]types.Event(nil), events...)
	}

	executor.output.Receipt = types.Receipt{
		Height:      executor.params.Height,
		TxHash:      executor.tx.TxHash,
		CyclesUsed:  executor.cyclesUsed,
		Events:      events,
		ServiceName: request.ServiceName,
		Method:      request.Method,
		Response:    response,
	}
}

// logExecutionIntensities logs execution intensities of the transaction
func (executor *transactionExecutor) logExecutionIntensities() {
	if !executor.startedTransactionBodyExecution {
		return
	}
	if !executor.log.Debug().Enabled() {
		return
	}

	computation := zerolog.Dict()
	for kind, intensity := range executor.txnState().ComputationIntensities() {
		computation.Uint(kind.String(), intensity)
	}
	executor.log.Debug().
		Uint64("cyclesUsed", executor.txnState().TotalComputationUsed()).
		Uint64("cyclesLimit", executor.txnState().TotalComputationLimit()).
		Dict("computationIntensities", computation).
		Msg("transaction execution data")
}
