package environment

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/servicechain/executor/fvm/errors"
	"github.com/servicechain/executor/fvm/meter"
	"github.com/servicechain/executor/fvm/storage/state"
	"github.com/servicechain/executor/model/types"
)

// BlockInfo is the block-level part of every ServiceContext.
type BlockInfo struct {
	Height    uint64
	Timestamp uint64
	Proposer  types.Address
}

func BlockInfoFromParams(params types.ExecutorParams) BlockInfo {
	return BlockInfo{
		Height:    params.Height,
		Timestamp: params.Timestamp,
		Proposer:  params.Proposer,
	}
}

// TransactionInfo is the transaction-level part of every ServiceContext.
type TransactionInfo struct {
	Caller      types.Address
	TxHash      types.Hash
	Nonce       types.Hash
	CyclesPrice uint64
	CyclesLimit uint64
}

func TransactionInfoFromTransaction(tx types.SignedTransaction) TransactionInfo {
	return TransactionInfo{
		Caller:      tx.Raw.Sender,
		TxHash:      tx.TxHash,
		Nonce:       tx.Raw.Nonce,
		CyclesPrice: tx.Raw.CyclesPrice,
		CyclesLimit: tx.Raw.CyclesLimit,
	}
}

type EnvironmentParams struct {
	Logger zerolog.Logger
	Block  BlockInfo
	// ReadOnly rejects every state mutation of the session.
	ReadOnly bool
}

type frame struct {
	service       string
	callerService string
	readOnly      bool
}

// Environment is the execution session shared by the SDK handles of all
// services of a genesis, block or read. Invocations are plain synchronous
// calls: each one runs in its own nested transaction, on the meter of the
// enclosing transaction.
type Environment struct {
	EnvironmentParams

	txnState *state.TransactionState
	resolver ServiceResolver

	tx     TransactionInfo
	frames []frame
	events []types.Event
	err    error
}

func NewEnvironment(
	params EnvironmentParams,
	txnState *state.TransactionState,
) *Environment {
	return &Environment{
		EnvironmentParams: params,
		txnState:          txnState,
	}
}

func (env *Environment) SetServiceResolver(resolver ServiceResolver) {
	env.resolver = resolver
}

// GetSDK returns the SDK handle of a service, scoped to its namespace.
func (env *Environment) GetSDK(service string) ServiceSDK {
	return &serviceSDK{
		env:     env,
		service: service,
	}
}

func (env *Environment) TransactionState() *state.TransactionState {
	return env.txnState
}

// BeginTransaction sets the transaction every following invocation belongs
// to, and resets the events and the sticky error.
func (env *Environment) BeginTransaction(tx TransactionInfo) {
	env.tx = tx
	env.Reset()
}

// Reset drops the events and the sticky error of the current transaction.
func (env *Environment) Reset() {
	env.events = nil
	env.err = nil
	env.frames = env.frames[:0]
}

// Err returns the sticky error of the current transaction.
func (env *Environment) Err() error {
	return env.err
}

// Events returns the events emitted by the current transaction.
func (env *Environment) Events() []types.Event {
	return env.events
}

// Invoke runs the root invocation of a transaction, which must target a
// write method.
func (env *Environment) Invoke(
	request types.TransactionRequest,
) (
	types.ServiceResponse,
	error,
) {
	return env.invoke(
		request.ServiceName,
		request.Method,
		request.Payload,
		MethodKindWrite,
		true)
}

// InvokeRead runs the root invocation of a read, which must target a read
// method.
func (env *Environment) InvokeRead(
	request types.TransactionRequest,
) (
	types.ServiceResponse,
	error,
) {
	return env.invoke(
		request.ServiceName,
		request.Method,
		request.Payload,
		MethodKindRead,
		true)
}

// RunAs runs f as service, outside of any method invocation. It is used for
// genesis, block hooks and fee collection. The sticky error, if any, takes
// precedence over the error returned by f.
func (env *Environment) RunAs(service string, f func() error) error {
	if env.err != nil {
		return env.err
	}

	depth := len(env.frames)
	env.frames = append(env.frames, frame{
		service:  service,
		readOnly: env.readOnly(),
	})
	err := f()
	env.frames = env.frames[:depth]

	if env.err != nil {
		return env.err
	}
	return err
}

func (env *Environment) currentFrame() (frame, bool) {
	if len(env.frames) == 0 {
		return frame{}, false
	}
	return env.frames[len(env.frames)-1], true
}

func (env *Environment) currentService() string {
	f, _ := env.currentFrame()
	return f.service
}

func (env *Environment) readOnly() bool {
	f, ok := env.currentFrame()
	if !ok {
		return env.ReadOnly
	}
	return f.readOnly
}

// fail records err as the sticky error of the transaction, unless an error
// is already recorded, and returns the sticky error.
func (env *Environment) fail(err error) error {
	if env.err == nil {
		env.err = err
	}
	return env.err
}

func (env *Environment) checkErr() error {
	return env.err
}

func (env *Environment) meter(kind meter.ComputationKind, intensity uint) error {
	err := env.txnState.MeterComputation(kind, intensity)
	if err != nil {
		return env.fail(err)
	}
	return nil
}

func (env *Environment) context(service string) ServiceContext {
	f, _ := env.currentFrame()
	return ServiceContext{
		Caller:        env.tx.Caller,
		CallerService: f.callerService,
		Service:       service,
		Height:        env.Block.Height,
		Timestamp:     env.Block.Timestamp,
		Proposer:      env.Block.Proposer,
		TxHash:        env.tx.TxHash,
		Nonce:         env.tx.Nonce,
		CyclesPrice:   env.tx.CyclesPrice,
		CyclesLimit:   env.tx.CyclesLimit,
		CyclesUsed:    env.txnState.TotalComputationUsed(),
		ReadOnly:      env.readOnly(),
	}
}

func (env *Environment) invoke(
	service string,
	method string,
	payload string,
	kind MethodKind,
	root bool,
) (
	types.ServiceResponse,
	error,
) {
	if err := env.checkErr(); err != nil {
		return types.ServiceResponse{}, err
	}
	if env.resolver == nil {
		return types.ServiceResponse{}, env.fail(
			fmt.Errorf("no service resolver in environment"))
	}

	caller := env.currentService()
	if !root {
		if err := env.meter(meter.ComputationKindCallService, 1); err != nil {
			return types.ServiceResponse{}, err
		}
	}

	m, err := env.resolver.ResolveMethod(service, method)
	if err != nil {
		if !root && errors.IsUnknownServiceFailure(err) {
			err = errors.NewServiceNotFoundError(caller, service)
		}
		return types.ServiceResponse{}, env.fail(err)
	}

	if m.Kind != kind {
		if root && kind == MethodKindRead {
			return types.ServiceResponse{}, env.fail(
				errors.NewWriteInReadContextError(service, "invoking write method "+method))
		}
		return types.ServiceResponse{}, env.fail(
			errors.NewMethodKindMismatchError(service, method, kind.String()))
	}

	if kind == MethodKindWrite && env.readOnly() {
		return types.ServiceResponse{}, env.fail(
			errors.NewWriteInReadContextError(caller, "calling "+service+"."+method))
	}

	if err := env.meter(meter.ComputationKindInvokeMethod, uint(m.Cycles)); err != nil {
		return types.ServiceResponse{}, err
	}

	id, err := env.txnState.BeginNestedTransaction()
	if err != nil {
		return types.ServiceResponse{}, env.fail(err)
	}

	depth := len(env.frames)
	eventsMark := len(env.events)
	env.frames = append(env.frames, frame{
		service:       service,
		callerService: caller,
		readOnly:      env.readOnly() || kind == MethodKindRead,
	})

	response := env.callHandler(service, method, m.Handler, payload)
	env.frames = env.frames[:depth]

	if env.err != nil || response.IsError() {
		env.events = env.events[:eventsMark]

		// drop the writes of this call, including nested calls left open
		// by a panic
		err := env.txnState.RestartNestedTransaction(id)
		if err == nil {
			err = env.txnState.AbortNestedTransaction(id)
		}
		if err != nil {
			return types.ServiceResponse{}, env.fail(err)
		}

		if env.err != nil {
			return response, env.err
		}

		env.Logger.Debug().
			Str("service", service).
			Str("method", method).
			Uint64("code", response.Code).
			Msg("service call reverted")
		return response, nil
	}

	_, err = env.txnState.CommitNestedTransaction(id)
	if err != nil {
		return types.ServiceResponse{}, env.fail(err)
	}
	return response, nil
}

func (env *Environment) callHandler(
	service string,
	method string,
	handler Handler,
	payload string,
) (
	response types.ServiceResponse,
) {
	defer func() {
		if r := recover(); r != nil {
			env.fail(errors.NewServicePanicError(service, method, r))
			response = types.NewErrorResponse(
				uint64(errors.ErrCodeServicePanicError),
				"%s.%s panicked",
				service,
				method)
		}
	}()

	if handler == nil {
		return types.NewErrorResponse(
			uint64(errors.ErrCodeMethodNotFoundError),
			"%s.%s has no handler",
			service,
			method)
	}
	return handler(payload)
}
