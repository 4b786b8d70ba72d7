package fvm

import (
	"context"

	"github.com/rs/zerolog"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/servicechain/executor/fvm/meter"
	"github.com/servicechain/executor/fvm/storage/state"
	"github.com/servicechain/executor/module"
	"github.com/servicechain/executor/module/metrics"
	"github.com/servicechain/executor/module/trace"
)

const DefaultFeeService = "asset"

// A Context defines a set of execution parameters used by the service
// executor.
type Context struct {
	Logger  zerolog.Logger
	Metrics module.ExecutionMetrics
	Tracer  module.Tracer

	CyclesWeights meter.ExecutionWeights

	// FeeService names the service charging the transaction fees. It must
	// implement registry.FeeCollector.
	FeeService             string
	TransactionFeesEnabled bool

	MaxStateKeySize   uint64
	MaxStateValueSize uint64
}

// NewContext initializes a new execution context with the provided options.
func NewContext(opts ...Option) Context {
	return newContext(defaultContext(), opts...)
}

// NewContextFromParent spawns a child execution context with the provided
// options.
func NewContextFromParent(parent Context, opts ...Option) Context {
	return newContext(parent, opts...)
}

func newContext(ctx Context, opts ...Option) Context {
	for _, applyOption := range opts {
		ctx = applyOption(ctx)
	}

	return ctx
}

func defaultContext() Context {
	return Context{
		Logger:                 zerolog.Nop(),
		Metrics:                metrics.NewNoopCollector(),
		Tracer:                 trace.NewNoopTracer(),
		CyclesWeights:          meter.DefaultComputationWeights,
		FeeService:             DefaultFeeService,
		TransactionFeesEnabled: true,
		MaxStateKeySize:        state.DefaultMaxKeySize,
		MaxStateValueSize:      state.DefaultMaxValueSize,
	}
}

func (ctx Context) stateParameters() state.StateParameters {
	return state.DefaultParameters().
		WithMeterOptions(meter.WithComputationWeights(ctx.CyclesWeights)).
		WithMaxKeySizeAllowed(ctx.MaxStateKeySize).
		WithMaxValueSizeAllowed(ctx.MaxStateValueSize)
}

func (ctx Context) startSpan(
	parent context.Context,
	name trace.SpanName,
) (
	otelTrace.Span,
	context.Context,
) {
	if parent == nil {
		parent = context.Background()
	}
	return ctx.Tracer.StartSpanFromContext(parent, name)
}

func (ctx Context) startChildSpan(
	parent otelTrace.Span,
	name trace.SpanName,
) otelTrace.Span {
	return ctx.Tracer.StartSpanFromParent(parent, name)
}

// An Option sets a configuration parameter for an execution context.
type Option func(ctx Context) Context

// WithLogger sets the context logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(ctx Context) Context {
		ctx.Logger = logger
		return ctx
	}
}

// WithMetrics sets the execution metrics collector.
func WithMetrics(collector module.ExecutionMetrics) Option {
	return func(ctx Context) Context {
		if collector != nil {
			ctx.Metrics = collector
		}
		return ctx
	}
}

// WithTracer sets the tracer of the context.
func WithTracer(tr module.Tracer) Option {
	return func(ctx Context) Context {
		if tr != nil {
			ctx.Tracer = tr
		}
		return ctx
	}
}

// WithCyclesWeights overrides the weight of the given computation kinds.
// Kinds not listed keep their default weight.
func WithCyclesWeights(weights meter.ExecutionWeights) Option {
	return func(ctx Context) Context {
		merged := make(meter.ExecutionWeights, len(ctx.CyclesWeights)+len(weights))
		for kind, weight := range ctx.CyclesWeights {
			merged[kind] = weight
		}
		for kind, weight := range weights {
			merged[kind] = weight
		}
		ctx.CyclesWeights = merged
		return ctx
	}
}

// WithFeeService sets the service charging the transaction fees.
func WithFeeService(service string) Option {
	return func(ctx Context) Context {
		ctx.FeeService = service
		return ctx
	}
}

// WithTransactionFeesEnabled enables or disables the payer balance check
// and the fee deduction.
func WithTransactionFeesEnabled(enabled bool) Option {
	return func(ctx Context) Context {
		ctx.TransactionFeesEnabled = enabled
		return ctx
	}
}

// WithMaxKeySizeAllowed sets the maximum size of a state key, in bytes.
func WithMaxKeySizeAllowed(limit uint64) Option {
	return func(ctx Context) Context {
		ctx.MaxStateKeySize = limit
		return ctx
	}
}

// WithMaxValueSizeAllowed sets the maximum size of a state value, in bytes.
func WithMaxValueSizeAllowed(limit uint64) Option {
	return func(ctx Context) Context {
		ctx.MaxStateValueSize = limit
		return ctx
	}
}
