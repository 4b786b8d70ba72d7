package trace

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var NoopSpan trace.Span = noop.Span{}

// NoopTracer is the implementation of the Tracer interface.
type NoopTracer struct {
	tracer trace.Tracer
}

// NewNoopTracer creates a new tracer that does nothing.
func NewNoopTracer() *NoopTracer {
	return &NoopTracer{
		tracer: noop.NewTracerProvider().Tracer(""),
	}
}

func (t *NoopTracer) StartSpanFromContext(
	ctx context.Context,
	operationName SpanName,
	opts ...trace.SpanStartOption,
) (
	trace.Span,
	context.Context,
) {
	return NoopSpan, ctx
}

func (t *NoopTracer) StartSpanFromParent(
	parentSpan trace.Span,
	operationName SpanName,
	opts ...trace.SpanStartOption,
) trace.Span {
	return NoopSpan
}
