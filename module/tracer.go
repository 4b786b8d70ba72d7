package module

import (
	"context"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/servicechain/executor/module/trace"
)

var (
	_ Tracer = &trace.Tracer{}
	_ Tracer = &trace.NoopTracer{}
)

// Tracer interface for tracers of the executor. Uses open telemetry span definitions.
type Tracer interface {
	StartSpanFromContext(
		ctx context.Context,
		operationName trace.SpanName,
		opts ...otelTrace.SpanStartOption,
	) (
		otelTrace.Span,
		context.Context,
	)

	StartSpanFromParent(
		parentSpan otelTrace.Span,
		operationName trace.SpanName,
		opts ...otelTrace.SpanStartOption,
	) otelTrace.Span
}
