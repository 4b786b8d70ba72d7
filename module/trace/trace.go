package trace

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the implementation of the module.Tracer interface on top of an
// open telemetry tracer provider.
type Tracer struct {
	tracer trace.Tracer
	log    zerolog.Logger
}

// NewTracer creates a tracer taking spans from the given provider.
func NewTracer(log zerolog.Logger, serviceName string, provider trace.TracerProvider) *Tracer {
	return &Tracer{
		tracer: provider.Tracer(serviceName),
		log:    log.With().Str("component", "tracer").Logger(),
	}
}

// NewLoggingTracerProvider returns a tracer provider that samples the given fraction of
// traces and exports the finished spans into the logger at debug level.
func NewLoggingTracerProvider(log zerolog.Logger, serviceName string, sensitivity float64) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sensitivity))),
		sdktrace.WithSyncer(NewLogExporter(log)),
	), nil
}

func (t *Tracer) StartSpanFromContext(
	ctx context.Context,
	operationName SpanName,
	opts ...trace.SpanStartOption,
) (
	trace.Span,
	context.Context,
) {
	ctx, span := t.tracer.Start(ctx, string(operationName), opts...)
	return span, ctx
}

func (t *Tracer) StartSpanFromParent(
	parentSpan trace.Span,
	operationName SpanName,
	opts ...trace.SpanStartOption,
) trace.Span {
	ctx := trace.ContextWithSpan(context.Background(), parentSpan)
	_, span := t.tracer.Start(ctx, string(operationName), opts...)
	return span
}

// LogExporter exports finished spans as debug log lines.
type LogExporter struct {
	log zerolog.Logger
}

var _ sdktrace.SpanExporter = (*LogExporter)(nil)

func NewLogExporter(log zerolog.Logger) *LogExporter {
	return &LogExporter{log: log.With().Str("component", "span_exporter").Logger()}
}

func (e *LogExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		ev := e.log.Debug().
			Str("span", span.Name()).
			Str("trace_id", span.SpanContext().TraceID().String()).
			Dur("duration", span.EndTime().Sub(span.StartTime()))
		for _, attr := range span.Attributes() {
			ev = ev.Str(string(attr.Key), attr.Value.Emit())
		}
		ev.Msg("span finished")
	}
	return nil
}

func (e *LogExporter) Shutdown(context.Context) error {
	return nil
}

// Attributes helpers shared by the callers.

func StringAttr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

func Uint64Attr(key string, value uint64) attribute.KeyValue {
	return attribute.Int64(key, int64(value))
}
