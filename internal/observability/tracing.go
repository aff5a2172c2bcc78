package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// TraceConfig configures the in-process tracer, trimmed from the
// teacher's observability.TraceConfig down to what this module needs:
// a real TracerProvider so span context actually propagates, without
// the OTLP collector/exporter hop the teacher's version supports —
// nothing in this module's scope runs a collector for it to ship to.
type TraceConfig struct {
	ServiceName    string
	ServiceVersion string
	SamplingRate   float64
}

// Tracer wraps a trace.Tracer bound to a real TracerProvider, so spans
// it starts carry a valid, propagating SpanContext. Grounded on the
// teacher's observability.Tracer / NewTracer.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewTracer installs a process-wide TracerProvider and returns a
// Tracer bound to it plus a shutdown func to call on exit. Spans
// aren't exported anywhere outside the process; they exist so
// internal/audit's trace.SpanContextFromContext observes a real trace
// and span ID instead of an always-invalid one.
func NewTracer(config TraceConfig) (*Tracer, func(context.Context) error) {
	if config.ServiceName == "" {
		config.ServiceName = "sentryguard"
	}
	if config.SamplingRate == 0 {
		config.SamplingRate = 1.0
	}

	var sampler sdktrace.Sampler
	switch {
	case config.SamplingRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case config.SamplingRate <= 0.0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(config.SamplingRate)
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
	))
	if err != nil {
		res = resource.Default()
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(provider)

	t := &Tracer{provider: provider, tracer: provider.Tracer(config.ServiceName)}
	return t, provider.Shutdown
}

// Start begins a span named name and returns the context carrying it.
// The caller must call span.End().
func (t *Tracer) Start(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name)
}
