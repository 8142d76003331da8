package observability

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// SetupTracing initializes OpenTelemetry tracing with a stdout exporter
// (replace with OTLP in production)
func SetupTracing(serviceName string) func() {
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		log.Fatalf("failed to initialize stdouttrace exporter: %v", err)
	}
	res, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	provider := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return func() { _ = provider.Shutdown(context.Background()) }
}

// SetupPrometheusMetrics initializes the Prometheus metrics exporter.
// The router exposes the scrape endpoint at /metrics.
func SetupPrometheusMetrics() *metric.MeterProvider {
	exp, err := prometheus.New()
	if err != nil {
		log.Fatalf("failed to initialize prometheus exporter: %v", err)
	}
	mp := metric.NewMeterProvider(metric.WithReader(exp))
	otel.SetMeterProvider(mp)
	return mp
}

// GenerationMetrics counts AI response generation outcomes per provider
type GenerationMetrics struct {
	requests  otelmetric.Int64Counter
	failures  otelmetric.Int64Counter
	fallbacks otelmetric.Int64Counter
}

// NewGenerationMetrics registers the generation counters on the global meter
func NewGenerationMetrics() *GenerationMetrics {
	meter := otel.Meter("imacall/ai")

	requests, err := meter.Int64Counter("ai_generation_requests_total",
		otelmetric.WithDescription("Total AI generation attempts by provider"))
	if err != nil {
		log.Printf("failed to register generation request counter: %v", err)
	}
	failures, err := meter.Int64Counter("ai_generation_failures_total",
		otelmetric.WithDescription("AI generation attempts that ended in a provider error"))
	if err != nil {
		log.Printf("failed to register generation failure counter: %v", err)
	}
	fallbacks, err := meter.Int64Counter("ai_generation_fallbacks_total",
		otelmetric.WithDescription("Generation failures answered with a character fallback response"))
	if err != nil {
		log.Printf("failed to register generation fallback counter: %v", err)
	}

	return &GenerationMetrics{
		requests:  requests,
		failures:  failures,
		fallbacks: fallbacks,
	}
}

func (m *GenerationMetrics) RecordRequest(ctx context.Context, provider string) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("provider", provider)))
}

func (m *GenerationMetrics) RecordFailure(ctx context.Context, provider string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("provider", provider)))
}

func (m *GenerationMetrics) RecordFallback(ctx context.Context, provider string) {
	if m == nil || m.fallbacks == nil {
		return
	}
	m.fallbacks.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("provider", provider)))
}
