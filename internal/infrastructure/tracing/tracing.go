// Package tracing configures the OpenTelemetry SDK, grounded on
// aryan0dhankhar-containerlease's internal/observability/tracing
// package: an OTLP/HTTP exporter that only activates when an endpoint is
// configured, so tracing is a no-op rather than a startup failure in
// environments with no collector.
package tracing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Init configures a TracerProvider against endpoint. An empty endpoint
// disables tracing: the returned shutdown func is a no-op and otel keeps
// its default no-op tracer.
func Init(ctx context.Context, endpoint, serviceName, environment string, log zerolog.Logger) (shutdown func(context.Context) error, err error) {
	if endpoint == "" {
		log.Info().Msg("tracing disabled: no OTLP endpoint configured")
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.DeploymentEnvironment(environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	log.Info().Str("endpoint", endpoint).Msg("tracing initialized")
	return tp.Shutdown, nil
}
