// Package otel bootstraps the OpenTelemetry tracer provider from the standard OTEL_* environment.
package otel

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"foodmemories/internal/logging"
)

// DefaultServiceName is reported unless OTEL_SERVICE_NAME or WithServiceName says otherwise.
const DefaultServiceName = "foodmemories"

type options struct {
	serviceName string
}

// Option tunes Init.
type Option func(*options)

// WithServiceName sets the service name used when OTEL_SERVICE_NAME is unset.
func WithServiceName(name string) Option {
	return func(o *options) { o.serviceName = name }
}

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

func setPropagator() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
}

// Init installs a batching OTLP tracer provider. Exporter setup failures are
// logged and leave the no-op provider in place; only resource detection errors are returned.
func Init(ctx context.Context, log *slog.Logger, opts ...Option) (ShutdownFunc, error) {
	o := options{serviceName: DefaultServiceName}
	for _, opt := range opts {
		opt(&o)
	}

	setPropagator()
	if os.Getenv("OTEL_SDK_DISABLED") == "true" {
		log.Info("tracing_configured", slog.Bool("tracing_enabled", false))
		return noopShutdown, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String(getEnv("OTEL_SERVICE_NAME", o.serviceName))),
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	protocol := getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	exporter, err := newExporter(ctx, protocol)
	if err != nil {
		log.Error("tracing_init_failed", logging.Err(err))
		return noopShutdown, nil
	}

	sc := samplerFromEnv()
	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(sc.sampler()),
	)
	otel.SetTracerProvider(tp)

	log.Info("tracing_configured",
		slog.Bool("tracing_enabled", true),
		slog.String("service", getEnv("OTEL_SERVICE_NAME", o.serviceName)),
		slog.String("otlp_protocol", protocol),
		slog.String("otlp_endpoint", getEnv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))),
		slog.String("sampler", sc.name),
		slog.Float64("sampler_ratio", sc.ratio),
	)
	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, protocol string) (*otlptrace.Exporter, error) {
	switch protocol {
	case "grpc":
		return otlptracegrpc.New(ctx)
	case "http/protobuf":
		return otlptracehttp.New(ctx)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol: %s", protocol)
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

type samplerConfig struct {
	name  string
	ratio float64
}

func samplerFromEnv() samplerConfig {
	sc := samplerConfig{name: getEnv("OTEL_TRACES_SAMPLER", "parentbased_always_on"), ratio: 1.0}
	if v, err := strconv.ParseFloat(os.Getenv("OTEL_TRACES_SAMPLER_ARG"), 64); err == nil && v >= 0 && v <= 1 {
		sc.ratio = v
	}
	return sc
}

func (sc samplerConfig) sampler() trace.Sampler {
	switch sc.name {
	case "always_on":
		return trace.AlwaysSample()
	case "always_off":
		return trace.NeverSample()
	case "traceidratio":
		return trace.TraceIDRatioBased(sc.ratio)
	case "parentbased_always_off":
		return trace.ParentBased(trace.NeverSample())
	case "parentbased_traceidratio":
		return trace.ParentBased(trace.TraceIDRatioBased(sc.ratio))
	default:
		return trace.ParentBased(trace.AlwaysSample())
	}
}
