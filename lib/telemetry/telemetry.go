package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"sitecrawl/lib/configutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

var (
	tracerProvider *trace.TracerProvider
	meterProvider  *metric.MeterProvider
)

// searches up the filesystem from the cwd to find a file called
// telemetry.json5, once found it will then use it as a config to setup
// telemetry. if there is no such file telemetry stays a no-op.
func SetupFromEnv(ctx context.Context, serviceName string) error {
	cfg, err := configutil.ReadRecursively[config]("telemetry.json5")
	if os.IsNotExist(err) {
		slog.DebugContext(ctx, "no telemetry.json5 found, telemetry disabled")
		return nil
	}
	if err != nil {
		return err
	}
	return Setup(ctx, serviceName, cfg)
}

func Setup(ctx context.Context, serviceName string, cfg config) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*15)
	defer cancel()

	r, err := newResource(serviceName)
	if err != nil {
		return err
	}

	if cfg.Otlp.Traces.configured() {
		tracerProvider, err = newTraceProvider(ctx, r, cfg.Otlp.Traces)
		if err != nil {
			return err
		}
		otel.SetTracerProvider(tracerProvider)
	}
	if cfg.Otlp.Metrics.configured() {
		meterProvider, err = newMetricProvider(ctx, r, cfg.Otlp.Metrics)
		if err != nil {
			return err
		}
		otel.SetMeterProvider(meterProvider)
	}
	return nil
}

// Shutdown flushes and stops whatever Setup started.
func Shutdown(ctx context.Context) error {
	var errs []error
	if tracerProvider != nil {
		errs = append(errs, tracerProvider.Shutdown(ctx))
		tracerProvider = nil
	}
	if meterProvider != nil {
		errs = append(errs, meterProvider.Shutdown(ctx))
		meterProvider = nil
	}
	return errors.Join(errs...)
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}
