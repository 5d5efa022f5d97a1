// Package telemetry sets up OpenTelemetry tracing/metrics providers,
// grounded on the teacher's internal/telemetry.Setup: disabled by default,
// returning a no-op shutdown, and otherwise installing a real SDK
// tracer/meter provider as the process-wide default. The session
// controller and the motion tick loop record no spans or metrics.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the telemetry tunables, mirroring config.TelemetryConfig
// without importing it (avoids a telemetry -> config dependency cycle).
type Config struct {
	Enabled     bool
	ServiceName string
}

// Handle bundles the installed tracer/meter and a shutdown func.
type Handle struct {
	Tracer   trace.Tracer
	Meter    metric.Meter
	Shutdown func(context.Context) error
}

// Setup installs a tracer/meter provider. When cfg.Enabled is false (the
// default, matching Setup's disabled-by-default early return in the
// teacher), it installs nothing, returns a tracer/meter from the current
// global providers (no-op unless something else installed one) and a no-op
// shutdown — callers never need to branch on whether telemetry is on.
func Setup(ctx context.Context, cfg Config) (Handle, error) {
	if !cfg.Enabled {
		return Handle{
			Tracer:   otel.Tracer("theo"),
			Meter:    otel.Meter("theo"),
			Shutdown: func(context.Context) error { return nil },
		}, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes())
	if err != nil {
		return Handle{}, err
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return Handle{
		Tracer: tp.Tracer(cfg.ServiceName),
		Meter:  mp.Meter(cfg.ServiceName),
		Shutdown: func(ctx context.Context) error {
			if err := tp.Shutdown(ctx); err != nil {
				return err
			}
			return mp.Shutdown(ctx)
		},
	}, nil
}
