package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ServiceName identifies the tool in trace resources.
const ServiceName = "corefeatures"

// Tracing holds a tracer provider and its shutdown hook.
type Tracing struct {
	Provider trace.TracerProvider
	shutdown func(context.Context) error
}

// NewTracing exports spans as JSON lines to path. An empty path gives a no-op provider.
func NewTracing(path string) (*Tracing, error) {
	if path == "" {
		return &Tracing{
			Provider: noop.NewTracerProvider(),
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create trace file: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
		)),
	)

	return &Tracing{
		Provider: tp,
		shutdown: func(ctx context.Context) error {
			err := tp.Shutdown(ctx)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			return err
		},
	}, nil
}

// Tracer returns a named tracer.
func (t *Tracing) Tracer(name string) trace.Tracer {
	return t.Provider.Tracer(name)
}

// Shutdown flushes pending spans and closes the trace file.
func (t *Tracing) Shutdown(ctx context.Context) error {
	return t.shutdown(ctx)
}
