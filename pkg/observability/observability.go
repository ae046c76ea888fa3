// Package observability provides OpenTelemetry tracing and metrics for the
// validation and scoring pipelines.
//
// When telemetry is disabled the provider records into the global no-op
// providers, so instrumented code never needs to check.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Mindburn-Labs/spp"

// Config configures the OpenTelemetry providers.
type Config struct {
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string // e.g. "localhost:4317" for gRPC
	Enabled        bool
	Insecure       bool
	ExportInterval time.Duration
}

// DefaultConfig returns defaults for local use.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "spp",
		ServiceVersion: "0.4.0",
		OTLPEndpoint:   "localhost:4317",
		Insecure:       true,
		ExportInterval: 15 * time.Second,
	}
}

// Option customises a Provider.
type Option func(*Provider)

// WithMeterProvider records into mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(p *Provider) { p.meter = mp.Meter(instrumentationName) }
}

// WithTracerProvider traces into tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Provider) { p.tracer = tp.Tracer(instrumentationName) }
}

// Provider owns the telemetry pipeline and the toolkit's instruments.
type Provider struct {
	config         *Config
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter
	logger         *slog.Logger

	validations metric.Int64Counter
	errors      metric.Int64Counter
	duration    metric.Float64Histogram
	trustScore  metric.Float64Histogram
}

// New creates a provider. With telemetry disabled it records into the
// global providers, which are no-ops unless the caller installed others.
func New(ctx context.Context, config *Config, opts ...Option) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}
	p := &Provider{
		config: config,
		logger: slog.Default().With("component", "observability"),
	}

	if config.Enabled {
		res, err := resource.Merge(
			resource.Default(),
			resource.NewSchemaless(
				attribute.String("service.name", config.ServiceName),
				attribute.String("service.version", config.ServiceVersion),
			),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create resource: %w", err)
		}
		if err := p.initTraceProvider(ctx, res); err != nil {
			return nil, fmt.Errorf("failed to init trace provider: %w", err)
		}
		if err := p.initMetricProvider(ctx, res); err != nil {
			return nil, fmt.Errorf("failed to init metric provider: %w", err)
		}
		p.logger.DebugContext(ctx, "observability initialized", "endpoint", config.OTLPEndpoint)
	}

	for _, opt := range opts {
		opt(p)
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer(instrumentationName, trace.WithInstrumentationVersion(config.ServiceVersion))
	}
	if p.meter == nil {
		p.meter = otel.Meter(instrumentationName, metric.WithInstrumentationVersion(config.ServiceVersion))
	}

	if err := p.initInstruments(); err != nil {
		return nil, fmt.Errorf("failed to init instruments: %w", err)
	}
	return p, nil
}

func (p *Provider) initTraceProvider(ctx context.Context, res *resource.Resource) error {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(p.config.OTLPEndpoint)}
	if p.config.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(p.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return nil
}

func (p *Provider) initMetricProvider(ctx context.Context, res *resource.Resource) error {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(p.config.OTLPEndpoint)}
	if p.config.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create metric exporter: %w", err)
	}

	interval := p.config.ExportInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(p.meterProvider)
	return nil
}

func (p *Provider) initInstruments() error {
	var err error

	p.validations, err = p.meter.Int64Counter("spp.validations.total",
		metric.WithDescription("Files validated"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return err
	}

	p.errors, err = p.meter.Int64Counter("spp.validation.errors",
		metric.WithDescription("Errors reported across validated files"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	p.duration, err = p.meter.Float64Histogram("spp.validation.duration",
		metric.WithDescription("Time spent validating one file"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0),
	)
	if err != nil {
		return err
	}

	p.trustScore, err = p.meter.Float64Histogram("spp.trust.score",
		metric.WithDescription("Computed trust scores"),
		metric.WithExplicitBucketBoundaries(0.1, 0.3, 0.6, 0.8, 1.0),
	)
	return err
}

// Shutdown flushes and stops the exporters, if any.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			p.logger.ErrorContext(ctx, "failed to shutdown trace provider", "error", err)
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			p.logger.ErrorContext(ctx, "failed to shutdown metric provider", "error", err)
		}
	}
	return nil
}

// RecordValidation records one validated file.
func (p *Provider) RecordValidation(ctx context.Context, fileType string, errCount int, d time.Duration) {
	outcome := "passed"
	if errCount > 0 {
		outcome = "failed"
	}
	attrs := metric.WithAttributes(
		attribute.String("spp.file_type", fileType),
		attribute.String("spp.outcome", outcome),
	)
	p.validations.Add(ctx, 1, attrs)
	if errCount > 0 {
		p.errors.Add(ctx, int64(errCount), metric.WithAttributes(attribute.String("spp.file_type", fileType)))
	}
	p.duration.Record(ctx, d.Seconds(), attrs)
}

// RecordTrustScore records a computed score with its decision.
func (p *Provider) RecordTrustScore(ctx context.Context, score float64, action string) {
	p.trustScore.Record(ctx, score, metric.WithAttributes(attribute.String("spp.decision", action)))
}

// TrackOperation starts a span and returns the function that ends it.
func (p *Provider) TrackOperation(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := p.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}
}
