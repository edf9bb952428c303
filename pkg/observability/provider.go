package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Chibuzo15/crm-project-sub000/pkg/telemetry"
)

// Provider holds initialized OTEL components.
type Provider struct {
	Tracer         trace.Tracer
	Meter          metric.Meter
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Sanitizer      *telemetry.Sanitizer
	// Exporting is true when spans or metrics are shipped to a collector.
	Exporting bool

	shutdownFuncs []func(context.Context) error
}

// Init initializes OTEL for a service. Without an OTLP endpoint the
// providers stay local so instrumentation keeps working without exporting.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	provider := &Provider{
		Sanitizer: telemetry.NewSanitizer(
			telemetry.PIILevel(cfg.PIILevel),
			cfg.ServiceName,
		),
		Exporting: cfg.exportEnabled(),
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
		resource.WithAttributes(cfg.ResourceAttrs...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp, err := initTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, fmt.Errorf("failed to init tracer: %w", err)
	}
	provider.TracerProvider = tp
	provider.Tracer = tp.Tracer(cfg.ServiceName)
	provider.shutdownFuncs = append(provider.shutdownFuncs, tp.Shutdown)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	mp, err := initMeterProvider(ctx, cfg, res)
	if err != nil {
		return nil, fmt.Errorf("failed to init meter: %w", err)
	}
	provider.MeterProvider = mp
	provider.Meter = mp.Meter(cfg.ServiceName)
	provider.shutdownFuncs = append(provider.shutdownFuncs, mp.Shutdown)
	otel.SetMeterProvider(mp)

	return provider, nil
}

// Shutdown flushes and stops every provider, returning the joined errors.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	for i := len(p.shutdownFuncs) - 1; i >= 0; i-- {
		if err := p.shutdownFuncs[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func initTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	if !cfg.TracingEnabled || !cfg.exportEnabled() {
		return sdktrace.NewTracerProvider(sdktrace.WithResource(res)), nil
	}

	endpoint, insecure := cfg.endpoint()
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithHeaders(cfg.OTLPHeaders),
	}
	if insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	sampler := sdktrace.ParentBased(
		sdktrace.TraceIDRatioBased(cfg.SamplingRate),
	)

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(cfg.TraceBatchTimeout),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	), nil
}

func initMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	if !cfg.MetricsEnabled || !cfg.exportEnabled() {
		return sdkmetric.NewMeterProvider(sdkmetric.WithResource(res)), nil
	}

	endpoint, insecure := cfg.endpoint()
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(endpoint),
		otlpmetrichttp.WithHeaders(cfg.OTLPHeaders),
	}
	if insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter,
				sdkmetric.WithInterval(cfg.MetricInterval),
			),
		),
		sdkmetric.WithResource(res),
	), nil
}
