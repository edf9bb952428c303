package worker

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Instrumenter wraps background job runs in a span and records their outcome.
type Instrumenter struct {
	tracer      trace.Tracer
	jobsRunning metric.Int64UpDownCounter
	jobDuration metric.Float64Histogram
	jobsTotal   metric.Int64Counter
}

// NewInstrumenter creates the job instruments on meter.
func NewInstrumenter(tracer trace.Tracer, meter metric.Meter, serviceName string) (*Instrumenter, error) {
	jobsRunning, err := meter.Int64UpDownCounter(
		fmt.Sprintf("unibox_%s_jobs_running", serviceName),
		metric.WithDescription("Number of background jobs currently running"),
	)
	if err != nil {
		return nil, err
	}

	jobDuration, err := meter.Float64Histogram(
		fmt.Sprintf("unibox_%s_job_duration_seconds", serviceName),
		metric.WithDescription("Background job duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	jobsTotal, err := meter.Int64Counter(
		fmt.Sprintf("unibox_%s_jobs_total", serviceName),
		metric.WithDescription("Total background jobs processed"),
	)
	if err != nil {
		return nil, err
	}

	return &Instrumenter{
		tracer:      tracer,
		jobsRunning: jobsRunning,
		jobDuration: jobDuration,
		jobsTotal:   jobsTotal,
	}, nil
}

// Run executes fn inside a "worker.<jobType>" span. A nil Instrumenter runs fn bare.
func (w *Instrumenter) Run(ctx context.Context, jobType string, fn func(context.Context) error) error {
	if w == nil {
		return fn(ctx)
	}

	kind := metric.WithAttributes(attribute.String("job.type", jobType))
	w.jobsRunning.Add(ctx, 1, kind)
	defer w.jobsRunning.Add(ctx, -1, kind)

	ctx, span := w.tracer.Start(ctx, "worker."+jobType,
		trace.WithAttributes(attribute.String("job.type", jobType)),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	attrs := metric.WithAttributes(
		attribute.String("job.type", jobType),
		attribute.String("status", status),
	)
	w.jobDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	w.jobsTotal.Add(ctx, 1, attrs)

	return err
}
