// Package backoff drives a fallible operation through a fixed retry
// schedule, saturating at the last entry, until it succeeds or the
// caller's context is cancelled.
package backoff

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Schedule is the fixed reconnect backoff table: 10s, 30s, 60s, 5m,
// 10m, saturating at the last entry for any further attempt.
var Schedule = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	60 * time.Second,
	5 * time.Minute,
	10 * time.Minute,
}

// Driver retries a callable against Schedule until it succeeds or ctx
// is cancelled. It does not bound total elapsed time.
type Driver struct {
	schedule []time.Duration
	tracer   trace.Tracer
}

// New returns a Driver using the package-level Schedule.
func New() *Driver {
	return &Driver{schedule: Schedule, tracer: otel.Tracer("marketdata/backoff")}
}

// Run invokes fn; on error it sleeps the current schedule entry,
// advances the index (saturating at the last entry), and retries.
// Cancellation of ctx is observed within one schedule tick: an
// in-flight sleep aborts without a further retry, and Run returns
// ctx.Err().
func (d *Driver) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, span := d.tracer.Start(ctx, "backoff.run", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	index := 0
	attempt := 0
	for {
		select {
		case <-ctx.Done():
			span.SetStatus(codes.Error, "cancelled")
			return ctx.Err()
		default:
		}

		err := fn(ctx)
		if err == nil {
			span.SetStatus(codes.Ok, "succeeded")
			span.SetAttributes(attribute.Int("backoff.attempts", attempt+1))
			return nil
		}
		attempt++

		wait := d.schedule[index]
		if index < len(d.schedule)-1 {
			index++
		}
		span.AddEvent("retry scheduled", trace.WithAttributes(
			attribute.Int("attempt", attempt),
			attribute.String("wait", wait.String()),
		))

		select {
		case <-ctx.Done():
			span.SetStatus(codes.Error, "cancelled during wait")
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
