package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on resolution spans and metrics.
const (
	AttrInterface = "di.interface"
	AttrScope     = "di.scope"
	AttrCreated   = "di.created"
)

// Instrumentation traces and measures container activity. It satisfies the
// container's instrumentation hooks: each resolution becomes a span, and
// resolutions, creation durations and open scopes are exported as metrics.
type Instrumentation struct {
	tracer trace.Tracer

	resolveTotal   metric.Int64Counter
	resolveErrors  metric.Int64Counter
	createDuration metric.Float64Histogram
	openScopes     metric.Int64UpDownCounter
}

// NewInstrumentation creates container instrumentation using the global
// tracer and meter providers under the given instrumentation name.
func NewInstrumentation(name string) (*Instrumentation, error) {
	meter := Meter(name)

	resolveTotal, err := meter.Int64Counter("di.resolve.total",
		metric.WithDescription("Total number of resolutions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolve.total counter: %w", err)
	}

	resolveErrors, err := meter.Int64Counter("di.resolve.errors",
		metric.WithDescription("Number of failed resolutions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolve.errors counter: %w", err)
	}

	createDuration, err := meter.Float64Histogram("di.create.duration",
		metric.WithDescription("Duration of instance creations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.create.duration histogram: %w", err)
	}

	openScopes, err := meter.Int64UpDownCounter("di.scopes.open",
		metric.WithDescription("Number of currently open scopes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.scopes.open gauge: %w", err)
	}

	return &Instrumentation{
		tracer:         Tracer(name),
		resolveTotal:   resolveTotal,
		resolveErrors:  resolveErrors,
		createDuration: createDuration,
		openScopes:     openScopes,
	}, nil
}

// ResolveStart begins observing one resolution. The returned callback must
// be invoked exactly once with the outcome.
func (i *Instrumentation) ResolveStart(ctx context.Context, iface, scope string) (context.Context, func(created bool, err error)) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrInterface, iface),
		attribute.String(AttrScope, scope),
	}
	ctx, span := i.tracer.Start(ctx, "di.resolve",
		trace.WithAttributes(attrs...))
	start := time.Now()

	return ctx, func(created bool, err error) {
		span.SetAttributes(attribute.Bool(AttrCreated, created))
		i.resolveTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
		if created {
			i.createDuration.Record(ctx, time.Since(start).Seconds(),
				metric.WithAttributes(attrs...))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			i.resolveErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
		span.End()
	}
}

// ScopeOpened reports a scope being opened.
func (i *Instrumentation) ScopeOpened(ctx context.Context, scope string) {
	i.openScopes.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrScope, scope)))
}

// ScopeClosed reports a scope being closed.
func (i *Instrumentation) ScopeClosed(ctx context.Context, scope string) {
	i.openScopes.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrScope, scope)))
}
