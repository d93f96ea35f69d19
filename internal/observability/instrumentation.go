package observability

import (
	"context"
	"fmt"

	"pagekit/internal/ratelimit"
	"pagekit/internal/scroll"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "pagekit"

// Instrumentation records rate limiter and scroll activity as metrics and
// animation spans. It implements ratelimit.Observer and scroll.Observer.
type Instrumentation struct {
	tracer      trace.Tracer
	calls       metric.Int64Counter
	invocations metric.Int64Counter
	requests    metric.Int64Counter
	frames      metric.Int64Histogram
	duration    metric.Float64Histogram
}

var (
	_ ratelimit.Observer = (*Instrumentation)(nil)
	_ scroll.Observer    = (*Instrumentation)(nil)
)

// NewInstrumentation creates instruments from mp and tp. Nil providers fall
// back to the global ones.
func NewInstrumentation(mp metric.MeterProvider, tp trace.TracerProvider) (*Instrumentation, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	meter := mp.Meter(instrumentationName)

	i := &Instrumentation{tracer: tp.Tracer(instrumentationName)}
	var err error

	i.calls, err = meter.Int64Counter(
		"ratelimit.calls",
		metric.WithDescription("Calls made to rate limited functions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("ratelimit.calls: %w", err)
	}

	i.invocations, err = meter.Int64Counter(
		"ratelimit.invocations",
		metric.WithDescription("Invocations of rate limited functions by edge"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("ratelimit.invocations: %w", err)
	}

	i.requests, err = meter.Int64Counter(
		"scroll.requests",
		metric.WithDescription("Scroll requests by mode"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("scroll.requests: %w", err)
	}

	i.frames, err = meter.Int64Histogram(
		"scroll.animation.frames",
		metric.WithDescription("Frames rendered per scroll animation"),
		metric.WithUnit("{frame}"),
	)
	if err != nil {
		return nil, fmt.Errorf("scroll.animation.frames: %w", err)
	}

	i.duration, err = meter.Float64Histogram(
		"scroll.animation.duration",
		metric.WithDescription("Wall time of scroll animations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("scroll.animation.duration: %w", err)
	}

	return i, nil
}

func (i *Instrumentation) Called(name string) {
	i.calls.Add(context.Background(), 1, metric.WithAttributes(attribute.String("limiter", name)))
}

func (i *Instrumentation) Fired(name string, edge ratelimit.Edge) {
	i.invocations.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("limiter", name),
		attribute.String("edge", string(edge)),
	))
}

func (i *Instrumentation) NativeScroll(target float64) {
	i.requests.Add(context.Background(), 1, metric.WithAttributes(attribute.String("mode", "native")))
}

// AnimationDone records the animation and emits a span covering its
// lifetime. Animations without a first and last frame have no duration or
// span.
func (i *Instrumentation) AnimationDone(stats scroll.Stats) {
	ctx := context.Background()
	i.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", "animated")))

	attrs := []attribute.KeyValue{attribute.Bool("cancelled", stats.Cancelled)}
	i.frames.Record(ctx, int64(stats.Frames), metric.WithAttributes(attrs...))

	if stats.StartedAt.IsZero() || stats.FinishedAt.Before(stats.StartedAt) {
		return
	}
	i.duration.Record(ctx, stats.FinishedAt.Sub(stats.StartedAt).Seconds(), metric.WithAttributes(attrs...))

	_, span := i.tracer.Start(ctx, "scroll.animation",
		trace.WithTimestamp(stats.StartedAt),
		trace.WithAttributes(
			attribute.Float64("scroll.start", stats.Start),
			attribute.Float64("scroll.target", stats.Target),
			attribute.Int("scroll.frames", stats.Frames),
			attribute.Bool("scroll.cancelled", stats.Cancelled),
		),
	)
	span.End(trace.WithTimestamp(stats.FinishedAt))
}
