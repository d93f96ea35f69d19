package observability

import (
	"context"
	"testing"
	"time"

	"pagekit/internal/clock"
	"pagekit/internal/ratelimit"
	"pagekit/internal/scroll"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type harness struct {
	inst     *Instrumentation
	reader   *sdkmetric.ManualReader
	recorder *tracetest.SpanRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() {
		mp.Shutdown(context.Background())
		tp.Shutdown(context.Background())
	})

	inst, err := NewInstrumentation(mp, tp)
	require.NoError(t, err)
	return &harness{inst: inst, reader: reader, recorder: recorder}
}

func (h *harness) metric(t *testing.T, name string) metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, h.reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("metric %s not found", name)
	return metricdata.Metrics{}
}

func sumFor(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestInstrumentation_RateLimiter(t *testing.T) {
	h := newHarness(t)

	h.inst.Called("scroll")
	h.inst.Called("scroll")
	h.inst.Called("resize")
	h.inst.Fired("scroll", ratelimit.EdgeLeading)
	h.inst.Fired("scroll", ratelimit.EdgeTrailing)
	h.inst.Fired("scroll", ratelimit.EdgeTrailing)

	calls := h.metric(t, "ratelimit.calls")
	assert.Equal(t, int64(2), sumFor(t, calls, attribute.String("limiter", "scroll")))
	assert.Equal(t, int64(1), sumFor(t, calls, attribute.String("limiter", "resize")))

	inv := h.metric(t, "ratelimit.invocations")
	assert.Equal(t, int64(1), sumFor(t, inv,
		attribute.String("limiter", "scroll"), attribute.String("edge", "leading")))
	assert.Equal(t, int64(2), sumFor(t, inv,
		attribute.String("limiter", "scroll"), attribute.String("edge", "trailing")))
}

func TestInstrumentation_ScrollAnimation(t *testing.T) {
	h := newHarness(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	h.inst.NativeScroll(500)
	h.inst.AnimationDone(scroll.Stats{
		Start:      0,
		Target:     1000,
		Frames:     33,
		StartedAt:  start,
		FinishedAt: start.Add(512 * time.Millisecond),
	})
	h.inst.AnimationDone(scroll.Stats{Target: 10, Cancelled: true})

	requests := h.metric(t, "scroll.requests")
	assert.Equal(t, int64(1), sumFor(t, requests, attribute.String("mode", "native")))
	assert.Equal(t, int64(2), sumFor(t, requests, attribute.String("mode", "animated")))

	frames, ok := h.metric(t, "scroll.animation.frames").Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	var count uint64
	var total int64
	for _, dp := range frames.DataPoints {
		count += dp.Count
		total += dp.Sum
	}
	assert.Equal(t, uint64(2), count)
	assert.Equal(t, int64(33), total)

	duration, ok := h.metric(t, "scroll.animation.duration").Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, duration.DataPoints, 1, "cancelled before first frame has no duration")
	assert.InDelta(t, 0.512, duration.DataPoints[0].Sum, 1e-9)

	spans := h.recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "scroll.animation", spans[0].Name())
	assert.Equal(t, start, spans[0].StartTime())
	assert.Equal(t, start.Add(512*time.Millisecond), spans[0].EndTime())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("scroll.frames", 33))
}

func TestInstrumentation_ReplacedAnimation(t *testing.T) {
	h := newHarness(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	frames := &clock.ManualFrames{}
	animator, err := scroll.NewAnimator(scroll.NewMemoryViewport(0), frames, scroll.WithObserver(h.inst))
	require.NoError(t, err)

	animator.ScrollToDuration(1000, 500*time.Millisecond)
	frames.Flush(start)
	frames.Flush(start.Add(100 * time.Millisecond))
	animator.ScrollToDuration(200, 500*time.Millisecond)

	duration, ok := h.metric(t, "scroll.animation.duration").Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, duration.DataPoints, 1)
	assert.InDelta(t, 0.1, duration.DataPoints[0].Sum, 1e-9)
	assert.Contains(t, duration.DataPoints[0].Attributes.ToSlice(), attribute.Bool("cancelled", true))

	spans := h.recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, start, spans[0].StartTime())
	assert.Equal(t, start.Add(100*time.Millisecond), spans[0].EndTime())
	assert.Contains(t, spans[0].Attributes(), attribute.Bool("scroll.cancelled", true))
}

func TestNewInstrumentation_GlobalProviders(t *testing.T) {
	inst, err := NewInstrumentation(nil, nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		inst.Called("x")
		inst.AnimationDone(scroll.Stats{})
	})
}
