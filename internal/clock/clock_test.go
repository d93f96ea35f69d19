package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestManual_FiresInTriggerOrder(t *testing.T) {
	m := NewManual(epoch)

	var order []string
	m.AfterFunc(30*time.Millisecond, func() { order = append(order, "c") })
	m.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	m.AfterFunc(20*time.Millisecond, func() { order = append(order, "b") })

	m.Advance(25 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, m.Pending())
	assert.Equal(t, epoch.Add(25*time.Millisecond), m.Now())

	m.Advance(5 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_SameTimeIsFIFO(t *testing.T) {
	m := NewManual(epoch)

	var order []int
	for i := 0; i < 5; i++ {
		m.AfterFunc(time.Second, func() { order = append(order, i) })
	}
	m.Advance(time.Second)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestManual_NowDuringCallback(t *testing.T) {
	m := NewManual(epoch)

	var seen time.Time
	m.AfterFunc(40*time.Millisecond, func() { seen = m.Now() })
	m.Advance(time.Second)

	assert.Equal(t, epoch.Add(40*time.Millisecond), seen)
	assert.Equal(t, epoch.Add(time.Second), m.Now())
}

func TestManual_NestedScheduling(t *testing.T) {
	m := NewManual(epoch)

	fired := 0
	var tick func()
	tick = func() {
		fired++
		m.AfterFunc(10*time.Millisecond, tick)
	}
	m.AfterFunc(10*time.Millisecond, tick)

	m.Advance(55 * time.Millisecond)
	assert.Equal(t, 5, fired)
	assert.Equal(t, 1, m.Pending())
}

func TestManual_Stop(t *testing.T) {
	m := NewManual(epoch)

	fired := false
	timer := m.AfterFunc(time.Second, func() { fired = true })
	require.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports already stopped")

	m.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestManual_StopAfterFire(t *testing.T) {
	m := NewManual(epoch)

	timer := m.AfterFunc(time.Millisecond, func() {})
	m.Advance(time.Millisecond)
	assert.False(t, timer.Stop())
}

func TestManual_SetBackwardsFiresNothing(t *testing.T) {
	m := NewManual(epoch)

	fired := false
	m.AfterFunc(time.Millisecond, func() { fired = true })
	m.Set(epoch.Add(-time.Hour))

	assert.False(t, fired)
	assert.Equal(t, epoch.Add(-time.Hour), m.Now())
}

func TestManual_NegativeDelay(t *testing.T) {
	m := NewManual(epoch)

	fired := false
	m.AfterFunc(-time.Second, func() { fired = true })
	m.Advance(0)
	assert.True(t, fired)
}

func TestTickerFrames(t *testing.T) {
	m := NewManual(epoch)
	frames := NewTickerFrames(m, 0)

	var stamps []time.Time
	var step func(ts time.Time)
	step = func(ts time.Time) {
		stamps = append(stamps, ts)
		if len(stamps) < 3 {
			frames.RequestFrame(step)
		}
	}
	frames.RequestFrame(step)

	m.Advance(time.Second)
	require.Len(t, stamps, 3)
	assert.Equal(t, epoch.Add(DefaultFrameInterval), stamps[0])
	assert.Equal(t, epoch.Add(3*DefaultFrameInterval), stamps[2])
}

func TestManualFrames_FlushRunsOnlyQueuedBatch(t *testing.T) {
	var frames ManualFrames

	calls := 0
	var step func(ts time.Time)
	step = func(ts time.Time) {
		calls++
		frames.RequestFrame(step)
	}
	frames.RequestFrame(step)

	assert.Equal(t, 1, frames.Flush(epoch))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, frames.Pending())

	assert.Equal(t, 1, frames.Flush(epoch.Add(DefaultFrameInterval)))
	assert.Equal(t, 2, calls)
}

func TestSystem(t *testing.T) {
	c := System()
	done := make(chan struct{})
	c.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("system timer did not fire")
	}
	assert.False(t, c.Now().IsZero())
}
