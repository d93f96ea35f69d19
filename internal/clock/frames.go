package clock

import (
	"sync"
	"time"
)

// DefaultFrameInterval approximates a 60Hz display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameScheduler requests a callback on the next animation frame. The
// callback receives the frame timestamp.
type FrameScheduler interface {
	RequestFrame(fn func(ts time.Time))
}

// TickerFrames emits frames at a fixed interval using a Clock.
type TickerFrames struct {
	clock    Clock
	interval time.Duration
}

// NewTickerFrames creates a FrameScheduler firing every interval on c.
// A non-positive interval falls back to DefaultFrameInterval.
func NewTickerFrames(c Clock, interval time.Duration) *TickerFrames {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TickerFrames{clock: c, interval: interval}
}

// RequestFrame schedules fn for the next frame.
func (f *TickerFrames) RequestFrame(fn func(ts time.Time)) {
	c := f.clock
	c.AfterFunc(f.interval, func() {
		fn(c.Now())
	})
}

// ManualFrames queues frame requests until Flush is called.
type ManualFrames struct {
	mu      sync.Mutex
	pending []func(time.Time)
}

// RequestFrame queues fn for the next Flush.
func (f *ManualFrames) RequestFrame(fn func(ts time.Time)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, fn)
}

// Flush runs the callbacks queued before the call with timestamp ts and
// returns how many ran. Requests made during the flush wait for the next one.
func (f *ManualFrames) Flush(ts time.Time) int {
	f.mu.Lock()
	batch := f.pending
	f.pending = nil
	f.mu.Unlock()

	for _, fn := range batch {
		fn(ts)
	}
	return len(batch)
}

// Pending returns the number of queued frame callbacks.
func (f *ManualFrames) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}
