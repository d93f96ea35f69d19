package ratelimit

import (
	"sync"
	"time"

	"pagekit/internal/clock"
)

// Throttler invokes its callback at most once per wait window on the leading
// edge and at most once on the trailing edge, replaying the latest argument.
type Throttler[T any] struct {
	fn   func(T)
	wait time.Duration
	opts options

	mu       sync.Mutex
	timer    clock.Timer
	gen      uint64
	previous time.Time // zero until the first invocation
	pending  T
}

// NewThrottler wraps fn with throttle gating. Leading and trailing edges
// are both enabled unless WithLeading(false) or WithTrailing(false) is given.
func NewThrottler[T any](fn func(T), wait time.Duration, opts ...Option) (*Throttler[T], error) {
	if fn == nil {
		return nil, ErrNilCallback
	}
	o, err := buildOptions(wait, opts)
	if err != nil {
		return nil, err
	}
	return &Throttler[T]{fn: fn, wait: wait, opts: o}, nil
}

// Call records arg as the latest argument and either invokes the callback
// now or arranges a trailing invocation.
func (t *Throttler[T]) Call(arg T) {
	t.opts.called()

	t.mu.Lock()
	now := t.opts.clock.Now()
	if t.previous.IsZero() && !t.opts.leading {
		t.previous = now
	}
	remaining := t.remaining(now)
	t.pending = arg

	if remaining <= 0 || remaining > t.wait {
		if t.timer != nil {
			t.timer.Stop()
			t.timer = nil
			t.gen++
		}
		t.previous = now
		var zero T
		t.pending = zero
		t.mu.Unlock()

		t.opts.fired(EdgeLeading)
		t.fn(arg)
		return
	}

	if t.timer == nil && t.opts.trailing {
		t.gen++
		gen := t.gen
		t.timer = t.opts.clock.AfterFunc(remaining, func() { t.later(gen) })
	}
	t.mu.Unlock()
}

// Pending reports whether a trailing invocation is scheduled.
func (t *Throttler[T]) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// remaining returns how long until the current window closes. A negative
// elapsed time (clock moved backwards) yields a value above wait.
func (t *Throttler[T]) remaining(now time.Time) time.Duration {
	if t.previous.IsZero() {
		return 0
	}
	return t.wait - now.Sub(t.previous)
}

func (t *Throttler[T]) later(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	if t.opts.leading {
		t.previous = t.opts.clock.Now()
	} else {
		// Next Call starts a fresh cycle.
		t.previous = time.Time{}
	}
	arg := t.pending
	var zero T
	t.pending = zero
	t.mu.Unlock()

	t.opts.fired(EdgeTrailing)
	t.fn(arg)
}
