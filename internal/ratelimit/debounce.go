package ratelimit

import (
	"sync"
	"time"

	"pagekit/internal/clock"
)

// Debouncer delays invoking its callback until wait has elapsed since the
// last Call. In immediate mode the callback fires on the first Call of an
// idle period and the deferred fire is suppressed.
type Debouncer[T any] struct {
	fn   func(T)
	wait time.Duration
	opts options

	mu      sync.Mutex
	timer   clock.Timer
	gen     uint64
	pending T
}

// NewDebouncer wraps fn with debounce gating.
func NewDebouncer[T any](fn func(T), wait time.Duration, opts ...Option) (*Debouncer[T], error) {
	if fn == nil {
		return nil, ErrNilCallback
	}
	o, err := buildOptions(wait, opts)
	if err != nil {
		return nil, err
	}
	return &Debouncer[T]{fn: fn, wait: wait, opts: o}, nil
}

// Call records arg as the latest argument and restarts the wait window.
func (d *Debouncer[T]) Call(arg T) {
	d.opts.called()

	d.mu.Lock()
	callNow := d.opts.immediate && d.timer == nil
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = arg
	d.timer = d.opts.clock.AfterFunc(d.wait, func() { d.later(gen) })
	d.mu.Unlock()

	if callNow {
		d.opts.fired(EdgeLeading)
		d.fn(arg)
	}
}

// Pending reports whether a deferred timer is outstanding.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer[T]) later(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		// Superseded by a later Call whose Stop lost the race.
		d.mu.Unlock()
		return
	}
	d.timer = nil
	arg := d.pending
	var zero T
	d.pending = zero
	d.mu.Unlock()

	if d.opts.immediate {
		return
	}
	d.opts.fired(EdgeTrailing)
	d.fn(arg)
}
