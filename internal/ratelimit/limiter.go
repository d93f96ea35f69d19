// Package ratelimit gates high-frequency callbacks in time. A Debouncer
// delays its callback until calls stop arriving for a quiet period; a
// Throttler caps its callback to at most one leading and one trailing
// invocation per window. Both store the most recent call's argument and
// replay it on deferred invocations.
package ratelimit

import (
	"errors"
	"time"

	"pagekit/internal/clock"
)

var (
	// ErrNilCallback is returned when a limiter is built without a callback.
	ErrNilCallback = errors.New("ratelimit: callback is nil")

	// ErrNoClock is returned when the timer primitive is unavailable.
	ErrNoClock = errors.New("ratelimit: timer capability unavailable")

	// ErrNegativeWait is returned for a negative wait duration.
	ErrNegativeWait = errors.New("ratelimit: wait must not be negative")
)

// Edge identifies which side of a window produced an invocation.
type Edge string

const (
	EdgeLeading  Edge = "leading"
	EdgeTrailing Edge = "trailing"
)

// Observer receives notifications about limiter activity. Implementations
// must be safe for concurrent use.
type Observer interface {
	// Called is invoked for every call of the wrapped function.
	Called(name string)

	// Fired is invoked right before the callback runs.
	Fired(name string, edge Edge)
}

type options struct {
	clock     clock.Clock
	observer  Observer
	name      string
	immediate bool
	leading   bool
	trailing  bool
}

// Option configures a Debouncer or Throttler. Options that do not apply to
// a limiter kind are ignored.
type Option func(*options)

// WithClock sets the time source. Defaults to clock.System().
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithObserver attaches an Observer.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithName labels the limiter for observers.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithImmediate makes a Debouncer fire on the leading edge of an idle
// period instead of after it.
func WithImmediate(immediate bool) Option {
	return func(o *options) { o.immediate = immediate }
}

// WithLeading controls whether a Throttler fires on the leading edge.
// Defaults to true.
func WithLeading(leading bool) Option {
	return func(o *options) { o.leading = leading }
}

// WithTrailing controls whether a Throttler fires on the trailing edge.
// Defaults to true.
func WithTrailing(trailing bool) Option {
	return func(o *options) { o.trailing = trailing }
}

func buildOptions(wait time.Duration, opts []Option) (options, error) {
	o := options{
		clock:    clock.System(),
		name:     "unnamed",
		leading:  true,
		trailing: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		return o, ErrNoClock
	}
	if wait < 0 {
		return o, ErrNegativeWait
	}
	return o, nil
}

func (o *options) called() {
	if o.observer != nil {
		o.observer.Called(o.name)
	}
}

func (o *options) fired(edge Edge) {
	if o.observer != nil {
		o.observer.Fired(o.name, edge)
	}
}
