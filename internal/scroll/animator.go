// Package scroll animates a viewport to a target offset. It prefers the
// host's native smooth scrolling and falls back to an Animation stepped
// once per frame by a clock.FrameScheduler.
package scroll

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"pagekit/internal/clock"
)

const (
	// DefaultDuration is the manual animation length when none is given.
	DefaultDuration = 500 * time.Millisecond

	// DefaultHeaderOffset is the height kept clear for a sticky header.
	DefaultHeaderOffset = 70
)

var (
	// ErrNoViewport is returned when no viewport is supplied.
	ErrNoViewport = errors.New("scroll: viewport is nil")

	// ErrNoFrameScheduler is returned when the frame primitive is unavailable.
	ErrNoFrameScheduler = errors.New("scroll: frame scheduler capability unavailable")
)

// Viewport is the scrollable window.
type Viewport interface {
	Offset() float64
	ScrollTo(pos float64)
}

// SmoothScroller is implemented by viewports with native smooth scrolling.
type SmoothScroller interface {
	SmoothScrollTo(pos float64)
}

// Observer is notified about scroll requests. Implementations must be safe
// for concurrent use.
type Observer interface {
	NativeScroll(target float64)
	AnimationDone(stats Stats)
}

type options struct {
	duration     time.Duration
	headerOffset float64
	headerFixed  func() bool
	native       bool
	observer     Observer
	logger       *slog.Logger
}

// Option configures an Animator.
type Option func(*options)

// WithDuration sets the default animation duration.
func WithDuration(d time.Duration) Option {
	return func(o *options) { o.duration = d }
}

// WithHeaderOffset sets how far above the target to land when the header
// would cover it.
func WithHeaderOffset(offset float64) Option {
	return func(o *options) { o.headerOffset = offset }
}

// WithHeaderFixed installs a callback reporting whether the navigation header
// is currently pinned.
func WithHeaderFixed(fixed func() bool) Option {
	return func(o *options) { o.headerFixed = fixed }
}

// WithNativeSmooth enables or disables delegation to SmoothScroller.
// Enabled by default.
func WithNativeSmooth(enabled bool) Option {
	return func(o *options) { o.native = enabled }
}

// WithObserver attaches an Observer.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Animator scrolls a Viewport to target offsets. At most one manual
// animation runs at a time; starting a new one cancels the previous.
type Animator struct {
	viewport Viewport
	frames   clock.FrameScheduler
	opts     options

	mu      sync.Mutex
	current *Animation
}

// NewAnimator creates an Animator for v driven by frames.
func NewAnimator(v Viewport, frames clock.FrameScheduler, opts ...Option) (*Animator, error) {
	if v == nil {
		return nil, ErrNoViewport
	}
	if frames == nil {
		return nil, ErrNoFrameScheduler
	}
	o := options{
		duration:     DefaultDuration,
		headerOffset: DefaultHeaderOffset,
		native:       true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Animator{viewport: v, frames: frames, opts: o}, nil
}

// ScrollTo scrolls to target using the default duration.
func (a *Animator) ScrollTo(target float64) *Animation {
	return a.ScrollToDuration(target, a.opts.duration)
}

// ScrollToDuration scrolls to target over d. It returns the running
// Animation, or nil when native smooth scrolling handled the request.
// A non-positive d lands on the first frame.
func (a *Animator) ScrollToDuration(target float64, d time.Duration) *Animation {
	current := a.viewport.Offset()
	target = a.destination(current, target)

	a.Stop()

	if a.opts.native {
		if smooth, ok := a.viewport.(SmoothScroller); ok {
			smooth.SmoothScrollTo(target)
			if a.opts.observer != nil {
				a.opts.observer.NativeScroll(target)
			}
			a.opts.logger.Debug("Native smooth scroll", "from", current, "to", target)
			return nil
		}
	}

	anim := NewAnimation(current, target, d)
	a.mu.Lock()
	a.current = anim
	a.mu.Unlock()

	a.frames.RequestFrame(a.stepper(anim))
	return anim
}

// Stop cancels the running manual animation, if any, and reports whether
// one was cancelled. No further frames write to the viewport.
func (a *Animator) Stop() bool {
	a.mu.Lock()
	anim := a.current
	a.current = nil
	a.mu.Unlock()
	if anim == nil || !anim.Cancel() {
		return false
	}
	a.done(anim)
	return true
}

// Current returns the running manual animation, if any.
func (a *Animator) Current() *Animation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// destination lowers target by the header offset when scrolling up or when
// the header is pinned, so the target does not end up underneath it.
func (a *Animator) destination(current, target float64) float64 {
	if current > target || (a.opts.headerFixed != nil && a.opts.headerFixed()) {
		return target - a.opts.headerOffset
	}
	return target
}

func (a *Animator) stepper(anim *Animation) func(time.Time) {
	var step func(ts time.Time)
	step = func(ts time.Time) {
		pos, ok := anim.Step(ts)
		if !ok {
			return
		}
		a.viewport.ScrollTo(pos)
		if anim.State() == Running {
			a.frames.RequestFrame(step)
			return
		}

		a.mu.Lock()
		if a.current == anim {
			a.current = nil
		}
		a.mu.Unlock()
		a.done(anim)
	}
	return step
}

func (a *Animator) done(anim *Animation) {
	stats := anim.Stats()
	if a.opts.observer != nil {
		a.opts.observer.AnimationDone(stats)
	}
	a.opts.logger.Debug("Scroll animation finished",
		"target", stats.Target,
		"frames", stats.Frames,
		"cancelled", stats.Cancelled,
	)
}
