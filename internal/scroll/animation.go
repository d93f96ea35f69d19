package scroll

import (
	"sync"
	"time"
)

// State is the lifecycle stage of an Animation.
type State int

const (
	Idle State = iota
	Running
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Stats summarizes a finished or cancelled animation.
type Stats struct {
	Start      float64
	Target     float64
	Frames     int
	StartedAt  time.Time
	FinishedAt time.Time
	Cancelled  bool
}

// Animation interpolates a scroll offset from start to target over a fixed
// duration. It is driven one frame at a time through Step and never moves
// backwards in time: a frame timestamp earlier than a previous one reuses
// the previous progress.
type Animation struct {
	mu        sync.Mutex
	start     float64
	target    float64
	duration  time.Duration
	state     State
	startTime time.Time
	progress  time.Duration
	frames    int
	cancelled bool
	finished  time.Time
}

// NewAnimation creates an Idle animation.
func NewAnimation(start, target float64, duration time.Duration) *Animation {
	return &Animation{
		start:    start,
		target:   target,
		duration: duration,
	}
}

// Step advances the animation to the frame at now and returns the offset to
// write. ok is false once the animation is Done, in which case nothing must
// be written. The first Step records the start time.
func (a *Animation) Step(now time.Time) (pos float64, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case Done:
		return 0, false
	case Idle:
		a.startTime = now
		a.state = Running
	}
	a.frames++

	progress := now.Sub(a.startTime)
	if progress < a.progress {
		progress = a.progress
	}
	a.progress = progress

	if progress < a.duration {
		frac := float64(progress) / float64(a.duration)
		return a.start + (a.target-a.start)*frac, true
	}

	a.state = Done
	a.finished = now
	return a.target, true
}

// Cancel stops the animation without a final write. It returns false if the
// animation had already finished. A running animation finishes at its last
// frame.
func (a *Animation) Cancel() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Done {
		return false
	}
	if a.state == Running {
		a.finished = a.startTime.Add(a.progress)
	}
	a.state = Done
	a.cancelled = true
	return true
}

// State returns the current lifecycle stage.
func (a *Animation) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Target returns the final offset.
func (a *Animation) Target() float64 {
	return a.target
}

// Stats returns a snapshot of the animation's progress.
func (a *Animation) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Stats{
		Start:      a.start,
		Target:     a.target,
		Frames:     a.frames,
		StartedAt:  a.startTime,
		FinishedAt: a.finished,
		Cancelled:  a.cancelled,
	}
}
