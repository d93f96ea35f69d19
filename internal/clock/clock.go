// Package clock abstracts the host timing primitives the page utilities rely
// on: wall time, one-shot timers and animation frames. Production code uses
// System and TickerFrames; tests and the headless simulator use Manual and
// ManualFrames to drive time deterministically.
package clock

import "time"

// Timer represents a scheduled callback that can be stopped.
type Timer interface {
	// Stop prevents the timer from firing. Returns false if the timer
	// already fired or was stopped.
	Stop() bool
}

// Clock provides time-related operations.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// System returns the Clock backed by the standard library.
func System() Clock {
	return systemClock{}
}
