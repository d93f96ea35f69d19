// Package visibility fires one-shot callbacks when an element first enters
// the viewport. Detection is delegated to an intersection observer supplied
// by the host; without one, callbacks fire immediately.
package visibility

import (
	"sync"

	"golang.org/x/net/html"
)

// Entry reports one target's intersection with the viewport.
type Entry struct {
	Target            *html.Node
	IsIntersecting    bool
	IntersectionRatio float64
}

// Visible reports whether any part of the target overlaps the viewport.
func (e Entry) Visible() bool {
	return e.IsIntersecting || e.IntersectionRatio > 0
}

// Observer watches targets and reports intersection changes.
type Observer interface {
	Observe(target *html.Node)
	Disconnect()
}

// ObserverFactory creates observers. A nil factory means the host cannot
// detect intersections.
type ObserverFactory interface {
	NewObserver(callback func(entries []Entry), thresholds []float64) Observer
}

// Binding ties one element to one callback until the callback fires.
type Binding struct {
	target *html.Node
	cb     func()

	mu       sync.Mutex
	observer Observer
	fired    bool
	closed   bool
}

// OnFirstVisible runs cb the first time el is reported visible, then stops
// observing. If factory is nil, cb runs synchronously before returning.
func OnFirstVisible(factory ObserverFactory, el *html.Node, cb func()) *Binding {
	b := &Binding{target: el, cb: cb}
	if factory == nil {
		b.fired = true
		b.closed = true
		cb()
		return b
	}

	obs := factory.NewObserver(b.handle, []float64{0})
	b.mu.Lock()
	b.observer = obs
	b.mu.Unlock()

	obs.Observe(el)
	return b
}

// Fired reports whether the callback has run.
func (b *Binding) Fired() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fired
}

// Disconnect abandons the binding without firing.
func (b *Binding) Disconnect() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	obs := b.observer
	b.mu.Unlock()

	if obs != nil {
		obs.Disconnect()
	}
}

func (b *Binding) handle(entries []Entry) {
	visible := false
	for _, e := range entries {
		if (e.Target == nil || e.Target == b.target) && e.Visible() {
			visible = true
			break
		}
	}
	if !visible {
		return
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.fired = true
	b.closed = true
	obs := b.observer
	b.mu.Unlock()

	b.cb()
	if obs != nil {
		obs.Disconnect()
	}
}
