package lifecycle

import (
	"slices"
	"sync"
)

// Events is an in-process event source keyed by event name.
type Events struct {
	mu   sync.Mutex
	next uint64
	subs map[string]map[uint64]func()
}

// NewEvents creates an empty event source.
func NewEvents() *Events {
	return &Events{subs: make(map[string]map[uint64]func())}
}

// Subscribe implements Subscriber.
func (e *Events) Subscribe(event string, fn func()) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.next
	e.next++
	if e.subs[event] == nil {
		e.subs[event] = make(map[uint64]func())
	}
	e.subs[event][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.subs[event], id)
		})
	}
}

// Emit calls every subscriber of event in subscription order and returns
// how many were called.
func (e *Events) Emit(event string) int {
	e.mu.Lock()
	ids := make([]uint64, 0, len(e.subs[event]))
	for id := range e.subs[event] {
		ids = append(ids, id)
	}
	fns := make([]func(), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, e.subs[event][id])
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Subscribers returns the number of live subscriptions for event.
func (e *Events) Subscribers(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs[event])
}
