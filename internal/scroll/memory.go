package scroll

import (
	"slices"
	"sync"
)

// historyLimit bounds how many writes a MemoryViewport remembers.
const historyLimit = 1024

// MemoryViewport is an in-memory Viewport. It records every write and
// notifies subscribers after each one, which lets headless hosts feed
// scroll listeners the same way a browser window would.
type MemoryViewport struct {
	mu        sync.Mutex
	offset    float64
	history   []float64
	nextID    uint64
	listeners map[uint64]func(offset float64)
}

// NewMemoryViewport creates a viewport scrolled to offset.
func NewMemoryViewport(offset float64) *MemoryViewport {
	return &MemoryViewport{offset: offset}
}

// Offset returns the current scroll offset.
func (v *MemoryViewport) Offset() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// ScrollTo moves the viewport. Negative offsets clamp to zero.
func (v *MemoryViewport) ScrollTo(pos float64) {
	if pos < 0 {
		pos = 0
	}
	v.mu.Lock()
	v.offset = pos
	v.history = append(v.history, pos)
	if len(v.history) > historyLimit {
		v.history = v.history[len(v.history)-historyLimit:]
	}
	ids := make([]uint64, 0, len(v.listeners))
	for id := range v.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]func(float64), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, v.listeners[id])
	}
	v.mu.Unlock()

	for _, fn := range listeners {
		fn(pos)
	}
}

// Subscribe registers fn to run after every write, in subscription order,
// and returns a function removing it.
func (v *MemoryViewport) Subscribe(fn func(offset float64)) (unsubscribe func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.listeners == nil {
		v.listeners = make(map[uint64]func(float64))
	}
	v.nextID++
	id := v.nextID
	v.listeners[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.listeners, id)
	}
}

// Listeners returns the number of live subscriptions.
func (v *MemoryViewport) Listeners() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.listeners)
}

// History returns the most recent offsets written, oldest first.
func (v *MemoryViewport) History() []float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]float64(nil), v.history...)
}

// SmoothMemoryViewport is a MemoryViewport with native smooth scrolling,
// which it models as a single immediate write.
type SmoothMemoryViewport struct {
	*MemoryViewport
	mu     sync.Mutex
	smooth []float64
}

// NewSmoothMemoryViewport creates a smooth-capable viewport at offset.
func NewSmoothMemoryViewport(offset float64) *SmoothMemoryViewport {
	return &SmoothMemoryViewport{MemoryViewport: NewMemoryViewport(offset)}
}

// SmoothScrollTo records the request and jumps to pos.
func (v *SmoothMemoryViewport) SmoothScrollTo(pos float64) {
	v.mu.Lock()
	v.smooth = append(v.smooth, pos)
	v.mu.Unlock()
	v.ScrollTo(pos)
}

// SmoothRequests returns the targets passed to SmoothScrollTo.
func (v *SmoothMemoryViewport) SmoothRequests() []float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]float64(nil), v.smooth...)
}
