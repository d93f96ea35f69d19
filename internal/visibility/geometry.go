package visibility

import (
	"math"
	"slices"
	"sync"

	"pagekit/internal/dom"

	"golang.org/x/net/html"
)

// Geometry is an ObserverFactory that derives intersections from element
// boxes in a dom.Layout and a viewport window [offset, offset+height].
// A target whose edge touches the window intersects with ratio zero.
// Observers receive an initial entry when a target is observed and a new
// entry whenever a target's intersecting state flips on Update.
type Geometry struct {
	layout dom.Layout
	height float64

	mu        sync.Mutex
	offset    float64
	observers []*geometryObserver
}

// NewGeometry creates a Geometry for a viewport of the given height.
func NewGeometry(layout dom.Layout, viewportHeight float64) *Geometry {
	return &Geometry{layout: layout, height: viewportHeight}
}

// NewObserver implements ObserverFactory. Thresholds other than zero are
// not distinguished.
func (g *Geometry) NewObserver(callback func([]Entry), _ []float64) Observer {
	o := &geometryObserver{geometry: g, callback: callback, state: map[*html.Node]bool{}}
	g.mu.Lock()
	g.observers = append(g.observers, o)
	g.mu.Unlock()
	return o
}

// Update moves the viewport window and notifies observers of changes.
func (g *Geometry) Update(offset float64) {
	g.mu.Lock()
	g.offset = offset
	observers := slices.Clone(g.observers)
	g.mu.Unlock()

	for _, o := range observers {
		o.evaluate(false)
	}
}

// Observers returns the number of connected observers.
func (g *Geometry) Observers() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.observers)
}

func (g *Geometry) entry(n *html.Node) Entry {
	g.mu.Lock()
	offset := g.offset
	g.mu.Unlock()

	top := dom.ElementTop(g.layout, n)
	h := g.layout.Box(n).Height
	overlap := math.Min(top+h, offset+g.height) - math.Max(top, offset)

	e := Entry{Target: n}
	if h <= 0 {
		e.IsIntersecting = top >= offset && top <= offset+g.height
		if e.IsIntersecting {
			e.IntersectionRatio = 1
		}
		return e
	}
	if overlap >= 0 {
		e.IsIntersecting = true
		e.IntersectionRatio = math.Min(overlap/h, 1)
	}
	return e
}

func (g *Geometry) remove(o *geometryObserver) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = slices.DeleteFunc(g.observers, func(x *geometryObserver) bool { return x == o })
}

type geometryObserver struct {
	geometry *Geometry
	callback func([]Entry)

	mu      sync.Mutex
	targets []*html.Node
	state   map[*html.Node]bool
	closed  bool
}

func (o *geometryObserver) Observe(target *html.Node) {
	o.mu.Lock()
	if o.closed || slices.Contains(o.targets, target) {
		o.mu.Unlock()
		return
	}
	o.targets = append(o.targets, target)
	o.mu.Unlock()

	o.evaluate(true)
}

func (o *geometryObserver) Disconnect() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.targets = nil
	o.mu.Unlock()

	o.geometry.remove(o)
}

// evaluate delivers entries for targets whose state changed, plus targets
// seen for the first time when initial is set.
func (o *geometryObserver) evaluate(initial bool) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	targets := slices.Clone(o.targets)
	o.mu.Unlock()

	var changed []Entry
	for _, t := range targets {
		e := o.geometry.entry(t)
		o.mu.Lock()
		prev, seen := o.state[t]
		o.state[t] = e.IsIntersecting
		o.mu.Unlock()
		if (!seen && initial) || (seen && prev != e.IsIntersecting) {
			changed = append(changed, e)
		}
	}
	if len(changed) > 0 {
		o.callback(changed)
	}
}
