// Package lifecycle keeps named groups of cleanup functions that are run
// together when the page navigates or shuts down.
package lifecycle

import (
	"slices"
	"sort"
	"strconv"
	"sync"
)

// Subscriber is an event source that can be unsubscribed from.
type Subscriber interface {
	Subscribe(event string, fn func()) (unsubscribe func())
}

type entry struct {
	name string
	fn   func()
}

// Registry maps group keys to ordered cleanup functions.
type Registry struct {
	mu     sync.Mutex
	groups map[string][]entry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{groups: make(map[string][]entry)}
}

// Add registers fn under key with a generated name and returns the name.
// Names are the group size at insertion, skipping names already in use.
func (r *Registry) Add(key string, fn func()) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	group := r.groups[key]
	n := len(group)
	name := strconv.Itoa(n)
	for r.has(group, name) {
		n++
		name = strconv.Itoa(n)
	}
	r.groups[key] = append(group, entry{name: name, fn: fn})
	return name
}

// AddNamed registers fn under key and name. It returns false and changes
// nothing if name is already registered under key.
func (r *Registry) AddNamed(key, name string, fn func()) bool {
	if name == "" {
		r.Add(key, fn)
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	group := r.groups[key]
	if r.has(group, name) {
		return false
	}
	r.groups[key] = append(group, entry{name: name, fn: fn})
	return true
}

// Listen subscribes fn to event on src and registers the unsubscribe under
// key.
func (r *Registry) Listen(key string, src Subscriber, event string, fn func()) {
	unsubscribe := src.Subscribe(event, fn)
	r.Add(key, unsubscribe)
}

// Run invokes key's functions in registration order and forgets them. It
// returns how many ran.
func (r *Registry) Run(key string) int {
	r.mu.Lock()
	group := r.groups[key]
	delete(r.groups, key)
	r.mu.Unlock()

	for _, e := range group {
		e.fn()
	}
	return len(group)
}

// Len returns the number of functions registered under key.
func (r *Registry) Len(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.groups[key])
}

// Keys returns the registered group keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.groups))
	for k := range r.groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) has(group []entry, name string) bool {
	return slices.ContainsFunc(group, func(e entry) bool { return e.name == name })
}
