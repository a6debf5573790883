// Package unit maintains the catalog of registered transformation units.
//
// Units are registered once at startup, in declaration order; the engine
// iterates the catalog in that order when matching a Target, so the order
// units appear in the catalog is part of observable scheduling behavior
// and never changes after construction.
package unit

import (
	"fmt"
	"sort"

	"github.com/spyglass-sec/spyglass/internal/work"
)

// Registry is the startup-registered unit catalog.
//
// Registration happens before the engine starts; afterwards the registry
// is read-only and safe for concurrent use without locking.
type Registry struct {
	units  []work.Unit
	byName map[string]work.Unit
}

// NewRegistry creates an empty catalog.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]work.Unit)}
}

// Register adds a unit to the catalog.
// Returns an error if a unit with the same name is already registered.
func (r *Registry) Register(u work.Unit) error {
	name := u.Name()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("unit %q already registered", name)
	}
	r.units = append(r.units, u)
	r.byName[name] = u
	return nil
}

// MustRegister is Register that panics on duplicate names.
// Intended for static catalog assembly at startup.
func (r *Registry) MustRegister(u work.Unit) {
	if err := r.Register(u); err != nil {
		panic(err)
	}
}

// Units returns the catalog in registration order.
// The returned slice is a copy; mutating it does not affect the registry.
func (r *Registry) Units() []work.Unit {
	out := make([]work.Unit, len(r.units))
	copy(out, r.units)
	return out
}

// Get looks up a unit by name.
func (r *Registry) Get(name string) (work.Unit, bool) {
	u, ok := r.byName[name]
	return u, ok
}

// Len returns the number of registered units.
func (r *Registry) Len() int {
	return len(r.units)
}

// Names returns all registered unit names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.units))
	for _, u := range r.units {
		names = append(names, u.Name())
	}
	sort.Strings(names)
	return names
}

// Filter derives a new registry containing only the selected units, in
// the original registration order.
//
// include: if non-empty, only the named units are kept.
// exclude: named units are dropped (applied after include).
// Returns an error if either list names an unknown unit, to surface
// configuration typos instead of silently running a reduced catalog.
func (r *Registry) Filter(include, exclude []string) (*Registry, error) {
	for _, name := range append(append([]string{}, include...), exclude...) {
		if _, ok := r.byName[name]; !ok {
			return nil, fmt.Errorf("unknown unit %q in filter", name)
		}
	}

	keep := func(name string) bool {
		if len(include) > 0 {
			found := false
			for _, n := range include {
				if n == name {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		for _, n := range exclude {
			if n == name {
				return false
			}
		}
		return true
	}

	out := NewRegistry()
	for _, u := range r.units {
		if keep(u.Name()) {
			out.MustRegister(u)
		}
	}
	return out, nil
}

// Override wraps a unit with a different priority, leaving the wrapped
// unit untouched. Used to apply per-unit priority overrides from
// configuration.
type Override struct {
	work.Unit
	priority int
}

// WithPriority returns u with its priority replaced.
func WithPriority(u work.Unit, priority int) work.Unit {
	return &Override{Unit: u, priority: priority}
}

// Priority returns the overridden priority.
func (o *Override) Priority() int {
	return o.priority
}

// ApplyOverrides rebuilds the registry with the configured per-unit
// priorities applied. Unknown names are an error.
func (r *Registry) ApplyOverrides(priorities map[string]int) (*Registry, error) {
	for name := range priorities {
		if _, ok := r.byName[name]; !ok {
			return nil, fmt.Errorf("unknown unit %q in priority overrides", name)
		}
	}

	out := NewRegistry()
	for _, u := range r.units {
		if p, ok := priorities[u.Name()]; ok {
			out.MustRegister(WithPriority(u, p))
		} else {
			out.MustRegister(u)
		}
	}
	return out, nil
}
