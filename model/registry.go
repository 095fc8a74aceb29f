package model

import (
	"sync"

	"github.com/hupe1980/predictmesh/core"
)

// Registry maps capability model names to Model implementations. Capability
// sets are externally configured, so resolution stays a plain keyed map with
// an optional default for names no provider claims.
type Registry struct {
	mu       sync.RWMutex
	models   map[string]Model
	fallback Model
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]Model)}
}

// Register makes a model resolvable under the given name. An existing
// registration for the same name is replaced.
func (r *Registry) Register(name string, m Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[name] = m
}

// SetFallback installs the model used for names without a registration.
func (r *Registry) SetFallback(m Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = m
}

// Resolve returns the model registered under name, the fallback if none is,
// or a LookupError when neither exists.
func (r *Registry) Resolve(name string) (Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.models[name]; ok {
		return m, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, core.NewLookupError("no model registered for name: %s", name)
}
