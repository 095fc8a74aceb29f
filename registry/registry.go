// Package registry provides in-memory AgentStore and CapabilityStore
// implementations. Agents and capabilities are authored externally and
// loaded once at startup; the registry is the read-only lookup surface the
// pipeline resolves them through.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/predictmesh/core"
)

// InMemoryRegistry holds agents by id and capabilities by alias. It is safe
// for concurrent access; alias uniqueness is enforced at registration.
type InMemoryRegistry struct {
	mu           sync.RWMutex
	agents       map[string]*core.Agent
	capabilities map[string]*core.Capability
}

// NewInMemoryRegistry constructs an empty registry.
func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		agents:       make(map[string]*core.Agent),
		capabilities: make(map[string]*core.Capability),
	}
}

// RegisterAgent stores an agent by id, replacing any previous registration.
func (r *InMemoryRegistry) RegisterAgent(a *core.Agent) error {
	if a.ID == "" {
		return fmt.Errorf("agent id must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.ID] = a
	return nil
}

// RegisterCapability stores a capability by alias. Aliases are globally
// unique: re-registering an existing alias fails.
func (r *InMemoryRegistry) RegisterCapability(c *core.Capability) error {
	if c.Alias == "" {
		return fmt.Errorf("capability alias must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.capabilities[c.Alias]; exists {
		return fmt.Errorf("capability alias already registered: %s", c.Alias)
	}
	r.capabilities[c.Alias] = c
	return nil
}

// Agent implements core.AgentStore; returns (nil, nil) when no agent exists.
func (r *InMemoryRegistry) Agent(_ context.Context, id string) (*core.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.agents[id], nil
}

// Capability implements core.CapabilityStore; returns (nil, nil) when no
// capability exists.
func (r *InMemoryRegistry) Capability(_ context.Context, alias string) (*core.Capability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.capabilities[alias], nil
}
