// Package thread provides ThreadStore implementations persisting the
// per-subscription conversation logs. The in-memory store is a volatile,
// process-local implementation suited for tests and ephemeral deployments;
// the redis subpackage provides a durable backend.
package thread

import (
	"context"
	"sync"

	"github.com/hupe1980/predictmesh/core"
)

// InMemoryStore is a volatile ThreadStore implementation storing threads in a
// process local map. It is safe for concurrent access. Each returned thread
// is cloned to prevent external mutation of internal state.
type InMemoryStore struct {
	mu      sync.Mutex
	threads map[string]*core.Thread
}

// NewInMemoryStore constructs an empty in-memory thread store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{threads: make(map[string]*core.Thread)}
}

// FindOrCreate returns a clone of the existing thread for the subscription or
// atomically creates a new one.
func (s *InMemoryStore) FindOrCreate(_ context.Context, subscriptionID string) (*core.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findOrCreateLocked(subscriptionID).Clone(), nil
}

// Append adds a message to the thread, creating the thread if necessary.
func (s *InMemoryStore) Append(_ context.Context, subscriptionID string, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findOrCreateLocked(subscriptionID).Append(msg)
	return nil
}

// findOrCreateLocked allocates and stores a new thread if none exists; caller
// must already hold the lock.
func (s *InMemoryStore) findOrCreateLocked(subscriptionID string) *core.Thread {
	th, ok := s.threads[subscriptionID]
	if !ok {
		th = core.NewThread(subscriptionID)
		s.threads[subscriptionID] = th
	}
	return th
}
