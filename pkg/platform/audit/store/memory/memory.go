// Package memory provides an in-memory audit store for tests and
// single-process deployments.
package memory

import (
	"context"
	"sync"

	audit "veripass/pkg/platform/audit"
)

// InMemoryStore keeps audit events in an append-only slice.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

// NewInMemoryStore constructs an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Append adds an event to the log.
func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListRecent returns up to limit events, newest last. A non-positive limit
// returns everything.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && len(s.events) > limit {
		start = len(s.events) - limit
	}
	out := make([]audit.Event, len(s.events)-start)
	copy(out, s.events[start:])
	return out, nil
}
