package idempotency

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	status    Status
	expiresAt time.Time
}

// MemoryStore mirrors the Redis semantics in-process: claim is conditional
// under the mutex, records expire by TTL. Used by tests and offline runs.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	ttls    TTLs
	now     func() time.Time
}

func NewMemoryStore(ttls TTLs) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		ttls:    ttls,
		now:     time.Now,
	}
}

func (s *MemoryStore) get(eventID string) Status {
	e, ok := s.entries[eventID]
	if !ok {
		return StatusAbsent
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, eventID)
		return StatusAbsent
	}
	return e.status
}

func (s *MemoryStore) Claim(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.get(eventID) {
	case StatusProcessing, StatusProcessed:
		return false, nil
	}
	s.entries[eventID] = entry{status: StatusProcessing, expiresAt: s.now().Add(s.ttls.Processing)}
	return true, nil
}

func (s *MemoryStore) MarkProcessed(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[eventID] = entry{status: StatusProcessed, expiresAt: s.now().Add(s.ttls.Processed)}
	return nil
}

func (s *MemoryStore) MarkFailed(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[eventID] = entry{status: StatusFailed, expiresAt: s.now().Add(s.ttls.Failed)}
	return nil
}

func (s *MemoryStore) Status(_ context.Context, eventID string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(eventID), nil
}
