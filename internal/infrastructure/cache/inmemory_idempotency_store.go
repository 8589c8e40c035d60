package cache

import (
	"context"
	"sync"
	"time"

	"github.com/realty/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore keeps processed event IDs in process memory
// Suitable for single-instance deployments and tests
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]time.Time // eventID -> expiry
	done    chan struct{}
	once    sync.Once
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store
// A background janitor removes expired entries every cleanupInterval
func NewInMemoryIdempotencyStore(cleanupInterval time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		entries: make(map[string]time.Time),
		done:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go s.janitor(cleanupInterval)
	}
	return s
}

// MarkProcessed marks an event as processed, returning false for duplicates
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if expiry, ok := s.entries[eventID]; ok && expiry.After(now) {
		return false, nil
	}
	s.entries[eventID] = now.Add(ttl)
	return true, nil
}

// IsProcessed checks whether an event has already been processed
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.entries[eventID]
	return ok && expiry.After(time.Now()), nil
}

// Close stops the janitor goroutine
func (s *InMemoryIdempotencyStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *InMemoryIdempotencyStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for id, expiry := range s.entries {
				if expiry.Before(now) {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Ensure InMemoryIdempotencyStore implements IdempotencyStore
var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
