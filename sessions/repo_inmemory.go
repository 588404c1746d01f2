package sessions

import (
	"context"
	"errors"
	"sync"
	"time"
)

type entry struct {
	record    Record
	expiresAt time.Time
}

// InMemoryRepo is a thread-safe in-memory implementation of Repo.
type InMemoryRepo struct {
	mu      sync.RWMutex
	entries map[string]entry

	now func() time.Time
}

// NewInMemoryRepo creates a new in-memory session repository.
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

var _ Repo = (*InMemoryRepo)(nil)

// Upsert stores the record with an absolute expiry, replacing any existing
// record for the session ID.
func (r *InMemoryRepo) Upsert(_ context.Context, sessionID string, record Record, ttl time.Duration) error {
	if sessionID == "" {
		return errors.New("session id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[sessionID] = entry{
		record:    record,
		expiresAt: r.now().Add(ttl),
	}
	return nil
}

// Get retrieves the live record for the session ID. Expired and incomplete
// records are reported as ErrNotFound even before physical eviction.
func (r *InMemoryRepo) Get(_ context.Context, sessionID string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[sessionID]
	if !ok || r.now().After(e.expiresAt) {
		return nil, ErrNotFound
	}

	switch rec := e.record.(type) {
	case PendingAuth:
		if !rec.complete() {
			return nil, ErrNotFound
		}
	case Authenticated:
		if !rec.complete() {
			return nil, ErrNotFound
		}
	default:
		return nil, ErrNotFound
	}
	return e.record, nil
}

// ConsumePending reads and deletes the pending record under a single lock.
// A concurrent second caller for the same ID observes ErrNotFound.
func (r *InMemoryRepo) ConsumePending(_ context.Context, sessionID string) (PendingAuth, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[sessionID]
	if !ok || r.now().After(e.expiresAt) {
		return PendingAuth{}, ErrNotFound
	}

	pending, ok := e.record.(PendingAuth)
	if !ok || !pending.complete() {
		return PendingAuth{}, ErrNotFound
	}

	delete(r.entries, sessionID)
	return pending, nil
}

// Delete removes the record. Deleting an absent session ID is a no-op.
func (r *InMemoryRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, sessionID)
	return nil
}
