// Package repofakes provides a hand-written sessions.Repo fake with
// injectable failures for handler tests.
package repofakes

import (
	"context"
	"sync"
	"time"

	"github.com/oidc-sandbox/go-oidc-rp/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo stores records without TTL enforcement. Set one of the
// *Err fields to make the corresponding operation fail.
type FakeSessionRepo struct {
	mu      sync.Mutex
	records map[string]sessions.Record

	UpsertErr  error
	GetErr     error
	ConsumeErr error
	DeleteErr  error

	// Deleted records the session IDs passed to Delete, in order.
	Deleted []string
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		records: make(map[string]sessions.Record),
	}
}

func (r *FakeSessionRepo) Upsert(_ context.Context, sessionID string, record sessions.Record, _ time.Duration) error {
	if r.UpsertErr != nil {
		return r.UpsertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[sessionID] = record
	return nil
}

func (r *FakeSessionRepo) Get(_ context.Context, sessionID string) (sessions.Record, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[sessionID]
	if !ok {
		return nil, sessions.ErrNotFound
	}
	return rec, nil
}

func (r *FakeSessionRepo) ConsumePending(_ context.Context, sessionID string) (sessions.PendingAuth, error) {
	if r.ConsumeErr != nil {
		return sessions.PendingAuth{}, r.ConsumeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	pending, ok := r.records[sessionID].(sessions.PendingAuth)
	if !ok {
		return sessions.PendingAuth{}, sessions.ErrNotFound
	}
	delete(r.records, sessionID)
	return pending, nil
}

func (r *FakeSessionRepo) Delete(_ context.Context, sessionID string) error {
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, sessionID)
	r.Deleted = append(r.Deleted, sessionID)
	return nil
}

// Stored returns the record currently held for the session ID, if any.
func (r *FakeSessionRepo) Stored(sessionID string) (sessions.Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[sessionID]
	return rec, ok
}
