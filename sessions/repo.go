package sessions

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no usable record exists for a session ID.
// Missing, expired and incomplete records all collapse into this error:
// from the protocol's point of view they are the same condition.
var ErrNotFound = errors.New("session not found")

// ErrUnavailable is returned when the backing store itself fails (timeout,
// connectivity). It is never conflated with ErrNotFound so that callers can
// report an infrastructure failure instead of an auth failure.
var ErrUnavailable = errors.New("session store unavailable")

// Repo is the session store contract. Implementations must enforce the
// record TTL on the read path even when expired records have not been
// physically evicted yet.
type Repo interface {
	// Upsert writes the record with an absolute expiry of now+ttl,
	// replacing any existing record for the ID.
	Upsert(ctx context.Context, sessionID string, record Record, ttl time.Duration) error

	// Get returns the live record for the ID, or ErrNotFound.
	Get(ctx context.Context, sessionID string) (Record, error)

	// ConsumePending atomically reads and deletes the PendingAuth record
	// for the ID. Any other shape, an expired record or no record at all
	// yields ErrNotFound and leaves the store untouched, so a replayed
	// callback cannot consume a session twice nor destroy an
	// authenticated one.
	ConsumePending(ctx context.Context, sessionID string) (PendingAuth, error)

	// Delete removes the record. Deleting an absent ID is not an error.
	Delete(ctx context.Context, sessionID string) error
}
