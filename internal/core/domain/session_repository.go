package domain

import (
	"context"
	"time"
)

// SessionRecord is a persisted browser session. Data is opaque to the
// repository; the session package encrypts it before it gets here.
type SessionRecord struct {
	ID        string
	Data      []byte
	ExpiresAt time.Time
	UpdatedAt time.Time
}

// SessionRepository defines the data-access contract for session operations.
// Implementations live in internal/core/repository (Core layer).
type SessionRepository interface {
	// Get returns the session with the given ID if it has not expired at now.
	// Returns (nil, nil) when the session is missing or expired.
	Get(ctx context.Context, id string, now time.Time) (*SessionRecord, error)

	// Upsert inserts or replaces the session.
	Upsert(ctx context.Context, rec *SessionRecord) error

	// Touch moves the expiry of an existing session without rewriting its data.
	Touch(ctx context.Context, id string, expiresAt, updatedAt time.Time) error

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes every session that expired before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
