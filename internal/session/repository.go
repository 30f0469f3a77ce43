package session

import (
	"context"
	"time"
)

type Repository interface {
	// Verifier operations. A verifier is keyed by its state token and lives
	// at most ttl. ConsumeVerifier removes the entry as it reads it: the
	// second caller for the same state gets serviceerr.ErrNotFound, which is
	// what makes a state single-use under concurrent callbacks.
	StoreVerifier(ctx context.Context, state, verifier string, ttl time.Duration) error
	ConsumeVerifier(ctx context.Context, state string) (string, error)

	// Session operations
	LoadSession(ctx context.Context, sessionID string) (Session, error)
	StoreSession(ctx context.Context, session Session) error
	DeleteSession(ctx context.Context, sessionID string) error
}
