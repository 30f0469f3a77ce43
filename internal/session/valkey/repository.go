// Package sessionvalkey stores sessions and login verifiers in Valkey.
// Verifiers carry their TTL on the key itself; an expired login attempt
// simply disappears from the store.
package sessionvalkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/flipsidefm/flipside/internal/session"
)

const objectTypeSession = "session"
const objectTypeVerifier = "verifier"

var _ = session.Repository(&Repository{})

type Repository struct {
	store *store
}

func NewRepository(valkeyClient valkey.Client, prefix string) *Repository {
	return &Repository{
		store: newStore(valkeyClient, prefix),
	}
}

func (r *Repository) StoreVerifier(ctx context.Context, state, verifier string, ttl time.Duration) error {
	if err := r.store.Set(ctx, objectTypeVerifier, state, verifier, ttl); err != nil {
		return fmt.Errorf("setting verifier into storage: %w", err)
	}

	return nil
}

func (r *Repository) ConsumeVerifier(ctx context.Context, state string) (verifier string, _ error) {
	if err := r.store.GetDel(ctx, objectTypeVerifier, state, &verifier); err != nil {
		return "", fmt.Errorf("consuming verifier from store: %w", err)
	}

	return verifier, nil
}

func (r *Repository) LoadSession(ctx context.Context, sessionID string) (s session.Session, _ error) {
	if err := r.store.Get(ctx, objectTypeSession, sessionID, &s); err != nil {
		return session.Session{}, fmt.Errorf("getting session from store: %w", err)
	}

	return s, nil
}

func (r *Repository) StoreSession(ctx context.Context, s session.Session) error {
	// The key's TTL is the time left until the session's absolute expiry,
	// so rewriting the record on a token refresh never extends its life.
	if err := r.store.Set(ctx, objectTypeSession, s.ID, s, time.Until(s.Expiry)); err != nil {
		return fmt.Errorf("setting session into storage: %w", err)
	}

	return nil
}

func (r *Repository) DeleteSession(ctx context.Context, sessionID string) error {
	if err := r.store.Destroy(ctx, objectTypeSession, sessionID); err != nil {
		return fmt.Errorf("deleting session from store: %w", err)
	}

	return nil
}
