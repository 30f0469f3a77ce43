// Package sessionmock provides an in-memory session.Repository for tests
// and for running the server without a Valkey instance.
package sessionmock

import (
	"context"
	"sync"
	"time"

	"github.com/flipsidefm/flipside/internal/serviceerr"
	"github.com/flipsidefm/flipside/internal/session"
)

var _ = session.Repository(&Repository{})

type verifierEntry struct {
	verifier  string
	expiresAt time.Time
}

type Repository struct {
	mu sync.Mutex

	verifiers map[string]verifierEntry
	sessions  map[string]session.Session

	now func() time.Time
}

type Option func(*Repository)

// WithClock replaces the repository's time source, letting tests move
// verifier entries past their TTL without sleeping.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

func NewRepository(opts ...Option) *Repository {
	r := &Repository{
		verifiers: map[string]verifierEntry{},
		sessions:  map[string]session.Session{},
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Repository) StoreVerifier(_ context.Context, state, verifier string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.verifiers[state] = verifierEntry{
		verifier:  verifier,
		expiresAt: r.now().Add(ttl),
	}

	return nil
}

func (r *Repository) ConsumeVerifier(_ context.Context, state string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.verifiers[state]
	if !ok {
		return "", serviceerr.ErrNotFound
	}

	// Deleting under the same lock as the lookup is what makes the consume
	// single-shot: a second caller with the same state finds nothing.
	delete(r.verifiers, state)

	if r.now().After(entry.expiresAt) {
		return "", serviceerr.ErrNotFound
	}

	return entry.verifier, nil
}

func (r *Repository) LoadSession(_ context.Context, sessionID string) (session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return session.Session{}, serviceerr.ErrNotFound
	}

	if !s.Expiry.IsZero() && r.now().After(s.Expiry) {
		delete(r.sessions, sessionID)

		return session.Session{}, serviceerr.ErrNotFound
	}

	return s, nil
}

func (r *Repository) StoreSession(_ context.Context, s session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.ID] = s

	return nil
}

func (r *Repository) DeleteSession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return serviceerr.ErrNotFound
	}

	delete(r.sessions, sessionID)

	return nil
}
