package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/flipsidefm/flipside/internal/serviceerr"
)

// RefreshSkew is the margin before the recorded expiry at which a token is
// refreshed proactively, so a returned token is never about to expire
// mid-request.
const RefreshSkew = 60 * time.Second

// EnsureValidAccessToken returns an access token safe to hand to a caller,
// refreshing it first when `now` is past `expiry - RefreshSkew`. On a
// successful refresh the session is persisted before the token is returned;
// on a failed one the stored session is left exactly as it was.
func (m *Manager) EnsureValidAccessToken(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", serviceerr.ErrNotAuthenticated
	}

	s, err := m.sessions.LoadSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, serviceerr.ErrNotFound) {
			return "", serviceerr.ErrNotAuthenticated
		}

		return "", fmt.Errorf("loading session: %w", err)
	}

	if s.AccessToken == "" {
		return "", serviceerr.ErrNotAuthenticated
	}

	now := m.now()
	if s.TokenExpiresAt.IsZero() || !now.After(s.TokenExpiresAt.Add(-RefreshSkew)) {
		return s.AccessToken, nil
	}

	tokens, err := m.client.Refresh(ctx, s.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("refreshing access token: %w", err)
	}

	s.AccessToken = tokens.AccessToken
	s.TokenExpiresAt = now.Add(time.Duration(tokens.ExpiresIn) * time.Second)
	// The provider may rotate the refresh token or keep it; an omitted token
	// in the response must never wipe the stored one.
	if tokens.RefreshToken != "" {
		s.RefreshToken = tokens.RefreshToken
	}

	if err := m.sessions.StoreSession(ctx, s); err != nil {
		return "", fmt.Errorf("storing refreshed session: %w", err)
	}

	slogctx.Info(ctx, "Refreshed access token", "user_id", s.UserID)

	return s.AccessToken, nil
}
