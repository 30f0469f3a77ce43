package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/flipsidefm/flipside/internal/config"
	"github.com/flipsidefm/flipside/internal/pkce"
	"github.com/flipsidefm/flipside/internal/serviceerr"
	"github.com/flipsidefm/flipside/internal/spotify"
	"github.com/flipsidefm/flipside/pkg/csrf"
)

// VerifierTTL bounds how long a login attempt may sit between the start and
// callback steps. It matches the provider's authorization-code lifetime.
const VerifierTTL = 300 * time.Second

type Manager struct {
	client   spotify.Client
	sessions Repository
	pkce     pkce.Source

	sessionDuration time.Duration
	frontendURL     string

	sessionCookieTemplate config.CookieTemplate

	csrfSecret []byte

	now func() time.Time
}

func NewManager(
	cfg *config.Session,
	client spotify.Client,
	sessions Repository,
) (*Manager, error) {
	csrfSecret, err := cfg.CSRFSecret.Load()
	if err != nil {
		return nil, fmt.Errorf("loading csrf secret: %w", err)
	}
	if len(csrfSecret) < 32 {
		return nil, errors.New("CSRF secret must be at least 32 bytes")
	}

	return &Manager{
		client:                client,
		sessions:              sessions,
		sessionDuration:       cfg.Duration,
		frontendURL:           cfg.FrontendURL,
		sessionCookieTemplate: cfg.CookieTemplate,
		csrfSecret:            []byte(csrfSecret),
		now:                   time.Now,
	}, nil
}

// StartLogin begins a login attempt: it generates fresh PKCE material,
// stores the verifier keyed by a new state token, and returns the provider
// authorization URL to redirect the browser to.
func (m *Manager) StartLogin(ctx context.Context) (string, error) {
	state := m.pkce.State()
	p := m.pkce.PKCE()

	if err := m.sessions.StoreVerifier(ctx, state, p.Verifier, VerifierTTL); err != nil {
		return "", fmt.Errorf("storing pkce verifier: %w", err)
	}

	return m.client.AuthURL(p.Challenge, state), nil
}

// LoginResult is handed back to the HTTP layer to set cookies and redirect.
type LoginResult struct {
	SessionID string
	CSRFToken string
	UserID    string
}

// FinishLogin drives the callback to a terminal state: consume the verifier,
// exchange the code, fetch the profile, persist the session. Every failure
// is terminal for this attempt; nothing is retried.
func (m *Manager) FinishLogin(ctx context.Context, code, state string) (LoginResult, error) {
	if code == "" {
		return LoginResult{}, serviceerr.ErrMissingAuthCode
	}

	// Consuming the verifier before the exchange is what guarantees a state
	// is redeemed at most once: a racing second callback finds nothing.
	verifier, err := m.sessions.ConsumeVerifier(ctx, state)
	if err != nil {
		if errors.Is(err, serviceerr.ErrNotFound) {
			return LoginResult{}, serviceerr.ErrInvalidOrExpiredState
		}

		return LoginResult{}, fmt.Errorf("consuming pkce verifier: %w", err)
	}

	tokens, err := m.client.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return LoginResult{}, fmt.Errorf("exchanging code for tokens: %w", err)
	}

	slogctx.Info(ctx, "Exchanged the auth code for tokens")

	profile, err := m.client.CurrentUser(ctx, tokens.AccessToken)
	if err != nil {
		return LoginResult{}, fmt.Errorf("fetching user profile: %w", err)
	}

	now := m.now()
	sessionID := m.pkce.SessionID()
	csrfToken := csrf.NewToken(sessionID, m.csrfSecret)

	session := Session{
		ID:             sessionID,
		UserID:         profile.ID,
		CSRFToken:      csrfToken,
		AccessToken:    tokens.AccessToken,
		RefreshToken:   tokens.RefreshToken,
		TokenExpiresAt: now.Add(time.Duration(tokens.ExpiresIn) * time.Second),
		Expiry:         now.Add(m.sessionDuration),
	}

	if err := m.sessions.StoreSession(ctx, session); err != nil {
		return LoginResult{}, fmt.Errorf("storing session: %w", err)
	}

	// A storage failure here would strand the user with a cookie pointing at
	// nothing, so verify the write landed before declaring success.
	stored, err := m.sessions.LoadSession(ctx, sessionID)
	if err != nil || stored.UserID != session.UserID {
		return LoginResult{}, serviceerr.ErrSessionPersist
	}

	slogctx.Info(ctx, "Session established", "user_id", profile.ID)

	return LoginResult{
		SessionID: sessionID,
		CSRFToken: csrfToken,
		UserID:    profile.ID,
	}, nil
}

// Logout destroys the session. A session that is already gone is not an
// error: the caller's goal state is reached either way.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := m.sessions.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, serviceerr.ErrNotFound) {
		return fmt.Errorf("deleting session: %w", err)
	}

	return nil
}

// CurrentUser returns the profile of the session's owner, refreshing the
// access token first when it is due.
func (m *Manager) CurrentUser(ctx context.Context, sessionID string) (spotify.UserProfile, error) {
	accessToken, err := m.EnsureValidAccessToken(ctx, sessionID)
	if err != nil {
		return spotify.UserProfile{}, err
	}

	profile, err := m.client.CurrentUser(ctx, accessToken)
	if err != nil {
		return spotify.UserProfile{}, fmt.Errorf("fetching user profile: %w", err)
	}

	return profile, nil
}

// SessionUserID returns the owner of the session without touching the
// provider.
func (m *Manager) SessionUserID(ctx context.Context, sessionID string) (string, error) {
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

	return s.UserID, nil
}

// FrontendURL is where the browser lands after the callback resolves.
func (m *Manager) FrontendURL() string {
	return m.frontendURL
}

func (m *Manager) MakeSessionCookie(ctx context.Context, value string) (*http.Cookie, error) {
	sessionCookie := m.sessionCookieTemplate.ToCookie(value)

	if err := sessionCookie.Valid(); err != nil {
		return nil, fmt.Errorf("invalid session cookie: %w", err)
	}

	if !strings.HasPrefix(sessionCookie.Name, "__Host-") && !sessionCookie.Secure {
		slogctx.Warn(ctx, "Session cookie is not marked as Secure; this is not recommended in production environments")
	}
	if !sessionCookie.HttpOnly {
		slogctx.Warn(ctx, "Session cookie is not marked as HttpOnly; this is not recommended in production environments")
	}

	return sessionCookie, nil
}

func (m *Manager) ValidateCSRFToken(token, sessionID string) bool {
	return csrf.Validate(token, sessionID, m.csrfSecret)
}
