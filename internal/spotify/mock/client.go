// Package spotifymock provides a deterministic provider client for tests and
// mock deployments. The start endpoint redirects straight to the callback
// with the synthetic code minted here, so a full login round-trip works with
// no provider in reach.
package spotifymock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/flipsidefm/flipside/internal/spotify"
)

const (
	// SyntheticCode is the authorization code the mock hands out and accepts.
	SyntheticCode = "mock-authorization-code"

	defaultExpiresIn = 3600
)

type ClientOption func(*Client)

type Client struct {
	callbackURL string

	tokens  spotify.TokenPair
	profile spotify.UserProfile

	exchangeErr, refreshErr, profileErr, apiErr error

	// Call counters for assertions.
	ExchangeCalls int
	RefreshCalls  int
	ProfileCalls  int
	SearchCalls   int
	AlbumCalls    int
	PlayerCalls   int
}

func WithTokens(tokens spotify.TokenPair) ClientOption {
	return func(c *Client) { c.tokens = tokens }
}

func WithProfile(profile spotify.UserProfile) ClientOption {
	return func(c *Client) { c.profile = profile }
}

func WithExchangeError(err error) ClientOption {
	return func(c *Client) { c.exchangeErr = err }
}

func WithRefreshError(err error) ClientOption {
	return func(c *Client) { c.refreshErr = err }
}

func WithProfileError(err error) ClientOption {
	return func(c *Client) { c.profileErr = err }
}

func WithAPIError(err error) ClientOption {
	return func(c *Client) { c.apiErr = err }
}

var _ = spotify.Client(&Client{})

func NewClient(callbackURL string, opts ...ClientOption) *Client {
	c := &Client{
		callbackURL: callbackURL,
		tokens: spotify.TokenPair{
			AccessToken:  "mock-access-token",
			RefreshToken: "mock-refresh-token",
			ExpiresIn:    defaultExpiresIn,
			TokenType:    "Bearer",
		},
		profile: spotify.UserProfile{
			ID:          "mock-user",
			DisplayName: "Mock User",
			Email:       "mock@example.com",
			Product:     "premium",
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// AuthURL short-circuits the provider: the returned URL points at the
// callback endpoint with a synthetic code and the caller's state.
func (c *Client) AuthURL(_, state string) string {
	q := url.Values{}
	q.Set("code", SyntheticCode)
	q.Set("state", state)

	return c.callbackURL + "?" + q.Encode()
}

func (c *Client) ExchangeCode(_ context.Context, code, _ string) (spotify.TokenPair, error) {
	c.ExchangeCalls++
	if c.exchangeErr != nil {
		return spotify.TokenPair{}, c.exchangeErr
	}
	if code != SyntheticCode {
		return spotify.TokenPair{}, fmt.Errorf("unexpected authorization code: %q", code)
	}

	return c.tokens, nil
}

func (c *Client) Refresh(_ context.Context, refreshToken string) (spotify.TokenPair, error) {
	c.RefreshCalls++
	if c.refreshErr != nil {
		return spotify.TokenPair{}, c.refreshErr
	}
	if refreshToken == "" {
		return spotify.TokenPair{}, fmt.Errorf("empty refresh token")
	}

	return c.tokens, nil
}

func (c *Client) CurrentUser(_ context.Context, accessToken string) (spotify.UserProfile, error) {
	c.ProfileCalls++
	if c.profileErr != nil {
		return spotify.UserProfile{}, c.profileErr
	}
	if accessToken == "" {
		return spotify.UserProfile{}, fmt.Errorf("empty access token")
	}

	return c.profile, nil
}

func (c *Client) Search(_ context.Context, _, query string, types []string, limit int) (json.RawMessage, error) {
	c.SearchCalls++
	if c.apiErr != nil {
		return nil, c.apiErr
	}

	result := map[string]any{"query": query, "types": types, "limit": limit, "items": []any{}}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	return raw, nil
}

func (c *Client) Album(_ context.Context, _, albumID string) (json.RawMessage, error) {
	c.AlbumCalls++
	if c.apiErr != nil {
		return nil, c.apiErr
	}

	raw, err := json.Marshal(map[string]any{"id": albumID, "name": "Mock Album"})
	if err != nil {
		return nil, err
	}

	return raw, nil
}

func (c *Client) Play(_ context.Context, _, _ string) error {
	c.PlayerCalls++
	return c.apiErr
}

func (c *Client) Pause(_ context.Context, _ string) error {
	c.PlayerCalls++
	return c.apiErr
}

func (c *Client) Next(_ context.Context, _ string) error {
	c.PlayerCalls++
	return c.apiErr
}

func (c *Client) Previous(_ context.Context, _ string) error {
	c.PlayerCalls++
	return c.apiErr
}
