// Package spotify wraps the streaming provider's authorization and resource
// APIs behind a capability interface with a live HTTP implementation and a
// deterministic mock (package spotifymock). Which one serves a deployment is
// decided once, at composition time.
package spotify

import (
	"context"
	"encoding/json"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

type UserProfile struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email"`
	Product     string  `json:"product"`
	Images      []Image `json:"images"`
}

type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Client interface {
	// AuthURL builds the provider authorization URL for the given PKCE
	// challenge and state token. Pure string construction.
	AuthURL(challenge, state string) string

	// ExchangeCode swaps an authorization code for a token pair, proving
	// possession of the PKCE verifier. Fails with *ExchangeError on a
	// non-success provider response.
	ExchangeCode(ctx context.Context, code, verifier string) (TokenPair, error)

	// Refresh mints a new access token. The provider may omit a new refresh
	// token; callers must keep the previous one in that case. Fails with
	// *RefreshError on a non-success response.
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)

	// CurrentUser fetches the profile of the token's owner. Fails with
	// *ProfileError on a non-success response.
	CurrentUser(ctx context.Context, accessToken string) (UserProfile, error)

	// Search proxies the provider search endpoint, returning the raw
	// response body for pass-through to the frontend.
	Search(ctx context.Context, accessToken, query string, types []string, limit int) (json.RawMessage, error)

	// Album fetches a single album, returning the raw response body.
	Album(ctx context.Context, accessToken, albumID string) (json.RawMessage, error)

	// Playback controls. The provider returns no body on success.
	Play(ctx context.Context, accessToken, deviceID string) error
	Pause(ctx context.Context, accessToken string) error
	Next(ctx context.Context, accessToken string) error
	Previous(ctx context.Context, accessToken string) error
}
