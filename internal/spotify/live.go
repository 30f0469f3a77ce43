package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	slogctx "github.com/veqryn/slog-context"
)

// Config carries the provider endpoints and the client's own credentials.
// Token calls authenticate with the client credentials (HTTP Basic), never
// with the user's tokens; this is the provider's fixed wire contract.
type Config struct {
	AuthURL    string
	TokenURL   string
	APIBaseURL string

	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       string

	// RequestsPerSecond bounds outbound calls; the provider throttles
	// aggressively with 429s. Zero disables the limiter.
	RequestsPerSecond float64
}

type LiveClient struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	limiter    *rate.Limiter

	apiBaseURL string
}

var _ = Client(&LiveClient{})

func NewLiveClient(cfg Config, httpClient *http.Client) (*LiveClient, error) {
	if _, err := url.Parse(cfg.AuthURL); err != nil {
		return nil, fmt.Errorf("parsing authorization endpoint url: %w", err)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &LiveClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       strings.Fields(cfg.Scopes),
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
				// The provider wants the client credentials as HTTP Basic
				// on every token call.
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: httpClient,
		limiter:    limiter,
		apiBaseURL: strings.TrimSuffix(cfg.APIBaseURL, "/"),
	}, nil
}

func (c *LiveClient) AuthURL(challenge, state string) string {
	return c.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", challenge),
	)
}

func (c *LiveClient) ExchangeCode(ctx context.Context, code, verifier string) (TokenPair, error) {
	if err := c.wait(ctx); err != nil {
		return TokenPair{}, err
	}

	token, err := c.oauth.Exchange(c.oauthContext(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return TokenPair{}, &ExchangeError{providerError{
				StatusCode: retrieveErr.Response.StatusCode,
				Body:       string(retrieveErr.Body),
			}}
		}

		return TokenPair{}, fmt.Errorf("exchanging authorization code: %w", err)
	}

	return tokenPair(token), nil
}

func (c *LiveClient) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if err := c.wait(ctx); err != nil {
		return TokenPair{}, err
	}

	// A token source seeded with only a refresh token performs the
	// refresh_token grant on the first Token call.
	source := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})

	token, err := source.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return TokenPair{}, &RefreshError{providerError{
				StatusCode: retrieveErr.Response.StatusCode,
				Body:       string(retrieveErr.Body),
			}}
		}

		return TokenPair{}, fmt.Errorf("refreshing access token: %w", err)
	}

	return tokenPair(token), nil
}

// oauthContext routes the oauth2 transport through the configured HTTP
// client.
func (c *LiveClient) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func tokenPair(token *oauth2.Token) TokenPair {
	pair := TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresIn:    int(token.ExpiresIn),
	}

	if scope, ok := token.Extra("scope").(string); ok {
		pair.Scope = scope
	}

	return pair
}

func (c *LiveClient) CurrentUser(ctx context.Context, accessToken string) (UserProfile, error) {
	raw, status, err := c.apiCall(ctx, http.MethodGet, "/me", nil, accessToken)
	if err != nil {
		return UserProfile{}, fmt.Errorf("fetching current user: %w", err)
	}
	if status != http.StatusOK {
		return UserProfile{}, &ProfileError{providerError{StatusCode: status, Body: string(raw)}}
	}

	var profile UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return UserProfile{}, fmt.Errorf("decoding profile response: %w", err)
	}

	return profile, nil
}

func (c *LiveClient) Search(ctx context.Context, accessToken, query string, types []string, limit int) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", strings.Join(types, ","))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	raw, status, err := c.apiCall(ctx, http.MethodGet, "/search?"+q.Encode(), nil, accessToken)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	if status != http.StatusOK {
		return nil, &APIError{providerError{StatusCode: status, Body: string(raw)}, "/search"}
	}

	return raw, nil
}

func (c *LiveClient) Album(ctx context.Context, accessToken, albumID string) (json.RawMessage, error) {
	endpoint := "/albums/" + url.PathEscape(albumID)

	raw, status, err := c.apiCall(ctx, http.MethodGet, endpoint, nil, accessToken)
	if err != nil {
		return nil, fmt.Errorf("fetching album: %w", err)
	}
	if status != http.StatusOK {
		return nil, &APIError{providerError{StatusCode: status, Body: string(raw)}, endpoint}
	}

	return raw, nil
}

func (c *LiveClient) Play(ctx context.Context, accessToken, deviceID string) error {
	endpoint := "/me/player/play"
	if deviceID != "" {
		endpoint += "?device_id=" + url.QueryEscape(deviceID)
	}

	return c.playerCall(ctx, http.MethodPut, endpoint, accessToken)
}

func (c *LiveClient) Pause(ctx context.Context, accessToken string) error {
	return c.playerCall(ctx, http.MethodPut, "/me/player/pause", accessToken)
}

func (c *LiveClient) Next(ctx context.Context, accessToken string) error {
	return c.playerCall(ctx, http.MethodPost, "/me/player/next", accessToken)
}

func (c *LiveClient) Previous(ctx context.Context, accessToken string) error {
	return c.playerCall(ctx, http.MethodPost, "/me/player/previous", accessToken)
}

func (c *LiveClient) playerCall(ctx context.Context, method, endpoint, accessToken string) error {
	raw, status, err := c.apiCall(ctx, method, endpoint, nil, accessToken)
	if err != nil {
		return fmt.Errorf("calling player endpoint: %w", err)
	}
	if status < 200 || status >= 300 {
		return &APIError{providerError{StatusCode: status, Body: string(raw)}, endpoint}
	}

	return nil
}

func (c *LiveClient) apiCall(ctx context.Context, method, endpoint string, body io.Reader, accessToken string) ([]byte, int, error) {
	if err := c.wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBaseURL+endpoint, body)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		slogctx.Warn(ctx, "Provider throttled a request", "endpoint", endpoint, "retry_after", resp.Header.Get("Retry-After"))
	}

	return raw, resp.StatusCode, nil
}

func (c *LiveClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	return nil
}
