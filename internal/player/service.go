// Package player fronts the provider's catalog and playback endpoints on
// behalf of a logged-in session. Catalog responses are cached; playback
// commands never are.
package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/flipsidefm/flipside/internal/cache"
	"github.com/flipsidefm/flipside/internal/serviceerr"
	"github.com/flipsidefm/flipside/internal/spotify"
)

// Catalog responses are near-static; the TTLs only have to keep a browsing
// session from hammering the provider.
const (
	SearchTTL = 120 * time.Second
	AlbumTTL  = 300 * time.Second
)

// TokenSource yields a valid access token for a session, refreshing it when
// needed. *session.Manager satisfies it.
type TokenSource interface {
	EnsureValidAccessToken(ctx context.Context, sessionID string) (string, error)
}

type Service struct {
	client spotify.Client
	tokens TokenSource
	cache  cache.Store
}

func NewService(client spotify.Client, tokens TokenSource, cacheStore cache.Store) *Service {
	return &Service{
		client: client,
		tokens: tokens,
		cache:  cacheStore,
	}
}

// Search proxies a catalog search. Results are cached per query shape, not
// per user: catalog content is the same for everyone.
func (s *Service) Search(ctx context.Context, sessionID, query string, types []string, limit int) (json.RawMessage, error) {
	token, err := s.tokens.EnsureValidAccessToken(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	key := searchCacheKey(query, types, limit)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		return cached, nil
	} else if !errors.Is(err, serviceerr.ErrNotFound) {
		slogctx.Warn(ctx, "Cache lookup failed, falling through to the provider", "error", err)
	}

	result, err := s.client.Search(ctx, token, query, types, limit)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}

	if err := s.cache.SetWithTTL(ctx, key, result, SearchTTL); err != nil {
		slogctx.Warn(ctx, "Failed to cache search result", "error", err)
	}

	return result, nil
}

func (s *Service) Album(ctx context.Context, sessionID, albumID string) (json.RawMessage, error) {
	token, err := s.tokens.EnsureValidAccessToken(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	key := "album:" + albumID
	if cached, err := s.cache.Get(ctx, key); err == nil {
		return cached, nil
	} else if !errors.Is(err, serviceerr.ErrNotFound) {
		slogctx.Warn(ctx, "Cache lookup failed, falling through to the provider", "error", err)
	}

	result, err := s.client.Album(ctx, token, albumID)
	if err != nil {
		return nil, fmt.Errorf("fetching album: %w", err)
	}

	if err := s.cache.SetWithTTL(ctx, key, result, AlbumTTL); err != nil {
		slogctx.Warn(ctx, "Failed to cache album", "error", err)
	}

	return result, nil
}

func (s *Service) Play(ctx context.Context, sessionID, deviceID string) error {
	token, err := s.tokens.EnsureValidAccessToken(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := s.client.Play(ctx, token, deviceID); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}

	return nil
}

func (s *Service) Pause(ctx context.Context, sessionID string) error {
	token, err := s.tokens.EnsureValidAccessToken(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := s.client.Pause(ctx, token); err != nil {
		return fmt.Errorf("pausing playback: %w", err)
	}

	return nil
}

func (s *Service) Next(ctx context.Context, sessionID string) error {
	token, err := s.tokens.EnsureValidAccessToken(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := s.client.Next(ctx, token); err != nil {
		return fmt.Errorf("skipping to the next track: %w", err)
	}

	return nil
}

func (s *Service) Previous(ctx context.Context, sessionID string) error {
	token, err := s.tokens.EnsureValidAccessToken(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := s.client.Previous(ctx, token); err != nil {
		return fmt.Errorf("skipping to the previous track: %w", err)
	}

	return nil
}

func searchCacheKey(query string, types []string, limit int) string {
	return "search:" + query + ":" + strings.Join(types, ",") + ":" + strconv.Itoa(limit)
}
