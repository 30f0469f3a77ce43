// Package business composes the application from its parts and runs it.
package business

import (
	"context"
	"fmt"
	"net/http"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	slogctx "github.com/veqryn/slog-context"

	"github.com/flipsidefm/flipside/internal/business/server"
	"github.com/flipsidefm/flipside/internal/cache"
	"github.com/flipsidefm/flipside/internal/config"
	"github.com/flipsidefm/flipside/internal/favorites"
	favoritesmock "github.com/flipsidefm/flipside/internal/favorites/mock"
	favoritessql "github.com/flipsidefm/flipside/internal/favorites/sql"
	"github.com/flipsidefm/flipside/internal/player"
	"github.com/flipsidefm/flipside/internal/session"
	sessionmock "github.com/flipsidefm/flipside/internal/session/mock"
	sessionvalkey "github.com/flipsidefm/flipside/internal/session/valkey"
	"github.com/flipsidefm/flipside/internal/spotify"
	spotifymock "github.com/flipsidefm/flipside/internal/spotify/mock"
)

// Main assembles the application and serves the public HTTP API until the
// context is cancelled.
func Main(ctx context.Context, cfg *config.Config) error {
	deps, closeFn, err := initDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising dependencies: %w", err)
	}
	defer closeFn()

	return server.StartHTTPServer(ctx, cfg, deps)
}

func initDependencies(ctx context.Context, cfg *config.Config) (server.Dependencies, func(), error) {
	var closers []func()
	closeFn := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	spotifyClient, err := makeSpotifyClient(cfg)
	if err != nil {
		return server.Dependencies{}, nil, fmt.Errorf("creating provider client: %w", err)
	}

	var sessionRepo session.Repository
	var cacheStore cache.Store
	if cfg.Valkey.Host.IsZero() {
		// No Valkey endpoint configured: run on in-process stores. Sessions
		// die with the process, which is acceptable for development only.
		slogctx.Warn(ctx, "No Valkey endpoint configured, using in-memory session and cache stores")

		sessionRepo = sessionmock.NewRepository()
		cacheStore = cache.NewMemoryStore()
	} else {
		valkeyClient, err := makeValkeyClient(cfg)
		if err != nil {
			closeFn()
			return server.Dependencies{}, nil, err
		}
		closers = append(closers, valkeyClient.Close)

		sessionRepo = sessionvalkey.NewRepository(valkeyClient, cfg.Valkey.Prefix)
		cacheStore = cache.NewValkeyStore(valkeyClient, cfg.Valkey.Prefix)
	}

	var favoritesRepo favorites.Repository
	if cfg.Database.Host.IsZero() {
		slogctx.Warn(ctx, "No database configured, using an in-memory favorites store")

		favoritesRepo = favoritesmock.NewRepository()
	} else {
		dbPool, err := makeDBPool(ctx, cfg)
		if err != nil {
			closeFn()
			return server.Dependencies{}, nil, err
		}
		closers = append(closers, dbPool.Close)

		favoritesRepo = favoritessql.NewRepository(dbPool)
	}

	sessionManager, err := session.NewManager(&cfg.Session, spotifyClient, sessionRepo)
	if err != nil {
		closeFn()
		return server.Dependencies{}, nil, fmt.Errorf("creating session manager: %w", err)
	}

	return server.Dependencies{
		SessionManager: sessionManager,
		Player:         player.NewService(spotifyClient, sessionManager, cacheStore),
		Favorites:      favorites.NewService(favoritesRepo),
	}, closeFn, nil
}

func makeSpotifyClient(cfg *config.Config) (spotify.Client, error) {
	if cfg.Spotify.Mock {
		return spotifymock.NewClient(cfg.Session.CallbackURL), nil
	}

	clientID, err := cfg.Spotify.ClientID.Load()
	if err != nil {
		return nil, fmt.Errorf("loading client ID: %w", err)
	}

	clientSecret, err := cfg.Spotify.ClientSecret.Load()
	if err != nil {
		return nil, fmt.Errorf("loading client secret: %w", err)
	}

	return spotify.NewLiveClient(spotify.Config{
		AuthURL:           cfg.Spotify.AuthURL,
		TokenURL:          cfg.Spotify.TokenURL,
		APIBaseURL:        cfg.Spotify.APIBaseURL,
		ClientID:          clientID,
		ClientSecret:      clientSecret,
		RedirectURL:       cfg.Session.CallbackURL,
		Scopes:            cfg.Spotify.Scopes,
		RequestsPerSecond: cfg.Spotify.RequestsPerSecond,
	}, http.DefaultClient)
}

func makeValkeyClient(cfg *config.Config) (valkey.Client, error) {
	valkeyHost, err := cfg.Valkey.Host.Load()
	if err != nil {
		return nil, fmt.Errorf("loading valkey host: %w", err)
	}

	valkeyUsername, err := cfg.Valkey.User.Load()
	if err != nil {
		return nil, fmt.Errorf("loading valkey username: %w", err)
	}

	valkeyPassword, err := cfg.Valkey.Password.Load()
	if err != nil {
		return nil, fmt.Errorf("loading valkey password: %w", err)
	}

	valkeyClient, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{valkeyHost},
		Username:    valkeyUsername,
		Password:    valkeyPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("creating a new valkey client: %w", err)
	}

	return valkeyClient, nil
}

func makeDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	connStr, err := config.MakeConnStr(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("making dsn from config: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing pool config: %w", err)
	}
	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("initialising pgxpool connection: %w", err)
	}

	return dbPool, nil
}
