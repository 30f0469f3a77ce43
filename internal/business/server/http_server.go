// Package server is the public HTTP surface of the application.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/samber/oops"

	slogctx "github.com/veqryn/slog-context"

	"github.com/flipsidefm/flipside/internal/config"
	"github.com/flipsidefm/flipside/internal/favorites"
	"github.com/flipsidefm/flipside/internal/player"
	"github.com/flipsidefm/flipside/internal/session"
)

// Dependencies are the composed services the HTTP layer exposes.
type Dependencies struct {
	SessionManager *session.Manager
	Player         *player.Service
	Favorites      *favorites.Service
}

func createHTTPServer(_ context.Context, cfg *config.Config, deps Dependencies) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, deps),
	}
}

// StartHTTPServer serves the public API until the context is cancelled, then
// shuts down gracefully.
func StartHTTPServer(ctx context.Context, cfg *config.Config, deps Dependencies) error {
	if err := initMeters(ctx, cfg); err != nil {
		return err
	}

	server := createHTTPServer(ctx, cfg, deps)

	slogctx.Info(ctx, "Starting a listener", "address", server.Addr)

	// The address may carry an explicit network as network://address,
	// defaulting to tcp. Binding to a unix socket this way saves tests from
	// hunting for a free TCP port.
	network := "tcp"
	if idx := strings.IndexRune(server.Addr, ':'); idx != -1 && len(server.Addr) > idx+3 && server.Addr[idx:idx+3] == "://" {
		network = server.Addr[:idx]
		server.Addr = server.Addr[idx+3:]
	}

	listener, err := new(net.ListenConfig).Listen(ctx, network, server.Addr)
	if err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "Failed to create a listener")
	}

	slogctx.Info(ctx, "A listener started", "address", listener.Addr().String())

	go func() {
		slogctx.Info(ctx, "Serving an HTTP server", "address", listener.Addr().String())
		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogctx.Error(ctx, "Failed to serve an HTTP server", "error", err)
		}

		slogctx.Info(ctx, "Stopped an HTTP server")
	}()

	<-ctx.Done()

	shutdownCtx, shutdownRelease := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer shutdownRelease()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "Failed shutting down HTTP server")
	}

	slogctx.Info(ctx, "Completed graceful shutdown of HTTP server")

	return nil
}
