// Package cmdutils carries the shared plumbing of the CLI subcommands:
// config loading, logger setup, and the cobra boilerplate around a business
// entrypoint.
package cmdutils

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/flipsidefm/flipside/internal/config"
)

// configDirs are searched in order for a config.yaml; the first hit wins.
var configDirs = []string{"/etc/flipside", "$HOME/.flipside", "."}

func CobraCommand(use, short, long string, businessFunc func(context.Context, *config.Config) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configDirs...)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return Run(cmd.Context(), businessFunc, cfg)
		},
	}
}

func Run(ctx context.Context, fn func(context.Context, *config.Config) error, cfg *config.Config) error {
	initLogger(cfg)

	slogctx.Debug(ctx, "Starting the application",
		slog.String("name", cfg.Application.Name),
		slog.String("environment", cfg.Application.Environment),
	)

	if err := fn(ctx, cfg); err != nil {
		return oops.In("main").Wrapf(err, "Failed to start the main business application")
	}

	return nil
}

func initLogger(cfg *config.Config) {
	level := slog.LevelDebug
	if cfg.Application.IsProduction() {
		level = slog.LevelInfo
	}

	handler := slogctx.NewHandler(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
		nil,
	)

	slog.SetDefault(slog.New(handler))
}
