package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/giannisanni/movieratings/internal/app"
	"github.com/giannisanni/movieratings/internal/config"
	"github.com/giannisanni/movieratings/internal/logging"
)

type globalOptions struct {
	configPath string
	logLevel   string
}

func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "movieratings",
		Short: "Movie ratings leaderboard with on-demand IMDb lookups",
		Long: `Movieratings renders a ranked list of films and ratings read from a
Google Sheet (or a CSV/snapshot file) and looks up poster, year, cast and
description for a film on demand.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to YAML config (default $MOVIERATINGS_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(
		newServeCmd(opts),
		newListCmd(opts),
		newLookupCmd(opts),
		newExportCmd(opts),
	)

	return cmd
}

// loadConfig reads configuration and installs the default logger.
func (o *globalOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format))
	return cfg, nil
}

func (o *globalOptions) newApp(ctx context.Context) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}
