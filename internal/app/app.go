package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/api/option"

	"github.com/giannisanni/movieratings/internal/config"
	"github.com/giannisanni/movieratings/internal/enrich"
	"github.com/giannisanni/movieratings/internal/httpx"
	"github.com/giannisanni/movieratings/internal/imdb"
	"github.com/giannisanni/movieratings/internal/ratings"
	"github.com/giannisanni/movieratings/internal/storage"
)

// App bundles the services every command needs.
type App struct {
	Config   config.Config
	Loader   *ratings.Loader
	Enricher *enrich.Enricher
	Store    storage.Store
}

// New wires the ratings source, the IMDb provider and the optional metadata
// store from cfg.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	client := httpx.NewClient(cfg.IMDb.Timeout())

	columns := ratings.Columns{Title: cfg.Source.TitleColumn, Rating: cfg.Source.RatingColumn}
	source, err := NewSource(cfg.Source, columns, client)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Cache.Driver, cfg.Cache.DSN, cfg.Cache.TTL())
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata cache: %w", err)
	}

	provider := imdb.New(cfg.IMDb.BaseURL, imdb.WithHTTPClient(client))
	enricher := enrich.New(provider, enrich.Options{
		Details:          cfg.Enrich.Details,
		Timeout:          cfg.Enrich.Timeout(),
		StreamingBaseURL: cfg.Enrich.StreamingBaseURL,
	}, store)

	slog.Debug("Application wired",
		"source", source.Name(),
		"provider", provider.Name(),
		"cache", cfg.Cache.Driver,
		"details", cfg.Enrich.Details)

	return &App{
		Config:   cfg,
		Loader:   ratings.NewLoader(source, columns),
		Enricher: enricher,
		Store:    store,
	}, nil
}

// Close releases the metadata store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// NewSource picks the ratings source for cfg.Kind.
func NewSource(cfg config.SourceConfig, columns ratings.Columns, client *http.Client) (ratings.Source, error) {
	switch cfg.Kind {
	case config.SourceSheets:
		var opts []option.ClientOption
		if cfg.APIKey != "" {
			opts = append(opts, option.WithAPIKey(cfg.APIKey))
		}
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		return ratings.NewSheetsSource(cfg.SpreadsheetID, cfg.Worksheet, opts...), nil
	case config.SourceCSV:
		return ratings.NewCSVSource(cfg.Path, client), nil
	case config.SourceFile:
		return ratings.NewFileSource(cfg.Path, columns), nil
	default:
		return nil, fmt.Errorf("unknown ratings source: %s", cfg.Kind)
	}
}
