package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/giannisanni/movieratings/internal/handlers"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the leaderboard web server",
		Long: `Starts the leaderboard web interface.

The page reloads the ratings on every request. Clicking the magnifier next
to a film looks it up on IMDb and shows its poster, year, cast and links.`,
		Example: `  # Start server on the configured address (default :8888)
  movieratings serve

  # Start server on custom port
  movieratings serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			addr := a.Config.Server.Addr
			if port != "" {
				addr = ":" + port
			}

			handler := handlers.New(a.Loader, a.Enricher, handlers.Options{
				Title:    a.Config.Server.Title,
				SheetURL: a.Config.SheetURL(),
			})

			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Leaderboard available", "addr", addr, "source", a.Config.Source.Kind)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides server.addr)")

	return cmd
}
