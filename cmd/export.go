package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/giannisanni/movieratings/internal/exporter"
	"github.com/giannisanni/movieratings/internal/leaderboard"
	"github.com/giannisanni/movieratings/internal/ratings"
)

func newExportCmd(opts *globalOptions) *cobra.Command {
	var (
		format string
		output string
		query  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current leaderboard to a parquet, yaml or json file",
		Long: `Exports the decorated leaderboard as a snapshot. Snapshots can be
served again with source.kind=file.`,
		Example: `  movieratings export --output board.parquet
  movieratings export --format yaml --output snapshots/board.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			if _, err := exporter.FormatFor(format, output); err != nil {
				return err
			}

			a, err := opts.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.Loader.Load(cmd.Context())
			if err != nil {
				return err
			}

			records := exporter.Records(leaderboard.Build(ratings.Filter(entries, query)))
			if err := exporter.WriteFile(output, format, records); err != nil {
				return err
			}

			slog.Info("Leaderboard exported", "path", output, "rows", len(records))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: parquet, yaml or json (default from extension)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only export films whose title contains this text")

	return cmd
}
