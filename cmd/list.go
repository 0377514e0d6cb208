package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giannisanni/movieratings/internal/leaderboard"
	"github.com/giannisanni/movieratings/internal/ratings"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the leaderboard as a table",
		Example: `  movieratings list
  movieratings list --query godfather`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.Loader.Load(cmd.Context())
			if err != nil {
				return err
			}

			rows := leaderboard.Build(ratings.Filter(entries, query))
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				_, err := fmt.Fprintln(out, "No data")
				return err
			}

			_, err = fmt.Fprintln(out, renderLeaderboard(rows, shouldColorize(out)))
			return err
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Only show films whose title contains this text")

	return cmd
}
