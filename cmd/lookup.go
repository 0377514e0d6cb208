package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/giannisanni/movieratings/internal/models"
)

func newLookupCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "lookup <title>",
		Short: "Look up IMDb metadata for one film",
		Example: `  movieratings lookup "The Godfather"
  movieratings lookup Heat --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			meta, err := a.Enricher.Enrich(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(meta)
			}
			_, err = fmt.Fprint(out, formatMetadata(meta))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

func formatMetadata(meta models.MovieMetadata) string {
	var b strings.Builder
	b.WriteString(meta.Name)
	if meta.Year != "" {
		fmt.Fprintf(&b, " (%s)", meta.Year)
	}
	b.WriteString("\n")

	fields := []struct{ label, value string }{
		{"Cast", meta.Cast},
		{"Description", meta.Description},
		{"IMDb", meta.URL},
		{"Poster", meta.Poster},
		{"Watch", meta.StreamingURL},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(&b, "  %-12s %s\n", f.label+":", f.value)
		}
	}
	return b.String()
}
