package cmd

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/giannisanni/movieratings/internal/leaderboard"
)

var bandColors = map[string]text.Colors{
	leaderboard.Green.Name:  {text.FgHiGreen, text.Bold},
	leaderboard.Gold.Name:   {text.FgHiYellow},
	leaderboard.Orange.Name: {text.FgYellow},
	leaderboard.Red.Name:    {text.FgHiRed},
}

func renderLeaderboard(rows []leaderboard.Row, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"", "Film", "Rating"})

	for _, row := range rows {
		rating := row.FormattedRating
		if colorize {
			rating = bandColors[row.Band.Name].Sprint(rating)
		}
		tw.AppendRow(table.Row{row.Decoration, row.Title, rating})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignRight},
	})
	return tw.Render()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
