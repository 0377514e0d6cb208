package exporter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/giannisanni/movieratings/internal/leaderboard"
	"github.com/giannisanni/movieratings/internal/models"
	"github.com/giannisanni/movieratings/internal/ratings"
)

var entries = []models.RatingEntry{
	{Title: "The Godfather", Rating: 9.4, Rank: 0},
	{Title: "Amélie", Rating: 8.3, Rank: 1},
	{Title: "Heat", Rating: 8.1, Rank: 2},
	{Title: "Cats", Rating: 2.5, Rank: 3},
}

func TestRecords(t *testing.T) {
	records := Records(leaderboard.Build(entries))

	if len(records) != len(entries) {
		t.Fatalf("Expected %d records, got %d", len(entries), len(records))
	}

	first := records[0]
	if first.Decoration != "🏆" || first.Band != "green" || first.Color != "#00FF00" {
		t.Errorf("Unexpected first record %+v", first)
	}
	last := records[3]
	if last.Decoration != "4. 🌟" || last.Band != "red" {
		t.Errorf("Unexpected last record %+v", last)
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		format   string
		path     string
		expected string
		wantErr  bool
	}{
		{format: "", path: "out/board.parquet", expected: FormatParquet},
		{format: "", path: "board.yml", expected: FormatYAML},
		{format: "JSON", path: "board.dat", expected: FormatJSON},
		{format: "", path: "board.xlsx", wantErr: true},
		{format: "xml", path: "board.json", wantErr: true},
	}

	for _, tt := range tests {
		got, err := FormatFor(tt.format, tt.path)
		if tt.wantErr {
			if err == nil {
				t.Errorf("FormatFor(%q, %q): expected error", tt.format, tt.path)
			}
			continue
		}
		if err != nil || got != tt.expected {
			t.Errorf("FormatFor(%q, %q): expected %q, got %q (%v)", tt.format, tt.path, tt.expected, got, err)
		}
	}
}

func TestRoundTripThroughFileSource(t *testing.T) {
	records := Records(leaderboard.Build(entries))

	for _, ext := range []string{"parquet", "yaml", "json"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "board."+ext)
			if err := WriteFile(path, "", records); err != nil {
				t.Fatalf("Failed to write %s: %v", ext, err)
			}

			loader := ratings.NewLoader(ratings.NewFileSource(path, ratings.DefaultColumns()), ratings.DefaultColumns())
			got, err := loader.Load(context.Background())
			if err != nil {
				t.Fatalf("Failed to load %s: %v", ext, err)
			}

			if len(got) != len(entries) {
				t.Fatalf("Expected %d entries, got %d", len(entries), len(got))
			}
			for i := range entries {
				if got[i] != entries[i] {
					t.Errorf("Entry %d: expected %+v, got %+v", i, entries[i], got[i])
				}
			}
		})
	}
}
