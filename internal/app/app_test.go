package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/giannisanni/movieratings/internal/config"
	"github.com/giannisanni/movieratings/internal/ratings"
	"github.com/giannisanni/movieratings/internal/storage"
)

func TestNewSource(t *testing.T) {
	columns := ratings.DefaultColumns()

	tests := []struct {
		cfg      config.SourceConfig
		expected string
		wantErr  bool
	}{
		{cfg: config.SourceConfig{Kind: config.SourceSheets, SpreadsheetID: "abc", Worksheet: "Ranglijst", APIKey: "key"}, expected: "sheets"},
		{cfg: config.SourceConfig{Kind: config.SourceCSV, Path: "ratings.csv"}, expected: "csv"},
		{cfg: config.SourceConfig{Kind: config.SourceFile, Path: "ratings.parquet"}, expected: "file"},
		{cfg: config.SourceConfig{Kind: "excel"}, wantErr: true},
	}

	for _, tt := range tests {
		source, err := NewSource(tt.cfg, columns, nil)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NewSource(%q): expected error", tt.cfg.Kind)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewSource(%q): unexpected error %v", tt.cfg.Kind, err)
			continue
		}
		if got := source.Name(); !strings.HasPrefix(got, tt.expected+":") {
			t.Errorf("NewSource(%q): expected %s source, got %q", tt.cfg.Kind, tt.expected, got)
		}
	}
}

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratings.csv")
	body := "Films van hoog naar laag beoordeeld,Rating\nThe Godfather,9.4\n,8.0\nHeat,8.1\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Source.Kind = config.SourceCSV
	cfg.Source.Path = path
	cfg.Cache.Driver = "memory"

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer a.Close()

	if _, ok := a.Store.(*storage.MemoryStore); !ok {
		t.Errorf("Expected memory store, got %T", a.Store)
	}

	entries, err := a.Loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Unexpected load error: %v", err)
	}
	if len(entries) != 2 || entries[1].Title != "Heat" || entries[1].Rank != 1 {
		t.Errorf("Unexpected entries %+v", entries)
	}
}

func TestCloseWithoutStore(t *testing.T) {
	if err := (&App{}).Close(); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}
