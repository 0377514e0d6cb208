package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/giannisanni/movieratings/internal/leaderboard"
	"github.com/giannisanni/movieratings/internal/models"
)

// Supported snapshot formats.
const (
	FormatParquet = "parquet"
	FormatYAML    = "yaml"
	FormatJSON    = "json"
)

// Records flattens leaderboard rows into snapshot records.
func Records(rows []leaderboard.Row) []models.SnapshotRecord {
	records := make([]models.SnapshotRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.SnapshotRecord{
			Rank:       row.Rank,
			Title:      row.Title,
			Rating:     row.Rating,
			Decoration: row.Decoration,
			Band:       row.Band.Name,
			Color:      row.Band.Color,
		})
	}
	return records
}

// FormatFor resolves format, falling back to the extension of path.
func FormatFor(format, path string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch f {
	case FormatParquet, FormatJSON:
		return f, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", f)
	}
}

// WriteFile writes records to path in the given format, creating parent
// directories as needed.
func WriteFile(path, format string, records []models.SnapshotRecord) error {
	format, err := FormatFor(format, path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Write(file, format, records); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Write encodes records to w.
func Write(w io.Writer, format string, records []models.SnapshotRecord) error {
	switch format {
	case FormatParquet:
		writer := parquet.NewGenericWriter[models.SnapshotRecord](w)
		if _, err := writer.Write(records); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
		if err := writer.Close(); err != nil {
			return fmt.Errorf("failed to finalize parquet: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format: %q", format)
	}
}
