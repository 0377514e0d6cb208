package ratings

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/giannisanni/movieratings/internal/models"
)

// Default column headers of the ratings worksheet.
const (
	DefaultTitleColumn  = "Films van hoog naar laag beoordeeld"
	DefaultRatingColumn = "Rating"
)

// Table is a header row plus data rows, as read from a source.
type Table struct {
	Header []string
	Rows   [][]string
}

// Source fetches the raw ratings table
type Source interface {
	Name() string
	Fetch(ctx context.Context) (Table, error)
}

// Columns names the headers holding the title and the rating.
type Columns struct {
	Title  string
	Rating string
}

// DefaultColumns returns the worksheet's column names.
func DefaultColumns() Columns {
	return Columns{Title: DefaultTitleColumn, Rating: DefaultRatingColumn}
}

// FetchError means the ratings source could not be read or does not have
// the expected shape.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to load ratings from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Loader reads the leaderboard from a Source on every call.
type Loader struct {
	source  Source
	columns Columns
}

// NewLoader creates a loader for the given source
func NewLoader(source Source, columns Columns) *Loader {
	if columns.Title == "" {
		columns.Title = DefaultTitleColumn
	}
	if columns.Rating == "" {
		columns.Rating = DefaultRatingColumn
	}
	return &Loader{source: source, columns: columns}
}

// Load fetches the table and returns the valid entries in source order.
func (l *Loader) Load(ctx context.Context) ([]models.RatingEntry, error) {
	table, err := l.source.Fetch(ctx)
	if err != nil {
		return nil, &FetchError{Source: l.source.Name(), Err: err}
	}

	entries, err := Entries(table, l.columns)
	if err != nil {
		return nil, &FetchError{Source: l.source.Name(), Err: err}
	}

	slog.Debug("Loaded ratings", "source", l.source.Name(), "rows", len(table.Rows), "entries", len(entries))
	return entries, nil
}

// Entries converts a table to rating entries. Rows without a title or a
// parseable rating are dropped; ranks are assigned to the rows that remain.
func Entries(table Table, columns Columns) ([]models.RatingEntry, error) {
	titleIdx := columnIndex(table.Header, columns.Title)
	if titleIdx < 0 {
		return nil, fmt.Errorf("missing title column %q", columns.Title)
	}
	ratingIdx := columnIndex(table.Header, columns.Rating)
	if ratingIdx < 0 {
		return nil, fmt.Errorf("missing rating column %q", columns.Rating)
	}

	entries := make([]models.RatingEntry, 0, len(table.Rows))
	for _, row := range table.Rows {
		title := strings.TrimSpace(cell(row, titleIdx))
		if title == "" {
			continue
		}
		rating, ok := ParseRating(cell(row, ratingIdx))
		if !ok {
			continue
		}
		entries = append(entries, models.RatingEntry{
			Title:  title,
			Rating: rating,
			Rank:   len(entries),
		})
	}
	return entries, nil
}

// ParseRating parses a rating cell. Both "8.5" and "8,5" are accepted.
func ParseRating(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}
