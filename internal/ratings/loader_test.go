package ratings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/api/option"

	"github.com/giannisanni/movieratings/internal/models"
)

type staticSource struct {
	table Table
	err   error
}

func (s staticSource) Name() string { return "static" }

func (s staticSource) Fetch(ctx context.Context) (Table, error) {
	return s.table, s.err
}

func sheetTable(rows ...[]string) Table {
	return Table{Header: []string{DefaultTitleColumn, DefaultRatingColumn}, Rows: rows}
}

func TestLoadDropsIncompleteRows(t *testing.T) {
	source := staticSource{table: sheetTable(
		[]string{"A", "8.5"},
		[]string{"", "7.0"},
		[]string{"B", ""},
	)}

	entries, err := NewLoader(source, DefaultColumns()).Load(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Title != "A" || entries[0].Rating != 8.5 || entries[0].Rank != 0 {
		t.Errorf("Unexpected entry: %+v", entries[0])
	}
}

func TestEntries(t *testing.T) {
	tests := []struct {
		name     string
		table    Table
		expected []models.RatingEntry
	}{
		{
			name: "keeps source order and assigns ranks",
			table: sheetTable(
				[]string{"Inception", "9.1"},
				[]string{"Up", "7.25"},
				[]string{"Cats", "3"},
			),
			expected: []models.RatingEntry{
				{Title: "Inception", Rating: 9.1, Rank: 0},
				{Title: "Up", Rating: 7.25, Rank: 1},
				{Title: "Cats", Rating: 3, Rank: 2},
			},
		},
		{
			name: "ranks skip dropped rows",
			table: sheetTable(
				[]string{"   ", "9.9"},
				[]string{"Heat", "8,75"},
				[]string{"Nope", "n/a"},
				[]string{"Alien", "8.1"},
			),
			expected: []models.RatingEntry{
				{Title: "Heat", Rating: 8.75, Rank: 0},
				{Title: "Alien", Rating: 8.1, Rank: 1},
			},
		},
		{
			name: "short rows count as missing",
			table: sheetTable(
				[]string{"Only title"},
				[]string{"Jaws", "8"},
			),
			expected: []models.RatingEntry{
				{Title: "Jaws", Rating: 8, Rank: 0},
			},
		},
		{
			name: "extra columns and padded headers",
			table: Table{
				Header: []string{"Notes", " " + DefaultRatingColumn + " ", DefaultTitleColumn},
				Rows:   [][]string{{"x", "6.5", "Heat"}},
			},
			expected: []models.RatingEntry{
				{Title: "Heat", Rating: 6.5, Rank: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Entries(tt.table, DefaultColumns())
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %d entries, got %d: %+v", len(tt.expected), len(got), got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Entry %d: expected %+v, got %+v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestLoadMissingColumnIsFetchError(t *testing.T) {
	source := staticSource{table: Table{Header: []string{"Film", "Score"}, Rows: [][]string{{"A", "1"}}}}

	_, err := NewLoader(source, DefaultColumns()).Load(context.Background())
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got %v", err)
	}
	if !strings.Contains(err.Error(), DefaultTitleColumn) {
		t.Errorf("Expected error to name the missing column, got %q", err.Error())
	}
}

func TestLoadSourceFailureIsFetchError(t *testing.T) {
	cause := errors.New("unreachable")
	_, err := NewLoader(staticSource{err: cause}, DefaultColumns()).Load(context.Background())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected FetchError to wrap the cause")
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
		ok       bool
	}{
		{in: "8.5", expected: 8.5, ok: true},
		{in: "8,5", expected: 8.5, ok: true},
		{in: " 9 ", expected: 9, ok: true},
		{in: "", ok: false},
		{in: "NaN", ok: false},
		{in: "good", ok: false},
	}

	for _, tt := range tests {
		got, ok := ParseRating(tt.in)
		if ok != tt.ok || (ok && got != tt.expected) {
			t.Errorf("ParseRating(%q): expected (%v, %v), got (%v, %v)", tt.in, tt.expected, tt.ok, got, ok)
		}
	}
}

func TestFilter(t *testing.T) {
	entries := []models.RatingEntry{
		{Title: "The Dark Knight", Rating: 9.0, Rank: 0},
		{Title: "Amélie", Rating: 8.3, Rank: 1},
		{Title: "Knives Out", Rating: 7.9, Rank: 2},
	}

	t.Run("empty query passes through", func(t *testing.T) {
		got := Filter(entries, "  ")
		if len(got) != len(entries) {
			t.Errorf("Expected %d entries, got %d", len(entries), len(got))
		}
	})

	t.Run("case-insensitive substring", func(t *testing.T) {
		got := Filter(entries, "KNI")
		if len(got) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(got))
		}
		if got[0].Rank != 0 || got[1].Rank != 2 {
			t.Errorf("Expected original ranks to be kept, got %+v", got)
		}
	})

	t.Run("unicode folding", func(t *testing.T) {
		got := Filter(entries, "AMÉLIE")
		if len(got) != 1 || got[0].Title != "Amélie" {
			t.Errorf("Expected Amélie, got %+v", got)
		}
	})

	t.Run("every title finds itself", func(t *testing.T) {
		for _, e := range entries {
			got := Filter(entries, strings.ToUpper(e.Title[1:4]))
			found := false
			for _, g := range got {
				if g == e {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected %q in results for its own substring", e.Title)
			}
		}
	})

	t.Run("no match is empty not nil error", func(t *testing.T) {
		got := Filter(entries, "zzz")
		if len(got) != 0 {
			t.Errorf("Expected no entries, got %d", len(got))
		}
	})
}

func TestCSVSourceRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprintf(w, "\ufeff%s,%s\nInception,\"9,2\"\n,7\n", DefaultTitleColumn, DefaultRatingColumn)
	}))
	defer srv.Close()

	loader := NewLoader(NewCSVSource(srv.URL+"/export?format=csv", srv.Client()), DefaultColumns())
	entries, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Title != "Inception" || entries[0].Rating != 9.2 {
		t.Errorf("Unexpected entries: %+v", entries)
	}
}

func TestCSVSourceRemoteStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewLoader(NewCSVSource(srv.URL, srv.Client()), DefaultColumns()).Load(context.Background())
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got %v", err)
	}
}

func TestFileSourceYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "board.yaml")
	yamlData := "- rank: 0\n  title: Heat\n  rating: 8.8\n- rank: 1\n  title: \"\"\n  rating: 7\n"
	if err := os.WriteFile(yamlPath, []byte(yamlData), 0644); err != nil {
		t.Fatal(err)
	}

	jsonPath := filepath.Join(dir, "board.json")
	jsonData := `[{"rank":0,"title":"Alien","rating":8.4},{"rank":1,"title":"Up","rating":7.5}]`
	if err := os.WriteFile(jsonPath, []byte(jsonData), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path     string
		expected []string
	}{
		{path: yamlPath, expected: []string{"Heat"}},
		{path: jsonPath, expected: []string{"Alien", "Up"}},
	}

	for _, tt := range tests {
		t.Run(filepath.Ext(tt.path), func(t *testing.T) {
			entries, err := NewLoader(NewFileSource(tt.path, DefaultColumns()), DefaultColumns()).Load(context.Background())
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(entries) != len(tt.expected) {
				t.Fatalf("Expected %d entries, got %d", len(tt.expected), len(entries))
			}
			for i, title := range tt.expected {
				if entries[i].Title != title {
					t.Errorf("Expected %s, got %s", title, entries[i].Title)
				}
			}
		})
	}
}

func TestFileSourceUnsupported(t *testing.T) {
	_, err := NewFileSource("board.xlsx", DefaultColumns()).Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unsupported file format") {
		t.Errorf("Expected unsupported format error, got %v", err)
	}
}

func TestSheetsSource(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"range":"Ranglijst!A1:B4","majorDimension":"ROWS","values":[
			[%q,%q],
			["The Godfather",9.2],
			["",7],
			["Memento"]
		]}`, DefaultTitleColumn, DefaultRatingColumn)
	}))
	defer srv.Close()

	source := NewSheetsSource("sheet123", "",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)

	entries, err := NewLoader(source, DefaultColumns()).Load(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(gotPath, "/spreadsheets/sheet123/values/"+DefaultWorksheet) {
		t.Errorf("Unexpected request path %q", gotPath)
	}
	if len(entries) != 1 || entries[0].Title != "The Godfather" || entries[0].Rating != 9.2 {
		t.Errorf("Unexpected entries: %+v", entries)
	}
}

func TestSpreadsheetURL(t *testing.T) {
	if got := SpreadsheetURL("abc"); got != "https://docs.google.com/spreadsheets/d/abc" {
		t.Errorf("Unexpected URL %q", got)
	}
	if got := SpreadsheetURL(""); got != "" {
		t.Errorf("Expected empty URL, got %q", got)
	}
}

type scriptedReader struct {
	batches [][]models.SnapshotRecord
	err     error
}

func (r *scriptedReader) Read(rows []models.SnapshotRecord) (int, error) {
	if len(r.batches) == 0 {
		return 0, r.err
	}
	n := copy(rows, r.batches[0])
	r.batches = r.batches[1:]
	return n, nil
}

func TestDrainRows(t *testing.T) {
	batch := []models.SnapshotRecord{{Rank: 0, Title: "Heat", Rating: 8.1}}

	records, err := drainRows(&scriptedReader{batches: [][]models.SnapshotRecord{batch, batch}, err: io.EOF}, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}

	corrupt := errors.New("page checksum mismatch")
	records, err = drainRows(&scriptedReader{batches: [][]models.SnapshotRecord{batch}, err: corrupt}, 2)
	if !errors.Is(err, corrupt) {
		t.Errorf("Expected read error, got %v", err)
	}
	if records != nil {
		t.Errorf("Expected no partial records, got %+v", records)
	}
}

func TestFileSourceCorruptParquetIsFetchError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.parquet")
	if err := os.WriteFile(path, []byte("PAR1 not really parquet PAR1"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewLoader(NewFileSource(path, DefaultColumns()), DefaultColumns()).Load(context.Background())
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("Expected FetchError, got %v", err)
	}
}
