package ratings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/giannisanni/movieratings/internal/models"
)

// FileSource reads a leaderboard snapshot written by the exporter
// (.parquet, .yaml/.yml, .json) or a plain .csv file.
type FileSource struct {
	Path    string
	columns Columns
}

// NewFileSource creates a file source. Snapshot records are presented
// under the given column names so the loader treats them like sheet rows.
func NewFileSource(path string, columns Columns) *FileSource {
	if columns.Title == "" {
		columns.Title = DefaultTitleColumn
	}
	if columns.Rating == "" {
		columns.Rating = DefaultRatingColumn
	}
	return &FileSource{Path: path, columns: columns}
}

func (s *FileSource) Name() string {
	return "file:" + s.Path
}

func (s *FileSource) Fetch(ctx context.Context) (Table, error) {
	ext := strings.ToLower(filepath.Ext(s.Path))

	var (
		records []models.SnapshotRecord
		err     error
	)
	switch ext {
	case ".csv":
		return NewCSVSource(s.Path, nil).Fetch(ctx)
	case ".parquet":
		records, err = readParquet(s.Path)
	case ".yaml", ".yml":
		records, err = readYAML(s.Path)
	case ".json":
		records, err = readJSON(s.Path)
	default:
		return Table{}, fmt.Errorf("unsupported file format: %s (supported: .csv, .parquet, .yaml, .json)", ext)
	}
	if err != nil {
		return Table{}, err
	}

	table := Table{Header: []string{s.columns.Title, s.columns.Rating}}
	for _, r := range records {
		table.Rows = append(table.Rows, []string{r.Title, strconv.FormatFloat(r.Rating, 'f', -1, 64)})
	}
	return table, nil
}

func readParquet(path string) ([]models.SnapshotRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[models.SnapshotRecord](pf)
	defer reader.Close()

	return drainRows(reader, int(pf.NumRows()))
}

type snapshotReader interface {
	Read(rows []models.SnapshotRecord) (int, error)
}

// drainRows reads until io.EOF. Any other error fails the whole read.
func drainRows(reader snapshotReader, sizeHint int) ([]models.SnapshotRecord, error) {
	records := make([]models.SnapshotRecord, 0, sizeHint)
	rows := make([]models.SnapshotRecord, 128)
	for {
		n, err := reader.Read(rows)
		if n > 0 {
			records = append(records, rows[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return records, nil
}

func readYAML(path string) ([]models.SnapshotRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read yaml file: %w", err)
	}
	var records []models.SnapshotRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	return records, nil
}

func readJSON(path string) ([]models.SnapshotRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read json file: %w", err)
	}
	var records []models.SnapshotRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse json: %w", err)
	}
	return records, nil
}
