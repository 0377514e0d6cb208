package ratings

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// CSVSource reads a CSV export, either from a URL (a published sheet) or
// from a local file.
type CSVSource struct {
	Location   string
	httpClient *http.Client
}

// NewCSVSource creates a CSV source. client is only used for http(s) locations.
func NewCSVSource(location string, client *http.Client) *CSVSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &CSVSource{Location: location, httpClient: client}
}

func (s *CSVSource) Name() string {
	return "csv:" + s.Location
}

func (s *CSVSource) Fetch(ctx context.Context) (Table, error) {
	if isRemote(s.Location) {
		return s.fetchRemote(ctx)
	}

	file, err := os.Open(s.Location)
	if err != nil {
		return Table{}, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	return readCSV(file)
}

func (s *CSVSource) fetchRemote(ctx context.Context) (Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Location, nil)
	if err != nil {
		return Table{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Table{}, fmt.Errorf("failed to fetch csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Table{}, fmt.Errorf("csv export returned status %d: %s", resp.StatusCode, string(body))
	}

	return readCSV(resp.Body)
}

func readCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return Table{}, nil
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return Table{Header: header, Rows: records[1:]}, nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
