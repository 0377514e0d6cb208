package ratings

import (
	"context"
	"fmt"
	"strconv"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultWorksheet is the tab holding the leaderboard.
const DefaultWorksheet = "Ranglijst"

// SheetsSource reads a worksheet through the Google Sheets API.
type SheetsSource struct {
	SpreadsheetID string
	Worksheet     string
	opts          []option.ClientOption
}

// NewSheetsSource creates a Sheets source. Credentials are passed as client
// options (option.WithAPIKey, option.WithCredentialsFile, ...).
func NewSheetsSource(spreadsheetID, worksheet string, opts ...option.ClientOption) *SheetsSource {
	if worksheet == "" {
		worksheet = DefaultWorksheet
	}
	return &SheetsSource{
		SpreadsheetID: spreadsheetID,
		Worksheet:     worksheet,
		opts:          opts,
	}
}

func (s *SheetsSource) Name() string {
	return "sheets:" + s.SpreadsheetID + "/" + s.Worksheet
}

// Fetch reads the whole worksheet. The first row is the header.
func (s *SheetsSource) Fetch(ctx context.Context) (Table, error) {
	if s.SpreadsheetID == "" {
		return Table{}, fmt.Errorf("spreadsheet id not set")
	}

	srv, err := sheets.NewService(ctx, s.opts...)
	if err != nil {
		return Table{}, fmt.Errorf("failed to create sheets client: %w", err)
	}

	resp, err := srv.Spreadsheets.Values.Get(s.SpreadsheetID, s.Worksheet).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return Table{}, fmt.Errorf("failed to read worksheet %q: %w", s.Worksheet, err)
	}

	return tableFromValues(resp.Values), nil
}

// SpreadsheetURL is the browser link to a spreadsheet.
func SpreadsheetURL(spreadsheetID string) string {
	if spreadsheetID == "" {
		return ""
	}
	return "https://docs.google.com/spreadsheets/d/" + spreadsheetID
}

func tableFromValues(values [][]interface{}) Table {
	if len(values) == 0 {
		return Table{}
	}
	table := Table{Header: rowStrings(values[0])}
	for _, row := range values[1:] {
		table.Rows = append(table.Rows, rowStrings(row))
	}
	return table
}

func rowStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = cellString(v)
	}
	return out
}

func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
