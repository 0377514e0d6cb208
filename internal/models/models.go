package models

// RatingEntry is one film on the leaderboard.
// Rank is the 0-based position in the source order after invalid rows are dropped.
type RatingEntry struct {
	Title  string  `json:"title" yaml:"title" parquet:"title"`
	Rating float64 `json:"rating" yaml:"rating" parquet:"rating"`
	Rank   int     `json:"rank" yaml:"rank" parquet:"rank"`
}

// MovieMetadata is the best-effort enrichment of a single title
type MovieMetadata struct {
	Name         string `json:"name"`
	Year         string `json:"year,omitempty"`
	Cast         string `json:"cast,omitempty"`
	URL          string `json:"url"`
	Poster       string `json:"poster"`
	Description  string `json:"description,omitempty"`
	StreamingURL string `json:"streaming_url,omitempty"`
}

// SnapshotRecord is the flat on-disk form of a leaderboard row.
type SnapshotRecord struct {
	Rank       int     `json:"rank" yaml:"rank" parquet:"rank"`
	Title      string  `json:"title" yaml:"title" parquet:"title"`
	Rating     float64 `json:"rating" yaml:"rating" parquet:"rating"`
	Decoration string  `json:"decoration" yaml:"decoration" parquet:"decoration"`
	Band       string  `json:"band" yaml:"band" parquet:"band"`
	Color      string  `json:"color" yaml:"color" parquet:"color"`
}
