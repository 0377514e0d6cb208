package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/giannisanni/movieratings/internal/imdb"
	"github.com/giannisanni/movieratings/internal/ratings"
)

const (
	configPathEnv        = "MOVIERATINGS_CONFIG"
	sourceKindEnv        = "RATINGS_SOURCE"
	sourcePathEnv        = "RATINGS_PATH"
	spreadsheetIDEnv     = "SHEETS_SPREADSHEET_ID"
	worksheetEnv         = "SHEETS_WORKSHEET"
	googleAPIKeyEnv      = "GOOGLE_API_KEY"
	googleCredentialsEnv = "GOOGLE_APPLICATION_CREDENTIALS"
	imdbBaseURLEnv       = "IMDB_BASE_URL"
	streamingBaseURLEnv  = "STREAMING_BASE_URL"
	cacheDriverEnv       = "CACHE_DRIVER"
	cacheDSNEnv          = "CACHE_DSN"
	logLevelEnv          = "LOG_LEVEL"
	serverAddrEnv        = "SERVER_ADDR"
)

// Source kinds.
const (
	SourceSheets = "sheets"
	SourceCSV    = "csv"
	SourceFile   = "file"
)

// DefaultStreamingBaseURL prefixes derived watch links.
const DefaultStreamingBaseURL = "https://www.justwatch.com/nl/film/"

// Config holds all runtime settings.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Source SourceConfig `yaml:"source"`
	IMDb   IMDbConfig   `yaml:"imdb"`
	Enrich EnrichConfig `yaml:"enrich"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr  string `yaml:"addr"`
	Title string `yaml:"title"`
}

// SourceConfig selects where the ratings come from.
type SourceConfig struct {
	Kind            string `yaml:"kind"`
	SpreadsheetID   string `yaml:"spreadsheetId"`
	Worksheet       string `yaml:"worksheet"`
	APIKey          string `yaml:"apiKey"`
	CredentialsFile string `yaml:"credentialsFile"`
	// Path is a CSV URL, a CSV file or a snapshot file, depending on Kind.
	Path         string `yaml:"path"`
	TitleColumn  string `yaml:"titleColumn"`
	RatingColumn string `yaml:"ratingColumn"`
}

// IMDbConfig configures the metadata provider.
type IMDbConfig struct {
	BaseURL        string `yaml:"baseUrl"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// EnrichConfig tunes on-demand enrichment.
type EnrichConfig struct {
	Details          bool   `yaml:"details"`
	TimeoutSeconds   int    `yaml:"timeoutSeconds"`
	StreamingBaseURL string `yaml:"streamingBaseUrl"`
}

// CacheConfig selects the metadata memo store.
type CacheConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	TTLMinutes int    `yaml:"ttlMinutes"`
}

// LogConfig configures slog output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:  ":8888",
			Title: "InVivid Movie Ratings Leaderboard",
		},
		Source: SourceConfig{
			Kind:         SourceSheets,
			Worksheet:    ratings.DefaultWorksheet,
			TitleColumn:  ratings.DefaultTitleColumn,
			RatingColumn: ratings.DefaultRatingColumn,
		},
		IMDb: IMDbConfig{
			BaseURL:        imdb.DefaultBaseURL,
			TimeoutSeconds: 20,
		},
		Enrich: EnrichConfig{
			Details:          true,
			TimeoutSeconds:   15,
			StreamingBaseURL: DefaultStreamingBaseURL,
		},
		Cache: CacheConfig{
			Driver: "none",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path (or $MOVIERATINGS_CONFIG when path is
// empty) over the defaults, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: cannot read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: cannot parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{sourceKindEnv, &c.Source.Kind},
		{sourcePathEnv, &c.Source.Path},
		{spreadsheetIDEnv, &c.Source.SpreadsheetID},
		{worksheetEnv, &c.Source.Worksheet},
		{googleAPIKeyEnv, &c.Source.APIKey},
		{googleCredentialsEnv, &c.Source.CredentialsFile},
		{imdbBaseURLEnv, &c.IMDb.BaseURL},
		{streamingBaseURLEnv, &c.Enrich.StreamingBaseURL},
		{cacheDriverEnv, &c.Cache.Driver},
		{cacheDSNEnv, &c.Cache.DSN},
		{logLevelEnv, &c.Log.Level},
		{serverAddrEnv, &c.Server.Addr},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.target = v
		}
	}

	if v := os.Getenv("ENRICH_DETAILS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enrich.Details = b
		}
	}
}

// Validate checks the settings that would otherwise fail on first use.
func (c Config) Validate() error {
	var errs []error

	switch c.Source.Kind {
	case SourceSheets:
		if c.Source.SpreadsheetID == "" {
			errs = append(errs, errors.New("source.spreadsheetId is required for the sheets source"))
		}
	case SourceCSV, SourceFile:
		if c.Source.Path == "" {
			errs = append(errs, fmt.Errorf("source.path is required for the %s source", c.Source.Kind))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source.kind %q (sheets, csv or file)", c.Source.Kind))
	}

	switch c.Cache.Driver {
	case "", "none", "memory":
	case "sqlite", "postgres":
		if c.Cache.DSN == "" {
			errs = append(errs, fmt.Errorf("cache.dsn is required for the %s cache", c.Cache.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache.driver %q", c.Cache.Driver))
	}

	return errors.Join(errs...)
}

// SheetURL is the link shown in the page header.
func (c Config) SheetURL() string {
	switch c.Source.Kind {
	case SourceSheets:
		return ratings.SpreadsheetURL(c.Source.SpreadsheetID)
	case SourceCSV:
		if strings.HasPrefix(c.Source.Path, "http") {
			return c.Source.Path
		}
	}
	return ""
}

func (c IMDbConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c EnrichConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}
