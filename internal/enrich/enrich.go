package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/giannisanni/movieratings/internal/models"
	"github.com/giannisanni/movieratings/internal/providers"
	"github.com/giannisanni/movieratings/internal/storage"
)

// State is a step of a single enrichment.
type State string

const (
	StateIdle      State = "idle"
	StateSearching State = "searching"
	StateFound     State = "found"
	StateDetailing State = "detailing"
	StateReady     State = "ready"
	StateNotFound  State = "not_found"
	StateError     State = "error"
)

// ErrNotFound is returned (wrapped in *Error) when the provider has no match.
var ErrNotFound = errors.New("no results found")

// Error is a failed enrichment. State is StateNotFound or StateError.
type Error struct {
	State State
	Title string
	Err   error
}

func (e *Error) Error() string {
	if e.State == StateNotFound {
		return fmt.Sprintf("No results found for %q", e.Title)
	}
	return fmt.Sprintf("Error fetching movie info for %q: %v", e.Title, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options tunes an Enricher.
type Options struct {
	// Details enables the second, detailed lookup for a description.
	Details bool
	// Timeout bounds a whole enrichment. Zero means no limit.
	Timeout time.Duration
	// StreamingBaseURL prefixes the derived watch link. Empty disables it.
	StreamingBaseURL string
}

// Enricher looks up metadata for one title at a time.
type Enricher struct {
	provider providers.Provider
	store    storage.Store
	opts     Options
}

// New creates an Enricher. store may be nil, in which case every call
// goes to the provider.
func New(provider providers.Provider, opts Options, store storage.Store) *Enricher {
	return &Enricher{provider: provider, store: store, opts: opts}
}

// Enrich runs search, year extraction, name splitting, the optional details
// lookup and link derivation for title.
func (e *Enricher) Enrich(ctx context.Context, title string) (models.MovieMetadata, error) {
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	key := CacheKey(title)
	if e.store != nil {
		meta, ok, err := e.store.Get(ctx, key)
		if err != nil {
			slog.Warn("Metadata cache read failed", "title", title, "err", err)
		} else if ok {
			slog.Debug("Metadata cache hit", "title", title)
			return meta, nil
		}
	}

	state := StateSearching
	slog.Debug("Enrichment state", "title", title, "state", state)

	raw, err := e.provider.Search(ctx, title)
	if err != nil {
		return models.MovieMetadata{}, &Error{State: StateError, Title: title, Err: err}
	}

	first, err := FirstResult(raw)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.MovieMetadata{}, &Error{State: StateNotFound, Title: title, Err: err}
		}
		return models.MovieMetadata{}, &Error{State: StateError, Title: title, Err: err}
	}

	state = StateFound
	slog.Debug("Enrichment state", "title", title, "state", state)

	name := stringField(first, "name")
	year := ExtractYear(name)
	cleanTitle, cast := SplitName(name, year)

	meta := models.MovieMetadata{
		Name:   cleanTitle,
		Year:   year,
		Cast:   cast,
		URL:    stringField(first, "url"),
		Poster: stringField(first, "poster"),
	}

	if e.opts.Details {
		state = StateDetailing
		slog.Debug("Enrichment state", "title", title, "state", state)

		description, err := e.description(ctx, cleanTitle)
		if err != nil {
			return models.MovieMetadata{}, &Error{State: StateError, Title: title, Err: err}
		}
		meta.Description = description
	}

	meta.StreamingURL = StreamingURL(e.opts.StreamingBaseURL, cleanTitle, year)

	state = StateReady
	slog.Debug("Enrichment state", "title", title, "state", state)

	if e.store != nil {
		if err := e.store.Put(ctx, key, meta); err != nil {
			slog.Warn("Metadata cache write failed", "title", title, "err", err)
		}
	}
	return meta, nil
}

func (e *Enricher) description(ctx context.Context, title string) (string, error) {
	raw, err := e.provider.Details(ctx, title)
	if err != nil {
		return "", err
	}
	obj, err := decodeObject(raw)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stringField(obj, "description")), nil
}

// FirstResult validates a search payload and returns its first result.
// It returns an error wrapping ErrNotFound when the payload has no results.
func FirstResult(raw []byte) (map[string]any, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	count, _ := obj["result_count"].(float64)
	results, _ := obj["results"].([]any)
	if count <= 0 || len(results) == 0 {
		return nil, fmt.Errorf("%w: results list is empty", ErrNotFound)
	}

	first, ok := results[0].(map[string]any)
	if !ok {
		return nil, errors.New("first result is not an object")
	}
	return first, nil
}

// decodeObject decodes a JSON object. A JSON string holding an encoded
// object is unwrapped once.
func decodeObject(raw []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("unable to parse response as JSON: %w", err)
	}
	if s, ok := v.(string); ok {
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, fmt.Errorf("unable to parse response as JSON: %w", err)
		}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("response is not a JSON object")
	}
	return obj, nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

var yearRE = regexp.MustCompile(`\b\d{4}\b`)

// ExtractYear returns the first standalone 4-digit number in name, or "".
func ExtractYear(name string) string {
	return yearRE.FindString(name)
}

// SplitName splits a provider name such as "Inception 2010 Leonardo DiCaprio"
// around the first occurrence of year into a title and a cast listing.
// Without a year the whole name is the title. Titles that contain a 4-digit
// number of their own are split at that number.
func SplitName(name, year string) (title, cast string) {
	name = strings.TrimSpace(name)
	idx := -1
	if year != "" {
		idx = strings.Index(name, year)
	}
	if idx < 0 {
		return name, ""
	}

	title = strings.TrimSpace(strings.TrimRight(name[:idx], " ([-|,"))
	cast = strings.TrimSpace(strings.TrimLeft(name[idx+len(year):], " )]-|,·"))
	if title == "" {
		title = name
	}
	return title, cast
}

// StreamingURL guesses the watch page for a title: lower-cased, spaces
// replaced by hyphens, percent-encoded, suffixed with the year when known.
func StreamingURL(base, title, year string) string {
	if base == "" || title == "" {
		return ""
	}
	slug := strings.ReplaceAll(strings.ToLower(title), " ", "-")
	slug = url.PathEscape(slug)
	if year != "" {
		slug += "-" + year
	}
	return base + slug
}

// CacheKey normalizes a title for memoization.
func CacheKey(title string) string {
	return cases.Fold().String(strings.Join(strings.Fields(title), " "))
}
