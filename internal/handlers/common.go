package handlers

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/giannisanni/movieratings/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// RatingsLoader returns the leaderboard entries in source order.
type RatingsLoader interface {
	Load(ctx context.Context) ([]models.RatingEntry, error)
}

// MetadataEnricher looks up metadata for a single title.
type MetadataEnricher interface {
	Enrich(ctx context.Context, title string) (models.MovieMetadata, error)
}

// Options configures the page chrome.
type Options struct {
	Title    string
	SheetURL string
}

type Handler struct {
	loader   RatingsLoader
	enricher MetadataEnricher
	opts     Options
}

func New(loader RatingsLoader, enricher MetadataEnricher, opts Options) *Handler {
	if opts.Title == "" {
		opts.Title = "Movie Ratings Leaderboard"
	}
	return &Handler{
		loader:   loader,
		enricher: enricher,
		opts:     opts,
	}
}

// Routes registers every endpoint on a new mux wrapped in the request logger.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.HandleLeaderboard)
	mux.HandleFunc("/api/leaderboard", h.HandleLeaderboardAPI)
	mux.HandleFunc("/api/enrich", h.HandleEnrichAPI)
	mux.Handle("/static/", h.HandleStatic())
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return RequestLogger(mux)
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

type errorResponse struct {
	State string `json:"state,omitempty"`
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	h.writeJSON(w, code, errorResponse{Error: message})
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("Unable to render template", "template", name, "err", err)
	}
}
