package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/giannisanni/movieratings/internal/enrich"
	"github.com/giannisanni/movieratings/internal/leaderboard"
	"github.com/giannisanni/movieratings/internal/models"
	"github.com/giannisanni/movieratings/internal/ratings"
)

type pageRow struct {
	leaderboard.Row
	InfoURL string
	Open    bool
	Meta    *models.MovieMetadata
	Error   string
}

type pageData struct {
	Title    string
	SheetURL string
	Query    string
	Rows     []pageRow
}

type errorPage struct {
	Title   string
	Message string
}

// HandleLeaderboard renders the full page. ?q= filters by title and
// ?info=<rank> opens the detail panel for one row.
func (h *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries, err := h.loader.Load(r.Context())
	if err != nil {
		slog.Error("Failed to load ratings", "err", err)
		h.render(w, http.StatusBadGateway, "error.html", errorPage{
			Title:   h.opts.Title,
			Message: "The ratings could not be loaded. Please try again later.",
		})
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	rows := leaderboard.Build(ratings.Filter(entries, query))

	openRank := -1
	if v := r.URL.Query().Get("info"); v != "" {
		if rank, err := strconv.Atoi(v); err == nil {
			openRank = rank
		}
	}

	data := pageData{
		Title:    h.opts.Title,
		SheetURL: h.opts.SheetURL,
		Query:    query,
		Rows:     make([]pageRow, 0, len(rows)),
	}
	for _, row := range rows {
		pr := pageRow{Row: row, Open: row.Rank == openRank}
		if pr.Open {
			pr.InfoURL = pageURL(query, -1)
			h.fillDetails(r, &pr)
		} else {
			pr.InfoURL = pageURL(query, row.Rank)
		}
		data.Rows = append(data.Rows, pr)
	}

	h.render(w, http.StatusOK, "leaderboard.html", data)
}

// fillDetails runs enrichment for the open row. Failures stay on that row.
func (h *Handler) fillDetails(r *http.Request, pr *pageRow) {
	meta, err := h.enricher.Enrich(r.Context(), pr.Title)
	if err != nil {
		slog.Warn("Enrichment failed", "title", pr.Title, "rank", pr.Rank, "err", err)
		pr.Error = err.Error()
		return
	}
	pr.Meta = &meta
}

func pageURL(query string, rank int) string {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	if rank >= 0 {
		v.Set("info", strconv.Itoa(rank))
	}
	if len(v) == 0 {
		return "/"
	}
	return "/?" + v.Encode()
}

type apiRow struct {
	Rank       int     `json:"rank"`
	Title      string  `json:"title"`
	Rating     float64 `json:"rating"`
	Formatted  string  `json:"formatted_rating"`
	Decoration string  `json:"decoration"`
	Band       string  `json:"band"`
	Color      string  `json:"color"`
}

type leaderboardResponse struct {
	Query string   `json:"query,omitempty"`
	Count int      `json:"count"`
	Rows  []apiRow `json:"rows"`
}

// HandleLeaderboardAPI serves GET /api/leaderboard?q=.
func (h *Handler) HandleLeaderboardAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries, err := h.loader.Load(r.Context())
	if err != nil {
		slog.Error("Failed to load ratings", "err", err)
		h.writeError(w, "Unable to load ratings", http.StatusBadGateway)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	rows := leaderboard.Build(ratings.Filter(entries, query))

	resp := leaderboardResponse{Query: query, Count: len(rows), Rows: make([]apiRow, 0, len(rows))}
	for _, row := range rows {
		resp.Rows = append(resp.Rows, apiRow{
			Rank:       row.Rank,
			Title:      row.Title,
			Rating:     row.Rating,
			Formatted:  row.FormattedRating,
			Decoration: row.Decoration,
			Band:       row.Band.Name,
			Color:      row.Band.Color,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleEnrichAPI serves GET /api/enrich?title=.
func (h *Handler) HandleEnrichAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		h.writeError(w, "title is required", http.StatusBadRequest)
		return
	}

	meta, err := h.enricher.Enrich(r.Context(), title)
	if err != nil {
		status, state := http.StatusBadGateway, enrich.StateError
		if errors.Is(err, enrich.ErrNotFound) {
			status, state = http.StatusNotFound, enrich.StateNotFound
		}
		slog.Warn("Enrichment failed", "title", title, "state", state, "err", err)
		h.writeJSON(w, status, errorResponse{State: string(state), Error: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, meta)
}
