package leaderboard

import (
	"fmt"
	"math"

	"github.com/giannisanni/movieratings/internal/models"
)

// StarCutoff is the first 0-based rank that no longer gets a star.
const StarCutoff = 20

// Band is a display range for a rating
type Band struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

var (
	Green  = Band{Name: "green", Color: "#00FF00"}
	Gold   = Band{Name: "gold", Color: "#FFD700"}
	Orange = Band{Name: "orange", Color: "#FFA500"}
	Red    = Band{Name: "red", Color: "#FF0000"}
)

var medals = [...]string{"🏆", "🥈", "🥉"}

// Row is a leaderboard entry ready for display.
type Row struct {
	models.RatingEntry
	Decoration      string `json:"decoration"`
	Band            Band   `json:"band"`
	FormattedRating string `json:"formatted_rating"`
}

// ColorFor maps a rating to its band. Lower bounds are inclusive and
// checked from the highest band down.
func ColorFor(rating float64) Band {
	switch {
	case math.IsNaN(rating):
		return Red
	case rating >= 9:
		return Green
	case rating >= 8:
		return Gold
	case rating >= 6.5:
		return Orange
	default:
		return Red
	}
}

// Decorate returns the label shown in front of a 0-based rank.
func Decorate(rank int) string {
	switch {
	case rank < 0:
		return ""
	case rank < len(medals):
		return medals[rank]
	case rank < StarCutoff:
		return fmt.Sprintf("%d. 🌟", rank+1)
	default:
		return fmt.Sprintf("%d.", rank+1)
	}
}

// FormatRating renders a rating with two decimals
func FormatRating(rating float64) string {
	return fmt.Sprintf("%.2f", rating)
}

// Build decorates entries in the order given.
func Build(entries []models.RatingEntry) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{
			RatingEntry:     e,
			Decoration:      Decorate(e.Rank),
			Band:            ColorFor(e.Rating),
			FormattedRating: FormatRating(e.Rating),
		})
	}
	return rows
}

// Find returns the row holding rank, if it is present.
func Find(rows []Row, rank int) (Row, bool) {
	for _, r := range rows {
		if r.Rank == rank {
			return r, true
		}
	}
	return Row{}, false
}
