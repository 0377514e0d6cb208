package ratings

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/giannisanni/movieratings/internal/models"
)

// Filter keeps the entries whose title contains query, ignoring case.
// A blank query returns entries unchanged.
func Filter(entries []models.RatingEntry, query string) []models.RatingEntry {
	query = strings.TrimSpace(query)
	if query == "" {
		return entries
	}

	fold := cases.Fold()
	needle := fold.String(query)

	matched := make([]models.RatingEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(fold.String(e.Title), needle) {
			matched = append(matched, e)
		}
	}
	return matched
}
