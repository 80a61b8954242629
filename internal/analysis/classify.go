package analysis

import (
	"strings"

	"github.com/trendradar/trendradar/internal/models"
)

// Classify picks the category whose keywords score the most hits in the
// project's description and tags. Ties break toward the earliest category in
// canonical order; zero hits everywhere falls back to Other.
func Classify(description string, tags []string) models.Category {
	text := strings.ToLower(description + " " + strings.Join(tags, " "))

	best := models.CategoryOther
	bestHits := 0
	for _, category := range models.AllCategories() {
		hits := 0
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(text, keyword) {
				hits++
			}
		}
		if hits > bestHits {
			best = category
			bestHits = hits
		}
	}
	return best
}
