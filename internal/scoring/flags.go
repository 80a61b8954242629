package scoring

import (
	"time"

	"github.com/trendradar/trendradar/internal/models"
)

const (
	hotThreshold      = 70
	nicheUpperBound   = 40
	nicheLowerBound   = 15
	emergingThreshold = 20
	emergingWindow    = 180 * 24 * time.Hour
)

// DeriveFlags recomputes status flags from a hot score and last-update time.
// It is a pure function: the same inputs always reproduce the same flags.
// Scores in [40,70] carry neither the hot nor the niche flag; that mid-tier
// band is deliberately unlabeled.
func DeriveFlags(hotScore int, lastUpdated, now time.Time) models.Flags {
	return models.Flags{
		IsHot:      hotScore > hotThreshold,
		IsNiche:    hotScore > nicheLowerBound && hotScore < nicheUpperBound,
		IsEmerging: !lastUpdated.IsZero() && now.Sub(lastUpdated) <= emergingWindow && hotScore > emergingThreshold,
	}
}
