package scoring

import (
	"math"
	"time"

	"github.com/trendradar/trendradar/internal/analysis"
	"github.com/trendradar/trendradar/internal/models"
)

// Input carries the raw metrics a hot score is computed from.
type Input struct {
	Stars       int
	Forks       int
	Followers   int
	Votes       int
	Comments    int
	Views       int
	LastUpdated time.Time // zero value means unknown
	Category    models.Category
}

// HotScorer computes composite popularity scores in [0,100].
// All methods are pure: identical inputs always produce identical output.
type HotScorer struct {
	categoryWeights map[models.Category]float64
}

// NewHotScorer creates a scorer with the default category weight table.
func NewHotScorer() *HotScorer {
	return &HotScorer{
		categoryWeights: map[models.Category]float64{
			models.CategoryLLM:          15,
			models.CategoryAgent:        14,
			models.CategorySearch:       13,
			models.CategoryCoding:       12,
			models.CategoryContent:      11,
			models.CategoryProductivity: 10,
			models.CategoryOther:        8,
		},
	}
}

// Score blends repository activity, social reach, freshness, category weight
// and engagement into a single hot score. now anchors the freshness decay.
func (s *HotScorer) Score(in Input, now time.Time) int {
	total := s.repoComponent(in.Stars, in.Forks) +
		s.socialComponent(in.Followers, in.Votes, in.Comments) +
		s.timeDecay(in.LastUpdated, now) +
		s.categoryWeight(in.Category) +
		s.interactionComponent(in.Views)

	return clamp(int(math.Round(total)))
}

// repoComponent scores repository activity, log-scaled, capped at 30.
func (s *HotScorer) repoComponent(stars, forks int) float64 {
	return math.Min(30, 3*math.Log10(float64(stars)+1)+2*math.Log10(float64(forks)+1))
}

// socialComponent scores social reach, log-scaled, capped at 20.
func (s *HotScorer) socialComponent(followers, votes, comments int) float64 {
	return math.Min(20,
		2*math.Log10(float64(followers)+1)+
			1.5*math.Log10(float64(votes)+1)+
			1*math.Log10(float64(comments)+1))
}

// timeDecay is a step function over the age of the last update, 0-25.
// An unknown last-update date scores 5.
func (s *HotScorer) timeDecay(lastUpdated, now time.Time) float64 {
	if lastUpdated.IsZero() {
		return 5
	}

	days := now.Sub(lastUpdated).Hours() / 24
	switch {
	case days <= 7:
		return 25
	case days <= 30:
		return 20
	case days <= 90:
		return 15
	case days <= 180:
		return 10
	case days <= 365:
		return 5
	default:
		return 0
	}
}

func (s *HotScorer) categoryWeight(category models.Category) float64 {
	if weight, ok := s.categoryWeights[category]; ok {
		return weight
	}
	return 8
}

// interactionComponent scores view engagement, log-scaled, capped at 10.
func (s *HotScorer) interactionComponent(views int) float64 {
	return math.Min(10, 1.5*math.Log10(float64(views)+1))
}

// TrendScore compares the current metric snapshot against the previous one.
// A nil previous snapshot is neutral (50).
func TrendScore(current models.Metrics, previous *models.Metrics) int {
	if previous == nil {
		return 50
	}

	starGrowth := percentGrowth(current.Stars, previous.Stars)
	forkGrowth := percentGrowth(current.Forks, previous.Forks)
	followerGrowth := percentGrowth(current.Followers, previous.Followers)

	avgGrowth := (starGrowth + forkGrowth + followerGrowth) / 3

	return clamp(int(math.Round(50 + avgGrowth*10)))
}

// percentGrowth returns growth in percent. Growth from zero to a positive
// value counts as a fixed small bump rather than a division by zero.
func percentGrowth(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 5
		}
		return 0
	}
	return (float64(current-previous) / float64(previous)) * 100
}

// InnovationScore rewards emerging-technology usage, niche status and
// vertical-domain relevance on top of a neutral base of 50.
func InnovationScore(p *models.Project) int {
	score := 50
	score += 5 * analysis.CountEmergingTechnologies(p.Techs)
	if p.Flags.IsNiche {
		score += 10
	}
	if analysis.MatchesVerticalDomain(p.Description) {
		score += 15
	}
	return clamp(score)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
