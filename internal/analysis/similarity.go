package analysis

import (
	"math"
	"sort"

	"github.com/trendradar/trendradar/internal/models"
)

// FeatureVector maps a project onto a fixed-length numeric vector used for
// cosine similarity: score, raw popularity, category one-hots, status flags
// and technology count.
func FeatureVector(p *models.Project) []float64 {
	return []float64{
		float64(p.HotScore),
		float64(p.Metrics.Stars),
		oneHot(p.Category == models.CategoryLLM),
		oneHot(p.Category == models.CategoryAgent),
		oneHot(p.Flags.IsNiche),
		oneHot(p.Flags.IsEmerging),
		float64(len(p.Techs)),
	}
}

func oneHot(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// CosineSimilarity returns the cosine of the angle between a and b. Either
// vector having zero magnitude yields 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Similarity computes cosine similarity between two projects' feature vectors.
func Similarity(a, b *models.Project) float64 {
	return CosineSimilarity(FeatureVector(a), FeatureVector(b))
}

// SimilarProject pairs a candidate with its similarity to a target.
type SimilarProject struct {
	Project    *models.Project `json:"project"`
	Similarity float64         `json:"similarity"`
}

// RankSimilar returns the limit most similar projects to target, excluding
// target itself, ordered by descending similarity.
func RankSimilar(target *models.Project, candidates []*models.Project, limit int) []SimilarProject {
	targetVec := FeatureVector(target)

	ranked := make([]SimilarProject, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == target.ID {
			continue
		}
		ranked = append(ranked, SimilarProject{
			Project:    candidate,
			Similarity: CosineSimilarity(targetVec, FeatureVector(candidate)),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
