package analysis

import (
	"math"
	"testing"

	"github.com/trendradar/trendradar/internal/models"
)

func TestCosineSimilarity_Identities(t *testing.T) {
	v := []float64{42, 7, 1, 0, 1, 0, 3}

	if got := CosineSimilarity(v, v); math.Abs(got-1) > 1e-9 {
		t.Errorf("similarity of a vector with itself should be 1, got %v", got)
	}

	zero := make([]float64, len(v))
	if got := CosineSimilarity(v, zero); got != 0 {
		t.Errorf("similarity against the zero vector should be 0, got %v", got)
	}

	if got := CosineSimilarity(v, []float64{1, 2}); got != 0 {
		t.Errorf("mismatched lengths should yield 0, got %v", got)
	}
}

func TestSimilarity_Projects(t *testing.T) {
	a := &models.Project{HotScore: 80, Category: models.CategoryLLM, Metrics: models.Metrics{Stars: 500}, Techs: []string{"RAG"}}
	b := &models.Project{HotScore: 78, Category: models.CategoryLLM, Metrics: models.Metrics{Stars: 480}, Techs: []string{"RAG"}}
	c := &models.Project{HotScore: 5, Category: models.CategorySpeech, Metrics: models.Metrics{Stars: 1}}

	if Similarity(a, b) <= Similarity(a, c) {
		t.Error("near-identical projects should be more similar than dissimilar ones")
	}
}

func TestRankSimilar(t *testing.T) {
	target := &models.Project{ID: "t", HotScore: 80, Category: models.CategoryLLM, Metrics: models.Metrics{Stars: 500}}
	close := &models.Project{ID: "a", HotScore: 79, Category: models.CategoryLLM, Metrics: models.Metrics{Stars: 490}}
	far := &models.Project{ID: "b", HotScore: 2, Category: models.CategoryVision, Metrics: models.Metrics{Stars: 100000}}

	ranked := RankSimilar(target, []*models.Project{far, close, target}, 10)

	if len(ranked) != 2 {
		t.Fatalf("target itself must be excluded, got %d results", len(ranked))
	}
	if ranked[0].Project.ID != "a" {
		t.Errorf("expected closest project first, got %q", ranked[0].Project.ID)
	}
	if ranked[0].Similarity < ranked[1].Similarity {
		t.Error("results not ordered by descending similarity")
	}

	limited := RankSimilar(target, []*models.Project{far, close}, 1)
	if len(limited) != 1 {
		t.Errorf("expected limit to cap results at 1, got %d", len(limited))
	}
}
