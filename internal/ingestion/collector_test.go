package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/trendradar/trendradar/internal/models"
	"github.com/trendradar/trendradar/internal/scoring"
)

type fakeAdapter struct {
	name    string
	source  models.DataSource
	records []RawRecord
	err     error
	fetches int
}

func (a *fakeAdapter) Name() string              { return a.name }
func (a *fakeAdapter) Source() models.DataSource { return a.source }

func (a *fakeAdapter) Fetch(ctx context.Context) ([]RawRecord, error) {
	a.fetches++
	if a.err != nil {
		return nil, a.err
	}
	return a.records, nil
}

func newTestCollector(adapters []SourceAdapter, repo ProjectRepository, nowFn func() time.Time) *Collector {
	scorer := scoring.NewHotScorer()
	merger := NewMerger(repo, scorer, testLogger(), nowFn)
	return NewCollector(adapters, merger, repo, scorer, testLogger(), nil, 0, nowFn)
}

func TestRunCollection_StoresRecordsFromAllAdapters(t *testing.T) {
	repo := NewMemoryProjectRepository()
	nowFn, _ := fixedNow()

	github := &fakeAdapter{
		name:   "github",
		source: models.SourceGitHub,
		records: []RawRecord{
			{Name: "langchain", ExternalID: "1", Metrics: models.Metrics{Stars: 1000}},
			{Name: "autogpt", ExternalID: "2", Metrics: models.Metrics{Stars: 5000}},
		},
	}
	hf := &fakeAdapter{
		name:    "huggingface",
		source:  models.SourceHuggingFace,
		records: []RawRecord{{Name: "mistral-7b", ExternalID: "m1", Metrics: models.Metrics{Likes: 300}}},
	}

	collector := newTestCollector([]SourceAdapter{github, hf}, repo, nowFn)
	if err := collector.RunCollection(context.Background()); err != nil {
		t.Fatalf("collection failed: %v", err)
	}

	count, _ := repo.Count(context.Background())
	if count != 3 {
		t.Errorf("expected 3 stored projects, got %d", count)
	}
	if github.fetches != 1 || hf.fetches != 1 {
		t.Errorf("each adapter should be fetched once, got %d and %d", github.fetches, hf.fetches)
	}
}

func TestRunCollection_AdapterFailureDoesNotBlockOthers(t *testing.T) {
	repo := NewMemoryProjectRepository()
	nowFn, _ := fixedNow()

	broken := &fakeAdapter{name: "github", source: models.SourceGitHub, err: errors.New("rate limited")}
	healthy := &fakeAdapter{
		name:    "huggingface",
		source:  models.SourceHuggingFace,
		records: []RawRecord{{Name: "llama-3", ExternalID: "m2"}},
	}

	collector := newTestCollector([]SourceAdapter{broken, healthy}, repo, nowFn)
	if err := collector.RunCollection(context.Background()); err != nil {
		t.Fatalf("one broken adapter must not fail the pass: %v", err)
	}

	count, _ := repo.Count(context.Background())
	if count != 1 {
		t.Errorf("healthy adapter's record should be stored, got %d projects", count)
	}
}

func TestCollectSource_UnknownAdapter(t *testing.T) {
	repo := NewMemoryProjectRepository()
	nowFn, _ := fixedNow()
	collector := newTestCollector(nil, repo, nowFn)

	if err := collector.CollectSource(context.Background(), "nope"); err == nil {
		t.Fatal("expected an error for an unknown adapter name")
	}
}

func TestCollectSource_RunsOnlyNamedAdapter(t *testing.T) {
	repo := NewMemoryProjectRepository()
	nowFn, _ := fixedNow()

	github := &fakeAdapter{name: "github", source: models.SourceGitHub, records: []RawRecord{{Name: "a", ExternalID: "1"}}}
	hf := &fakeAdapter{name: "huggingface", source: models.SourceHuggingFace}

	collector := newTestCollector([]SourceAdapter{github, hf}, repo, nowFn)
	if err := collector.CollectSource(context.Background(), "github"); err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if hf.fetches != 0 {
		t.Error("only the named adapter should be fetched")
	}
}

func TestRefreshScores_RecomputesStoredScores(t *testing.T) {
	repo := NewMemoryProjectRepository()
	nowFn, now := fixedNow()

	project := &models.Project{
		ID:          "p1",
		Name:        "stale-scores",
		Source:      models.SourceGitHub,
		Category:    models.CategoryOther,
		Metrics:     models.Metrics{Stars: 10000},
		HotScore:    0,
		LastUpdated: now,
		CreatedAt:   now,
	}
	if err := repo.Store(context.Background(), project); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	collector := newTestCollector(nil, repo, nowFn)
	if err := collector.RefreshScores(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	refreshed, _ := repo.FindByIdentity(context.Background(), "stale-scores", models.SourceGitHub)
	if refreshed.HotScore <= 0 {
		t.Errorf("refresh should recompute the hot score, got %d", refreshed.HotScore)
	}
}

func TestCleanup_KeepsEarliestDuplicate(t *testing.T) {
	repo := NewMemoryProjectRepository()
	nowFn, now := fixedNow()
	ctx := context.Background()

	for i, id := range []string{"dup-a", "dup-b", "dup-c"} {
		p := &models.Project{
			ID:          id,
			Name:        "shared-name",
			Source:      models.SourceGitHub,
			Category:    models.CategoryOther,
			LastUpdated: now,
			CreatedAt:   now.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.Store(ctx, p); err != nil {
			t.Fatalf("store failed: %v", err)
		}
	}

	collector := newTestCollector(nil, repo, nowFn)
	if err := collector.Cleanup(ctx); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	count, _ := repo.Count(ctx)
	if count != 1 {
		t.Fatalf("expected one survivor, got %d", count)
	}
	survivor, _ := repo.FindByIdentity(ctx, "shared-name", models.SourceGitHub)
	if survivor.ID != "dup-a" {
		t.Errorf("earliest-created duplicate should survive, got %q", survivor.ID)
	}
}

func TestCleanup_RemovesStaleLowScoreProjects(t *testing.T) {
	repo := NewMemoryProjectRepository()
	nowFn, now := fixedNow()
	ctx := context.Background()

	stale := &models.Project{
		ID: "stale", Name: "abandoned", Source: models.SourceGitHub,
		Category: models.CategoryOther, HotScore: 5,
		LastUpdated: now.Add(-400 * 24 * time.Hour), CreatedAt: now.Add(-500 * 24 * time.Hour),
	}
	oldButHot := &models.Project{
		ID: "hot", Name: "classic", Source: models.SourceGitHub,
		Category: models.CategoryOther, HotScore: 80,
		LastUpdated: now.Add(-400 * 24 * time.Hour), CreatedAt: now.Add(-500 * 24 * time.Hour),
	}
	fresh := &models.Project{
		ID: "fresh", Name: "new", Source: models.SourceGitHub,
		Category: models.CategoryOther, HotScore: 5,
		LastUpdated: now, CreatedAt: now,
	}
	for _, p := range []*models.Project{stale, oldButHot, fresh} {
		if err := repo.Store(ctx, p); err != nil {
			t.Fatalf("store failed: %v", err)
		}
	}

	collector := newTestCollector(nil, repo, nowFn)
	if err := collector.Cleanup(ctx); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if p, _ := repo.FindByIdentity(ctx, "abandoned", models.SourceGitHub); p != nil {
		t.Error("stale low-score project should be deleted")
	}
	if p, _ := repo.FindByIdentity(ctx, "classic", models.SourceGitHub); p == nil {
		t.Error("old but high-score project must survive")
	}
	if p, _ := repo.FindByIdentity(ctx, "new", models.SourceGitHub); p == nil {
		t.Error("recently updated project must survive")
	}
}
