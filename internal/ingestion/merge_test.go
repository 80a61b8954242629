package ingestion

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/trendradar/trendradar/internal/models"
	"github.com/trendradar/trendradar/internal/scoring"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedNow() (func() time.Time, time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return now }, now
}

func TestMerge_InsertsNewProject(t *testing.T) {
	repo := NewMemoryProjectRepository()
	nowFn, now := fixedNow()
	merger := NewMerger(repo, scoring.NewHotScorer(), testLogger(), nowFn)

	record := RawRecord{
		Name:        "langchain",
		Description: "An LLM framework built on transformer models",
		RepoURL:     "https://github.com/langchain-ai/langchain",
		ExternalID:  "1001",
		Metrics:     models.Metrics{Stars: 1000, Forks: 200},
	}

	result, err := merger.Merge(context.Background(), models.SourceGitHub, record)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if !result.Created {
		t.Error("expected a new project to be created")
	}
	if result.Project.ID == "" {
		t.Error("expected a generated project ID")
	}
	if result.Project.Category != models.CategoryLLM {
		t.Errorf("expected llm classification, got %q", result.Project.Category)
	}
	if result.Project.HotScore <= 0 {
		t.Errorf("expected a positive hot score, got %d", result.Project.HotScore)
	}
	if result.Project.TrendScore != 50 {
		t.Errorf("first sighting has no previous snapshot, expected neutral 50, got %d", result.Project.TrendScore)
	}
	if !result.Project.CreatedAt.Equal(now) || !result.Project.LastUpdated.Equal(now) {
		t.Error("timestamps should come from the injected clock")
	}
}

func TestMerge_Idempotent(t *testing.T) {
	repo := NewMemoryProjectRepository()
	nowFn, _ := fixedNow()
	merger := NewMerger(repo, scoring.NewHotScorer(), testLogger(), nowFn)

	record := RawRecord{
		Name:       "whisper",
		ExternalID: "77",
		Metrics:    models.Metrics{Stars: 500},
	}

	first, err := merger.Merge(context.Background(), models.SourceGitHub, record)
	if err != nil {
		t.Fatalf("first merge failed: %v", err)
	}
	second, err := merger.Merge(context.Background(), models.SourceGitHub, record)
	if err != nil {
		t.Fatalf("second merge failed: %v", err)
	}

	if second.Created {
		t.Error("replaying the same record must not create a duplicate")
	}
	if first.Project.ID != second.Project.ID {
		t.Error("both merges should resolve to the same project")
	}
	if count, _ := repo.Count(context.Background()); count != 1 {
		t.Errorf("expected exactly one stored project, got %d", count)
	}
}

func TestMerge_ResolvesByIdentityWithoutExternalID(t *testing.T) {
	repo := NewMemoryProjectRepository()
	nowFn, _ := fixedNow()
	merger := NewMerger(repo, scoring.NewHotScorer(), testLogger(), nowFn)

	ctx := context.Background()
	if _, err := merger.Merge(ctx, models.SourceProductHunt, RawRecord{Name: "devtool"}); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	result, err := merger.Merge(ctx, models.SourceProductHunt, RawRecord{Name: "devtool", Description: "better docs"})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if result.Created {
		t.Error("same (name, source) pair should merge, not insert")
	}
	if result.Project.Description != "better docs" {
		t.Errorf("incoming description should win, got %q", result.Project.Description)
	}
}

func TestMerge_PerFieldPolicy(t *testing.T) {
	repo := NewMemoryProjectRepository()
	nowFn, _ := fixedNow()
	merger := NewMerger(repo, scoring.NewHotScorer(), testLogger(), nowFn)
	ctx := context.Background()

	seed := RawRecord{
		Name:        "ragflow",
		ExternalID:  "9",
		Description: "original description",
		Website:     "https://ragflow.io",
		Metrics:     models.Metrics{Stars: 100, Forks: 10},
	}
	if _, err := merger.Merge(ctx, models.SourceGitHub, seed); err != nil {
		t.Fatalf("seed merge failed: %v", err)
	}

	// Empty incoming fields must not erase existing values; non-zero
	// counters overwrite.
	update := RawRecord{
		Name:       "ragflow",
		ExternalID: "9",
		Metrics:    models.Metrics{Stars: 150},
	}
	result, err := merger.Merge(ctx, models.SourceGitHub, update)
	if err != nil {
		t.Fatalf("update merge failed: %v", err)
	}

	p := result.Project
	if p.Description != "original description" {
		t.Errorf("empty incoming description erased existing value: %q", p.Description)
	}
	if p.Website != "https://ragflow.io" {
		t.Errorf("empty incoming website erased existing value: %q", p.Website)
	}
	if p.Metrics.Stars != 150 {
		t.Errorf("incoming stars should overwrite, got %d", p.Metrics.Stars)
	}
	if p.Metrics.Forks != 10 {
		t.Errorf("unreported forks should be preserved, got %d", p.Metrics.Forks)
	}
	if p.PreviousMetrics == nil || p.PreviousMetrics.Stars != 100 {
		t.Errorf("previous metrics snapshot missing or wrong: %+v", p.PreviousMetrics)
	}
	if p.TrendScore <= 50 {
		t.Errorf("star growth should push trend above neutral, got %d", p.TrendScore)
	}
}

func TestMerge_SubsetRecordReplayKeepsTrendSnapshot(t *testing.T) {
	repo := NewMemoryProjectRepository()
	nowFn, _ := fixedNow()
	merger := NewMerger(repo, scoring.NewHotScorer(), testLogger(), nowFn)
	ctx := context.Background()

	// One identity fed by two records with disjoint counters: a repo record
	// carrying stars and a social record carrying only likes.
	repoRecord := RawRecord{Name: "crossfeed", ExternalID: "42", Metrics: models.Metrics{Stars: 100}}
	socialRecord := RawRecord{Name: "crossfeed", ExternalID: "42", Metrics: models.Metrics{Likes: 20}}

	if _, err := merger.Merge(ctx, models.SourceGitHub, repoRecord); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if _, err := merger.Merge(ctx, models.SourceGitHub, socialRecord); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	grown := repoRecord
	grown.Metrics = models.Metrics{Stars: 150}
	result, err := merger.Merge(ctx, models.SourceGitHub, grown)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if result.Project.TrendScore <= 50 {
		t.Fatalf("star growth should push trend above neutral, got %d", result.Project.TrendScore)
	}
	trendAfterGrowth := result.Project.TrendScore

	// Replaying the unchanged social record changes nothing once merged, so
	// it must not refresh the snapshot and flatten the trend.
	replayed, err := merger.Merge(ctx, models.SourceGitHub, socialRecord)
	if err != nil {
		t.Fatalf("replay merge failed: %v", err)
	}
	if replayed.Project.PreviousMetrics == nil || replayed.Project.PreviousMetrics.Stars != 100 {
		t.Errorf("snapshot refreshed by a no-op replay: %+v", replayed.Project.PreviousMetrics)
	}
	if replayed.Project.TrendScore != trendAfterGrowth {
		t.Errorf("trend reset by a no-op replay: got %d, want %d", replayed.Project.TrendScore, trendAfterGrowth)
	}
}

func TestMerge_ScoresAlwaysRecomputed(t *testing.T) {
	repo := NewMemoryProjectRepository()
	nowFn, _ := fixedNow()
	merger := NewMerger(repo, scoring.NewHotScorer(), testLogger(), nowFn)
	ctx := context.Background()

	result, err := merger.Merge(ctx, models.SourceGitHub, RawRecord{Name: "tool", ExternalID: "3", Metrics: models.Metrics{Stars: 50}})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	// Corrupt the stored scores, then replay; the merge must restore them.
	stored, _ := repo.FindByExternalID(ctx, models.SourceGitHub, "3")
	stored.HotScore = 99
	stored.Flags = models.Flags{IsHot: true}
	if err := repo.Update(ctx, stored); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	replayed, err := merger.Merge(ctx, models.SourceGitHub, RawRecord{Name: "tool", ExternalID: "3", Metrics: models.Metrics{Stars: 50}})
	if err != nil {
		t.Fatalf("replay merge failed: %v", err)
	}
	if replayed.Project.HotScore != result.Project.HotScore {
		t.Errorf("replay should recompute the hot score, got %d want %d", replayed.Project.HotScore, result.Project.HotScore)
	}
	if replayed.Project.Flags.IsHot {
		t.Error("stale hot flag survived the merge")
	}
}

func TestMerge_RejectsInvalidRecord(t *testing.T) {
	repo := NewMemoryProjectRepository()
	nowFn, _ := fixedNow()
	merger := NewMerger(repo, scoring.NewHotScorer(), testLogger(), nowFn)

	_, err := merger.Merge(context.Background(), models.SourceGitHub, RawRecord{Name: ""})
	if err == nil {
		t.Fatal("expected a validation error for an unnamed record")
	}
	if count, _ := repo.Count(context.Background()); count != 0 {
		t.Errorf("invalid record must not be stored, got %d", count)
	}
}
