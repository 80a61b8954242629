package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trendradar/trendradar/internal/analysis"
	"github.com/trendradar/trendradar/internal/models"
	"github.com/trendradar/trendradar/internal/scoring"
)

// Merger resolves incoming raw records against the project store and either
// merges them into the existing project or inserts a new one. Merging is
// idempotent: replaying an identical record against an already-merged
// project converges to a stable state and never produces a duplicate.
type Merger struct {
	repo   ProjectRepository
	scorer *scoring.HotScorer
	logger *slog.Logger
	now    func() time.Time
}

// NewMerger creates a merger. now is injectable for deterministic tests;
// pass nil for wall-clock time.
func NewMerger(repo ProjectRepository, scorer *scoring.HotScorer, logger *slog.Logger, now func() time.Time) *Merger {
	if now == nil {
		now = time.Now
	}
	return &Merger{
		repo:   repo,
		scorer: scorer,
		logger: logger,
		now:    now,
	}
}

// MergeResult reports what a merge did with one raw record.
type MergeResult struct {
	Project *models.Project
	Created bool
}

// Merge resolves the record's identity (external id first, then the
// (name, source) pair), applies the per-field merge policy and persists the
// outcome with freshly computed scores and flags.
func (m *Merger) Merge(ctx context.Context, source models.DataSource, record RawRecord) (MergeResult, error) {
	existing, err := m.resolve(ctx, source, record)
	if err != nil {
		return MergeResult{}, &PersistenceError{Op: "resolve", Identity: identityOf(source, record), Err: err}
	}

	now := m.now()

	if existing == nil {
		project := m.newProject(source, record, now)
		if err := project.Validate(); err != nil {
			return MergeResult{}, err
		}
		if err := m.repo.Store(ctx, project); err != nil {
			return MergeResult{}, &PersistenceError{Op: "store", Identity: project.Identity(), Err: err}
		}
		m.logger.Debug("project inserted", "identity", project.Identity(), "hot_score", project.HotScore)
		return MergeResult{Project: project, Created: true}, nil
	}

	m.applyMergePolicy(existing, record, now)
	if err := existing.Validate(); err != nil {
		return MergeResult{}, err
	}
	if err := m.repo.Update(ctx, existing); err != nil {
		return MergeResult{}, &PersistenceError{Op: "update", Identity: existing.Identity(), Err: err}
	}
	m.logger.Debug("project merged", "identity", existing.Identity(), "hot_score", existing.HotScore)
	return MergeResult{Project: existing, Created: false}, nil
}

// resolve looks the record up by external id when it carries one, falling
// back to the (name, source) pair.
func (m *Merger) resolve(ctx context.Context, source models.DataSource, record RawRecord) (*models.Project, error) {
	if record.ExternalID != "" {
		project, err := m.repo.FindByExternalID(ctx, source, record.ExternalID)
		if err != nil {
			return nil, err
		}
		if project != nil {
			return project, nil
		}
	}
	return m.repo.FindByIdentity(ctx, record.Name, source)
}

func (m *Merger) newProject(source models.DataSource, record RawRecord, now time.Time) *models.Project {
	project := &models.Project{
		ID:          uuid.NewString(),
		Name:        record.Name,
		Source:      source,
		ExternalID:  record.ExternalID,
		Description: record.Description,
		Website:     record.Website,
		RepoURL:     record.RepoURL,
		Tags:        record.Tags,
		Metrics:     record.Metrics,
		LastUpdated: now,
		CreatedAt:   now,
	}
	m.enrich(project)
	m.rescore(project, now)
	return project
}

// applyMergePolicy enumerates which fields the incoming record is source of
// truth for. Content and metric fields take incoming non-empty values;
// scores and flags are always recomputed locally and never copied from the
// record, so stale incoming data cannot clobber them.
func (m *Merger) applyMergePolicy(existing *models.Project, record RawRecord, now time.Time) {
	if record.ExternalID != "" {
		existing.ExternalID = record.ExternalID
	}
	if record.Description != "" {
		existing.Description = record.Description
	}
	if record.Website != "" {
		existing.Website = record.Website
	}
	if record.RepoURL != "" {
		existing.RepoURL = record.RepoURL
	}
	if len(record.Tags) > 0 {
		existing.Tags = record.Tags
	}

	// Snapshot the current metrics before overwriting so trend growth can
	// compare against the previous collection. The guard compares against
	// the post-merge state: a record reporting only a subset of counters
	// always differs from the merged struct, and re-snapshotting on such a
	// replay would reset trend growth to neutral.
	merged := existing.Metrics
	mergeMetrics(&merged, record.Metrics)
	if merged != existing.Metrics {
		previous := existing.Metrics
		existing.PreviousMetrics = &previous
	}
	existing.Metrics = merged

	existing.LastUpdated = now
	m.enrich(existing)
	m.rescore(existing, now)
}

// mergeMetrics overwrites counters with incoming non-zero values. A zero
// incoming counter means the source did not report it, not that it dropped
// to zero.
func mergeMetrics(dst *models.Metrics, src models.Metrics) {
	if src.Stars > 0 {
		dst.Stars = src.Stars
	}
	if src.Forks > 0 {
		dst.Forks = src.Forks
	}
	if src.Followers > 0 {
		dst.Followers = src.Followers
	}
	if src.Views > 0 {
		dst.Views = src.Views
	}
	if src.Likes > 0 {
		dst.Likes = src.Likes
	}
	if src.Comments > 0 {
		dst.Comments = src.Comments
	}
	if src.Votes > 0 {
		dst.Votes = src.Votes
	}
}

// enrich derives category and technology tags from the project's text.
func (m *Merger) enrich(project *models.Project) {
	if project.Description != "" || len(project.Tags) > 0 {
		project.Category = analysis.Classify(project.Description, project.Tags)
	}
	if project.Category == "" {
		project.Category = models.CategoryOther
	}
	if detected := analysis.DetectTechnologies(project.Description); len(detected) > 0 {
		project.Techs = detected
	}
}

// rescore recomputes every derived score and flag. Flags feed the
// innovation score, so ordering matters: hot, flags, then innovation.
func (m *Merger) rescore(project *models.Project, now time.Time) {
	project.HotScore = m.scorer.Score(scoring.Input{
		Stars:       project.Metrics.Stars,
		Forks:       project.Metrics.Forks,
		Followers:   project.Metrics.Followers,
		Votes:       project.Metrics.Votes,
		Comments:    project.Metrics.Comments,
		Views:       project.Metrics.Views,
		LastUpdated: project.LastUpdated,
		Category:    project.Category,
	}, now)
	project.Flags = scoring.DeriveFlags(project.HotScore, project.LastUpdated, now)
	project.TrendScore = scoring.TrendScore(project.Metrics, project.PreviousMetrics)
	project.InnovationScore = scoring.InnovationScore(project)
}

func identityOf(source models.DataSource, record RawRecord) string {
	if record.ExternalID != "" {
		return fmt.Sprintf("%s:%s", source, record.ExternalID)
	}
	return fmt.Sprintf("%s/%s", source, record.Name)
}
