package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/trendradar/trendradar/internal/metrics"
	"github.com/trendradar/trendradar/internal/models"
	"github.com/trendradar/trendradar/internal/scoring"
)

const (
	// staleMaxAge and staleScoreCeiling bound the cleanup pass: projects not
	// updated for over a year whose hot score stayed below 10 are deleted.
	staleMaxAge       = 365 * 24 * time.Hour
	staleScoreCeiling = 10

	refreshPageSize = 500
)

// Collector drives one collection pass across all registered source
// adapters, feeding each record through the merger, then triggers a full
// score refresh. Adapters run sequentially to respect external rate limits;
// one broken source never blocks the others.
type Collector struct {
	adapters []SourceAdapter
	merger   *Merger
	repo     ProjectRepository
	scorer   *scoring.HotScorer
	logger   *slog.Logger
	metrics  *metrics.Collector
	delay    time.Duration
	now      func() time.Time
}

// NewCollector creates a collector. delay is the pause inserted between
// consecutive adapters. now is injectable for tests; nil means wall clock.
func NewCollector(
	adapters []SourceAdapter,
	merger *Merger,
	repo ProjectRepository,
	scorer *scoring.HotScorer,
	logger *slog.Logger,
	collectorMetrics *metrics.Collector,
	delay time.Duration,
	now func() time.Time,
) *Collector {
	if now == nil {
		now = time.Now
	}
	return &Collector{
		adapters: adapters,
		merger:   merger,
		repo:     repo,
		scorer:   scorer,
		logger:   logger,
		metrics:  collectorMetrics,
		delay:    delay,
		now:      now,
	}
}

// RunCollection collects from every adapter in order, then refreshes all
// stored scores. Adapter failures are logged and skipped.
func (c *Collector) RunCollection(ctx context.Context) error {
	c.logger.Info("starting collection pass", "adapters", len(c.adapters))

	for i, adapter := range c.adapters {
		if err := c.collectFrom(ctx, adapter); err != nil {
			c.logger.Error("source collection failed, continuing",
				"adapter", adapter.Name(),
				"source", adapter.Source(),
				"error", err,
			)
		}

		if i < len(c.adapters)-1 && c.delay > 0 {
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if err := c.RefreshScores(ctx); err != nil {
		return fmt.Errorf("score refresh after collection: %w", err)
	}

	c.logger.Info("collection pass complete")
	return nil
}

// CollectSource runs a single adapter by name without the full refresh;
// merged records are scored as part of the merge itself.
func (c *Collector) CollectSource(ctx context.Context, name string) error {
	for _, adapter := range c.adapters {
		if adapter.Name() == name {
			return c.collectFrom(ctx, adapter)
		}
	}
	return fmt.Errorf("unknown source adapter: %s", name)
}

// AdapterNames lists the registered adapters in collection order.
func (c *Collector) AdapterNames() []string {
	names := make([]string, 0, len(c.adapters))
	for _, adapter := range c.adapters {
		names = append(names, adapter.Name())
	}
	return names
}

func (c *Collector) collectFrom(ctx context.Context, adapter SourceAdapter) error {
	start := c.now()
	source := adapter.Source()

	records, err := adapter.Fetch(ctx)
	if err != nil {
		return &AdapterError{Adapter: adapter.Name(), Err: err}
	}

	inserted, merged, failed := 0, 0, 0
	for _, record := range records {
		result, err := c.merger.Merge(ctx, source, record)
		if err != nil {
			failed++
			c.metrics.ObserveRecord(string(source), metrics.ActionFailed)
			c.logRecordError(source, record, err)
			continue
		}
		if result.Created {
			inserted++
			c.metrics.ObserveRecord(string(source), metrics.ActionInserted)
		} else {
			merged++
			c.metrics.ObserveRecord(string(source), metrics.ActionMerged)
		}
	}

	c.logger.Info("source collected",
		"adapter", adapter.Name(),
		"source", source,
		"records", len(records),
		"inserted", inserted,
		"merged", merged,
		"failed", failed,
		"duration", time.Since(start),
	)
	return nil
}

// logRecordError distinguishes validation failures (item rejected) from
// persistence failures (save skipped for this run, no retry).
func (c *Collector) logRecordError(source models.DataSource, record RawRecord, err error) {
	var validation *models.ValidationError
	if errors.As(err, &validation) {
		c.logger.Warn("record rejected by validation",
			"source", source,
			"identity", identityOf(source, record),
			"error", err,
		)
		return
	}
	c.logger.Error("record save skipped",
		"source", source,
		"identity", identityOf(source, record),
		"error", err,
	)
}

// RefreshScores recomputes hot score, flags, trend and innovation for every
// stored project. Only score and flag fields are written; identity and
// content fields are never touched by a refresh.
func (c *Collector) RefreshScores(ctx context.Context) error {
	now := c.now()
	updated := 0

	for offset := 0; ; offset += refreshPageSize {
		query := models.ProjectQuery{
			Limit:     refreshPageSize,
			Offset:    offset,
			SortBy:    models.SortByCreatedAt,
			SortOrder: models.SortOrderAsc,
		}
		page, err := c.repo.List(ctx, query)
		if err != nil {
			return &PersistenceError{Op: "list", Identity: "score_refresh", Err: err}
		}
		if len(page) == 0 {
			break
		}

		for _, project := range page {
			hot := c.scorer.Score(scoring.Input{
				Stars:       project.Metrics.Stars,
				Forks:       project.Metrics.Forks,
				Followers:   project.Metrics.Followers,
				Votes:       project.Metrics.Votes,
				Comments:    project.Metrics.Comments,
				Views:       project.Metrics.Views,
				LastUpdated: project.LastUpdated,
				Category:    project.Category,
			}, now)
			flags := scoring.DeriveFlags(hot, project.LastUpdated, now)
			trend := scoring.TrendScore(project.Metrics, project.PreviousMetrics)

			rescored := *project
			rescored.HotScore = hot
			rescored.Flags = flags
			innovation := scoring.InnovationScore(&rescored)

			if err := c.repo.UpdateScores(ctx, project.ID, hot, trend, innovation, flags); err != nil {
				c.logger.Error("score refresh skipped for project",
					"identity", project.Identity(),
					"error", err,
				)
				continue
			}
			updated++
		}

		if len(page) < refreshPageSize {
			break
		}
	}

	if total, err := c.repo.Count(ctx); err == nil {
		c.metrics.SetProjectsTracked(total)
	}

	c.logger.Info("score refresh complete", "updated", updated)
	return nil
}

// Cleanup removes duplicate identities (keeping the earliest-created member
// of each group) and deletes stale low-score projects.
func (c *Collector) Cleanup(ctx context.Context) error {
	groups, err := c.repo.GroupByIdentity(ctx)
	if err != nil {
		return &PersistenceError{Op: "group_by_identity", Identity: "cleanup", Err: err}
	}

	duplicatesRemoved := 0
	for _, group := range groups {
		if len(group.IDs) <= 1 {
			continue
		}
		// IDs are ordered earliest-created first; keep the head.
		removed, err := c.repo.DeleteByIDs(ctx, group.IDs[1:])
		if err != nil {
			c.logger.Error("duplicate cleanup failed for identity",
				"name", group.Name,
				"source", group.Source,
				"error", err,
			)
			continue
		}
		duplicatesRemoved += removed
	}

	cutoff := c.now().Add(-staleMaxAge)
	staleRemoved, err := c.repo.DeleteStale(ctx, cutoff, staleScoreCeiling)
	if err != nil {
		return &PersistenceError{Op: "delete_stale", Identity: "cleanup", Err: err}
	}

	c.logger.Info("cleanup complete",
		"duplicates_removed", duplicatesRemoved,
		"stale_removed", staleRemoved,
	)
	return nil
}
