package ingestion

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trendradar/trendradar/internal/models"
)

// ProjectRepository defines the persistent store contract consumed by the
// merge, refresh and cleanup passes.
type ProjectRepository interface {
	// FindByExternalID resolves a project by its platform-native identifier.
	FindByExternalID(ctx context.Context, source models.DataSource, externalID string) (*models.Project, error)

	// FindByIdentity resolves a project by its (name, source) pair.
	FindByIdentity(ctx context.Context, name string, source models.DataSource) (*models.Project, error)

	// Store inserts a new project.
	Store(ctx context.Context, project *models.Project) error

	// Update overwrites an existing project.
	Update(ctx context.Context, project *models.Project) error

	// UpdateScores mutates only the computed scores and flags of a project,
	// leaving identity and content fields untouched.
	UpdateScores(ctx context.Context, id string, hot, trend, innovation int, flags models.Flags) error

	// List retrieves projects matching the query.
	List(ctx context.Context, query models.ProjectQuery) ([]*models.Project, error)

	// GroupByIdentity groups stored projects by (name, source) for duplicate
	// detection. IDs within a group are ordered by creation time.
	GroupByIdentity(ctx context.Context) ([]models.IdentityGroup, error)

	// SourceStats aggregates per-source counts and averages.
	SourceStats(ctx context.Context) ([]models.SourceStat, error)

	// DeleteByIDs removes the given projects, returning how many were deleted.
	DeleteByIDs(ctx context.Context, ids []string) (int, error)

	// DeleteStale removes projects last updated before the cutoff whose hot
	// score is below maxHotScore.
	DeleteStale(ctx context.Context, olderThan time.Time, maxHotScore int) (int, error)

	// Count returns the total number of stored projects.
	Count(ctx context.Context) (int, error)
}

// MemoryProjectRepository implements ProjectRepository in memory for tests
// and development.
type MemoryProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]*models.Project
}

// NewMemoryProjectRepository creates an empty in-memory repository.
func NewMemoryProjectRepository() *MemoryProjectRepository {
	return &MemoryProjectRepository{projects: make(map[string]*models.Project)}
}

func (r *MemoryProjectRepository) FindByExternalID(ctx context.Context, source models.DataSource, externalID string) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.projects {
		if p.Source == source && p.ExternalID == externalID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *MemoryProjectRepository) FindByIdentity(ctx context.Context, name string, source models.DataSource) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *models.Project
	for _, p := range r.projects {
		if p.Name == name && p.Source == source {
			if found == nil || p.CreatedAt.Before(found.CreatedAt) {
				found = p
			}
		}
	}
	if found == nil {
		return nil, nil
	}
	clone := *found
	return &clone, nil
}

func (r *MemoryProjectRepository) Store(ctx context.Context, project *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *project
	r.projects[project.ID] = &clone
	return nil
}

func (r *MemoryProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.Store(ctx, project)
}

func (r *MemoryProjectRepository) UpdateScores(ctx context.Context, id string, hot, trend, innovation int, flags models.Flags) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return &PersistenceError{Op: "update_scores", Identity: id, Err: errNotFound}
	}
	p.HotScore = hot
	p.TrendScore = trend
	p.InnovationScore = innovation
	p.Flags = flags
	return nil
}

func (r *MemoryProjectRepository) List(ctx context.Context, query models.ProjectQuery) ([]*models.Project, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	matched := make([]*models.Project, 0, len(r.projects))
	for _, p := range r.projects {
		if matchesQuery(p, query) {
			clone := *p
			matched = append(matched, &clone)
		}
	}
	r.mu.RUnlock()

	sortProjects(matched, query.SortBy, query.SortOrder)

	if query.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[query.Offset:]
	if len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

func matchesQuery(p *models.Project, q models.ProjectQuery) bool {
	if q.Search != nil && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), strings.ToLower(*q.Search)) {
		return false
	}
	if len(q.Sources) > 0 && !containsSource(q.Sources, p.Source) {
		return false
	}
	if len(q.Categories) > 0 && !containsCategory(q.Categories, p.Category) {
		return false
	}
	if q.MinHotScore != nil && p.HotScore < *q.MinHotScore {
		return false
	}
	if q.MaxHotScore != nil && p.HotScore > *q.MaxHotScore {
		return false
	}
	if q.UpdatedSince != nil && p.LastUpdated.Before(*q.UpdatedSince) {
		return false
	}
	if q.OnlyHot && !p.Flags.IsHot {
		return false
	}
	if q.OnlyNiche && !p.Flags.IsNiche {
		return false
	}
	if q.OnlyEmerging && !p.Flags.IsEmerging {
		return false
	}
	return true
}

func containsSource(sources []models.DataSource, s models.DataSource) bool {
	for _, candidate := range sources {
		if candidate == s {
			return true
		}
	}
	return false
}

func containsCategory(categories []models.Category, c models.Category) bool {
	for _, candidate := range categories {
		if candidate == c {
			return true
		}
	}
	return false
}

func sortProjects(projects []*models.Project, field models.ProjectSortField, order models.SortOrder) {
	less := func(a, b *models.Project) bool {
		switch field {
		case models.SortByTrendScore:
			return a.TrendScore < b.TrendScore
		case models.SortByInnovationScore:
			return a.InnovationScore < b.InnovationScore
		case models.SortByLastUpdated:
			return a.LastUpdated.Before(b.LastUpdated)
		case models.SortByCreatedAt:
			return a.CreatedAt.Before(b.CreatedAt)
		case models.SortByName:
			return a.Name < b.Name
		default:
			return a.HotScore < b.HotScore
		}
	}

	sort.SliceStable(projects, func(i, j int) bool {
		if order == models.SortOrderAsc {
			return less(projects[i], projects[j])
		}
		return less(projects[j], projects[i])
	})
}

func (r *MemoryProjectRepository) GroupByIdentity(ctx context.Context) ([]models.IdentityGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byIdentity := make(map[string][]*models.Project)
	for _, p := range r.projects {
		key := string(p.Source) + "/" + p.Name
		byIdentity[key] = append(byIdentity[key], p)
	}

	groups := make([]models.IdentityGroup, 0, len(byIdentity))
	for _, members := range byIdentity {
		sort.Slice(members, func(i, j int) bool {
			return members[i].CreatedAt.Before(members[j].CreatedAt)
		})
		group := models.IdentityGroup{Name: members[0].Name, Source: members[0].Source}
		for _, p := range members {
			group.IDs = append(group.IDs, p.ID)
		}
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Source != groups[j].Source {
			return groups[i].Source < groups[j].Source
		}
		return groups[i].Name < groups[j].Name
	})
	return groups, nil
}

func (r *MemoryProjectRepository) SourceStats(ctx context.Context) ([]models.SourceStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bySource := make(map[models.DataSource]*models.SourceStat)
	for _, p := range r.projects {
		stat, ok := bySource[p.Source]
		if !ok {
			stat = &models.SourceStat{Source: p.Source}
			bySource[p.Source] = stat
		}
		stat.Count++
		stat.AvgHotScore += float64(p.HotScore)
		if p.LastUpdated.After(stat.LastUpdated) {
			stat.LastUpdated = p.LastUpdated
		}
	}

	stats := make([]models.SourceStat, 0, len(bySource))
	for _, stat := range bySource {
		stat.AvgHotScore /= float64(stat.Count)
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Source < stats[j].Source })
	return stats, nil
}

func (r *MemoryProjectRepository) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := r.projects[id]; ok {
			delete(r.projects, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryProjectRepository) DeleteStale(ctx context.Context, olderThan time.Time, maxHotScore int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, p := range r.projects {
		if p.LastUpdated.Before(olderThan) && p.HotScore < maxHotScore {
			delete(r.projects, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryProjectRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.projects), nil
}

type notFoundError struct{}

func (notFoundError) Error() string { return "project not found" }

var errNotFound = notFoundError{}
