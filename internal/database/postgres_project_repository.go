package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/lib/pq"

	"github.com/trendradar/trendradar/internal/models"
)

// PostgresProjectRepository implements ingestion.ProjectRepository using
// PostgreSQL. Tags, technologies and metric counters are stored as JSONB.
type PostgresProjectRepository struct {
	db *sql.DB
}

// NewPostgresProjectRepository creates a new PostgreSQL project repository.
func NewPostgresProjectRepository(db *sql.DB) *PostgresProjectRepository {
	return &PostgresProjectRepository{db: db}
}

const projectColumns = `
	id, name, source, external_id, description, website, repo_url, category,
	tags, techs, metrics, previous_metrics,
	hot_score, trend_score, innovation_score,
	is_hot, is_niche, is_emerging,
	verified, last_updated, created_at
`

// FindByExternalID resolves a project by its platform-native identifier.
func (r *PostgresProjectRepository) FindByExternalID(ctx context.Context, source models.DataSource, externalID string) (*models.Project, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM projects
		WHERE source = $1 AND external_id = $2
		ORDER BY created_at ASC
		LIMIT 1
	`, projectColumns)

	return r.queryOne(ctx, query, string(source), externalID)
}

// FindByIdentity resolves a project by its (name, source) pair. When
// duplicates exist the earliest-created row wins.
func (r *PostgresProjectRepository) FindByIdentity(ctx context.Context, name string, source models.DataSource) (*models.Project, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM projects
		WHERE name = $1 AND source = $2
		ORDER BY created_at ASC
		LIMIT 1
	`, projectColumns)

	return r.queryOne(ctx, query, name, string(source))
}

// Store inserts a new project.
func (r *PostgresProjectRepository) Store(ctx context.Context, project *models.Project) error {
	tagsJSON, techsJSON, metricsJSON, prevJSON, err := marshalProjectJSON(project)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO projects (
			id, name, source, external_id, description, website, repo_url, category,
			tags, techs, metrics, previous_metrics,
			hot_score, trend_score, innovation_score,
			is_hot, is_niche, is_emerging,
			verified, last_updated, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err = r.db.ExecContext(ctx, query,
		project.ID,
		project.Name,
		string(project.Source),
		nullString(project.ExternalID),
		project.Description,
		project.Website,
		project.RepoURL,
		string(project.Category),
		tagsJSON,
		techsJSON,
		metricsJSON,
		prevJSON,
		project.HotScore,
		project.TrendScore,
		project.InnovationScore,
		project.Flags.IsHot,
		project.Flags.IsNiche,
		project.Flags.IsEmerging,
		project.Verified,
		project.LastUpdated,
		project.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store project: %w", err)
	}

	return nil
}

// Update overwrites an existing project.
func (r *PostgresProjectRepository) Update(ctx context.Context, project *models.Project) error {
	tagsJSON, techsJSON, metricsJSON, prevJSON, err := marshalProjectJSON(project)
	if err != nil {
		return err
	}

	query := `
		UPDATE projects
		SET name = $2,
		    source = $3,
		    external_id = $4,
		    description = $5,
		    website = $6,
		    repo_url = $7,
		    category = $8,
		    tags = $9,
		    techs = $10,
		    metrics = $11,
		    previous_metrics = $12,
		    hot_score = $13,
		    trend_score = $14,
		    innovation_score = $15,
		    is_hot = $16,
		    is_niche = $17,
		    is_emerging = $18,
		    verified = $19,
		    last_updated = $20
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		project.ID,
		project.Name,
		string(project.Source),
		nullString(project.ExternalID),
		project.Description,
		project.Website,
		project.RepoURL,
		string(project.Category),
		tagsJSON,
		techsJSON,
		metricsJSON,
		prevJSON,
		project.HotScore,
		project.TrendScore,
		project.InnovationScore,
		project.Flags.IsHot,
		project.Flags.IsNiche,
		project.Flags.IsEmerging,
		project.Verified,
		project.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("project with id %s not found", project.ID)
	}

	return nil
}

// UpdateScores mutates only the computed scores and flags, leaving identity
// and content fields untouched.
func (r *PostgresProjectRepository) UpdateScores(ctx context.Context, id string, hot, trend, innovation int, flags models.Flags) error {
	query := `
		UPDATE projects
		SET hot_score = $2,
		    trend_score = $3,
		    innovation_score = $4,
		    is_hot = $5,
		    is_niche = $6,
		    is_emerging = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, hot, trend, innovation, flags.IsHot, flags.IsNiche, flags.IsEmerging)
	if err != nil {
		return fmt.Errorf("failed to update project scores: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("project with id %s not found", id)
	}

	return nil
}

// List retrieves projects matching the query.
func (r *PostgresProjectRepository) List(ctx context.Context, query models.ProjectQuery) ([]*models.Project, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var conditions []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if query.Search != nil {
		p := arg("%" + strings.ToLower(*query.Search) + "%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(description) LIKE %s)", p, p))
	}
	if len(query.Sources) > 0 {
		sources := make([]string, len(query.Sources))
		for i, s := range query.Sources {
			sources[i] = string(s)
		}
		conditions = append(conditions, fmt.Sprintf("source = ANY(%s)", arg(pq.Array(sources))))
	}
	if len(query.Categories) > 0 {
		categories := make([]string, len(query.Categories))
		for i, c := range query.Categories {
			categories[i] = string(c)
		}
		conditions = append(conditions, fmt.Sprintf("category = ANY(%s)", arg(pq.Array(categories))))
	}
	if query.MinHotScore != nil {
		conditions = append(conditions, fmt.Sprintf("hot_score >= %s", arg(*query.MinHotScore)))
	}
	if query.MaxHotScore != nil {
		conditions = append(conditions, fmt.Sprintf("hot_score <= %s", arg(*query.MaxHotScore)))
	}
	if query.UpdatedSince != nil {
		conditions = append(conditions, fmt.Sprintf("last_updated >= %s", arg(*query.UpdatedSince)))
	}
	if query.OnlyHot {
		conditions = append(conditions, "is_hot = TRUE")
	}
	if query.OnlyNiche {
		conditions = append(conditions, "is_niche = TRUE")
	}
	if query.OnlyEmerging {
		conditions = append(conditions, "is_emerging = TRUE")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	stmt := fmt.Sprintf(`
		SELECT %s
		FROM projects
		%s
		ORDER BY %s %s
		LIMIT %s OFFSET %s
	`, projectColumns, where, sortColumn(query.SortBy), sortDirection(query.SortOrder), arg(query.Limit), arg(query.Offset))

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return projects, nil
}

// sortColumn maps sort fields onto column names. The whitelist keeps query
// construction safe even though sort fields come from the API layer.
func sortColumn(field models.ProjectSortField) string {
	switch field {
	case models.SortByTrendScore:
		return "trend_score"
	case models.SortByInnovationScore:
		return "innovation_score"
	case models.SortByLastUpdated:
		return "last_updated"
	case models.SortByCreatedAt:
		return "created_at"
	case models.SortByName:
		return "name"
	default:
		return "hot_score"
	}
}

func sortDirection(order models.SortOrder) string {
	if order == models.SortOrderAsc {
		return "ASC"
	}
	return "DESC"
}

// GroupByIdentity groups stored projects by (name, source) with member IDs
// ordered by creation time, earliest first.
func (r *PostgresProjectRepository) GroupByIdentity(ctx context.Context) ([]models.IdentityGroup, error) {
	query := `
		SELECT name, source, ARRAY_AGG(id ORDER BY created_at ASC)
		FROM projects
		GROUP BY name, source
		ORDER BY source, name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to group projects by identity: %w", err)
	}
	defer rows.Close()

	var groups []models.IdentityGroup
	for rows.Next() {
		var group models.IdentityGroup
		var source string
		if err := rows.Scan(&group.Name, &source, pq.Array(&group.IDs)); err != nil {
			return nil, fmt.Errorf("failed to scan identity group: %w", err)
		}
		group.Source = models.DataSource(source)
		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return groups, nil
}

// SourceStats aggregates per-source counts and averages.
func (r *PostgresProjectRepository) SourceStats(ctx context.Context) ([]models.SourceStat, error) {
	query := `
		SELECT source, COUNT(*), AVG(hot_score), MAX(last_updated)
		FROM projects
		GROUP BY source
		ORDER BY source
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query source stats: %w", err)
	}
	defer rows.Close()

	var stats []models.SourceStat
	for rows.Next() {
		var stat models.SourceStat
		var source string
		var lastUpdated sql.NullTime
		if err := rows.Scan(&source, &stat.Count, &stat.AvgHotScore, &lastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan source stat: %w", err)
		}
		stat.Source = models.DataSource(source)
		if lastUpdated.Valid {
			stat.LastUpdated = lastUpdated.Time
		}
		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return stats, nil
}

// DeleteByIDs removes the given projects, returning how many were deleted.
func (r *PostgresProjectRepository) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to delete projects: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

// DeleteStale removes projects last updated before the cutoff whose hot
// score is below maxHotScore.
func (r *PostgresProjectRepository) DeleteStale(ctx context.Context, olderThan time.Time, maxHotScore int) (int, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM projects WHERE last_updated < $1 AND hot_score < $2",
		olderThan, maxHotScore,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale projects: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

// Count returns the total number of stored projects.
func (r *PostgresProjectRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

func (r *PostgresProjectRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*models.Project, error) {
	project, err := scanProject(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

// scanProject is a helper to consistently scan project rows.
func scanProject(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Project, error) {
	var project models.Project
	var source, category string
	var externalID sql.NullString
	var tagsJSON, techsJSON, metricsJSON, prevJSON []byte

	err := scanner.Scan(
		&project.ID,
		&project.Name,
		&source,
		&externalID,
		&project.Description,
		&project.Website,
		&project.RepoURL,
		&category,
		&tagsJSON,
		&techsJSON,
		&metricsJSON,
		&prevJSON,
		&project.HotScore,
		&project.TrendScore,
		&project.InnovationScore,
		&project.Flags.IsHot,
		&project.Flags.IsNiche,
		&project.Flags.IsEmerging,
		&project.Verified,
		&project.LastUpdated,
		&project.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	project.Source = models.DataSource(source)
	project.Category = models.Category(category)
	if externalID.Valid {
		project.ExternalID = externalID.String
	}

	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &project.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	if len(techsJSON) > 0 {
		if err := json.Unmarshal(techsJSON, &project.Techs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal technologies: %w", err)
		}
	}
	if len(metricsJSON) > 0 {
		if err := json.Unmarshal(metricsJSON, &project.Metrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
		}
	}
	if len(prevJSON) > 0 {
		var prev models.Metrics
		if err := json.Unmarshal(prevJSON, &prev); err != nil {
			return nil, fmt.Errorf("failed to unmarshal previous metrics: %w", err)
		}
		project.PreviousMetrics = &prev
	}

	return &project, nil
}

func marshalProjectJSON(project *models.Project) (tags, techs, metrics, prev []byte, err error) {
	tags, err = json.Marshal(project.Tags)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	techs, err = json.Marshal(project.Techs)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal technologies: %w", err)
	}
	metrics, err = json.Marshal(project.Metrics)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal metrics: %w", err)
	}
	if project.PreviousMetrics != nil {
		prev, err = json.Marshal(project.PreviousMetrics)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to marshal previous metrics: %w", err)
		}
	}
	return tags, techs, metrics, prev, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
