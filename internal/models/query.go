package models

import "time"

// ProjectQuery represents filters, sorting and pagination for listing projects.
type ProjectQuery struct {
	Search       *string      `json:"search,omitempty"`
	Sources      []DataSource `json:"sources,omitempty"`
	Categories   []Category   `json:"categories,omitempty"`
	MinHotScore  *int         `json:"min_hot_score,omitempty"`
	MaxHotScore  *int         `json:"max_hot_score,omitempty"`
	UpdatedSince *time.Time   `json:"updated_since,omitempty"`
	OnlyHot      bool         `json:"only_hot,omitempty"`
	OnlyNiche    bool         `json:"only_niche,omitempty"`
	OnlyEmerging bool         `json:"only_emerging,omitempty"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	SortBy    ProjectSortField `json:"sort_by,omitempty"`
	SortOrder SortOrder        `json:"sort_order,omitempty"`
}

// ProjectSortField specifies which field to sort projects by.
type ProjectSortField string

const (
	SortByHotScore        ProjectSortField = "hot_score"
	SortByTrendScore      ProjectSortField = "trend_score"
	SortByInnovationScore ProjectSortField = "innovation_score"
	SortByLastUpdated     ProjectSortField = "last_updated"
	SortByCreatedAt       ProjectSortField = "created_at"
	SortByName            ProjectSortField = "name"
)

// SortOrder specifies ascending or descending sort direction.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// Validate applies defaults and bounds to the query.
func (q *ProjectQuery) Validate() error {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 500 {
		q.Limit = 500
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.SortBy == "" {
		q.SortBy = SortByHotScore
	}
	if q.SortOrder == "" {
		q.SortOrder = SortOrderDesc
	}
	return nil
}

// SourceStat is a per-source aggregate used by the admin status endpoint.
type SourceStat struct {
	Source      DataSource `json:"source"`
	Count       int        `json:"count"`
	AvgHotScore float64    `json:"avg_hot_score"`
	LastUpdated time.Time  `json:"last_updated"`
}

// IdentityGroup is the result of grouping stored projects by identity,
// used by the cleanup pass to find duplicates. IDs are ordered by
// creation time, earliest first.
type IdentityGroup struct {
	Name   string     `json:"name"`
	Source DataSource `json:"source"`
	IDs    []string   `json:"ids"`
}
