package models

import (
	"fmt"
	"time"
)

// Project represents a tracked item aggregated from an external source,
// together with its computed trend scores and status flags.
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Source      DataSource `json:"source"`
	ExternalID  string     `json:"external_id,omitempty"` // platform-native identifier when the source provides one
	Description string     `json:"description,omitempty"`
	Website     string     `json:"website,omitempty"`
	RepoURL     string     `json:"repo_url,omitempty"`
	Category    Category   `json:"category"`
	Tags        []string   `json:"tags,omitempty"`
	Techs       []string   `json:"technologies,omitempty"`

	Metrics         Metrics  `json:"metrics"`
	PreviousMetrics *Metrics `json:"previous_metrics,omitempty"` // snapshot from the prior collection, feeds trend growth

	HotScore        int `json:"hot_score"`
	TrendScore      int `json:"trend_score"`
	InnovationScore int `json:"innovation_score"`

	Flags Flags `json:"flags"`

	Verified    bool      `json:"verified"`
	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
}

// Metrics holds the raw popularity counters gathered from a source.
type Metrics struct {
	Stars     int `json:"stars,omitempty"`
	Forks     int `json:"forks,omitempty"`
	Followers int `json:"followers,omitempty"`
	Views     int `json:"views,omitempty"`
	Likes     int `json:"likes,omitempty"`
	Comments  int `json:"comments,omitempty"`
	Votes     int `json:"votes,omitempty"`
}

// Flags are derived purely from (hotScore, lastUpdated); collectors never
// set them directly.
type Flags struct {
	IsHot      bool `json:"is_hot"`
	IsNiche    bool `json:"is_niche"`
	IsEmerging bool `json:"is_emerging"`
}

// DataSource identifies the platform a project was collected from.
type DataSource string

const (
	SourceGitHub      DataSource = "github"
	SourceProductHunt DataSource = "producthunt"
	SourceHuggingFace DataSource = "huggingface"
	SourceYouTube     DataSource = "youtube"
)

// Category is the closed set of project classifications. Order matters:
// classification ties break toward the earliest category.
type Category string

const (
	CategoryLLM          Category = "llm"
	CategorySearch       Category = "search"
	CategoryProductivity Category = "productivity"
	CategoryCoding       Category = "coding"
	CategoryContent      Category = "content"
	CategoryAgent        Category = "agent"
	CategoryVision       Category = "vision"
	CategoryLanguage     Category = "language"
	CategorySpeech       Category = "speech"
	CategoryOther        Category = "other"
)

// AllCategories returns every category in canonical (tie-break) order,
// excluding the Other fallback.
func AllCategories() []Category {
	return []Category{
		CategoryLLM,
		CategorySearch,
		CategoryProductivity,
		CategoryCoding,
		CategoryContent,
		CategoryAgent,
		CategoryVision,
		CategoryLanguage,
		CategorySpeech,
	}
}

// IsValid reports whether c is a member of the closed category set.
func (c Category) IsValid() bool {
	if c == CategoryOther {
		return true
	}
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// ValidationError describes a malformed project rejected before persist.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid project: field %s %s", e.Field, e.Reason)
}

// Validate checks the invariants every stored project must satisfy.
func (p *Project) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.Source == "" {
		return &ValidationError{Field: "source", Reason: "must not be empty"}
	}
	if !p.Category.IsValid() {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown value %q", p.Category)}
	}
	for _, score := range []struct {
		name  string
		value int
	}{
		{"hot_score", p.HotScore},
		{"trend_score", p.TrendScore},
		{"innovation_score", p.InnovationScore},
	} {
		if score.value < 0 || score.value > 100 {
			return &ValidationError{Field: score.name, Reason: fmt.Sprintf("must be in [0,100], got %d", score.value)}
		}
	}
	if err := p.Metrics.validate(); err != nil {
		return err
	}
	return nil
}

func (m Metrics) validate() error {
	for _, counter := range []struct {
		name  string
		value int
	}{
		{"stars", m.Stars},
		{"forks", m.Forks},
		{"followers", m.Followers},
		{"views", m.Views},
		{"likes", m.Likes},
		{"comments", m.Comments},
		{"votes", m.Votes},
	} {
		if counter.value < 0 {
			return &ValidationError{Field: counter.name, Reason: "must not be negative"}
		}
	}
	return nil
}

// Identity returns the deduplication key for a project: the external id
// when the source supplied one, otherwise the (name, source) pair.
func (p *Project) Identity() string {
	if p.ExternalID != "" {
		return string(p.Source) + ":" + p.ExternalID
	}
	return string(p.Source) + "/" + p.Name
}
