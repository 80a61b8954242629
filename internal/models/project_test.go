package models

import (
	"errors"
	"testing"
)

func TestProjectValidate(t *testing.T) {
	valid := Project{Name: "langchain", Source: SourceGitHub, Category: CategoryLLM}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid project rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(p *Project)
		field   string
	}{
		{"missing name", func(p *Project) { p.Name = "" }, "name"},
		{"missing source", func(p *Project) { p.Source = "" }, "source"},
		{"unknown category", func(p *Project) { p.Category = "gardening" }, "category"},
		{"hot score too high", func(p *Project) { p.HotScore = 101 }, "hot_score"},
		{"trend score negative", func(p *Project) { p.TrendScore = -1 }, "trend_score"},
		{"negative stars", func(p *Project) { p.Metrics.Stars = -5 }, "stars"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)

			err := p.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if validation.Field != tc.field {
				t.Errorf("expected field %q, got %q", tc.field, validation.Field)
			}
		})
	}
}

func TestCategoryIsValid(t *testing.T) {
	if !CategoryOther.IsValid() {
		t.Error("the fallback category must be valid")
	}
	for _, c := range AllCategories() {
		if !c.IsValid() {
			t.Errorf("category %q should be valid", c)
		}
	}
	if Category("quantum").IsValid() {
		t.Error("unknown category string accepted")
	}
}

func TestProjectIdentity(t *testing.T) {
	withExternal := Project{Name: "gpt4all", Source: SourceGitHub, ExternalID: "12345"}
	if got := withExternal.Identity(); got != "github:12345" {
		t.Errorf("expected external-id identity, got %q", got)
	}

	withoutExternal := Project{Name: "gpt4all", Source: SourceGitHub}
	if got := withoutExternal.Identity(); got != "github/gpt4all" {
		t.Errorf("expected name identity, got %q", got)
	}
}

func TestProjectQueryValidateDefaults(t *testing.T) {
	q := ProjectQuery{}
	if err := q.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Limit != 50 {
		t.Errorf("expected default limit 50, got %d", q.Limit)
	}
	if q.SortBy != SortByHotScore || q.SortOrder != SortOrderDesc {
		t.Errorf("expected default sort hot_score desc, got %s %s", q.SortBy, q.SortOrder)
	}

	big := ProjectQuery{Limit: 10_000, Offset: -3}
	if err := big.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if big.Limit != 500 {
		t.Errorf("expected limit capped at 500, got %d", big.Limit)
	}
	if big.Offset != 0 {
		t.Errorf("expected negative offset reset to 0, got %d", big.Offset)
	}
}
