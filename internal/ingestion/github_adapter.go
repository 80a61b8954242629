package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/trendradar/trendradar/internal/models"
)

const githubSearchURL = "https://api.github.com/search/repositories"

// githubQueries are the topic searches run on each collection pass.
var githubQueries = []string{
	"AI agent",
	"RAG",
	"LLM",
	"ChatGPT",
	"GPT",
	"machine learning",
	"deep learning",
	"neural network",
}

// GitHubAdapter collects trending repositories from the GitHub search API.
type GitHubAdapter struct {
	token      string
	client     *http.Client
	logger     *slog.Logger
	queryDelay time.Duration
}

// NewGitHubAdapter creates a GitHub source adapter. A token is required;
// unauthenticated search rate limits are too low for repeated queries.
func NewGitHubAdapter(token string, logger *slog.Logger) *GitHubAdapter {
	return &GitHubAdapter{
		token:      token,
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		queryDelay: time.Second,
	}
}

func (a *GitHubAdapter) Name() string { return "github" }

func (a *GitHubAdapter) Source() models.DataSource { return models.SourceGitHub }

type githubSearchResponse struct {
	Items []githubRepo `json:"items"`
}

type githubRepo struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	HTMLURL     string   `json:"html_url"`
	Stars       int      `json:"stargazers_count"`
	Forks       int      `json:"forks_count"`
	Topics      []string `json:"topics"`
}

// Fetch runs each configured search query and maps the results to records.
// Individual query failures are logged and skipped; the pass fails only
// when every query fails.
func (a *GitHubAdapter) Fetch(ctx context.Context) ([]RawRecord, error) {
	var records []RawRecord
	failures := 0

	for i, query := range githubQueries {
		repos, err := a.search(ctx, query)
		if err != nil {
			failures++
			a.logger.Warn("github query failed", "query", query, "error", err)
		} else {
			for _, repo := range repos {
				records = append(records, RawRecord{
					Name:        repo.Name,
					Description: repo.Description,
					Website:     repo.HTMLURL,
					RepoURL:     repo.HTMLURL,
					ExternalID:  strconv.FormatInt(repo.ID, 10),
					Tags:        repo.Topics,
					Metrics: models.Metrics{
						Stars: repo.Stars,
						Forks: repo.Forks,
					},
				})
			}
		}

		// Spacing between queries keeps us under the search rate limit.
		if i < len(githubQueries)-1 {
			select {
			case <-time.After(a.queryDelay):
			case <-ctx.Done():
				return records, ctx.Err()
			}
		}
	}

	if failures == len(githubQueries) {
		return nil, fmt.Errorf("all %d github queries failed", failures)
	}
	return records, nil
}

func (a *GitHubAdapter) search(ctx context.Context, query string) ([]githubRepo, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", "20")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, githubSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "token "+a.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "trendradar")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed githubSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return parsed.Items, nil
}
