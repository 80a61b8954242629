package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/trendradar/trendradar/internal/models"
)

const productHuntGraphQLURL = "https://api.producthunt.com/v2/api/graphql"

// productHuntQuery pulls the current AI posts with their vote and comment
// counts. The id field is the post's stable external identifier.
const productHuntQuery = `
	query {
		posts(first: 50, topic: "artificial-intelligence") {
			edges {
				node {
					id
					name
					tagline
					website
					votesCount
					commentsCount
					topics {
						edges {
							node {
								name
							}
						}
					}
				}
			}
		}
	}
`

// ProductHuntAdapter collects AI product launches from the Product Hunt
// GraphQL API.
type ProductHuntAdapter struct {
	token   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewProductHuntAdapter creates a Product Hunt source adapter. The API
// requires a developer token.
func NewProductHuntAdapter(token string, logger *slog.Logger) *ProductHuntAdapter {
	return &ProductHuntAdapter{
		token:   token,
		baseURL: productHuntGraphQLURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (a *ProductHuntAdapter) Name() string { return "producthunt" }

func (a *ProductHuntAdapter) Source() models.DataSource { return models.SourceProductHunt }

type productHuntResponse struct {
	Data struct {
		Posts struct {
			Edges []struct {
				Node productHuntPost `json:"node"`
			} `json:"edges"`
		} `json:"posts"`
	} `json:"data"`
}

type productHuntPost struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Tagline       string `json:"tagline"`
	Website       string `json:"website"`
	VotesCount    int    `json:"votesCount"`
	CommentsCount int    `json:"commentsCount"`
	Topics        struct {
		Edges []struct {
			Node struct {
				Name string `json:"name"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"topics"`
}

// Fetch retrieves the AI topic's posts and maps them to records.
func (a *ProductHuntAdapter) Fetch(ctx context.Context) ([]RawRecord, error) {
	body, err := json.Marshal(map[string]string{"query": productHuntQuery})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "trendradar")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed productHuntResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	records := make([]RawRecord, 0, len(parsed.Data.Posts.Edges))
	for _, edge := range parsed.Data.Posts.Edges {
		post := edge.Node
		if post.Name == "" {
			continue
		}
		tags := make([]string, 0, len(post.Topics.Edges))
		for _, topic := range post.Topics.Edges {
			tags = append(tags, topic.Node.Name)
		}
		records = append(records, RawRecord{
			Name:        post.Name,
			Description: post.Tagline,
			Website:     post.Website,
			ExternalID:  post.ID,
			Tags:        tags,
			Metrics: models.Metrics{
				Votes:    post.VotesCount,
				Comments: post.CommentsCount,
			},
		})
	}
	return records, nil
}
