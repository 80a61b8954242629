package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/trendradar/trendradar/internal/models"
)

const huggingFaceModelsURL = "https://huggingface.co/api/models?sort=downloads&direction=-1&limit=50&filter=text-generation"

// HuggingFaceAdapter collects the most-downloaded text generation models
// from the Hugging Face hub API. No credential is required.
type HuggingFaceAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewHuggingFaceAdapter creates a Hugging Face source adapter.
func NewHuggingFaceAdapter(logger *slog.Logger) *HuggingFaceAdapter {
	return &HuggingFaceAdapter{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

func (a *HuggingFaceAdapter) Name() string { return "huggingface" }

func (a *HuggingFaceAdapter) Source() models.DataSource { return models.SourceHuggingFace }

type huggingFaceModel struct {
	ModelID     string   `json:"modelId"`
	PipelineTag string   `json:"pipeline_tag"`
	Tags        []string `json:"tags"`
	Likes       int      `json:"likes"`
	Downloads   int      `json:"downloads"`
}

// Fetch retrieves the current model ranking and maps it to records.
func (a *HuggingFaceAdapter) Fetch(ctx context.Context) ([]RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, huggingFaceModelsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "trendradar")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed []huggingFaceModel
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	records := make([]RawRecord, 0, len(parsed))
	for _, model := range parsed {
		if model.ModelID == "" {
			continue
		}
		records = append(records, RawRecord{
			Name:        model.ModelID,
			Description: model.PipelineTag,
			Website:     "https://huggingface.co/" + model.ModelID,
			ExternalID:  model.ModelID,
			Tags:        model.Tags,
			Metrics: models.Metrics{
				Likes: model.Likes,
				Views: model.Downloads,
			},
		})
	}
	return records, nil
}
