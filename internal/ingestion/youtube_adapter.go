package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/trendradar/trendradar/internal/models"
)

const youtubeAPIBaseURL = "https://www.googleapis.com/youtube/v3"

// Videos below this view count are dropped as noise.
const youtubeMinVideoViews = 1000

// youtubeVideoQueries are the video searches run on each collection pass.
var youtubeVideoQueries = []string{
	"AI tutorial",
	"machine learning",
	"deep learning",
	"ChatGPT",
	"artificial intelligence",
	"neural network",
	"LLM",
	"GPT",
	"computer vision",
	"NLP",
}

// youtubeChannels are the AI channels tracked on every pass.
var youtubeChannels = []string{
	"Two Minute Papers",
	"Lex Fridman",
	"AI Explained",
	"Machine Learning Street Talk",
	"Yannic Kilcher",
	"CodeEmporium",
	"sentdex",
	"3Blue1Brown",
	"DeepLearningAI",
	"OpenAI",
}

// YouTubeAdapter collects AI channels and recent AI videos from the YouTube
// Data API. Channels map to follower counts, videos to view counts; both
// carry their platform id as external identity.
type YouTubeAdapter struct {
	apiKey     string
	baseURL    string
	client     *http.Client
	logger     *slog.Logger
	queryDelay time.Duration
}

// NewYouTubeAdapter creates a YouTube source adapter. An API key is required.
func NewYouTubeAdapter(apiKey string, logger *slog.Logger) *YouTubeAdapter {
	return &YouTubeAdapter{
		apiKey:     apiKey,
		baseURL:    youtubeAPIBaseURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		queryDelay: time.Second,
	}
}

func (a *YouTubeAdapter) Name() string { return "youtube" }

func (a *YouTubeAdapter) Source() models.DataSource { return models.SourceYouTube }

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID   string `json:"videoId"`
			ChannelID string `json:"channelId"`
		} `json:"id"`
	} `json:"items"`
}

type youtubeVideoListResponse struct {
	Items []youtubeVideo `json:"items"`
}

type youtubeVideo struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		ChannelTitle string   `json:"channelTitle"`
		Tags         []string `json:"tags"`
	} `json:"snippet"`
	Statistics youtubeStatistics `json:"statistics"`
}

type youtubeChannelListResponse struct {
	Items []youtubeChannel `json:"items"`
}

type youtubeChannel struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"snippet"`
	Statistics youtubeStatistics `json:"statistics"`
}

// youtubeStatistics carries counters the API encodes as decimal strings.
type youtubeStatistics struct {
	ViewCount       string `json:"viewCount"`
	LikeCount       string `json:"likeCount"`
	CommentCount    string `json:"commentCount"`
	SubscriberCount string `json:"subscriberCount"`
}

func statCount(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Fetch collects the tracked channels, then recent videos for each search
// query. Individual lookups are logged and skipped; the pass fails only when
// everything fails.
func (a *YouTubeAdapter) Fetch(ctx context.Context) ([]RawRecord, error) {
	var records []RawRecord
	attempts, failures := 0, 0

	for _, channel := range youtubeChannels {
		attempts++
		record, err := a.fetchChannel(ctx, channel)
		if err != nil {
			failures++
			a.logger.Warn("youtube channel lookup failed", "channel", channel, "error", err)
		} else if record != nil {
			records = append(records, *record)
		}
		if err := a.pause(ctx); err != nil {
			return records, err
		}
	}

	for _, query := range youtubeVideoQueries {
		attempts++
		videoRecords, err := a.fetchVideos(ctx, query)
		if err != nil {
			failures++
			a.logger.Warn("youtube video search failed", "query", query, "error", err)
		} else {
			records = append(records, videoRecords...)
		}
		if err := a.pause(ctx); err != nil {
			return records, err
		}
	}

	if failures == attempts {
		return nil, fmt.Errorf("all %d youtube lookups failed", failures)
	}
	return records, nil
}

// fetchChannel resolves a channel by name and reads its statistics. A name
// with no search hit is skipped, not an error.
func (a *YouTubeAdapter) fetchChannel(ctx context.Context, name string) (*RawRecord, error) {
	params := url.Values{}
	params.Set("q", name)
	params.Set("type", "channel")
	params.Set("part", "snippet")
	params.Set("maxResults", "1")

	var search youtubeSearchResponse
	if err := a.get(ctx, "/search", params, &search); err != nil {
		return nil, err
	}
	if len(search.Items) == 0 {
		return nil, nil
	}

	params = url.Values{}
	params.Set("id", search.Items[0].ID.ChannelID)
	params.Set("part", "snippet,statistics")

	var channels youtubeChannelListResponse
	if err := a.get(ctx, "/channels", params, &channels); err != nil {
		return nil, err
	}
	if len(channels.Items) == 0 {
		return nil, nil
	}

	channel := channels.Items[0]
	return &RawRecord{
		Name:        channel.Snippet.Title,
		Description: channel.Snippet.Description,
		Website:     "https://www.youtube.com/channel/" + channel.ID,
		ExternalID:  channel.ID,
		Metrics: models.Metrics{
			Followers: statCount(channel.Statistics.SubscriberCount),
			Views:     statCount(channel.Statistics.ViewCount),
		},
	}, nil
}

// fetchVideos searches recent videos for one query and reads their
// statistics in a single batched lookup.
func (a *YouTubeAdapter) fetchVideos(ctx context.Context, query string) ([]RawRecord, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("part", "snippet")
	params.Set("maxResults", "20")
	params.Set("order", "relevance")
	params.Set("publishedAfter", time.Now().Add(-30*24*time.Hour).UTC().Format(time.RFC3339))

	var search youtubeSearchResponse
	if err := a.get(ctx, "/search", params, &search); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	params = url.Values{}
	params.Set("id", strings.Join(ids, ","))
	params.Set("part", "snippet,statistics")

	var videos youtubeVideoListResponse
	if err := a.get(ctx, "/videos", params, &videos); err != nil {
		return nil, err
	}

	records := make([]RawRecord, 0, len(videos.Items))
	for _, video := range videos.Items {
		views := statCount(video.Statistics.ViewCount)
		if views < youtubeMinVideoViews {
			continue
		}
		records = append(records, RawRecord{
			Name:        video.Snippet.Title,
			Description: video.Snippet.Description,
			Website:     "https://www.youtube.com/watch?v=" + video.ID,
			ExternalID:  video.ID,
			Tags:        video.Snippet.Tags,
			Metrics: models.Metrics{
				Views:    views,
				Likes:    statCount(video.Statistics.LikeCount),
				Comments: statCount(video.Statistics.CommentCount),
			},
		})
	}
	return records, nil
}

func (a *YouTubeAdapter) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("key", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "trendradar")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// pause spaces consecutive API calls to stay under the quota.
func (a *YouTubeAdapter) pause(ctx context.Context) error {
	if a.queryDelay == 0 {
		return nil
	}
	select {
	case <-time.After(a.queryDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
