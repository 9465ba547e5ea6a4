package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"cinesearch/internal/metrics"
	"cinesearch/internal/services"
)

const (
	defaultBaseURL    = "https://www.googleapis.com/youtube/v3"
	defaultMaxResults = 5
	defaultRelated    = 10
	defaultCategoryID = "1"
	defaultTimeout    = 10 * time.Second
)

// ErrNotConfigured is returned by lookups on a client without an API key.
var ErrNotConfigured = errors.New("youtube api key not configured")

// VideoInfo describes a single video.
type VideoInfo struct {
	ID           string `json:"video_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
	Duration     string `json:"duration"`
	ViewCount    int64  `json:"view_count"`
	PublishedAt  string `json:"published_at"`
	ChannelTitle string `json:"channel_title"`
}

// DetailsCache stores video details between lookups.
type DetailsCache interface {
	Get(ctx context.Context, id string) (VideoInfo, bool)
	Put(ctx context.Context, info VideoInfo)
}

// Config captures the provider settings.
type Config struct {
	APIKey            string
	BaseURL           string
	MaxResults        int
	CategoryID        string
	RequestsPerSecond float64
	TimeoutSeconds    int
}

// Client talks to the YouTube Data API.
type Client struct {
	apiKey     string
	baseURL    string
	maxResults int
	categoryID string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      DetailsCache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithDetailsCache consults cache before fetching video details.
func WithDetailsCache(cache DetailsCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// New creates a client. An empty API key yields an unconfigured client.
func New(cfg Config, opts ...Option) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	categoryID := strings.TrimSpace(cfg.CategoryID)
	if categoryID == "" {
		categoryID = defaultCategoryID
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	client := &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURL,
		maxResults: maxResults,
		categoryID: categoryID,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// TrailerQuery builds the trailer search text for a title.
func TrailerQuery(title string, year int) string {
	query := strings.TrimSpace(title) + " official trailer"
	if year > 0 {
		query += " " + strconv.Itoa(year)
	}
	return query
}

// RelatedQuery builds the related-videos search text for a title.
func RelatedQuery(title string) string {
	return strings.TrimSpace(title) + " review analysis"
}

// SearchTrailer returns details of the first trailer hit, or nil when the
// search has no results.
func (c *Client) SearchTrailer(ctx context.Context, title string, year int) (*VideoInfo, error) {
	params := url.Values{}
	params.Set("videoCategoryId", c.categoryID)
	ids, err := c.Search(ctx, TrailerQuery(title, year), c.maxResults, params)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return c.VideoDetails(ctx, ids[0])
}

// SearchRelated returns details for review and analysis videos about title.
// Hits whose details cannot be fetched are skipped.
func (c *Client) SearchRelated(ctx context.Context, title string, maxResults int) ([]VideoInfo, error) {
	if maxResults <= 0 {
		maxResults = defaultRelated
	}
	ids, err := c.Search(ctx, RelatedQuery(title), maxResults, nil)
	if err != nil {
		return nil, err
	}
	videos := make([]VideoInfo, 0, len(ids))
	for _, id := range ids {
		info, err := c.VideoDetails(ctx, id)
		if err != nil || info == nil {
			continue
		}
		videos = append(videos, *info)
	}
	return videos, nil
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

// Search returns video ids for query in relevance order.
func (c *Client) Search(ctx context.Context, query string, maxResults int, extra url.Values) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "youtube", "search", "query must not be empty", nil)
	}
	params := url.Values{}
	for key, values := range extra {
		params[key] = values
	}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("order", "relevance")

	var payload searchResponse
	if err := c.get(ctx, "search", params, &payload); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(payload.Items))
	for _, item := range payload.Items {
		if id := strings.TrimSpace(item.ID.VideoID); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type thumbnail struct {
	URL string `json:"url"`
}

type videosResponse struct {
	Items []struct {
		Snippet struct {
			Title        string               `json:"title"`
			Description  string               `json:"description"`
			PublishedAt  string               `json:"publishedAt"`
			ChannelTitle string               `json:"channelTitle"`
			Thumbnails   map[string]thumbnail `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// VideoDetails fetches metadata for one video id. A nil result without error
// means the provider does not know the id.
func (c *Client) VideoDetails(ctx context.Context, id string) (*VideoInfo, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, services.Wrap(services.ErrValidation, "youtube", "video details", "video id must not be empty", nil)
	}
	if c.cache != nil {
		if info, ok := c.cache.Get(ctx, id); ok {
			return &info, nil
		}
	}
	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("id", id)

	var payload videosResponse
	if err := c.get(ctx, "videos", params, &payload); err != nil {
		return nil, err
	}
	if len(payload.Items) == 0 {
		return nil, nil
	}
	item := payload.Items[0]
	views, _ := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
	info := VideoInfo{
		ID:           id,
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		ThumbnailURL: pickThumbnail(item.Snippet.Thumbnails),
		Duration:     item.ContentDetails.Duration,
		ViewCount:    views,
		PublishedAt:  item.Snippet.PublishedAt,
		ChannelTitle: item.Snippet.ChannelTitle,
	}
	if c.cache != nil {
		c.cache.Put(ctx, info)
	}
	return &info, nil
}

func pickThumbnail(thumbs map[string]thumbnail) string {
	for _, size := range []string{"high", "medium", "default"} {
		if thumb, ok := thumbs[size]; ok && thumb.URL != "" {
			return thumb.URL
		}
	}
	return ""
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, target any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return services.Wrap(services.ErrTimeout, "youtube", endpoint, "rate limiter wait", err)
	}
	params.Set("key", c.apiKey)
	requestURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		metrics.RecordProviderRequest(endpoint, latency, err)
		if errors.Is(err, context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "youtube", endpoint, fmt.Sprintf("latency=%v", latency), err)
		}
		return services.Wrap(services.ErrExternal, "youtube", endpoint, fmt.Sprintf("latency=%v", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("youtube %s returned %d", endpoint, resp.StatusCode)
		metrics.RecordProviderRequest(endpoint, latency, statusErr)
		return services.Wrap(services.ErrExternal, "youtube", endpoint, fmt.Sprintf("latency=%v", latency), statusErr)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		metrics.RecordProviderRequest(endpoint, latency, err)
		return services.Wrap(services.ErrExternal, "youtube", endpoint, "decode response", err)
	}
	metrics.RecordProviderRequest(endpoint, latency, nil)
	return nil
}
