// Package youtube talks to the YouTube Data API v3 and the WebSub hub that
// pushes new-upload notifications.
//
// API keys are rotated by a KeyManager when their quota runs out. Rotation
// is bounded: a request is tried at most once per configured key before
// ErrQuotaExhausted is returned.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// maxPageSize is the API's per-page and per-videos.list id limit.
	maxPageSize = 50
)

// Client is a rate limited Data API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	keys       *KeyManager
	limiter    *rate.Limiter
	logger     *zap.Logger
}

type ClientOption func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithRequestInterval spaces API calls at least d apart. Zero disables the
// courtesy delay.
func WithRequestInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// NewClient creates a Data API client with rate limiting.
func NewClient(keys *KeyManager, logger *zap.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		keys:       keys,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Video is the subset of a videos.list item the catalog uses.
type Video struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string               `json:"title"`
		Description  string               `json:"description"`
		ChannelID    string               `json:"channelId"`
		ChannelTitle string               `json:"channelTitle"`
		PublishedAt  string               `json:"publishedAt"`
		Thumbnails   map[string]Thumbnail `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
	} `json:"statistics"`
	Status struct {
		Embeddable    bool   `json:"embeddable"`
		PrivacyStatus string `json:"privacyStatus"`
	} `json:"status"`
}

type Thumbnail struct {
	URL string `json:"url"`
}

// Playable reports whether the video can be embedded by the front end.
func (v *Video) Playable() bool {
	return v.Status.Embeddable && v.Status.PrivacyStatus == "public"
}

// BestThumbnail returns the highest quality thumbnail available.
func (v *Video) BestThumbnail() string {
	for _, quality := range []string{"maxres", "high", "medium", "default"} {
		if t, ok := v.Snippet.Thumbnails[quality]; ok && t.URL != "" {
			return t.URL
		}
	}
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", v.ID)
}

// SearchParams are the search.list filters used by the sources.
type SearchParams struct {
	ChannelID     string
	Query         string
	Order         string
	VideoDuration string
	// Limit caps the number of ids returned across pages.
	Limit int
}

type searchResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type videosResponse struct {
	Items []Video `json:"items"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// quotaReasons are the error reasons that mean "try another key".
var quotaReasons = map[string]bool{
	"quotaExceeded":         true,
	"dailyLimitExceeded":    true,
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
}

// SearchVideoIDs pages through search.list until Limit ids are collected
// or results run out.
func (c *Client) SearchVideoIDs(ctx context.Context, p SearchParams) ([]string, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = maxPageSize
	}

	var ids []string
	pageToken := ""
	for len(ids) < limit {
		params := url.Values{}
		params.Set("part", "id")
		params.Set("type", "video")
		params.Set("maxResults", fmt.Sprint(min(maxPageSize, limit-len(ids))))
		if p.ChannelID != "" {
			params.Set("channelId", p.ChannelID)
		}
		if p.Query != "" {
			params.Set("q", p.Query)
		}
		if p.Order != "" {
			params.Set("order", p.Order)
		}
		if p.VideoDuration != "" {
			params.Set("videoDuration", p.VideoDuration)
		}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp searchResponse
		if err := c.get(ctx, "/search", params, &resp); err != nil {
			return ids, err
		}
		for _, item := range resp.Items {
			if item.ID.VideoID != "" {
				ids = append(ids, item.ID.VideoID)
			}
		}
		if resp.NextPageToken == "" || len(resp.Items) == 0 {
			break
		}
		pageToken = resp.NextPageToken
	}

	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Videos fetches full details for the ids, in batches the API accepts.
func (c *Client) Videos(ctx context.Context, ids []string) ([]Video, error) {
	var videos []Video
	for start := 0; start < len(ids); start += maxPageSize {
		end := min(start+maxPageSize, len(ids))

		params := url.Values{}
		params.Set("part", "snippet,contentDetails,statistics,status")
		params.Set("id", strings.Join(ids[start:end], ","))

		var resp videosResponse
		if err := c.get(ctx, "/videos", params, &resp); err != nil {
			return videos, err
		}
		videos = append(videos, resp.Items...)
	}
	return videos, nil
}

// Video fetches a single video. It returns nil without error when the
// video does not exist.
func (c *Client) Video(ctx context.Context, id string) (*Video, error) {
	videos, err := c.Videos(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, nil
	}
	return &videos[0], nil
}

// get performs a rate limited GET, rotating keys on quota errors.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	attempts := max(c.keys.Len(), 1)
	for attempt := 0; attempt < attempts; attempt++ {
		key, err := c.keys.Current()
		if err != nil {
			return err
		}

		err = c.getWithKey(ctx, path, params, key, out)
		if errors.Is(err, errQuota) {
			c.keys.MarkExhausted(key)
			c.logger.Warn("api key quota exceeded, rotating",
				zap.String("key", redact(key)),
				zap.String("path", path),
				zap.Int("keys_left", c.keys.Available()))
			continue
		}
		return err
	}
	return ErrQuotaExhausted
}

var errQuota = errors.New("quota exceeded")

func (c *Client) getWithKey(ctx context.Context, path string, params url.Values, key string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("key", key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The url.Error text carries the key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if isQuotaError(resp.StatusCode, body) {
			return errQuota
		}
		return fmt.Errorf("youtube %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isQuotaError(status int, body []byte) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	if status != http.StatusForbidden {
		return false
	}
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return false
	}
	for _, e := range apiErr.Error.Errors {
		if quotaReasons[e.Reason] {
			return true
		}
	}
	return false
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
