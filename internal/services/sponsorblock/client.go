// Package sponsorblock queries the crowd-sourced segment categorization
// service for skippable time ranges within a video.
package sponsorblock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tubio/internal/segments"
)

const (
	defaultBaseURL     = "https://sponsor.ajay.app"
	defaultHTTPTimeout = 10 * time.Second
)

// Client wraps the skip-segments API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewClient constructs a segment service client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Segment is one categorized time range within a video.
type Segment struct {
	Segment  [2]float64 `json:"segment"`
	Category string     `json:"category"`
	UUID     string     `json:"UUID,omitempty"`
}

// SkipSegments fetches the segments for a video filtered to the given
// categories. A 404 means the service knows nothing about the video and
// yields an empty result, not an error.
func (c *Client) SkipSegments(ctx context.Context, videoID string, categories []string) ([]Segment, error) {
	if strings.TrimSpace(videoID) == "" || len(categories) == 0 {
		return nil, nil
	}
	encodedCategories, err := json.Marshal(categories)
	if err != nil {
		return nil, fmt.Errorf("sponsorblock: encode categories: %w", err)
	}
	query := url.Values{}
	query.Set("videoID", videoID)
	query.Set("categories", string(encodedCategories))
	endpoint := c.baseURL + "/api/skipSegments?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("sponsorblock: request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sponsorblock: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sponsorblock: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sponsorblock: read response: %w", err)
	}
	var result []Segment
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("sponsorblock: decode response: %w", err)
	}
	return result, nil
}

// Ranges converts segments to exclusion windows for the playlist
// rewriter.
func Ranges(segs []Segment) []segments.Range {
	if len(segs) == 0 {
		return nil
	}
	ranges := make([]segments.Range, 0, len(segs))
	for _, seg := range segs {
		ranges = append(ranges, segments.Range{Start: seg.Segment[0], End: seg.Segment[1]})
	}
	return ranges
}
