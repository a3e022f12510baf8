// Package dearrow queries the crowd-sourced branding service for
// community-voted title and thumbnail overrides.
package dearrow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL      = "https://sponsor.ajay.app"
	defaultThumbnailURL = "https://dearrow-thumb.ajay.app"
	defaultHTTPTimeout  = 10 * time.Second
)

// Client wraps the branding API.
type Client struct {
	baseURL      string
	thumbnailURL string
	httpClient   *http.Client
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

// WithBaseURL overrides the default branding API base.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithThumbnailBaseURL overrides the thumbnail generator base.
func WithThumbnailBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.thumbnailURL = strings.TrimRight(base, "/")
		}
	}
}

// NewClient constructs a branding service client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:      defaultBaseURL,
		thumbnailURL: defaultThumbnailURL,
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Title is one community-suggested title.
type Title struct {
	Title    string `json:"title"`
	Votes    int    `json:"votes"`
	Locked   bool   `json:"locked"`
	Original bool   `json:"original"`
}

// Thumbnail is one community-suggested thumbnail timestamp.
type Thumbnail struct {
	Timestamp float64 `json:"timestamp"`
	Votes     int     `json:"votes"`
	Locked    bool    `json:"locked"`
	Original  bool    `json:"original"`
}

// Branding is the override data for one video. Empty slices mean no
// override is available.
type Branding struct {
	Titles     []Title     `json:"titles"`
	Thumbnails []Thumbnail `json:"thumbnails"`
}

// Branding fetches the override data for a video.
func (c *Client) Branding(ctx context.Context, videoID string) (*Branding, error) {
	if strings.TrimSpace(videoID) == "" {
		return &Branding{}, nil
	}
	query := url.Values{}
	query.Set("videoID", videoID)
	endpoint := c.baseURL + "/api/branding?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dearrow: request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dearrow: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &Branding{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dearrow: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dearrow: read response: %w", err)
	}
	var branding Branding
	if err := json.Unmarshal(body, &branding); err != nil {
		return nil, fmt.Errorf("dearrow: decode response: %w", err)
	}
	return &branding, nil
}

// ThumbnailURL builds the generated-thumbnail URL for a timestamp.
func (c *Client) ThumbnailURL(videoID string, timestamp float64) string {
	query := url.Values{}
	query.Set("videoID", videoID)
	query.Set("time", strconv.FormatFloat(timestamp, 'f', -1, 64))
	return c.thumbnailURL + "/api/v1/getThumbnail?" + query.Encode()
}

// BestTitle returns the top-voted non-original title, if any. The API
// returns suggestions ordered by score.
func (b *Branding) BestTitle() (string, bool) {
	for _, t := range b.Titles {
		if t.Original || strings.TrimSpace(t.Title) == "" {
			continue
		}
		return t.Title, true
	}
	return "", false
}

// BestThumbnailTime returns the top-voted non-original timestamp, if any.
func (b *Branding) BestThumbnailTime() (float64, bool) {
	for _, t := range b.Thumbnails {
		if t.Original {
			continue
		}
		return t.Timestamp, true
	}
	return 0, false
}
