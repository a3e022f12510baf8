package segments

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tubio/internal/logging"
)

// Option configures the rewriter.
type Option func(*Rewriter)

// WithHTTPClient injects a custom HTTP client (primarily for tests).
func WithHTTPClient(client *http.Client) Option {
	return func(r *Rewriter) {
		if client != nil {
			r.client = client
		}
	}
}

// WithMode selects the exclusion mode. The default is strict.
func WithMode(mode Mode) Option {
	return func(r *Rewriter) {
		r.mode = mode
	}
}

// Rewriter fetches indexed playlists and re-emits them with excluded
// segments removed. It touches playlist text only, never media bytes.
type Rewriter struct {
	client *http.Client
	mode   Mode
	logger *slog.Logger
}

// NewRewriter constructs a rewriter.
func NewRewriter(logger *slog.Logger, opts ...Option) *Rewriter {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Rewriter{
		client: &http.Client{Timeout: 30 * time.Second},
		mode:   ModeStrict,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rewrite fetches playlistURL and returns its text with segments falling
// in ranges removed. With no ranges it returns the URL itself without
// fetching, so the common no-exclusions path costs no network round-trip.
func (r *Rewriter) Rewrite(ctx context.Context, playlistURL string, ranges []Range) (string, error) {
	if len(ranges) == 0 {
		return playlistURL, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, playlistURL, nil)
	if err != nil {
		return "", fmt.Errorf("build playlist request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch playlist: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch playlist: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read playlist: %w", err)
	}

	return r.filter(string(body), ranges), nil
}

// filter walks the playlist keeping a running timestamp. A segment is
// the EXTINF line, any directive lines that follow it, and the URI line
// that closes it; excluded segments drop all three. Every other line is
// passed through verbatim.
func (r *Rewriter) filter(body string, ranges []Range) string {
	var out []string
	var pending []string
	var elapsed, segDur float64
	inSegment := false

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#EXTINF:"):
			segDur = extinfDuration(trimmed)
			pending = append(pending[:0], line)
			inSegment = true
		case inSegment && (trimmed == "" || strings.HasPrefix(trimmed, "#")):
			pending = append(pending, line)
		case inSegment:
			segStart, segEnd := elapsed, elapsed+segDur
			elapsed = segEnd
			inSegment = false
			if !Excluded(r.mode, segStart, segEnd, ranges) {
				out = append(out, pending...)
				out = append(out, line)
			}
			pending = pending[:0]
		default:
			out = append(out, line)
		}
	}
	// Malformed tail: a dangling EXTINF with no URI keeps its directives.
	out = append(out, pending...)

	return strings.Join(out, "\n")
}

func extinfDuration(line string) float64 {
	value := strings.TrimPrefix(line, "#EXTINF:")
	if i := strings.IndexByte(value, ','); i >= 0 {
		value = value[:i]
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return dur
}
