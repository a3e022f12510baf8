package sponsorblock_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tubio/internal/services/sponsorblock"
)

func TestSkipSegmentsQueryAndDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/skipSegments" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("videoID"); got != "abc123def45" {
			t.Errorf("unexpected videoID %q", got)
		}
		if got := r.URL.Query().Get("categories"); got != `["sponsor","selfpromo"]` {
			t.Errorf("unexpected categories %q", got)
		}
		_, _ = w.Write([]byte(`[{"segment":[10.5,42],"category":"sponsor","UUID":"u1"}]`))
	}))
	defer server.Close()

	client := sponsorblock.NewClient(
		sponsorblock.WithBaseURL(server.URL), sponsorblock.WithHTTPClient(server.Client()))
	segs, err := client.SkipSegments(context.Background(), "abc123def45", []string{"sponsor", "selfpromo"})
	if err != nil {
		t.Fatalf("SkipSegments: %v", err)
	}
	if len(segs) != 1 || segs[0].Segment[1] != 42 || segs[0].Category != "sponsor" {
		t.Fatalf("unexpected segments: %+v", segs)
	}

	ranges := sponsorblock.Ranges(segs)
	if len(ranges) != 1 || ranges[0].Start != 10.5 || ranges[0].End != 42 {
		t.Fatalf("unexpected ranges: %+v", ranges)
	}
}

func TestSkipSegmentsNotFoundMeansEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer server.Close()

	client := sponsorblock.NewClient(
		sponsorblock.WithBaseURL(server.URL), sponsorblock.WithHTTPClient(server.Client()))
	segs, err := client.SkipSegments(context.Background(), "abc123def45", []string{"sponsor"})
	if err != nil {
		t.Fatalf("SkipSegments: %v", err)
	}
	if segs != nil {
		t.Fatalf("expected empty result, got %+v", segs)
	}
}

func TestSkipSegmentsNoCategoriesSkipsCall(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		hits++
	}))
	defer server.Close()

	client := sponsorblock.NewClient(
		sponsorblock.WithBaseURL(server.URL), sponsorblock.WithHTTPClient(server.Client()))
	if _, err := client.SkipSegments(context.Background(), "abc123def45", nil); err != nil {
		t.Fatalf("SkipSegments: %v", err)
	}
	if hits != 0 {
		t.Fatalf("expected no request, got %d", hits)
	}
}

func TestSkipSegmentsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := sponsorblock.NewClient(
		sponsorblock.WithBaseURL(server.URL), sponsorblock.WithHTTPClient(server.Client()))
	if _, err := client.SkipSegments(context.Background(), "abc123def45", []string{"sponsor"}); err == nil {
		t.Fatal("expected error")
	}
}
