package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"tubio/internal/logging"
	"tubio/internal/protocol"
	"tubio/internal/segments"
)

// handleStream serves the protocol stream route. Streams ride on the
// meta response; this endpoint exists for protocol compatibility only.
func (s *Server) handleStream(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, protocol.StreamResponse{Streams: []protocol.StreamDescriptor{}})
}

// handleRewrite is the segment-rewrite endpoint: fetch the named
// playlist and re-emit it with the requested ranges removed.
func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "playlist")
	playlistURL, err := url.QueryUnescape(raw)
	if err != nil {
		playlistURL = raw
	}
	if !strings.HasPrefix(playlistURL, "http://") && !strings.HasPrefix(playlistURL, "https://") {
		s.writeError(w, http.StatusBadRequest, "invalid playlist url")
		return
	}

	ranges, err := segments.ParseRanges(r.URL.Query().Get("ranges"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid ranges")
		return
	}

	body, err := s.rewriter.Rewrite(r.Context(), playlistURL, ranges)
	if err != nil {
		s.logger.Warn("playlist rewrite failed",
			logging.String("playlist", playlistURL), logging.Error(err))
		s.writeError(w, http.StatusBadGateway, "upstream playlist fetch failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = w.Write([]byte(body))
}
