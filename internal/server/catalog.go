package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"tubio/internal/assemble"
	"tubio/internal/logging"
	"tubio/internal/protocol"
	"tubio/internal/resolve"
	"tubio/internal/ytdlp"
)

// emptyCatalog is the degraded response for any failed listing; bad
// identifiers and upstream failures never surface as server errors.
var emptyCatalog = protocol.CatalogResponse{
	Metas:         []protocol.Meta{},
	BehaviorHints: &protocol.CatalogHints{CacheMaxAge: 0},
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	requestedID := strings.TrimSuffix(chi.URLParam(r, "id"), ".json")
	if !strings.HasPrefix(requestedID, protocol.IDPrefix) {
		s.logger.Debug("catalog id missing prefix", logging.String("id", requestedID))
		s.writeJSON(w, http.StatusOK, emptyCatalog)
		return
	}

	ucfg, err := s.resolveUserConfig(r.Context(), chi.URLParam(r, "config"))
	if err != nil {
		if errors.Is(err, errSessionExpired) {
			s.writeError(w, http.StatusGone, "session expired")
			return
		}
		s.logger.Debug("catalog config parse failed", logging.Error(err))
		s.writeJSON(w, http.StatusOK, emptyCatalog)
		return
	}

	query := parseExtra(chi.URLParam(r, "extra"))
	identifier := strings.TrimSpace(protocol.TrimPrefix(requestedID))
	target := resolve.Resolve(ucfg, identifier, query)

	playlistFlag := "--yes-playlist"
	if !target.PlaylistAllowed {
		playlistFlag = "--no-playlist"
	}
	auth, _ := ucfg.AuthBlob(s.crypto)
	record, err := s.runner.Invoke(r.Context(), auth, []string{
		"-I", ytdlp.IndexRange(query.Skip, target.Reversed),
		playlistFlag,
		target.LookupSpec,
	})
	if err != nil {
		s.logger.Warn("catalog extraction failed",
			logging.String("id", requestedID), logging.Error(err))
		s.writeJSON(w, http.StatusOK, emptyCatalog)
		return
	}

	s.writeJSON(w, http.StatusOK, protocol.CatalogResponse{
		Metas:         assemble.CatalogMetas(record, requestedID),
		BehaviorHints: &protocol.CatalogHints{CacheMaxAge: 0},
	})
}

// parseExtra decodes the optional querystring-shaped extra path segment
// (search, genre, skip).
func parseExtra(extra string) resolve.Query {
	extra = strings.TrimSuffix(extra, ".json")
	values, err := url.ParseQuery(extra)
	if err != nil {
		return resolve.Query{}
	}
	skip, _ := strconv.Atoi(values.Get("skip"))
	if skip < 0 {
		skip = 0
	}
	return resolve.Query{
		Search: values.Get("search"),
		Genre:  values.Get("genre"),
		Skip:   skip,
	}
}
