package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"tubio/internal/assemble"
	"tubio/internal/logging"
	"tubio/internal/protocol"
	"tubio/internal/resolve"
	"tubio/internal/segments"
	"tubio/internal/services/dearrow"
	"tubio/internal/services/sponsorblock"
	"tubio/internal/usercfg"
	"tubio/internal/ytdlp"
)

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	requestedID := strings.TrimSuffix(chi.URLParam(r, "id"), ".json")
	if !strings.HasPrefix(requestedID, protocol.IDPrefix) {
		s.logger.Debug("meta id missing prefix", logging.String("id", requestedID))
		s.writeEmptyMeta(w)
		return
	}

	configParam := chi.URLParam(r, "config")
	ucfg, err := s.resolveUserConfig(r.Context(), configParam)
	if err != nil {
		if errors.Is(err, errSessionExpired) {
			s.writeError(w, http.StatusGone, "session expired")
			return
		}
		s.logger.Debug("meta config parse failed", logging.Error(err))
		s.writeEmptyMeta(w)
		return
	}

	identifier := strings.TrimSpace(protocol.TrimPrefix(requestedID))
	target := resolve.Resolve(ucfg, identifier, resolve.Query{IncludeLive: true})

	markFlag := "--no-mark-watched"
	if ucfg.MarkWatchedOnLoad {
		markFlag = "--mark-watched"
	}
	auth, _ := ucfg.AuthBlob(s.crypto)
	record, err := s.runner.Invoke(r.Context(), auth, []string{
		markFlag,
		"-I", ytdlp.FirstOnly,
		"--no-playlist",
		target.LookupSpec,
	})
	if err != nil {
		s.logger.Warn("meta extraction failed",
			logging.String("id", requestedID), logging.Error(err))
		s.writeEmptyMeta(w)
		return
	}

	ranges := s.sponsorRanges(r, ucfg, record)
	branding, brandedThumbnail := s.brandingOverride(r, ucfg, record)

	selfURL := s.selfURL(r)
	manifestURL := url.QueryEscape(selfURL + "/" + url.QueryEscape(configParam) + "/manifest.json")
	playerPrefix := "stremio://"
	if ref := r.Header.Get("Referer"); ref != "" {
		playerPrefix = ref + "#"
	}

	assembler := assemble.New(ucfg, selfURL, playerPrefix, manifestURL)
	meta := assembler.MetaDetail(record, requestedID, chi.URLParam(r, "type"), ranges, branding, brandedThumbnail)
	s.writeJSON(w, http.StatusOK, protocol.MetaResponse{Meta: meta})
}

// writeEmptyMeta degrades a failed lookup to an empty meta object.
func (s *Server) writeEmptyMeta(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusOK, map[string]any{"meta": struct{}{}})
}

// sponsorRanges fetches exclusion windows when the user enabled segment
// categories. Failures degrade to no exclusions.
func (s *Server) sponsorRanges(r *http.Request, ucfg *usercfg.Config, record *ytdlp.Record) []segments.Range {
	if s.sponsor == nil || len(ucfg.SponsorCategories) == 0 || record.IsPlaylist() {
		return nil
	}
	segs, err := s.sponsor.SkipSegments(r.Context(), record.ID, ucfg.SponsorCategories)
	if err != nil {
		s.logger.Warn("segment lookup failed",
			logging.String("video_id", record.ID), logging.Error(err))
		return nil
	}
	return sponsorblock.Ranges(segs)
}

// brandingOverride fetches title/thumbnail overrides for single videos.
// Failures degrade to extractor metadata.
func (s *Server) brandingOverride(r *http.Request, ucfg *usercfg.Config, record *ytdlp.Record) (*dearrow.Branding, string) {
	if s.branding == nil || !ucfg.DeArrow || record.IsPlaylist() {
		return nil, ""
	}
	branding, err := s.branding.Branding(r.Context(), record.ID)
	if err != nil {
		s.logger.Warn("branding lookup failed",
			logging.String("video_id", record.ID), logging.Error(err))
		return nil, ""
	}
	thumbnail := ""
	if ts, ok := branding.BestThumbnailTime(); ok {
		thumbnail = s.branding.ThumbnailURL(record.ID, ts)
	}
	return branding, thumbnail
}
