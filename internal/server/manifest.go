package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"tubio/internal/logging"
	"tubio/internal/protocol"
	"tubio/internal/resolve"
	"tubio/internal/usercfg"
)

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	ucfg, err := s.resolveUserConfig(r.Context(), chi.URLParam(r, "config"))
	if err != nil {
		if errors.Is(err, errSessionExpired) {
			s.writeError(w, http.StatusGone, "session expired")
			return
		}
		s.logger.Debug("manifest config parse failed", logging.Error(err))
		ucfg = &usercfg.Config{}
	}

	entries := ucfg.Catalogs
	if len(entries) == 0 {
		entries = usercfg.DefaultCatalogs()
	}

	var defs []protocol.CatalogDef
	for _, entry := range entries {
		def := catalogDef(entry)
		if entry.ChannelType == usercfg.ChannelTypeAuto && searchable(entry) {
			def.Extra = append(def.Extra, protocol.Extra{Name: "search", IsRequired: true})
		}
		appendCommonExtra(&def, canGenre(entry), entry.SortOrder)
		defs = append(defs, def)
	}
	if ucfg.SearchEnabled() {
		for _, entry := range []usercfg.CatalogEntry{
			{ID: resolve.TokenSearch, Name: "Video", ChannelType: usercfg.ChannelTypeVideo},
			{ID: resolve.TokenChannelSearch, Name: "Channel", ChannelType: usercfg.ChannelTypeChannel},
		} {
			def := catalogDef(entry)
			def.Extra = append(def.Extra, protocol.Extra{Name: "search", IsRequired: true})
			appendCommonExtra(&def, true, nil)
			defs = append(defs, def)
		}
	}

	s.writeJSON(w, http.StatusOK, protocol.Manifest{
		ID:            "com.tubio.addon",
		Version:       Version,
		Name:          "Tubio",
		Description:   "Watch videos, channels, playlists, subscriptions, watch later, and history through yt-dlp.",
		Resources:     []string{"catalog", "stream", "meta"},
		Types:         []string{"movie", "channel"},
		IDPrefixes:    []string{protocol.IDPrefix},
		Catalogs:      defs,
		BehaviorHints: protocol.ManifestHints{Configurable: true},
	})
}

func catalogDef(entry usercfg.CatalogEntry) protocol.CatalogDef {
	id := entry.ID
	if !strings.HasPrefix(id, protocol.IDPrefix) {
		id = protocol.IDPrefix + id
	}
	catalogType := entry.Type
	if catalogType == "" {
		catalogType = "YouTube"
	}
	return protocol.CatalogDef{ID: id, Type: catalogType, Name: entry.Name}
}

// searchable reports whether an auto-mode entry takes a search term:
// templated identifiers and the built-in search catalogs.
func searchable(entry usercfg.CatalogEntry) bool {
	id := protocol.TrimPrefix(entry.ID)
	return strings.Contains(id, resolve.TermPlaceholder) ||
		id == resolve.TokenSearch || id == resolve.TokenChannelSearch
}

// canGenre reports whether sort options apply to an entry. Fixed-target
// identifiers (pseudo tokens, recognized entity shapes, absolute URLs)
// enumerate in their natural order and cannot be re-sorted; search-mode
// entries and literal search text can.
func canGenre(entry usercfg.CatalogEntry) bool {
	if entry.ChannelType != usercfg.ChannelTypeAuto && entry.ChannelType != "" {
		return true
	}
	id := protocol.TrimPrefix(entry.ID)
	if resolve.IsPseudoToken(id) {
		return false
	}
	if resolve.IsChannelHandle(id) || resolve.IsPlaylistID(id) || resolve.IsVideoID(id) {
		return false
	}
	if id == resolve.TokenSearch || id == resolve.TokenChannelSearch {
		return true
	}
	u, err := url.Parse(id)
	return err != nil || !u.IsAbs() || u.Host == ""
}

// appendCommonExtra adds the genre and skip parameters every catalog
// carries. "Reversed" is always offered; the sort buckets only when the
// entry supports re-sorting. Entries with their own sort order advertise
// those names instead of the defaults.
func appendCommonExtra(def *protocol.CatalogDef, sortable bool, sortOrder []usercfg.SortOption) {
	options := []string{"Reversed"}
	if sortable {
		names := resolve.SortNames
		if len(sortOrder) > 0 {
			names = make([]string, 0, len(sortOrder))
			for _, opt := range sortOrder {
				names = append(names, opt.Name)
			}
		}
		for _, name := range names {
			options = append(options, name, resolve.ReversedPrefix+" "+name)
		}
	}
	def.Extra = append(def.Extra,
		protocol.Extra{Name: "genre", IsRequired: false, Options: options},
		protocol.Extra{Name: "skip", IsRequired: false},
	)
}
