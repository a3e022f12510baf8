// Package assemble converts extraction records into the protocol's
// response shapes: catalog listings, full meta details, and ordered
// stream lists with segment rewriting and branding overrides applied.
package assemble

import (
	"fmt"
	"net/url"
	"strings"

	"tubio/internal/protocol"
	"tubio/internal/resolve"
	"tubio/internal/segments"
	"tubio/internal/services/dearrow"
	"tubio/internal/usercfg"
	"tubio/internal/ytdlp"
)

// Assembler shapes responses for one request. It holds only request
// scoped values and does no I/O; segment ranges and branding overrides
// are fetched by the caller and passed in.
type Assembler struct {
	cfg          *usercfg.Config
	selfURL      string
	playerPrefix string
	manifestURL  string
}

// New constructs an assembler. selfURL is this service's external base
// URL, playerPrefix the client deep-link scheme, manifestURL the escaped
// manifest address used for catalog deep links.
func New(cfg *usercfg.Config, selfURL, playerPrefix, manifestURL string) *Assembler {
	if cfg == nil {
		cfg = &usercfg.Config{}
	}
	return &Assembler{
		cfg:          cfg,
		selfURL:      strings.TrimRight(selfURL, "/"),
		playerPrefix: playerPrefix,
		manifestURL:  manifestURL,
	}
}

// Streams builds the ordered stream list for a record. Extractor output
// lists formats worst-first, so renderable candidates are reversed to
// offer the highest quality first. Indexed-playlist formats are routed
// through the rewrite endpoint when exclusion ranges are present.
func (a *Assembler) Streams(rec *ytdlp.Record, subs []protocol.Subtitle, ranges []segments.Range) []protocol.StreamDescriptor {
	channel := rec.IsPlaylist()

	var playable []ytdlp.Format
	for _, src := range rec.FormatCandidates() {
		if src.URL == "" {
			continue
		}
		if !a.cfg.ShowBrokenLinks && (strings.HasPrefix(src.FormatID, "sb") || src.Acodec == "none" || src.Vcodec == "none") {
			continue
		}
		playable = append(playable, src)
	}

	streams := make([]protocol.StreamDescriptor, 0, len(playable)+4)
	for i := len(playable) - 1; i >= 0; i-- {
		src := playable[i]
		streams = append(streams, protocol.StreamDescriptor{
			Name:        "YT-DLP Player " + src.Resolution,
			URL:         a.streamURL(src, ranges),
			Description: src.Format,
			Subtitles:   subs,
			BehaviorHints: &protocol.StreamHints{
				NotWebReady: src.Protocol != "https" || src.VideoExt != "mp4",
				VideoSize:   int64(src.FilesizeApprox),
				Filename:    rec.Filename,
			},
		})
	}

	if rec.IsLive || !channel {
		if resolve.IsVideoID(rec.ID) {
			streams = append(streams, protocol.StreamDescriptor{
				Name:        "Stremio Player",
				YtID:        rec.ID,
				Description: "Click to watch using Stremio's built-in YouTube Player",
			})
		}
		if rec.WebpageURL != "" {
			streams = append(streams, protocol.StreamDescriptor{
				Name:        "External Player",
				ExternalURL: rec.WebpageURL,
				Description: "Click to watch in the External Player",
			})
		}
	}
	if rec.UploaderID != "" {
		streams = append(streams, protocol.StreamDescriptor{
			Name:        "YT-DLP Channel",
			ExternalURL: a.playerPrefix + "/discover/" + a.manifestURL + "/movie/" + url.QueryEscape(protocol.IDPrefix+rec.UploaderID),
			Description: "Click to open the channel as a Catalog",
		})
	}
	if rec.UploaderURL != "" {
		streams = append(streams, protocol.StreamDescriptor{
			Name:        "External Channel",
			ExternalURL: rec.UploaderURL,
			Description: "Click to open the channel in the External Player",
		})
	}
	return streams
}

// streamURL routes indexed-playlist formats through the self-hosted
// rewrite endpoint; progressive formats cannot be cut without
// re-encoding and pass through untouched.
func (a *Assembler) streamURL(src ytdlp.Format, ranges []segments.Range) string {
	if len(ranges) == 0 {
		return src.URL
	}
	if src.Protocol != "m3u8" && src.Protocol != "m3u8_native" {
		return src.URL
	}
	encoded, err := segments.EncodeRanges(ranges)
	if err != nil {
		return src.URL
	}
	return a.selfURL + "/stream/" + url.QueryEscape(src.URL) + "?ranges=" + url.QueryEscape(encoded)
}

// MetaDetail builds the full item record for the meta endpoint.
// Branding overrides apply to single videos only; channels and playlists
// keep extractor metadata.
func (a *Assembler) MetaDetail(rec *ytdlp.Record, requestedID, requestedType string, ranges []segments.Range, branding *dearrow.Branding, brandedThumbnail string) *protocol.MetaDetail {
	channel := rec.IsPlaylist()

	title := rec.Title
	if title == "" {
		title = "Unknown Title"
	}
	thumbnail := rec.ThumbnailURL()
	if branding != nil && !channel {
		if override, ok := branding.BestTitle(); ok {
			title = override
		}
		if brandedThumbnail != "" {
			thumbnail = brandedThumbnail
		}
	}

	description := rec.Description
	if description == "" {
		description = title
	}
	released := rec.ReleasedISO()
	posterShape := "landscape"
	if channel {
		posterShape = "square"
	}

	subs := a.Subtitles(rec)
	streams := a.Streams(rec, subs, ranges)
	videoID := requestedID + protocol.VideoPostfix

	return &protocol.MetaDetail{
		ID:          requestedID,
		Type:        requestedType,
		Name:        title,
		Genres:      rec.Tags,
		Poster:      thumbnail,
		PosterShape: posterShape,
		Background:  thumbnail,
		Logo:        thumbnail,
		Description: description,
		ReleaseInfo: rec.ReleaseInfo(),
		Released:    released,
		Videos: []protocol.Video{{
			ID:        videoID,
			Title:     title,
			Released:  released,
			Thumbnail: thumbnail,
			Streams:   streams,
			Episode:   1,
			Season:    1,
			Overview:  description,
		}},
		Runtime:       fmt.Sprintf("%d min", int(rec.Duration)/60),
		Language:      rec.Language,
		Website:       rec.WebpageURL,
		BehaviorHints: &protocol.MetaHints{DefaultVideoID: videoID},
	}
}
