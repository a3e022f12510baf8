// Package protocol defines the wire schema of the catalog/meta/stream
// addon protocol served by tubio.
package protocol

// IDPrefix marks every identifier owned by this service.
const IDPrefix = "yt_id:"

// VideoPostfix is appended to meta video ids so players treat the single
// entry as season 1 episode 1.
const VideoPostfix = ":1:1"

// TrimPrefix strips IDPrefix when present.
func TrimPrefix(id string) string {
	if len(id) >= len(IDPrefix) && id[:len(IDPrefix)] == IDPrefix {
		return id[len(IDPrefix):]
	}
	return id
}

// Manifest describes the addon to the client.
type Manifest struct {
	ID            string        `json:"id"`
	Version       string        `json:"version"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Resources     []string      `json:"resources"`
	Types         []string      `json:"types"`
	IDPrefixes    []string      `json:"idPrefixes"`
	Catalogs      []CatalogDef  `json:"catalogs"`
	BehaviorHints ManifestHints `json:"behaviorHints"`
}

// ManifestHints carries manifest-level behavior flags.
type ManifestHints struct {
	Configurable bool `json:"configurable"`
}

// CatalogDef declares one listable catalog.
type CatalogDef struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	Name  string  `json:"name"`
	Extra []Extra `json:"extra,omitempty"`
}

// Extra declares one supported catalog query parameter.
type Extra struct {
	Name       string   `json:"name"`
	IsRequired bool     `json:"isRequired"`
	Options    []string `json:"options,omitempty"`
}

// Meta is one catalog listing item.
type Meta struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Poster      string `json:"poster,omitempty"`
	PosterShape string `json:"posterShape,omitempty"`
	Description string `json:"description,omitempty"`
	ReleaseInfo int    `json:"releaseInfo,omitempty"`
}

// MetaDetail is the full item record returned by the meta endpoint.
type MetaDetail struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	Name          string     `json:"name"`
	Genres        []string   `json:"genres,omitempty"`
	Poster        string     `json:"poster,omitempty"`
	PosterShape   string     `json:"posterShape,omitempty"`
	Background    string     `json:"background,omitempty"`
	Logo          string     `json:"logo,omitempty"`
	Description   string     `json:"description,omitempty"`
	ReleaseInfo   int        `json:"releaseInfo,omitempty"`
	Released      string     `json:"released,omitempty"`
	Videos        []Video    `json:"videos,omitempty"`
	Runtime       string     `json:"runtime,omitempty"`
	Language      string     `json:"language,omitempty"`
	Website       string     `json:"website,omitempty"`
	BehaviorHints *MetaHints `json:"behaviorHints,omitempty"`
}

// MetaHints carries meta-level behavior flags.
type MetaHints struct {
	DefaultVideoID string `json:"defaultVideoId,omitempty"`
}

// Video is one playable entry inside a MetaDetail.
type Video struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Released  string             `json:"released,omitempty"`
	Thumbnail string             `json:"thumbnail,omitempty"`
	Streams   []StreamDescriptor `json:"streams"`
	Episode   int                `json:"episode,omitempty"`
	Season    int                `json:"season,omitempty"`
	Overview  string             `json:"overview,omitempty"`
}

// StreamDescriptor is one way to play a video: a direct URL, the client's
// built-in player (YtID), or an external link. Exactly one of URL, YtID,
// and ExternalURL is set.
type StreamDescriptor struct {
	Name          string       `json:"name,omitempty"`
	URL           string       `json:"url,omitempty"`
	YtID          string       `json:"ytId,omitempty"`
	ExternalURL   string       `json:"externalUrl,omitempty"`
	Description   string       `json:"description,omitempty"`
	Subtitles     []Subtitle   `json:"subtitles,omitempty"`
	BehaviorHints *StreamHints `json:"behaviorHints,omitempty"`
}

// StreamHints carries stream-level behavior flags.
type StreamHints struct {
	NotWebReady bool   `json:"notWebReady,omitempty"`
	VideoSize   int64  `json:"videoSize,omitempty"`
	Filename    string `json:"filename,omitempty"`
}

// Subtitle is one subtitle track attached to a stream.
type Subtitle struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Lang string `json:"lang"`
}

// CatalogResponse envelopes a catalog listing.
type CatalogResponse struct {
	Metas         []Meta        `json:"metas"`
	BehaviorHints *CatalogHints `json:"behaviorHints,omitempty"`
}

// CatalogHints carries catalog-level behavior flags.
type CatalogHints struct {
	CacheMaxAge int `json:"cacheMaxAge"`
}

// MetaResponse envelopes a meta detail. Meta is a pointer so a failed
// lookup serializes as an empty object rather than a fabricated record.
type MetaResponse struct {
	Meta *MetaDetail `json:"meta"`
}

// StreamResponse envelopes the stream endpoint payload.
type StreamResponse struct {
	Streams []StreamDescriptor `json:"streams"`
}
