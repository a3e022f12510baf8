package ytdlp

import (
	"strconv"
	"time"
)

// Record is the normalized JSON output of one extraction run. A record is
// either a single video, a playlist of entries, or a channel tab; helpers
// below classify it. Records are ephemeral and rebuilt per request.
type Record struct {
	Type             string   `json:"_type,omitempty"`
	ExtractorKey     string   `json:"extractor_key,omitempty"`
	ID               string   `json:"id,omitempty"`
	URL              string   `json:"url,omitempty"`
	Title            string   `json:"title,omitempty"`
	Description      string   `json:"description,omitempty"`
	Thumbnail        string   `json:"thumbnail,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	Duration         float64  `json:"duration,omitempty"`
	Language         string   `json:"language,omitempty"`
	IsLive           bool     `json:"is_live,omitempty"`
	ReleaseTimestamp int64    `json:"release_timestamp,omitempty"`
	UploadDate       string   `json:"upload_date,omitempty"`
	ReleaseYear      int      `json:"release_year,omitempty"`
	UploaderID       string   `json:"uploader_id,omitempty"`
	UploaderURL      string   `json:"uploader_url,omitempty"`
	WebpageURL       string   `json:"webpage_url,omitempty"`
	WebpageURLDomain string   `json:"webpage_url_domain,omitempty"`
	Filename         string   `json:"filename,omitempty"`

	Thumbnails        []Thumbnail                `json:"thumbnails,omitempty"`
	Formats           []Format                   `json:"formats,omitempty"`
	Subtitles         map[string][]SubtitleTrack `json:"subtitles,omitempty"`
	AutomaticCaptions map[string][]SubtitleTrack `json:"automatic_captions,omitempty"`
	Entries           []Record                   `json:"entries,omitempty"`

	// Flat-playlist entries and some extractors report the record itself
	// as the only format; these fields back that fallback.
	FormatID       string  `json:"format_id,omitempty"`
	Format         string  `json:"format,omitempty"`
	Protocol       string  `json:"protocol,omitempty"`
	Resolution     string  `json:"resolution,omitempty"`
	VideoExt       string  `json:"video_ext,omitempty"`
	Acodec         string  `json:"acodec,omitempty"`
	Vcodec         string  `json:"vcodec,omitempty"`
	FilesizeApprox float64 `json:"filesize_approx,omitempty"`
}

// Thumbnail is one entry of a record's thumbnail ladder.
type Thumbnail struct {
	URL string `json:"url"`
}

// Format is one playable format candidate.
type Format struct {
	FormatID       string  `json:"format_id,omitempty"`
	URL            string  `json:"url,omitempty"`
	Format         string  `json:"format,omitempty"`
	Protocol       string  `json:"protocol,omitempty"`
	Resolution     string  `json:"resolution,omitempty"`
	VideoExt       string  `json:"video_ext,omitempty"`
	Acodec         string  `json:"acodec,omitempty"`
	Vcodec         string  `json:"vcodec,omitempty"`
	FilesizeApprox float64 `json:"filesize_approx,omitempty"`
}

// SubtitleTrack is one variant of a subtitle or caption track.
type SubtitleTrack struct {
	URL  string `json:"url"`
	Ext  string `json:"ext,omitempty"`
	Name string `json:"name,omitempty"`
}

// IsChannelTab reports whether the record came from a channel tab
// extraction, which lists channels rather than videos.
func (r *Record) IsChannelTab() bool {
	return r.ExtractorKey == "YoutubeTab"
}

// IsPlaylist reports whether the record is playlist-shaped.
func (r *Record) IsPlaylist() bool {
	return r.Type == "playlist"
}

// ThumbnailURL picks the best available thumbnail: the direct field
// first, otherwise the last (largest) ladder entry.
func (r *Record) ThumbnailURL() string {
	if r.Thumbnail != "" {
		return r.Thumbnail
	}
	if len(r.Thumbnails) > 0 {
		return r.Thumbnails[len(r.Thumbnails)-1].URL
	}
	return ""
}

// FormatCandidates returns the record's formats, or the record itself as
// the single candidate when the extractor reported none.
func (r *Record) FormatCandidates() []Format {
	if len(r.Formats) > 0 {
		return r.Formats
	}
	return []Format{{
		FormatID:       r.FormatID,
		URL:            r.URL,
		Format:         r.Format,
		Protocol:       r.Protocol,
		Resolution:     r.Resolution,
		VideoExt:       r.VideoExt,
		Acodec:         r.Acodec,
		Vcodec:         r.Vcodec,
		FilesizeApprox: r.FilesizeApprox,
	}}
}

// ReleaseInfo returns the release year, preferring the explicit year
// over the upload date prefix. Zero means unknown.
func (r *Record) ReleaseInfo() int {
	if r.ReleaseYear > 0 {
		return r.ReleaseYear
	}
	if len(r.UploadDate) >= 4 {
		if year, err := strconv.Atoi(r.UploadDate[:4]); err == nil {
			return year
		}
	}
	return 0
}

// ReleasedISO returns the release instant in RFC 3339 form with
// millisecond precision. Records without any date information report the
// epoch, keeping ordering stable for clients that sort on it.
func (r *Record) ReleasedISO() string {
	const layout = "2006-01-02T15:04:05.000Z"
	if r.ReleaseTimestamp > 0 {
		return time.Unix(r.ReleaseTimestamp, 0).UTC().Format(layout)
	}
	if len(r.UploadDate) == 8 {
		if ts, err := time.Parse("20060102", r.UploadDate); err == nil {
			return ts.UTC().Format(layout)
		}
	}
	return time.Unix(0, 0).UTC().Format(layout)
}
