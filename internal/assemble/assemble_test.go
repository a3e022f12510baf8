package assemble_test

import (
	"strings"
	"testing"

	"tubio/internal/assemble"
	"tubio/internal/protocol"
	"tubio/internal/segments"
	"tubio/internal/services/dearrow"
	"tubio/internal/usercfg"
	"tubio/internal/ytdlp"
)

func newAssembler(cfg *usercfg.Config) *assemble.Assembler {
	return assemble.New(cfg, "https://tubio.example", "stremio://", "manifest-url")
}

func videoRecord() *ytdlp.Record {
	return &ytdlp.Record{
		ID:          "dQw4w9WgXcQ",
		Title:       "A Video",
		Description: "About things",
		Duration:    754,
		UploadDate:  "20231114",
		WebpageURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		UploaderID:  "@someChannel",
		UploaderURL: "https://www.youtube.com/@someChannel",
		Formats: []ytdlp.Format{
			{FormatID: "sb0", URL: "https://cdn/story", Format: "storyboard", Acodec: "none", Vcodec: "none"},
			{FormatID: "140", URL: "https://cdn/audio", Format: "audio only", Resolution: "audio only", Acodec: "mp4a", Vcodec: "none"},
			{FormatID: "18", URL: "https://cdn/360", Format: "360p", Resolution: "640x360", Protocol: "https", VideoExt: "mp4", Acodec: "mp4a", Vcodec: "avc1", FilesizeApprox: 1000},
			{FormatID: "22", URL: "https://cdn/720", Format: "720p", Resolution: "1280x720", Protocol: "m3u8_native", VideoExt: "mp4", Acodec: "mp4a", Vcodec: "avc1"},
		},
	}
}

func TestStreamsFilterAndOrder(t *testing.T) {
	a := newAssembler(&usercfg.Config{})
	streams := a.Streams(videoRecord(), nil, nil)

	var formatStreams []protocol.StreamDescriptor
	for _, s := range streams {
		if strings.HasPrefix(s.Name, "YT-DLP Player") {
			formatStreams = append(formatStreams, s)
		}
	}
	if len(formatStreams) != 2 {
		t.Fatalf("expected 2 renderable formats, got %d: %+v", len(formatStreams), formatStreams)
	}
	if formatStreams[0].Name != "YT-DLP Player 1280x720" {
		t.Fatalf("highest quality first, got %q", formatStreams[0].Name)
	}
	if formatStreams[0].BehaviorHints == nil || !formatStreams[0].BehaviorHints.NotWebReady {
		t.Fatal("hls format is not web ready")
	}
	if formatStreams[1].BehaviorHints.NotWebReady {
		t.Fatal("progressive https mp4 is web ready")
	}
}

func TestStreamsShowBrokenLinksKeepsEverything(t *testing.T) {
	a := newAssembler(&usercfg.Config{ShowBrokenLinks: true})
	streams := a.Streams(videoRecord(), nil, nil)

	var count int
	for _, s := range streams {
		if strings.HasPrefix(s.Name, "YT-DLP Player") {
			count++
		}
	}
	if count != 4 {
		t.Fatalf("expected all 4 formats, got %d", count)
	}
}

func TestStreamsRewriteOnlyIndexedFormats(t *testing.T) {
	a := newAssembler(&usercfg.Config{})
	ranges := []segments.Range{{Start: 10, End: 20}, {Start: 40, End: 60}}
	streams := a.Streams(videoRecord(), nil, ranges)

	var hls, progressive *protocol.StreamDescriptor
	for i := range streams {
		switch streams[i].Name {
		case "YT-DLP Player 1280x720":
			hls = &streams[i]
		case "YT-DLP Player 640x360":
			progressive = &streams[i]
		}
	}
	if hls == nil || progressive == nil {
		t.Fatalf("missing expected streams: %+v", streams)
	}
	if !strings.HasPrefix(hls.URL, "https://tubio.example/stream/") {
		t.Fatalf("hls stream must route through rewrite endpoint: %q", hls.URL)
	}
	if !strings.Contains(hls.URL, "ranges=") || !strings.Contains(hls.URL, "10") || !strings.Contains(hls.URL, "60") {
		t.Fatalf("rewrite url must carry both ranges: %q", hls.URL)
	}
	if progressive.URL != "https://cdn/360" {
		t.Fatalf("progressive format must be untouched: %q", progressive.URL)
	}
}

func TestStreamsAuxiliaryEntries(t *testing.T) {
	a := newAssembler(&usercfg.Config{})
	streams := a.Streams(videoRecord(), nil, nil)

	names := make(map[string]protocol.StreamDescriptor)
	for _, s := range streams {
		names[s.Name] = s
	}
	if s, ok := names["Stremio Player"]; !ok || s.YtID != "dQw4w9WgXcQ" {
		t.Fatalf("missing built-in player entry: %+v", s)
	}
	if s, ok := names["External Player"]; !ok || s.ExternalURL == "" {
		t.Fatalf("missing external player entry: %+v", s)
	}
	if s, ok := names["YT-DLP Channel"]; !ok || !strings.Contains(s.ExternalURL, "manifest-url") {
		t.Fatalf("channel catalog deep link must embed manifest url: %+v", s)
	}
	if _, ok := names["External Channel"]; !ok {
		t.Fatal("missing external channel entry")
	}
}

func TestStreamsChannelRecordSkipsPlayerEntries(t *testing.T) {
	rec := &ytdlp.Record{Type: "playlist", ID: "@someChannel", UploaderID: "@someChannel"}
	a := newAssembler(&usercfg.Config{})
	for _, s := range a.Streams(rec, nil, nil) {
		if s.Name == "Stremio Player" || s.Name == "External Player" {
			t.Fatalf("player entries must not appear for channels: %+v", s)
		}
	}
}

func TestSubtitlesMerge(t *testing.T) {
	rec := &ytdlp.Record{
		Subtitles: map[string][]ytdlp.SubtitleTrack{
			"en": {
				{URL: "https://subs/en.vtt", Ext: "vtt", Name: "English"},
				{URL: "https://subs/en.srt", Ext: "srt", Name: "English"},
			},
		},
		AutomaticCaptions: map[string][]ytdlp.SubtitleTrack{
			"en": {{URL: "https://subs/auto-en.srt", Ext: "srt", Name: "English"}},
			"fr": {{URL: "https://subs/auto-fr.vtt", Ext: "vtt"}},
		},
	}
	a := newAssembler(&usercfg.Config{})
	subs := a.Subtitles(rec)

	if len(subs) != 2 {
		t.Fatalf("expected one manual + one auto entry, got %+v", subs)
	}
	if subs[0].Lang != "en" || subs[0].URL != "https://subs/en.srt" || subs[0].ID != "English" {
		t.Fatalf("manual srt variant must win: %+v", subs[0])
	}
	if subs[1].Lang != "fr" || subs[1].ID != "Auto French" {
		t.Fatalf("auto-only language gets synthetic named entry: %+v", subs[1])
	}
}

func TestSubtitlesDisabled(t *testing.T) {
	off := false
	rec := &ytdlp.Record{Subtitles: map[string][]ytdlp.SubtitleTrack{
		"en": {{URL: "https://subs/en.srt", Ext: "srt"}},
	}}
	a := newAssembler(&usercfg.Config{Subtitles: &off})
	if subs := a.Subtitles(rec); subs != nil {
		t.Fatalf("expected no subtitles, got %+v", subs)
	}
}

func TestMetaDetailShape(t *testing.T) {
	a := newAssembler(&usercfg.Config{})
	meta := a.MetaDetail(videoRecord(), "yt_id:dQw4w9WgXcQ", "movie", nil, nil, "")

	if meta.ID != "yt_id:dQw4w9WgXcQ" || meta.Name != "A Video" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	if meta.Runtime != "12 min" {
		t.Fatalf("unexpected runtime: %q", meta.Runtime)
	}
	if meta.Released != "2023-11-14T00:00:00.000Z" {
		t.Fatalf("unexpected released: %q", meta.Released)
	}
	if len(meta.Videos) != 1 {
		t.Fatalf("expected one video entry, got %d", len(meta.Videos))
	}
	video := meta.Videos[0]
	if video.ID != "yt_id:dQw4w9WgXcQ:1:1" || video.Season != 1 || video.Episode != 1 {
		t.Fatalf("unexpected video entry: %+v", video)
	}
	if meta.BehaviorHints == nil || meta.BehaviorHints.DefaultVideoID != video.ID {
		t.Fatalf("default video id must match: %+v", meta.BehaviorHints)
	}
	if meta.PosterShape != "landscape" {
		t.Fatalf("single videos are landscape: %q", meta.PosterShape)
	}
}

func TestMetaDetailBrandingOverride(t *testing.T) {
	branding := &dearrow.Branding{
		Titles:     []dearrow.Title{{Title: "Honest Title", Votes: 10}},
		Thumbnails: []dearrow.Thumbnail{{Timestamp: 42}},
	}
	a := newAssembler(&usercfg.Config{DeArrow: true})

	meta := a.MetaDetail(videoRecord(), "yt_id:dQw4w9WgXcQ", "movie", nil, branding, "https://thumbs/generated.jpg")
	if meta.Name != "Honest Title" {
		t.Fatalf("title override expected: %q", meta.Name)
	}
	if meta.Poster != "https://thumbs/generated.jpg" {
		t.Fatalf("thumbnail override expected: %q", meta.Poster)
	}

	channelRec := videoRecord()
	channelRec.Type = "playlist"
	meta = a.MetaDetail(channelRec, "yt_id:@someChannel", "channel", nil, branding, "https://thumbs/generated.jpg")
	if meta.Name != "A Video" {
		t.Fatalf("channels keep extractor title: %q", meta.Name)
	}
	if meta.PosterShape != "square" {
		t.Fatalf("channels are square: %q", meta.PosterShape)
	}
}

func TestCatalogMetasPlaylistEntries(t *testing.T) {
	rec := &ytdlp.Record{
		Type:             "playlist",
		WebpageURLDomain: "youtube.com",
		Entries: []ytdlp.Record{
			{ID: "abc123def45", Title: "First", UploadDate: "20240101"},
			{ID: "", URL: "xyz987uvw60", Title: "Second"},
			{Title: "No Key At All"},
		},
	}
	metas := assemble.CatalogMetas(rec, "yt_id:PLsomething")
	if len(metas) != 2 {
		t.Fatalf("keyless entries are dropped, got %+v", metas)
	}
	if metas[0].ID != "yt_id:abc123def45" || metas[0].Type != "movie" {
		t.Fatalf("unexpected first meta: %+v", metas[0])
	}
	if metas[1].ID != "yt_id:xyz987uvw60" {
		t.Fatalf("url fallback key expected: %+v", metas[1])
	}
	if metas[0].ReleaseInfo != 2024 {
		t.Fatalf("unexpected release info: %d", metas[0].ReleaseInfo)
	}
}

func TestCatalogMetasChannelTab(t *testing.T) {
	rec := &ytdlp.Record{
		ExtractorKey:     "YoutubeTab",
		WebpageURLDomain: "youtube.com",
		Title:            "Some Channel",
		UploaderID:       "@someChannel",
	}
	metas := assemble.CatalogMetas(rec, "yt_id:@someChannel")
	if len(metas) != 1 {
		t.Fatalf("expected single channel item, got %+v", metas)
	}
	if metas[0].ID != "yt_id:@someChannel" || metas[0].Type != "channel" || metas[0].PosterShape != "square" {
		t.Fatalf("unexpected channel meta: %+v", metas[0])
	}
}

func TestCatalogMetasForeignDomainKeepsRequestedID(t *testing.T) {
	rec := &ytdlp.Record{
		WebpageURLDomain: "vimeo.com",
		ID:               "12345",
		Title:            "Elsewhere",
	}
	metas := assemble.CatalogMetas(rec, "yt_id:https://vimeo.com/12345")
	if len(metas) != 1 || metas[0].ID != "yt_id:https://vimeo.com/12345" {
		t.Fatalf("foreign single records keep the requested id: %+v", metas)
	}
}
