package assemble

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"tubio/internal/protocol"
	"tubio/internal/ytdlp"
)

// Subtitles merges manual and automatic tracks into one entry per
// language. Manual tracks win; languages covered only by automatic
// captions get a synthetic "Auto <name>" entry. Returns nil when
// subtitles are disabled in the user config.
func (a *Assembler) Subtitles(rec *ytdlp.Record) []protocol.Subtitle {
	if !a.cfg.SubtitlesEnabled() {
		return nil
	}

	var subs []protocol.Subtitle
	for _, lang := range sortedLanguages(rec.Subtitles) {
		track, ok := pickTrack(rec.Subtitles[lang])
		if !ok {
			continue
		}
		subs = append(subs, protocol.Subtitle{
			ID:   trackName(track, lang),
			URL:  track.URL,
			Lang: lang,
		})
	}
	for _, lang := range sortedLanguages(rec.AutomaticCaptions) {
		if _, manual := rec.Subtitles[lang]; manual {
			continue
		}
		track, ok := pickTrack(rec.AutomaticCaptions[lang])
		if !ok {
			continue
		}
		subs = append(subs, protocol.Subtitle{
			ID:   "Auto " + trackName(track, lang),
			URL:  track.URL,
			Lang: lang,
		})
	}
	return subs
}

// pickTrack prefers the srt variant, falling back to the first usable one.
func pickTrack(tracks []ytdlp.SubtitleTrack) (ytdlp.SubtitleTrack, bool) {
	for _, t := range tracks {
		if t.Ext == "srt" && t.URL != "" {
			return t, true
		}
	}
	for _, t := range tracks {
		if t.URL != "" {
			return t, true
		}
	}
	return ytdlp.SubtitleTrack{}, false
}

// trackName prefers the extractor-provided name, falling back to the
// language tag's English display name, then the raw tag.
func trackName(track ytdlp.SubtitleTrack, lang string) string {
	if track.Name != "" {
		return track.Name
	}
	if tag, err := language.Parse(lang); err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return name
		}
	}
	return strings.ToUpper(lang)
}

func sortedLanguages(tracks map[string][]ytdlp.SubtitleTrack) []string {
	if len(tracks) == 0 {
		return nil
	}
	langs := make([]string, 0, len(tracks))
	for lang := range tracks {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
