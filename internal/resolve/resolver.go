// Package resolve turns ambiguous catalog and item identifiers into
// concrete lookup targets for the extraction tool. Resolution is pure
// and deterministic: the same config, identifier, and query always
// produce the same target.
package resolve

import (
	"net/url"
	"strings"

	"tubio/internal/protocol"
	"tubio/internal/usercfg"
)

// Query carries the request parameters that influence resolution.
type Query struct {
	Search      string
	Genre       string
	Skip        int
	IncludeLive bool
}

// Target is the resolver output. LookupSpec is a URL, a pseudo-token, or
// a literal search-results URL; it is consumed once by the extraction
// orchestrator and never persisted.
type Target struct {
	LookupSpec      string
	PlaylistAllowed bool
	Reversed        bool
}

// SortName returns the effective sort bucket with any reversal prefix
// stripped, defaulting to Relevance.
func (q Query) SortName() string {
	name := strings.TrimSpace(strings.TrimPrefix(q.Genre, ReversedPrefix))
	if name == "" {
		return "Relevance"
	}
	return name
}

// Reversed reports whether the query asked for descending pagination.
func (q Query) Reversed() bool {
	return strings.HasPrefix(q.Genre, ReversedPrefix)
}

type ruleInput struct {
	entry       *usercfg.CatalogEntry
	rawID       string
	subject     string
	search      string
	sortName    string
	includeLive bool
}

type rule struct {
	name  string
	apply func(in ruleInput) (Target, bool)
}

// Rules are tried strictly in order; the first match wins. An identifier
// matching two shapes resolves by this order, never by specificity.
var rules = []rule{
	{"video search mode", videoSearchMode},
	{"channel search mode", channelSearchMode},
	{"placeholder template", placeholderTemplate},
	{"pseudo token", pseudoToken},
	{"channel handle", channelHandle},
	{"channel id", channelID},
	{"playlist id", playlistID},
	{"video id", videoID},
	{"absolute url", absoluteURL},
}

// Resolve maps an identifier to a lookup target. The search text, when
// present, replaces the identifier as the match subject; catalog entries
// are still looked up by the raw identifier.
func Resolve(cfg *usercfg.Config, identifier string, q Query) Target {
	in := ruleInput{
		rawID:       identifier,
		subject:     strings.TrimSpace(identifier),
		search:      q.Search,
		sortName:    q.SortName(),
		includeLive: q.IncludeLive,
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		in.subject = s
	}
	if cfg != nil {
		in.entry = cfg.FindCatalog(identifier, protocol.IDPrefix)
	}

	for _, r := range rules {
		if target, ok := r.apply(in); ok {
			target.Reversed = q.Reversed()
			return target
		}
	}
	return Target{
		LookupSpec:      searchURL(in.subject, videoSortScopes[in.sortName]),
		PlaylistAllowed: true,
		Reversed:        q.Reversed(),
	}
}

func videoSearchMode(in ruleInput) (Target, bool) {
	if (in.entry != nil && in.entry.ChannelType == usercfg.ChannelTypeVideo) || in.rawID == TokenSearch {
		return Target{
			LookupSpec:      searchURL(in.subject, videoSortScopes[in.sortName]),
			PlaylistAllowed: true,
		}, true
	}
	return Target{}, false
}

func channelSearchMode(in ruleInput) (Target, bool) {
	if (in.entry != nil && in.entry.ChannelType == usercfg.ChannelTypeChannel) || in.rawID == TokenChannelSearch {
		return Target{
			LookupSpec:      searchURL(in.subject, channelSortScopes[in.sortName]),
			PlaylistAllowed: true,
		}, true
	}
	return Target{}, false
}

// placeholderTemplate substitutes {term} and {sort} into a templated
// catalog identifier. Substitution happens here exactly once; stored
// entries always keep the literal placeholders.
func placeholderTemplate(in ruleInput) (Target, bool) {
	if in.entry == nil {
		return Target{}, false
	}
	id := strings.TrimPrefix(in.entry.ID, protocol.IDPrefix)
	if !strings.Contains(id, TermPlaceholder) && !strings.Contains(id, SortPlaceholder) {
		return Target{}, false
	}
	spec := strings.ReplaceAll(id, TermPlaceholder, url.QueryEscape(in.search))
	spec = strings.ReplaceAll(spec, SortPlaceholder, sortIDFor(in.entry, in.sortName))
	return Target{LookupSpec: spec, PlaylistAllowed: true}, true
}

func sortIDFor(entry *usercfg.CatalogEntry, sortName string) string {
	for _, opt := range entry.SortOrder {
		if opt.Name == sortName {
			return opt.ID
		}
	}
	return ""
}

func pseudoToken(in ruleInput) (Target, bool) {
	if IsPseudoToken(in.subject) {
		return Target{LookupSpec: in.subject, PlaylistAllowed: true}, true
	}
	return Target{}, false
}

func channelHandle(in ruleInput) (Target, bool) {
	if !channelHandlePattern.MatchString(in.subject) {
		return Target{}, false
	}
	tab := "videos"
	if in.includeLive {
		tab = "live"
	}
	return Target{
		LookupSpec:      "https://www.youtube.com/" + in.subject + "/" + tab,
		PlaylistAllowed: true,
	}, true
}

func channelID(in ruleInput) (Target, bool) {
	if !channelIDPattern.MatchString(in.subject) {
		return Target{}, false
	}
	tab := "videos"
	if in.includeLive {
		tab = "live"
	}
	return Target{
		LookupSpec:      "https://www.youtube.com/channel/" + in.subject + "/" + tab,
		PlaylistAllowed: true,
	}, true
}

func playlistID(in ruleInput) (Target, bool) {
	if !playlistIDPattern.MatchString(in.subject) {
		return Target{}, false
	}
	return Target{
		LookupSpec:      "https://www.youtube.com/playlist?list=" + in.subject,
		PlaylistAllowed: true,
	}, true
}

func videoID(in ruleInput) (Target, bool) {
	if !videoIDPattern.MatchString(in.subject) {
		return Target{}, false
	}
	return Target{LookupSpec: "https://www.youtube.com/watch?v=" + in.subject}, true
}

func absoluteURL(in ruleInput) (Target, bool) {
	u, err := url.Parse(in.subject)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return Target{}, false
	}
	return Target{LookupSpec: in.subject, PlaylistAllowed: true}, true
}

func searchURL(term, scope string) string {
	if scope == "" {
		scope = videoSortScopes["Relevance"]
	}
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(term) + "&sp=" + scope
}
