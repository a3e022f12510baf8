package resolve

import "regexp"

// Sort scope codes are opaque values defined by the upstream search
// protocol. They are carried as data, not derived.
var videoSortScopes = map[string]string{
	"Relevance":   "CAASAhAB",
	"Upload Date": "CAISAhAB",
	"View Count":  "CAMSAhAB",
	"Rating":      "CAESAhAB",
}

var channelSortScopes = map[string]string{
	"Relevance":   "CAASAhAC",
	"Upload Date": "CAISAhAC",
	"View Count":  "CAMSAhAC",
	"Rating":      "CAESAhAC",
}

// SortNames lists the sort buckets offered to clients, in display order.
var SortNames = []string{"Relevance", "Upload Date", "View Count", "Rating"}

// ReversedPrefix marks a sort value that requests descending pagination.
// It selects the same scope code; only the index range direction changes.
const ReversedPrefix = "Reversed"

// Pseudo-playlist tokens the extraction tool understands natively.
const (
	TokenFavorites     = ":ytfav"
	TokenWatchLater    = ":ytwatchlater"
	TokenSubscriptions = ":ytsubs"
	TokenHistory       = ":ythistory"
	TokenRecommended   = ":ytrec"
	TokenNotifications = ":ytnotif"

	// TokenSearch and TokenChannelSearch name the built-in search catalogs.
	TokenSearch        = ":ytsearch"
	TokenChannelSearch = ":ytsearch:channel"
)

var pseudoTokens = map[string]struct{}{
	TokenFavorites:     {},
	TokenWatchLater:    {},
	TokenSubscriptions: {},
	TokenHistory:       {},
	TokenRecommended:   {},
	TokenNotifications: {},
}

// IsPseudoToken reports whether id is a fixed pseudo-playlist token.
func IsPseudoToken(id string) bool {
	_, ok := pseudoTokens[id]
	return ok
}

// Anchored entity patterns, tried in this order after the token check.
var (
	channelHandlePattern = regexp.MustCompile(`^@[a-zA-Z0-9][a-zA-Z0-9._-]{1,28}[a-zA-Z0-9]$`)
	channelIDPattern     = regexp.MustCompile(`^UC[A-Za-z0-9_-]{22}$`)
	playlistIDPattern    = regexp.MustCompile(`^PL([0-9A-F]{16}|[A-Za-z0-9_-]{32})$`)
	videoIDPattern       = regexp.MustCompile(`^[A-Za-z0-9_-]{10}[AEIMQUYcgkosw048]$`)
)

// IsVideoID reports whether id has the shape of a single-video identifier.
func IsVideoID(id string) bool {
	return videoIDPattern.MatchString(id)
}

// IsChannelHandle reports whether id has the shape of a channel handle.
func IsChannelHandle(id string) bool {
	return channelHandlePattern.MatchString(id)
}

// IsPlaylistID reports whether id has the shape of a playlist identifier.
func IsPlaylistID(id string) bool {
	return playlistIDPattern.MatchString(id)
}

// Placeholders substituted into templated catalog identifiers.
const (
	TermPlaceholder = "{term}"
	SortPlaceholder = "{sort}"
)
