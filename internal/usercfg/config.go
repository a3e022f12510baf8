package usercfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ChannelType controls how a catalog entry's identifier is interpreted.
type ChannelType string

const (
	// ChannelTypeAuto lets the resolver classify the identifier itself.
	ChannelTypeAuto ChannelType = "auto"
	// ChannelTypeVideo forces a video search on the identifier text.
	ChannelTypeVideo ChannelType = "video"
	// ChannelTypeChannel forces a channel search on the identifier text.
	ChannelTypeChannel ChannelType = "channel"
)

// SortOption names one sort id a templated catalog entry understands.
type SortOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CatalogEntry is one user-defined catalog. The identifier may embed the
// literal placeholders {term} and {sort}; substitution happens exactly once,
// at resolution time, never when the entry is stored.
type CatalogEntry struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        string       `json:"type,omitempty"`
	ChannelType ChannelType  `json:"channelType,omitempty"`
	SortOrder   []SortOption `json:"sortOrder,omitempty"`
}

// Config is the per-installation user configuration carried by a config
// token or a session record. It is rebuilt at the start of every request
// and never mutated in place; updates produce a new token or record.
type Config struct {
	// Encrypted is the opaque auth payload produced by CryptoContext.
	// It stays opaque until the extraction orchestrator needs it.
	Encrypted         string         `json:"encrypted,omitempty"`
	Catalogs          []CatalogEntry `json:"catalogs,omitempty"`
	MarkWatchedOnLoad bool           `json:"markWatchedOnLoad,omitempty"`
	ShowBrokenLinks   bool           `json:"showBrokenLinks,omitempty"`
	Search            *bool          `json:"search,omitempty"`
	Subtitles         *bool          `json:"subtitles,omitempty"`
	SponsorCategories []string       `json:"sponsorblock,omitempty"`
	DeArrow           bool           `json:"dearrow,omitempty"`
}

// SearchEnabled reports whether the search catalogs are exposed.
// Absent means enabled.
func (c *Config) SearchEnabled() bool {
	return c.Search == nil || *c.Search
}

// SubtitlesEnabled reports whether subtitle tracks are attached to streams.
// Absent means enabled.
func (c *Config) SubtitlesEnabled() bool {
	return c.Subtitles == nil || *c.Subtitles
}

// FindCatalog returns the entry whose id matches the identifier, with or
// without the protocol prefix.
func (c *Config) FindCatalog(id, prefix string) *CatalogEntry {
	for i := range c.Catalogs {
		if c.Catalogs[i].ID == id || c.Catalogs[i].ID == prefix+id {
			return &c.Catalogs[i]
		}
	}
	return nil
}

// Decode parses a URL-transported config token. The raw value is an escaped
// JSON object carried in a path segment, so path unescaping applies: a
// literal "+" in a catalog identifier stays a "+". Decryption of the
// embedded auth payload is deferred to AuthBlob so most request paths
// never touch the secret.
func Decode(raw string) (*Config, error) {
	unescaped, err := url.PathUnescape(raw)
	if err != nil {
		// Some clients pass the token unescaped.
		unescaped = raw
	}
	unescaped = strings.TrimSpace(unescaped)
	if unescaped == "" {
		return nil, errors.New("empty config token")
	}
	var cfg Config
	if err := json.Unmarshal([]byte(unescaped), &cfg); err != nil {
		return nil, fmt.Errorf("parse config token: %w", err)
	}
	return &cfg, nil
}

// Encode serializes the config back to token form (unescaped JSON; callers
// escape when embedding in a URL).
func (c *Config) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config token: %w", err)
	}
	return string(data), nil
}

// authPayload is the plaintext structure inside Config.Encrypted.
type authPayload struct {
	Auth string `json:"auth"`
}

// AuthBlob decrypts the embedded auth payload and returns the cookie text.
// Any failure means "no credential available": the request proceeds
// unauthenticated rather than failing.
func (c *Config) AuthBlob(cc *CryptoContext) (string, bool) {
	if c == nil || cc == nil || strings.TrimSpace(c.Encrypted) == "" {
		return "", false
	}
	plaintext, err := cc.Decrypt(c.Encrypted)
	if err != nil {
		return "", false
	}
	var payload authPayload
	if err := json.Unmarshal([]byte(plaintext), &payload); err != nil {
		return "", false
	}
	if strings.TrimSpace(payload.Auth) == "" {
		return "", false
	}
	return payload.Auth, true
}

// DefaultCatalogs returns the catalogs offered when the user configured none.
func DefaultCatalogs() []CatalogEntry {
	return []CatalogEntry{
		{ID: ":ytrec", Name: "Discover", ChannelType: ChannelTypeAuto},
		{ID: ":ytsubs", Name: "Subscriptions", ChannelType: ChannelTypeAuto},
		{ID: ":ytwatchlater", Name: "Watch Later", ChannelType: ChannelTypeAuto},
		{ID: ":ythistory", Name: "History", ChannelType: ChannelTypeAuto},
	}
}
