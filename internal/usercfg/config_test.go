package usercfg_test

import (
	"net/url"
	"testing"

	"tubio/internal/usercfg"
)

func TestDecodeEscapedToken(t *testing.T) {
	raw := url.QueryEscape(`{"catalogs":[{"id":"yt_id:@veritasium","name":"Veritasium","channelType":"auto"}],"search":false,"markWatchedOnLoad":true}`)

	cfg, err := usercfg.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(cfg.Catalogs) != 1 {
		t.Fatalf("expected one catalog, got %d", len(cfg.Catalogs))
	}
	if cfg.Catalogs[0].ChannelType != usercfg.ChannelTypeAuto {
		t.Fatalf("unexpected channel type: %q", cfg.Catalogs[0].ChannelType)
	}
	if cfg.SearchEnabled() {
		t.Fatal("search should be disabled")
	}
	if !cfg.MarkWatchedOnLoad {
		t.Fatal("markWatchedOnLoad should be set")
	}
	if !cfg.SubtitlesEnabled() {
		t.Fatal("subtitles default to enabled")
	}
}

func TestDecodeKeepsLiteralPlus(t *testing.T) {
	raw := url.PathEscape(`{"catalogs":[{"id":"https://www.youtube.com/results?search_query=a+b","name":"Pasted"}]}`)

	cfg, err := usercfg.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := cfg.Catalogs[0].ID; got != "https://www.youtube.com/results?search_query=a+b" {
		t.Fatalf("plus sign must survive decoding, got %q", got)
	}
}

func TestDecodeUnescapedTokenStillParses(t *testing.T) {
	cfg, err := usercfg.Decode(`{"showBrokenLinks":true}`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !cfg.ShowBrokenLinks {
		t.Fatal("showBrokenLinks should be set")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "{not json"} {
		if _, err := usercfg.Decode(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestFindCatalogMatchesWithAndWithoutPrefix(t *testing.T) {
	cfg := &usercfg.Config{Catalogs: []usercfg.CatalogEntry{
		{ID: "yt_id:PLabc", Name: "Prefixed"},
		{ID: ":ytsubs", Name: "Bare"},
	}}
	if entry := cfg.FindCatalog("PLabc", "yt_id:"); entry == nil || entry.Name != "Prefixed" {
		t.Fatalf("expected prefixed entry, got %+v", entry)
	}
	if entry := cfg.FindCatalog(":ytsubs", "yt_id:"); entry == nil || entry.Name != "Bare" {
		t.Fatalf("expected bare entry, got %+v", entry)
	}
	if entry := cfg.FindCatalog(":ythistory", "yt_id:"); entry != nil {
		t.Fatalf("expected nil for unknown id, got %+v", entry)
	}
}

func TestAuthBlobRoundTrip(t *testing.T) {
	cc, err := usercfg.NewCryptoContext(testKey())
	if err != nil {
		t.Fatalf("NewCryptoContext: %v", err)
	}
	sealed, err := cc.Encrypt(`{"auth":"cookie-data"}`)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	cfg := &usercfg.Config{Encrypted: sealed}

	auth, ok := cfg.AuthBlob(cc)
	if !ok {
		t.Fatal("expected auth blob")
	}
	if auth != "cookie-data" {
		t.Fatalf("unexpected auth: %q", auth)
	}
}

func TestAuthBlobDegradesToAnonymous(t *testing.T) {
	cc, err := usercfg.NewCryptoContext(testKey())
	if err != nil {
		t.Fatalf("NewCryptoContext: %v", err)
	}
	cases := []*usercfg.Config{
		{},
		{Encrypted: "corrupt:token:value:zz"},
		{Encrypted: mustEncrypt(t, cc, `not json`)},
		{Encrypted: mustEncrypt(t, cc, `{"auth":""}`)},
	}
	for i, cfg := range cases {
		if _, ok := cfg.AuthBlob(cc); ok {
			t.Fatalf("case %d: expected no credential", i)
		}
	}
}

func mustEncrypt(t *testing.T, cc *usercfg.CryptoContext, plaintext string) string {
	t.Helper()
	sealed, err := cc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	return sealed
}
