// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"encoding/base64"
	"path/filepath"
	"testing"

	"tubio/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per
// test and a fixed encryption key, then applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.Bind = "127.0.0.1:0"
	cfg.YTDLP.TempDir = filepath.Join(base, "tmp")
	cfg.Crypto.Key = TestKey()

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithExpiryDays overrides the session expiry window.
func WithExpiryDays(days int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Sessions.ExpiryDays = days
	}
}

// WithIterations overrides the password hashing cost, letting tests
// avoid the full production-strength derivation.
func WithIterations(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Sessions.PBKDF2Iterations = n
	}
}

// TestKey returns a deterministic base64-encoded 32-byte key.
func TestKey() string {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return base64.StdEncoding.EncodeToString(key)
}
