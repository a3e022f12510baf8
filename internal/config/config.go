package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	Bind    string `toml:"bind"`
}

// Server contains settings for the public HTTP surface.
type Server struct {
	// BaseURL is the externally visible address used when the service
	// builds links back to itself (segment-rewrite URLs, catalog deep
	// links). Empty means derive from the incoming request.
	BaseURL             string `toml:"base_url"`
	ReadTimeoutSeconds  int    `toml:"read_timeout"`
	WriteTimeoutSeconds int    `toml:"write_timeout"`
}

// YTDLP contains settings for the external extraction tool.
type YTDLP struct {
	Binary         string `toml:"binary"`
	Extractors     string `toml:"extractors"`
	TimeoutSeconds int    `toml:"timeout"`
	TempDir        string `toml:"temp_dir"`
}

// SponsorBlock contains configuration for the segment categorization service.
type SponsorBlock struct {
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// DeArrow contains configuration for the crowd-sourced metadata service.
type DeArrow struct {
	BaseURL          string `toml:"base_url"`
	ThumbnailBaseURL string `toml:"thumbnail_base_url"`
	RequestTimeout   int    `toml:"request_timeout"`
}

// Sessions contains configuration for the server-side session store.
type Sessions struct {
	ExpiryDays           int `toml:"expiry_days"`
	SweepIntervalSeconds int `toml:"sweep_interval"`
	PBKDF2Iterations     int `toml:"pbkdf2_iterations"`
}

// Crypto contains the process-wide key protecting config tokens at rest.
type Crypto struct {
	// Key is the base64-encoded 32-byte key. Empty means a random key is
	// generated at startup, which invalidates existing tokens on restart.
	Key string `toml:"key"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for tubio.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and HTTP bind address
//   - Server: public base URL and HTTP timeouts
//   - YTDLP: extraction tool binary and invocation settings
//   - SponsorBlock: segment categorization service endpoint
//   - DeArrow: title/thumbnail override service endpoints
//   - Sessions: expiry window, sweep interval, password hashing cost
//   - Crypto: process key for config-token encryption
//   - Logging: log format and level
type Config struct {
	Paths        Paths        `toml:"paths"`
	Server       Server       `toml:"server"`
	YTDLP        YTDLP        `toml:"ytdlp"`
	SponsorBlock SponsorBlock `toml:"sponsorblock"`
	DeArrow      DeArrow      `toml:"dearrow"`
	Sessions     Sessions     `toml:"sessions"`
	Crypto       Crypto       `toml:"crypto"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tubio/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/tubio/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tubio.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.YTDLP.TempDir) != "" {
		if err := os.MkdirAll(c.YTDLP.TempDir, 0o700); err != nil {
			return fmt.Errorf("create temp directory %q: %w", c.YTDLP.TempDir, err)
		}
	}
	return nil
}

// SessionDBPath returns the location of the session database.
func (c *Config) SessionDBPath() string {
	return filepath.Join(c.Paths.DataDir, "sessions.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
