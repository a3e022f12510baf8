package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeYTDLP(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeServices()
	c.normalizeSessions()
	c.normalizeCrypto()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.Bind = strings.TrimSpace(c.Paths.Bind)
	if c.Paths.Bind == "" {
		c.Paths.Bind = defaultBind
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	if c.Server.ReadTimeoutSeconds <= 0 {
		c.Server.ReadTimeoutSeconds = defaultReadTimeoutSeconds
	}
	if c.Server.WriteTimeoutSeconds <= 0 {
		c.Server.WriteTimeoutSeconds = defaultWriteTimeoutSeconds
	}
}

func (c *Config) normalizeYTDLP() error {
	c.YTDLP.Binary = strings.TrimSpace(c.YTDLP.Binary)
	if c.YTDLP.Binary == "" {
		c.YTDLP.Binary = defaultYTDLPBinary
	}
	c.YTDLP.Extractors = strings.TrimSpace(c.YTDLP.Extractors)
	if c.YTDLP.Extractors == "" {
		if value, ok := os.LookupEnv("TUBIO_YTDLP_EXTRACTORS"); ok && strings.TrimSpace(value) != "" {
			c.YTDLP.Extractors = strings.TrimSpace(value)
		} else {
			c.YTDLP.Extractors = defaultYTDLPExtractors
		}
	}
	if c.YTDLP.TimeoutSeconds <= 0 {
		c.YTDLP.TimeoutSeconds = defaultYTDLPTimeoutSeconds
	}
	if strings.TrimSpace(c.YTDLP.TempDir) == "" {
		c.YTDLP.TempDir = os.TempDir()
		return nil
	}
	var err error
	if c.YTDLP.TempDir, err = expandPath(c.YTDLP.TempDir); err != nil {
		return fmt.Errorf("ytdlp.temp_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServices() {
	c.SponsorBlock.BaseURL = strings.TrimRight(strings.TrimSpace(c.SponsorBlock.BaseURL), "/")
	if c.SponsorBlock.BaseURL == "" {
		c.SponsorBlock.BaseURL = defaultSponsorBlockBaseURL
	}
	if c.SponsorBlock.RequestTimeout <= 0 {
		c.SponsorBlock.RequestTimeout = defaultServiceTimeout
	}
	c.DeArrow.BaseURL = strings.TrimRight(strings.TrimSpace(c.DeArrow.BaseURL), "/")
	if c.DeArrow.BaseURL == "" {
		c.DeArrow.BaseURL = defaultDeArrowBaseURL
	}
	c.DeArrow.ThumbnailBaseURL = strings.TrimRight(strings.TrimSpace(c.DeArrow.ThumbnailBaseURL), "/")
	if c.DeArrow.ThumbnailBaseURL == "" {
		c.DeArrow.ThumbnailBaseURL = defaultDeArrowThumbBaseURL
	}
	if c.DeArrow.RequestTimeout <= 0 {
		c.DeArrow.RequestTimeout = defaultServiceTimeout
	}
}

func (c *Config) normalizeSessions() {
	if c.Sessions.ExpiryDays <= 0 {
		c.Sessions.ExpiryDays = defaultSessionExpiryDays
	}
	if c.Sessions.SweepIntervalSeconds <= 0 {
		c.Sessions.SweepIntervalSeconds = defaultSweepIntervalSeconds
	}
	if c.Sessions.PBKDF2Iterations <= 0 {
		c.Sessions.PBKDF2Iterations = defaultPBKDF2Iterations
	}
}

func (c *Config) normalizeCrypto() {
	c.Crypto.Key = strings.TrimSpace(c.Crypto.Key)
	if c.Crypto.Key == "" {
		if value, ok := os.LookupEnv("TUBIO_ENCRYPTION_KEY"); ok {
			c.Crypto.Key = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
