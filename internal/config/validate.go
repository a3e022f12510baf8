package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCrypto(); err != nil {
		return err
	}
	if err := c.validateSessions(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if _, _, err := net.SplitHostPort(c.Paths.Bind); err != nil {
		return fmt.Errorf("paths.bind %q is not a host:port address: %w", c.Paths.Bind, err)
	}
	return nil
}

func (c *Config) validateCrypto() error {
	if c.Crypto.Key == "" {
		return nil
	}
	decoded, err := base64.StdEncoding.DecodeString(c.Crypto.Key)
	if err != nil {
		return fmt.Errorf("crypto.key must be base64: %w", err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("crypto.key must decode to 32 bytes, got %d", len(decoded))
	}
	return nil
}

func (c *Config) validateSessions() error {
	if c.Sessions.PBKDF2Iterations < 1000 {
		return errors.New("sessions.pbkdf2_iterations must be at least 1000")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
