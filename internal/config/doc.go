// Package config loads, normalizes, and validates the TOML configuration
// shared by the daemon and CLI.
//
// Load resolves the config path (explicit flag, ~/.config/tubio/config.toml,
// or ./tubio.toml), applies defaults for any missing values, expands ~ in
// path fields, and validates the result. A missing file is not an error;
// defaults alone produce a runnable configuration.
package config
