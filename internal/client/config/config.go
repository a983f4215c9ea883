package config

import "time"

// Config holds runtime settings for the userkeeper CLI.
//
// Fields:
//   - ServerURL: base URL of the REST endpoint, without the API prefix.
//   - APIPrefix: path prefix the user routes are mounted under.
//   - RequestTimeout: per-request HTTP timeout.
//   - Debug: log at debug level.
type Config struct {
	ServerURL      string
	APIPrefix      string
	RequestTimeout time.Duration
	Debug          bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.APIPrefix = "/api/v1"
	c.RequestTimeout = 10 * time.Second
	c.Debug = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
