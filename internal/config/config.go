// Package config holds runtime settings for the trip-logging client and the
// layered loading of those settings: defaults, then a JSON file, then
// environment variables, then command-line flags (later sources win).
package config

import "time"

// Config holds runtime settings for the sync client.
type Config struct {
	// DatabasePath is the path of the local SQLite database file.
	DatabasePath string

	// RemoteBaseURL is the base URL of the remote store's REST API.
	RemoteBaseURL string

	// AuthBaseURL is the base URL of the auth endpoint; defaults to
	// RemoteBaseURL when empty.
	AuthBaseURL string

	// HealthURL is probed to decide online/offline; defaults to
	// RemoteBaseURL + "/healthz" when empty.
	HealthURL string

	// PendingRefreshInterval is how often the published pending count is
	// recomputed from local storage.
	PendingRefreshInterval time.Duration

	// LogFile, when non-empty, sends logs to a rotated file instead of
	// stderr.
	LogFile string

	// S3 settings of the attachment bucket.
	S3Region       string
	S3BaseEndpoint string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "trips.db"
	c.RemoteBaseURL = "http://127.0.0.1:8080"
	c.PendingRefreshInterval = 30 * time.Second
	c.S3Region = "us-east-1"
	c.S3Bucket = "trip-attachments"
}

// Load constructs a Config, applies defaults, then overlays values from a
// JSON file (if given), the environment, and command-line flags, in that
// order.
func Load() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseEnv(cfg)
	parseFlags(cfg)

	if cfg.AuthBaseURL == "" {
		cfg.AuthBaseURL = cfg.RemoteBaseURL
	}
	if cfg.HealthURL == "" {
		cfg.HealthURL = cfg.RemoteBaseURL + "/healthz"
	}
	return cfg
}
