package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/josepatrial/studioapviagem-sub000/internal/flagx"
	"github.com/josepatrial/studioapviagem-sub000/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so intervals can be given either as strings like "30s" or
// as integer nanoseconds.
type jsonConfig struct {
	DatabasePath           string         `json:"database_path"`
	RemoteBaseURL          string         `json:"remote_base_url"`
	AuthBaseURL            string         `json:"auth_base_url"`
	HealthURL              string         `json:"health_url"`
	PendingRefreshInterval timex.Duration `json:"pending_refresh_interval"`
	LogFile                string         `json:"log_file"`
	S3Region               string         `json:"s3_region"`
	S3BaseEndpoint         string         `json:"s3_base_endpoint"`
	S3Bucket               string         `json:"s3_bucket"`
	S3AccessKey            string         `json:"s3_access_key"`
	S3SecretKey            string         `json:"s3_secret_key"`
}

// parseJSON overlays cfg with values from the file named by -c/-config.
// Absence of the flag means no JSON is loaded; a present but unreadable or
// malformed file panics (startup misconfiguration, nothing to recover).
func parseJSON(cfg *Config) {
	path := flagx.ConfigFileFlags()
	if path == "" {
		return
	}

	var jc jsonConfig

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RemoteBaseURL != "" {
		cfg.RemoteBaseURL = jc.RemoteBaseURL
	}
	if jc.AuthBaseURL != "" {
		cfg.AuthBaseURL = jc.AuthBaseURL
	}
	if jc.HealthURL != "" {
		cfg.HealthURL = jc.HealthURL
	}
	if jc.PendingRefreshInterval.Duration != 0 {
		cfg.PendingRefreshInterval = time.Duration(jc.PendingRefreshInterval.Duration)
	}
	if jc.LogFile != "" {
		cfg.LogFile = jc.LogFile
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3BaseEndpoint != "" {
		cfg.S3BaseEndpoint = jc.S3BaseEndpoint
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3AccessKey != "" {
		cfg.S3AccessKey = jc.S3AccessKey
	}
	if jc.S3SecretKey != "" {
		cfg.S3SecretKey = jc.S3SecretKey
	}
}
