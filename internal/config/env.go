package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays cfg with environment variables, loading a local .env
// file first if one exists. Secrets (the S3 key pair) are expected to arrive
// this way rather than through the JSON file.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	set(&cfg.DatabasePath, "TRIPSYNC_DB_PATH")
	set(&cfg.RemoteBaseURL, "TRIPSYNC_REMOTE_URL")
	set(&cfg.AuthBaseURL, "TRIPSYNC_AUTH_URL")
	set(&cfg.HealthURL, "TRIPSYNC_HEALTH_URL")
	set(&cfg.LogFile, "TRIPSYNC_LOG_FILE")
	set(&cfg.S3Region, "TRIPSYNC_S3_REGION")
	set(&cfg.S3BaseEndpoint, "TRIPSYNC_S3_ENDPOINT")
	set(&cfg.S3Bucket, "TRIPSYNC_S3_BUCKET")
	set(&cfg.S3AccessKey, "TRIPSYNC_S3_ACCESS_KEY")
	set(&cfg.S3SecretKey, "TRIPSYNC_S3_SECRET_KEY")

	if v := os.Getenv("TRIPSYNC_PENDING_REFRESH"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PendingRefreshInterval = d
		}
	}
}
