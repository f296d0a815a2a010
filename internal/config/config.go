package config

import (
	"os"
	"time"
)

// Config holds application configuration
type Config struct {
	ServerPort   string
	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	MigrationsPath string

	// Cloud mirror for progress/account sync. Leave CloudBaseURL empty to
	// run local-only.
	CloudBaseURL      string
	CloudTokenURL     string
	CloudClientID     string
	CloudClientSecret string

	// User session cookie signing
	SessionSecret   string
	SessionDuration time.Duration

	// Admin session lifetime, matching the mobile client's 8 hours
	AdminSessionDuration time.Duration

	// Email summaries via SES; disabled when SESFromEmail is empty
	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	Debug bool
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		ServerPort:           getEnv("PORT", "8080"),
		DatabaseType:         getEnv("DB_TYPE", "sqlite"),
		DatabasePath:         getEnv("DB_PATH", "./niyamtrack.db"),
		DatabaseURL:          getEnv("DB_URL", ""),
		MigrationsPath:       getEnv("MIGRATIONS_PATH", "./migrations"),
		CloudBaseURL:         getEnv("CLOUD_BASE_URL", ""),
		CloudTokenURL:        getEnv("CLOUD_TOKEN_URL", ""),
		CloudClientID:        getEnv("CLOUD_CLIENT_ID", ""),
		CloudClientSecret:    getEnv("CLOUD_CLIENT_SECRET", ""),
		SessionSecret:        getEnv("SESSION_SECRET", "niyamtrack-dev-secret"),
		SessionDuration:      24 * time.Hour,
		AdminSessionDuration: 8 * time.Hour,
		AWSRegion:            getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail:         getEnv("SES_FROM_EMAIL", ""),
		SESFromName:          getEnv("SES_FROM_NAME", "Niyam Tracker"),
		Debug:                getEnv("DEBUG", "") == "true",
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
