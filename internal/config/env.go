package config

import (
	"os"
	"time"
)

// Environment variables read by the CLI.
const (
	EnvAPIKey      = "POSTMAN_API_KEY"
	EnvAPIURL      = "POSTMAN_API_URL"
	EnvHTTPTimeout = "POSTMAN_HTTP_TIMEOUT"
	EnvSpectralCmd = "SPECTRAL_CMD"
	EnvLintTimeout = "SPECTRAL_TIMEOUT"
	EnvNoColor     = "NO_COLOR"
)

// APIKeyFromEnv returns the Postman API key, or a ConfigError when it is unset.
func APIKeyFromEnv() (string, error) {
	key := os.Getenv(EnvAPIKey)
	if key == "" {
		return "", &ConfigError{Message: EnvAPIKey + " environment variable is not set"}
	}
	return key, nil
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// NoColorFromEnv reports whether NO_COLOR is present and not empty.
func NoColorFromEnv() bool {
	return os.Getenv(EnvNoColor) != ""
}
