package main

import (
	"os"
	"testing"

	"github.com/joho/godotenv"

	"github.com/jonathan/postman-lint/internal/config"
)

// TestMain loads .env like main does, then drops the overrides that would point
// tests at a real API or linter.
func TestMain(m *testing.M) {
	// Ignore the error if there is no .env (CI environment)
	_ = godotenv.Load()

	for _, key := range []string{config.EnvAPIURL, config.EnvSpectralCmd, config.EnvHTTPTimeout, config.EnvLintTimeout} {
		_ = os.Unsetenv(key)
	}

	os.Exit(m.Run())
}
