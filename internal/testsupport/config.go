// Package testsupport provides shared constructors for tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"quadvoice/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithoutDataDir clears the data dir so the store runs memory-only.
func WithoutDataDir() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.DataDir = ""
	}
}

// WithAnthropic sets generation collaborator credentials on the test config.
func WithAnthropic(apiKey, baseURL, model string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Anthropic.APIKey = apiKey
		cfg.Anthropic.BaseURL = baseURL
		cfg.Anthropic.Model = model
	}
}
