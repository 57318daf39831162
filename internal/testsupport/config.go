// Package testsupport provides shared helpers for package tests: seeded
// configurations, source-tree builders, and zip archive builders.
package testsupport

import (
	"testing"

	"codeanon/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a validated config seeded with repository defaults.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithLevel sets the submission boundary level.
func WithLevel(level int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scan.SubmissionLevel = level
	}
}

// WithCompareSizes enables name+size deduplication.
func WithCompareSizes() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scan.CompareSizes = true
	}
}

// WithExclude replaces the exclusion substrings.
func WithExclude(subs ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scan.Exclude = subs
	}
}

// WithMaxExtractBytes overrides the archive extraction budget.
func WithMaxExtractBytes(n int64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scan.MaxExtractBytes = n
	}
}
