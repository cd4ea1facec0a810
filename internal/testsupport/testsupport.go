// Package testsupport provides helpers shared across package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"slidemovie/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputRoot = filepath.Join(base, "out")
	cfg.Paths.LogDir = ""
	cfg.TTS.APIKey = "test"
	cfg.Audio.SilenceSec = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSilence sets the leading silence duration on the test config.
func WithSilence(seconds float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Audio.SilenceSec = seconds
	}
}

// WithWorkers sets the narration worker count on the test config.
func WithWorkers(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.TTS.Workers = n
	}
}

// WriteFile creates path with the given contents, creating parent
// directories as needed.
func WriteFile(t testing.TB, path, contents string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SourceDir creates a temp source directory holding a project script
// named <name>.md with the given contents.
func SourceDir(t testing.TB, name, script string) string {
	t.Helper()

	dir := t.TempDir()
	WriteFile(t, filepath.Join(dir, name+".md"), script)
	return dir
}
