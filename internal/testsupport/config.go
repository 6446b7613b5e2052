package testsupport

import (
	"path/filepath"
	"testing"

	"lightbox/internal/config"
	"lightbox/internal/listing"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The listing points at an empty JSON file inside the temp directory and the
// viewport never pauses.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Source.Location = filepath.Join(base, "photos.json")
	cfgVal.Viewport.SettleMS = 0
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	WriteListing(t, cfgVal.Source.Location, nil)

	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithRecords rewrites the listing file with records.
func WithRecords(records ...listing.Record) ConfigOption {
	return func(b *configBuilder) {
		WriteListing(b.t, b.cfg.Source.Location, records)
	}
}

// WithSource points the config at location without creating it.
func WithSource(location string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Source.Location = location
	}
}

// WithViewport sets the simulated viewport window and scroll step.
func WithViewport(window, step int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Viewport.Window = window
		b.cfg.Viewport.Step = step
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
