package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lightbox/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("LIGHTBOX_SOURCE", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogs := filepath.Join(tempHome, ".local", "share", "lightbox", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.Source.Location != config.Default().Source.Location {
		t.Fatalf("unexpected source location: %q", cfg.Source.Location)
	}
	if !cfg.SourceIsRemote() {
		t.Fatal("expected default source to be remote")
	}
	if cfg.Transform.SepiaIntensity != 0.8 {
		t.Fatalf("expected default sepia intensity 0.8, got %v", cfg.Transform.SepiaIntensity)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.LogFile() != filepath.Join(wantLogs, "lightbox.log") {
		t.Fatalf("unexpected log file: %q", cfg.LogFile())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lightbox.toml")
	listPath := filepath.Join(tempDir, "photos.json")

	type payload struct {
		Source struct {
			Location string `toml:"location"`
			Format   string `toml:"format"`
		} `toml:"source"`
		Viewport struct {
			Window int `toml:"window"`
			Step   int `toml:"step"`
		} `toml:"viewport"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Source.Location = listPath
	custom.Source.Format = " JSON "
	custom.Viewport.Window = 3
	custom.Viewport.Step = 1
	custom.Logging.Format = "bogus"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}
	t.Setenv("LIGHTBOX_SOURCE", "")

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Source.Location != listPath {
		t.Fatalf("expected source from file, got %q", cfg.Source.Location)
	}
	if cfg.Source.Format != "json" {
		t.Fatalf("expected normalized format json, got %q", cfg.Source.Format)
	}
	if cfg.SourceIsRemote() {
		t.Fatal("expected local source")
	}
	if cfg.Viewport.Window != 3 || cfg.Viewport.Step != 1 {
		t.Fatalf("unexpected viewport: %+v", cfg.Viewport)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected unknown log format to fall back to console, got %q", cfg.Logging.Format)
	}
}

func TestEnvVarOverridesSourceLocation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LIGHTBOX_SOURCE", "https://example.com/photos.json")
	path := filepath.Join(t.TempDir(), "missing.toml")

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.Source.Location != "https://example.com/photos.json" {
		t.Fatalf("expected env source, got %q", cfg.Source.Location)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "sepia_intensity") {
		t.Fatalf("sample config missing transform section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.LogDir, "lightbox") {
		t.Fatalf("expected log dir to contain lightbox, got %q", cfg.Paths.LogDir)
	}
	if cfg.Viewport.Window != config.Default().Viewport.Window {
		t.Fatalf("sample viewport window drifted from defaults: %d", cfg.Viewport.Window)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty source", func(c *config.Config) { c.Source.Location = "" }},
		{"unknown format", func(c *config.Config) { c.Source.Format = "xml" }},
		{"watch remote", func(c *config.Config) { c.Source.Watch = true }},
		{"zero timeout", func(c *config.Config) { c.Fetch.TimeoutSeconds = 0 }},
		{"zero max bytes", func(c *config.Config) { c.Fetch.MaxBytes = 0 }},
		{"negative rate limit", func(c *config.Config) { c.Fetch.RateLimit = -1 }},
		{"intensity too high", func(c *config.Config) { c.Transform.SepiaIntensity = 1.5 }},
		{"negative max edge", func(c *config.Config) { c.Transform.MaxEdge = -1 }},
		{"zero window", func(c *config.Config) { c.Viewport.Window = 0 }},
		{"zero step", func(c *config.Config) { c.Viewport.Step = 0 }},
		{"negative settle", func(c *config.Config) { c.Viewport.SettleMS = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestOverrideSourceWinsAndRevalidates(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LIGHTBOX_SOURCE", "https://example.com/photos.json")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	dir := t.TempDir()
	t.Chdir(dir)
	if err := cfg.OverrideSource("photos.yaml"); err != nil {
		t.Fatalf("OverrideSource returned error: %v", err)
	}
	if cfg.Source.Location != filepath.Join(dir, "photos.yaml") {
		t.Fatalf("expected expanded local path, got %q", cfg.Source.Location)
	}

	if err := cfg.OverrideSource("  "); err == nil {
		t.Fatal("expected empty override to fail validation")
	}
}
