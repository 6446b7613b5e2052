package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateTransform(); err != nil {
		return err
	}
	if err := c.validateViewport(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSource() error {
	if c.Source.Location == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigLocation
		}
		return fmt.Errorf("source.location is required. Set %s or edit %s (create with 'lightbox config init')", sourceLocationEnv, defaultPath)
	}
	switch c.Source.Format {
	case "", "json", "yaml", "plist":
	default:
		return fmt.Errorf("source.format: unsupported value %q (want json, yaml or plist)", c.Source.Format)
	}
	if c.Source.Watch && c.SourceIsRemote() {
		return errors.New("source.watch requires a local source.location")
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.TimeoutSeconds <= 0 {
		return errors.New("fetch.timeout must be positive")
	}
	if c.Fetch.MaxBytes <= 0 {
		return errors.New("fetch.max_bytes must be positive")
	}
	if c.Fetch.RateLimit < 0 {
		return errors.New("fetch.rate_limit must not be negative")
	}
	return nil
}

func (c *Config) validateTransform() error {
	if c.Transform.SepiaIntensity < 0 || c.Transform.SepiaIntensity > 1 {
		return errors.New("transform.sepia_intensity must be between 0 and 1")
	}
	if c.Transform.MaxEdge < 0 {
		return errors.New("transform.max_edge must not be negative")
	}
	return nil
}

func (c *Config) validateViewport() error {
	if c.Viewport.Window <= 0 {
		return errors.New("viewport.window must be positive")
	}
	if c.Viewport.Step <= 0 {
		return errors.New("viewport.step must be positive")
	}
	if c.Viewport.SettleMS < 0 {
		return errors.New("viewport.settle_ms must not be negative")
	}
	return nil
}
