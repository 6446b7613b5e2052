package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSource(); err != nil {
		return err
	}
	c.normalizeFetch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSource() error {
	if value, ok := os.LookupEnv(sourceLocationEnv); ok && strings.TrimSpace(value) != "" {
		c.Source.Location = value
	}
	c.Source.Format = strings.ToLower(strings.TrimSpace(c.Source.Format))
	return c.normalizeSourceLocation()
}

func (c *Config) normalizeSourceLocation() error {
	c.Source.Location = strings.TrimSpace(c.Source.Location)
	if c.Source.Location == "" || isRemote(c.Source.Location) {
		return nil
	}
	location, err := expandPath(c.Source.Location)
	if err != nil {
		return fmt.Errorf("source.location: %w", err)
	}
	c.Source.Location = location
	return nil
}

func (c *Config) normalizeFetch() {
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// OverrideSource replaces the listing location, taking precedence over the
// config file and environment, and re-validates the result.
func (c *Config) OverrideSource(location string) error {
	c.Source.Location = location
	if err := c.normalizeSourceLocation(); err != nil {
		return err
	}
	return c.Validate()
}
