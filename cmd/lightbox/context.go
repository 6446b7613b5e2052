package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"lightbox/internal/config"
	"lightbox/internal/fetch"
	"lightbox/internal/filter"
	"lightbox/internal/listing"
	"lightbox/internal/logging"
	"lightbox/internal/preflight"
)

type commandContext struct {
	configFlag   *string
	sourceFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, sourceFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		sourceFlag:   sourceFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if source := flagValue(c.sourceFlag); source != "" {
			if err := cfg.OverrideSource(source); err != nil {
				c.configErr = err
				return
			}
		}
		if level := flagValue(c.logLevelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) newLoader(cfg *config.Config) *listing.Loader {
	loader := listing.NewLoader(cfg.Source.Location, listing.Format(cfg.Source.Format), cfg.FetchTimeout())
	loader.UserAgent = cfg.Fetch.UserAgent
	return loader
}

func (c *commandContext) newCollaborators(cfg *config.Config) preflight.Collaborators {
	remote := fetch.NewHTTP(cfg.FetchTimeout(), cfg.Fetch.UserAgent, cfg.Fetch.MaxBytes, fetch.WithRateLimit(cfg.Fetch.RateLimit))
	local := fetch.NewFile(cfg.Fetch.MaxBytes)
	return preflight.Collaborators{
		Fetcher:     fetch.NewRouter(remote, local),
		Transformer: filter.NewSepia(cfg.Transform.SepiaIntensity, filter.WithMaxEdge(cfg.Transform.MaxEdge)),
	}
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
