package preflight

import (
	"context"
	"path/filepath"

	"lightbox/internal/config"
	"lightbox/internal/stage"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Collaborators bundles the stage collaborators whose health is reported.
type Collaborators struct {
	Fetcher     stage.Fetcher
	Transformer stage.Transformer
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, collab Collaborators) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Log directory (only when file logging is enabled)
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	results = append(results, CheckSource(ctx, cfg))

	// Watching needs a readable parent directory for fsnotify.
	if cfg.Source.Watch && !cfg.SourceIsRemote() {
		results = append(results, CheckDirectoryReadable("Watch directory", filepath.Dir(cfg.Source.Location)))
	}

	results = append(results,
		CheckCollaborator(ctx, "Fetch", collab.Fetcher),
		CheckCollaborator(ctx, "Transform", collab.Transformer),
	)
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// Failures returns the results that did not pass.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
