package fetch

import (
	"context"
	"strings"

	"lightbox/internal/services"
	"lightbox/internal/stage"
)

// Router dispatches http(s) locators to Remote and everything else to Local.
type Router struct {
	Remote stage.Fetcher
	Local  stage.Fetcher
}

// NewRouter wires the default HTTP and file fetchers.
func NewRouter(remote *HTTP, local *File) *Router {
	return &Router{Remote: remote, Local: local}
}

// Fetch implements stage.Fetcher.
func (r *Router) Fetch(ctx context.Context, locator string) ([]byte, error) {
	target := r.Local
	if isRemote(locator) {
		target = r.Remote
	}
	if target == nil {
		return nil, services.Wrap(services.ErrFetch, "fetch", "route", "no fetcher for "+locator, nil)
	}
	return target.Fetch(ctx, locator)
}

// HealthCheck reports ready only when both routes are ready.
func (r *Router) HealthCheck(ctx context.Context) stage.Health {
	remote := stage.Check(ctx, "http fetch", r.Remote)
	local := stage.Check(ctx, "file fetch", r.Local)
	switch {
	case !remote.Ready:
		return stage.Unhealthy("fetch", remote.Detail)
	case !local.Ready:
		return stage.Unhealthy("fetch", local.Detail)
	default:
		return stage.HealthyWithDetail("fetch", remote.Detail)
	}
}

func isRemote(locator string) bool {
	lower := strings.ToLower(strings.TrimSpace(locator))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
