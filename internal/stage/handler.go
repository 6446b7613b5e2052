package stage

import "context"

// Fetcher retrieves the raw bytes behind a locator. Calls block until the
// content is read or the request fails; the pipeline observes cancellation
// only before and after a call, never during it.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// Transformer derives a new artifact from a fetched one under the same
// blocking contract as Fetcher.
type Transformer interface {
	Transform(ctx context.Context, artifact []byte) ([]byte, error)
}

// HealthChecker is implemented by collaborators that can report readiness.
type HealthChecker interface {
	HealthCheck(ctx context.Context) Health
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, locator string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, locator string) ([]byte, error) {
	return f(ctx, locator)
}

// TransformerFunc adapts a function to the Transformer interface.
type TransformerFunc func(ctx context.Context, artifact []byte) ([]byte, error)

func (f TransformerFunc) Transform(ctx context.Context, artifact []byte) ([]byte, error) {
	return f(ctx, artifact)
}

// Check reports the health of collaborator. Collaborators without a
// HealthCheck method are assumed ready.
func Check(ctx context.Context, name string, collaborator any) Health {
	if collaborator == nil {
		return Unhealthy(name, "not configured")
	}
	checker, ok := collaborator.(HealthChecker)
	if !ok {
		return Healthy(name)
	}
	health := checker.HealthCheck(ctx)
	if health.Name == "" {
		health.Name = name
	}
	return health
}
