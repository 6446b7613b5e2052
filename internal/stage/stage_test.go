package stage_test

import (
	"context"
	"testing"

	"lightbox/internal/stage"
)

type checkedFetcher struct {
	health stage.Health
}

func (checkedFetcher) Fetch(context.Context, string) ([]byte, error) { return nil, nil }

func (c checkedFetcher) HealthCheck(context.Context) stage.Health { return c.health }

func TestCheckUsesHealthChecker(t *testing.T) {
	got := stage.Check(context.Background(), "fetch", checkedFetcher{health: stage.Unhealthy("", "offline")})
	if got.Ready {
		t.Fatal("expected unhealthy result")
	}
	if got.Name != "fetch" || got.Detail != "offline" {
		t.Fatalf("unexpected health: %+v", got)
	}
}

func TestCheckDefaultsToHealthy(t *testing.T) {
	fn := stage.FetcherFunc(func(context.Context, string) ([]byte, error) { return []byte("x"), nil })
	if got := stage.Check(context.Background(), "fetch", fn); !got.Ready {
		t.Fatalf("expected healthy result, got %+v", got)
	}
	if got := stage.Check(context.Background(), "transform", nil); got.Ready {
		t.Fatalf("expected nil collaborator to be unhealthy, got %+v", got)
	}
}

func TestFuncAdapters(t *testing.T) {
	ctx := context.Background()
	tr := stage.TransformerFunc(func(_ context.Context, in []byte) ([]byte, error) {
		return append([]byte("sepia:"), in...), nil
	})
	out, err := tr.Transform(ctx, []byte("raw"))
	if err != nil || string(out) != "sepia:raw" {
		t.Fatalf("unexpected transform result %q %v", out, err)
	}
}
