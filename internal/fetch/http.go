package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"lightbox/internal/services"
	"lightbox/internal/stage"
)

const defaultMaxBytes = 32 << 20

// HTTP fetches locators over http(s).
type HTTP struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	limiter   *rate.Limiter
}

// HTTPOption adjusts an HTTP fetcher.
type HTTPOption func(*HTTP)

// WithRateLimit caps outgoing requests to perSecond. Zero or less leaves the
// fetcher unlimited.
func WithRateLimit(perSecond float64) HTTPOption {
	return func(h *HTTP) {
		if perSecond > 0 {
			h.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewHTTP builds an HTTP fetcher with a per-request timeout.
func NewHTTP(timeout time.Duration, userAgent string, maxBytes int64, opts ...HTTPOption) *HTTP {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	h := &HTTP{
		client:    &http.Client{Timeout: timeout},
		userAgent: strings.TrimSpace(userAgent),
		maxBytes:  maxBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Fetch downloads locator and returns its body.
func (h *HTTP) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, services.Wrap(services.ErrFetch, "fetch", "rate limit", locator, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "fetch", "build request", locator, err)
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "fetch", "http get", locator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, services.Wrap(services.ErrFetch, "fetch", "http get", fmt.Sprintf("%s returned %s", locator, resp.Status), nil)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "fetch", "read body", locator, err)
	}
	if int64(len(data)) > h.maxBytes {
		return nil, services.Wrap(services.ErrFetch, "fetch", "read body", fmt.Sprintf("%s exceeds %d bytes", locator, h.maxBytes), nil)
	}
	return data, nil
}

// HealthCheck reports the fetcher's configuration; remote hosts are per item
// and are not probed.
func (h *HTTP) HealthCheck(context.Context) stage.Health {
	detail := fmt.Sprintf("timeout %s, limit %d bytes", h.client.Timeout, h.maxBytes)
	if h.limiter != nil {
		detail += fmt.Sprintf(", %.2f req/s", float64(h.limiter.Limit()))
	}
	return stage.HealthyWithDetail("http fetch", detail)
}
