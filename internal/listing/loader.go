package listing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"lightbox/internal/services"
	"lightbox/internal/stage"
)

const defaultMaxListingBytes = 4 << 20

// Loader reads a listing from a local file or an http(s) URL.
type Loader struct {
	Location  string
	Format    Format
	UserAgent string
	MaxBytes  int64
	Client    *http.Client
}

// NewLoader builds a loader for location. An empty format is detected from the
// location's extension.
func NewLoader(location string, format Format, timeout time.Duration) *Loader {
	if format == "" {
		format = DetectFormat(location)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Loader{
		Location: strings.TrimSpace(location),
		Format:   format,
		MaxBytes: defaultMaxListingBytes,
		Client:   &http.Client{Timeout: timeout},
	}
}

// List reads and parses the listing.
func (l *Loader) List(ctx context.Context) ([]Record, error) {
	data, err := l.read(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(data, l.Format)
}

// IsRemote reports whether the loader reads over HTTP.
func (l *Loader) IsRemote() bool {
	lower := strings.ToLower(l.Location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// HealthCheck verifies the listing source is reachable without parsing it.
func (l *Loader) HealthCheck(ctx context.Context) stage.Health {
	const name = "listing"
	if l.Location == "" {
		return stage.Unhealthy(name, "no source location configured")
	}
	if !l.IsRemote() {
		info, err := os.Stat(l.Location)
		if err != nil {
			return stage.Unhealthy(name, fmt.Sprintf("%s: %v", l.Location, err))
		}
		if info.IsDir() {
			return stage.Unhealthy(name, fmt.Sprintf("%s is a directory", l.Location))
		}
		return stage.HealthyWithDetail(name, l.Location)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, l.Location, nil)
	if err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	l.decorate(req)
	resp, err := l.client().Do(req)
	if err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return stage.Unhealthy(name, fmt.Sprintf("%s returned %s", l.Location, resp.Status))
	}
	return stage.HealthyWithDetail(name, l.Location)
}

func (l *Loader) read(ctx context.Context) ([]byte, error) {
	if l.Location == "" {
		return nil, services.Wrap(services.ErrList, "listing", "read", "no source location configured", nil)
	}
	if !l.IsRemote() {
		file, err := os.Open(l.Location)
		if err != nil {
			return nil, services.Wrap(services.ErrList, "listing", "read", l.Location, err)
		}
		defer file.Close()
		return l.readLimited(file)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.Location, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrList, "listing", "build request", l.Location, err)
	}
	l.decorate(req)
	resp, err := l.client().Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrList, "listing", "download", l.Location, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrList, "listing", "download", fmt.Sprintf("%s returned %s", l.Location, resp.Status), nil)
	}
	return l.readLimited(resp.Body)
}

func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	limit := l.MaxBytes
	if limit <= 0 {
		limit = defaultMaxListingBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, services.Wrap(services.ErrList, "listing", "read", l.Location, err)
	}
	if int64(len(data)) > limit {
		return nil, services.Wrap(services.ErrList, "listing", "read", fmt.Sprintf("listing exceeds %d bytes", limit), nil)
	}
	return data, nil
}

func (l *Loader) decorate(req *http.Request) {
	if l.UserAgent != "" {
		req.Header.Set("User-Agent", l.UserAgent)
	}
}

func (l *Loader) client() *http.Client {
	if l.Client != nil {
		return l.Client
	}
	return http.DefaultClient
}
