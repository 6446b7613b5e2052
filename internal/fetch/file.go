package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"lightbox/internal/services"
)

const lockRetryDelay = 25 * time.Millisecond

// File reads locators from the local filesystem. It takes a shared advisory
// lock for the duration of the read so a writer holding an exclusive lock
// never hands out a half-written image.
type File struct {
	maxBytes int64
}

// NewFile builds a file fetcher.
func NewFile(maxBytes int64) *File {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &File{maxBytes: maxBytes}
}

// Fetch reads the file named by locator, which may be a plain path or a
// file:// URL.
func (f *File) Fetch(ctx context.Context, locator string) ([]byte, error) {
	path, err := filePath(locator)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "fetch", "parse locator", locator, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "fetch", "stat", path, err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrFetch, "fetch", "stat", path+" is a directory", nil)
	}
	if info.Size() > f.maxBytes {
		return nil, services.Wrap(services.ErrFetch, "fetch", "stat", fmt.Sprintf("%s exceeds %d bytes", path, f.maxBytes), nil)
	}

	lock := flock.New(path, flock.SetFlag(os.O_RDONLY))
	locked, err := lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "fetch", "lock", path, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrFetch, "fetch", "lock", path+" is locked by a writer", nil)
	}
	defer lock.Unlock()

	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "fetch", "open", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, f.maxBytes+1))
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "fetch", "read", path, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, services.Wrap(services.ErrFetch, "fetch", "read", fmt.Sprintf("%s exceeds %d bytes", path, f.maxBytes), nil)
	}
	return data, nil
}

func filePath(locator string) (string, error) {
	trimmed := strings.TrimSpace(locator)
	if !strings.HasPrefix(strings.ToLower(trimmed), "file://") {
		return trimmed, nil
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", err
	}
	if parsed.Host != "" && parsed.Host != "localhost" {
		return "", fmt.Errorf("file locator host %q is not local", parsed.Host)
	}
	return parsed.Path, nil
}
