package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"lightbox/internal/config"
	"lightbox/internal/listing"
	"lightbox/internal/stage"
)

const sourceCheckTimeout = 5 * time.Second

// CheckSource verifies that the configured listing is reachable. Remote
// sources get a HEAD request; local sources must be readable files.
func CheckSource(ctx context.Context, cfg *config.Config) Result {
	const name = "Listing source"

	location := cfg.Source.Location
	if location == "" {
		return Result{Name: name, Detail: "missing location"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, sourceCheckTimeout)
	defer cancel()

	loader := listing.NewLoader(location, listing.Format(cfg.Source.Format), sourceCheckTimeout)
	loader.UserAgent = cfg.Fetch.UserAgent
	health := loader.HealthCheck(checkCtx)
	if !health.Ready {
		if checkCtx.Err() != nil {
			return Result{Name: name, Detail: summarizeError(checkCtx.Err())}
		}
		return Result{Name: name, Detail: health.Detail}
	}
	return Result{Name: name, Passed: true, Detail: health.Detail}
}

// CheckCollaborator converts a collaborator's health report into a Result.
func CheckCollaborator(ctx context.Context, name string, collaborator any) Result {
	health := stage.Check(ctx, name, collaborator)
	detail := health.Detail
	if detail == "" && health.Ready {
		detail = "ready"
	}
	return Result{Name: name, Passed: health.Ready, Detail: detail}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckDirectoryReadable verifies that the directory exists and can be listed.
func CheckDirectoryReadable(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// summarizeError produces a human-readable summary for reachability failures.
func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (source unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (source unreachable)"
	}
	return err.Error()
}
