package listing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"lightbox/internal/logging"
)

// DefaultWatchDebounce collapses the burst of events editors emit per save.
const DefaultWatchDebounce = 200 * time.Millisecond

// Watch calls onChange whenever the file at path is written, created, or
// renamed into place, until ctx is done. The parent directory is watched so
// atomic replace-by-rename saves are observed.
func Watch(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, onChange func()) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	absolute, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve watch path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(absolute)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(absolute), err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absolute {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("listing file changed",
				logging.String("op", event.Op.String()),
				logging.String("path", event.Name),
			)
			if debounce <= 0 {
				onChange()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("listing watcher error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "listing_watch_error"),
			)
		}
	}
}
