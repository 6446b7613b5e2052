package main

import (
	"context"
	"log/slog"
	"time"

	"lightbox/internal/logging"
	"lightbox/internal/pipeline"
)

const idlePollInterval = 20 * time.Millisecond

// viewport simulates a table view scrolling through the item list: each
// scroll is an interaction, each stop a settle that reconciles the window of
// visible rows.
type viewport struct {
	coord  *pipeline.Coordinator
	window int
	step   int
	settle time.Duration
	logger *slog.Logger
}

func (v *viewport) visibleAt(top, count int) []int {
	end := min(top+v.window, count)
	keys := make([]int, 0, end-top)
	for key := top; key < end; key++ {
		keys = append(keys, key)
	}
	return keys
}

// scroll walks the window from the top of the list to the bottom, pausing for
// the settle delay at every stop, then waits for the last window to drain.
func (v *viewport) scroll(ctx context.Context) error {
	count := v.coord.ItemCount()
	if count == 0 {
		return nil
	}
	lastTop := max(0, count-v.window)
	for top := 0; ; top = min(top+v.step, lastTop) {
		v.coord.InteractionBegan()
		result := v.coord.InteractionEnded(v.visibleAt(top, count))
		v.logger.Debug("viewport settled",
			logging.Int("top", top),
			logging.Int("started", len(result.Started)),
			logging.Int("cancelled", len(result.Cancelled)),
			logging.String(logging.FieldEventType, "viewport_settled"),
		)
		if err := sleepContext(ctx, v.settle); err != nil {
			return err
		}
		if top == lastTop {
			break
		}
	}
	return v.waitIdle(ctx)
}

func (v *viewport) waitIdle(ctx context.Context) error {
	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()
	for !v.coord.Idle() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
