package pipeline

import (
	"context"
	"errors"
	"time"

	"lightbox/internal/logging"
	"lightbox/internal/services"
)

func (c *Coordinator) newFetchUnit(key int, locator string) *Unit {
	return NewUnit(StageFetch, key, func(ctx context.Context, u *Unit) {
		logger := logging.WithContext(ctx, c.logger)
		logger.Debug("fetch started",
			logging.String("locator", locator),
			logging.String(logging.FieldEventType, "unit_start"),
		)
		started := time.Now()
		payload, err := c.fetcher.Fetch(ctx, locator)
		if u.Cancelled() || ctx.Err() != nil {
			logger.Debug("fetch discarded after cancel", logging.String(logging.FieldEventType, "unit_cancelled"))
			c.release(u)
			return
		}
		if err == nil && len(payload) == 0 {
			err = services.Wrap(services.ErrFetch, "fetch", "read payload", "empty payload for "+locator, nil)
		}
		if err != nil && !errors.Is(err, services.ErrFetch) {
			err = services.Wrap(services.ErrFetch, "fetch", "retrieve", locator, err)
		}
		c.finish(ctx, u, payload, err, time.Since(started))
	})
}

func (c *Coordinator) newTransformUnit(key int) *Unit {
	return NewUnit(StageTransform, key, func(ctx context.Context, u *Unit) {
		logger := logging.WithContext(ctx, c.logger)
		artifact, ok := c.transformInput(u)
		if !ok {
			logger.Debug("transform skipped; item no longer fetched", logging.String(logging.FieldEventType, "unit_cancelled"))
			return
		}
		logger.Debug("transform started",
			logging.Int("bytes", len(artifact)),
			logging.String(logging.FieldEventType, "unit_start"),
		)
		started := time.Now()
		output, err := c.transformer.Transform(ctx, artifact)
		if u.Cancelled() || ctx.Err() != nil {
			logger.Debug("transform discarded after cancel", logging.String(logging.FieldEventType, "unit_cancelled"))
			c.release(u)
			return
		}
		if err == nil && len(output) == 0 {
			err = services.Wrap(services.ErrTransform, "transform", "encode", "empty output", nil)
		}
		if err != nil && !errors.Is(err, services.ErrTransform) {
			err = services.Wrap(services.ErrTransform, "transform", "apply", "", err)
		}
		c.finish(ctx, u, output, err, time.Since(started))
	})
}

// transformInput reads the fetched artifact for u. An item that is no longer
// exactly Fetched releases the tracker entry without a notification.
func (c *Coordinator) transformInput(u *Unit) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if u.Cancelled() || !c.tracker.Owns(u) {
		return nil, false
	}
	item := c.store.at(u.key)
	if item == nil || item.State != StateFetched || item.Failure != nil {
		c.tracker.Complete(u.stage, u.key)
		return nil, false
	}
	return item.Artifact, true
}

// release drops u's tracker entry, if it still holds one, without touching
// the item. A unit interrupted by shutdown leaves its item as it found it.
func (c *Coordinator) release(u *Unit) {
	c.mu.Lock()
	if c.tracker.Owns(u) {
		c.tracker.Complete(u.stage, u.key)
	}
	c.mu.Unlock()
}

// finish commits a unit's result. The commit happens only while u still owns
// its tracker entry and has not been cancelled, so a result that races a
// cancel is dropped and notifies nobody.
func (c *Coordinator) finish(ctx context.Context, u *Unit, artifact []byte, err error, elapsed time.Duration) {
	logger := logging.WithContext(ctx, c.logger)

	c.mu.Lock()
	if u.Cancelled() || !c.tracker.Owns(u) {
		c.mu.Unlock()
		logger.Debug("result dropped after cancel", logging.String(logging.FieldEventType, "unit_cancelled"))
		return
	}
	item := c.store.at(u.key)
	if item == nil {
		c.tracker.Complete(u.stage, u.key)
		c.mu.Unlock()
		return
	}
	switch u.stage {
	case StageFetch:
		if err != nil {
			item.State = StateFailed
			item.Artifact = nil
			item.Failure = err
		} else {
			item.State = StateFetched
			item.Artifact = artifact
			item.Failure = nil
		}
	case StageTransform:
		if err != nil {
			item.Failure = err
		} else {
			item.State = StateTransformed
			item.Artifact = artifact
		}
	}
	name := item.Name
	c.tracker.Complete(u.stage, u.key)
	c.mu.Unlock()

	switch {
	case err != nil && u.stage == StageFetch:
		logger.Warn("fetch failed; item marked failed",
			logging.String("item", name),
			logging.Error(err),
			logging.String(logging.FieldEventType, "fetch_failed"),
			logging.String(logging.FieldErrorHint, "check the item locator and network access"),
		)
	case err != nil:
		logger.Warn("transform failed; keeping fetched image",
			logging.String("item", name),
			logging.Error(err),
			logging.String(logging.FieldEventType, "transform_failed"),
			logging.String(logging.FieldErrorHint, "the fetched payload may not be a supported image"),
		)
	default:
		logger.Info("unit complete",
			logging.String("item", name),
			logging.Int("bytes", len(artifact)),
			logging.Duration("elapsed", elapsed),
			logging.String(logging.FieldEventType, "unit_complete"),
		)
	}
	c.notify(u.key)
}

// notify queues a row-changed callback on the notification lane.
func (c *Coordinator) notify(key int) {
	c.notifyQueue.Enqueue(notification{coordinator: c, key: key})
}

type notification struct {
	coordinator *Coordinator
	key         int
}

func (n notification) Cancelled() bool { return false }

func (n notification) Run(context.Context) {
	n.coordinator.mu.Lock()
	fn := n.coordinator.onRowChg
	n.coordinator.mu.Unlock()
	if fn != nil {
		fn(n.key)
	}
}
