package pipeline

import (
	"lightbox/internal/logging"
)

// ReconcileResult lists the keys a Reconcile call cancelled and started.
type ReconcileResult struct {
	Cancelled []int
	Started   []int
}

// Reconcile diffs visible against in-flight work. Units for keys that are no
// longer visible are cancelled; visible keys without a unit get the next
// stage their item needs. Keys outside the item range are ignored. Start
// order follows the order of visible.
func (c *Coordinator) Reconcile(visible []int) ReconcileResult {
	keys := dedupe(visible)

	c.mu.Lock()
	defer c.mu.Unlock()

	wanted := make(map[int]struct{}, len(keys))
	for _, key := range keys {
		wanted[key] = struct{}{}
	}

	var result ReconcileResult
	inFlight := c.tracker.InFlight()
	for key, stage := range inFlight {
		if _, ok := wanted[key]; ok {
			continue
		}
		if unit, ok := c.tracker.Lookup(stage, key); ok && c.tracker.CancelAndRemove(stage, key) {
			result.Cancelled = append(result.Cancelled, key)
			c.logger.Debug("unit cancelled",
				logging.Int(logging.FieldItemKey, key),
				logging.String(logging.FieldStage, stage.String()),
				logging.String(logging.FieldCorrelationID, unit.ID()),
				logging.String(logging.FieldEventType, "unit_cancelled"),
			)
		}
	}

	for _, key := range keys {
		if _, busy := inFlight[key]; busy {
			continue
		}
		if c.startLocked(key) {
			result.Started = append(result.Started, key)
		}
	}
	c.visible = keys

	if len(result.Cancelled) > 0 || len(result.Started) > 0 {
		c.logger.Debug("reconciled visible set",
			logging.Int("visible", len(keys)),
			logging.Int("cancelled", len(result.Cancelled)),
			logging.Int("started", len(result.Started)),
			logging.String(logging.FieldEventType, "reconcile"),
		)
	}
	return result
}

// Suspend stops both stage queues from starting new units. Running units
// finish.
func (c *Coordinator) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setSuspendedLocked(true)
}

// Resume lets both stage queues start units again.
func (c *Coordinator) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setSuspendedLocked(false)
}

// InteractionBegan is called when the user starts scrolling.
func (c *Coordinator) InteractionBegan() {
	c.Suspend()
}

// InteractionEnded is called when scrolling stops: the settled visible set is
// reconciled before the queues resume, so stale units are dropped before
// they can start.
func (c *Coordinator) InteractionEnded(visible []int) ReconcileResult {
	result := c.Reconcile(visible)
	c.Resume()
	return result
}

func (c *Coordinator) setSuspendedLocked(suspended bool) {
	if c.suspended == suspended {
		return
	}
	c.suspended = suspended
	c.fetchQueue.SetSuspended(suspended)
	c.transformQueue.SetSuspended(suspended)
	event := "pipeline_resumed"
	if suspended {
		event = "pipeline_suspended"
	}
	c.logger.Debug(event, logging.String(logging.FieldEventType, event))
}

// startLocked starts the unit the item at key needs next, if any.
func (c *Coordinator) startLocked(key int) bool {
	item := c.store.at(key)
	if item == nil {
		return false
	}
	switch {
	case item.State == StateNew && item.Locator != "":
		locator := item.Locator
		return c.tracker.TryStart(StageFetch, key, func() *Unit {
			return c.newFetchUnit(key, locator)
		})
	case item.State == StateFetched && item.Failure == nil:
		return c.tracker.TryStart(StageTransform, key, func() *Unit {
			return c.newTransformUnit(key)
		})
	default:
		return false
	}
}

func dedupe(keys []int) []int {
	seen := make(map[int]struct{}, len(keys))
	out := make([]int, 0, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
