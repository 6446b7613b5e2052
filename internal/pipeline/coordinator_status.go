package pipeline

import "slices"

// Stats summarizes the pipeline for status displays.
type Stats struct {
	Items             int
	ByState           map[State]int
	TransformFailures int
	Fetching          int
	Transforming      int
	FetchQueued       int
	TransformQueued   int
	Suspended         bool
}

// Stats returns a consistent snapshot of item and queue counters.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := Stats{
		Items:           c.store.Count(),
		ByState:         make(map[State]int, 4),
		Fetching:        c.tracker.Count(StageFetch),
		Transforming:    c.tracker.Count(StageTransform),
		FetchQueued:     c.fetchQueue.Len(),
		TransformQueued: c.transformQueue.Len(),
		Suspended:       c.suspended,
	}
	for _, item := range c.store.items {
		stats.ByState[item.State]++
		if item.State == StateFetched && item.Failure != nil {
			stats.TransformFailures++
		}
	}
	return stats
}

// Visible returns the visible set from the most recent Reconcile.
func (c *Coordinator) Visible() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.visible)
}

// InFlight returns the keys that currently hold a unit, with their stage.
func (c *Coordinator) InFlight() map[int]Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.InFlight()
}

// Idle reports whether no unit is tracked and every lane is drained.
func (c *Coordinator) Idle() bool {
	c.mu.Lock()
	tracked := c.tracker.Count(StageFetch) + c.tracker.Count(StageTransform)
	c.mu.Unlock()
	if tracked > 0 {
		return false
	}
	for _, queue := range []*Queue{c.fetchQueue, c.transformQueue, c.notifyQueue} {
		if queue.Len() > 0 || queue.Active() {
			return false
		}
	}
	return true
}
