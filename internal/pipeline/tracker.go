package pipeline

// Tracker maps (stage, key) to the in-flight unit of work. An entry's
// presence is the mutual-exclusion mechanism for the item's fields.
//
// Tracker does no locking of its own; the Coordinator serializes every call.
type Tracker struct {
	entries map[Stage]map[int]*Unit
	queues  map[Stage]*Queue
}

// NewTracker builds a tracker that submits fetch and transform units to the
// given queues.
func NewTracker(fetch, transform *Queue) *Tracker {
	return &Tracker{
		entries: map[Stage]map[int]*Unit{
			StageFetch:     {},
			StageTransform: {},
		},
		queues: map[Stage]*Queue{
			StageFetch:     fetch,
			StageTransform: transform,
		},
	}
}

// TryStart records and enqueues a unit built by factory unless key already
// has a unit in any stage. It reports whether a unit was started.
func (t *Tracker) TryStart(stage Stage, key int, factory func() *Unit) bool {
	entries, ok := t.entries[stage]
	if !ok || factory == nil {
		return false
	}
	if _, busy := t.stageOf(key); busy {
		return false
	}
	unit := factory()
	if unit == nil {
		return false
	}
	entries[key] = unit
	if queue := t.queues[stage]; queue != nil {
		queue.Enqueue(unit)
	}
	return true
}

// Complete removes the entry for (stage, key). Removing a missing entry is a
// no-op.
func (t *Tracker) Complete(stage Stage, key int) {
	delete(t.entries[stage], key)
}

// Owns reports whether unit is still the recorded entry for its stage and
// key.
func (t *Tracker) Owns(unit *Unit) bool {
	if unit == nil {
		return false
	}
	current, ok := t.entries[unit.stage][unit.key]
	return ok && current == unit
}

// CancelAndRemove cancels and drops the entry for (stage, key). The unit may
// still be executing; it will observe the flag and discard its result. A new
// unit for the same key can start immediately.
func (t *Tracker) CancelAndRemove(stage Stage, key int) bool {
	unit, ok := t.entries[stage][key]
	if !ok {
		return false
	}
	unit.Cancel()
	delete(t.entries[stage], key)
	return true
}

// Lookup returns the in-flight unit for (stage, key).
func (t *Tracker) Lookup(stage Stage, key int) (*Unit, bool) {
	unit, ok := t.entries[stage][key]
	return unit, ok
}

// InFlight returns every tracked key with the stage that holds it.
func (t *Tracker) InFlight() map[int]Stage {
	out := make(map[int]Stage, t.Count(StageFetch)+t.Count(StageTransform))
	for stage, entries := range t.entries {
		for key := range entries {
			out[key] = stage
		}
	}
	return out
}

// Count returns the number of in-flight units for stage.
func (t *Tracker) Count(stage Stage) int {
	return len(t.entries[stage])
}

// CancelAll cancels and removes every entry and returns how many there were.
func (t *Tracker) CancelAll() int {
	cancelled := 0
	for _, entries := range t.entries {
		for key, unit := range entries {
			unit.Cancel()
			delete(entries, key)
			cancelled++
		}
	}
	return cancelled
}

func (t *Tracker) stageOf(key int) (Stage, bool) {
	for stage, entries := range t.entries {
		if _, ok := entries[key]; ok {
			return stage, true
		}
	}
	return "", false
}
