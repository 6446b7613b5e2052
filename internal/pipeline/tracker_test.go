package pipeline_test

import (
	"context"
	"testing"

	"lightbox/internal/pipeline"
)

func noopUnit(stage pipeline.Stage, key int) func() *pipeline.Unit {
	return func() *pipeline.Unit {
		return pipeline.NewUnit(stage, key, func(context.Context, *pipeline.Unit) {})
	}
}

func TestTrackerAtMostOnePerKey(t *testing.T) {
	fetchQ := pipeline.NewQueue("fetch")
	transformQ := pipeline.NewQueue("transform")
	tracker := pipeline.NewTracker(fetchQ, transformQ)

	if !tracker.TryStart(pipeline.StageFetch, 1, noopUnit(pipeline.StageFetch, 1)) {
		t.Fatal("expected first fetch to start")
	}
	if tracker.TryStart(pipeline.StageFetch, 1, noopUnit(pipeline.StageFetch, 1)) {
		t.Fatal("expected duplicate fetch to be refused")
	}
	if tracker.TryStart(pipeline.StageTransform, 1, noopUnit(pipeline.StageTransform, 1)) {
		t.Fatal("expected transform to be refused while fetch is in flight")
	}
	if fetchQ.Len() != 1 || transformQ.Len() != 0 {
		t.Fatalf("unexpected queue depths fetch=%d transform=%d", fetchQ.Len(), transformQ.Len())
	}

	calls := 0
	tracker.TryStart(pipeline.StageFetch, 1, func() *pipeline.Unit {
		calls++
		return nil
	})
	if calls != 0 {
		t.Fatal("factory must not run for a busy key")
	}
}

func TestTrackerCancelAndRemoveUnblocksKey(t *testing.T) {
	tracker := pipeline.NewTracker(pipeline.NewQueue("fetch"), pipeline.NewQueue("transform"))
	tracker.TryStart(pipeline.StageFetch, 3, noopUnit(pipeline.StageFetch, 3))
	first, ok := tracker.Lookup(pipeline.StageFetch, 3)
	if !ok {
		t.Fatal("expected entry for key 3")
	}

	if !tracker.CancelAndRemove(pipeline.StageFetch, 3) {
		t.Fatal("expected cancel to find the entry")
	}
	if !first.Cancelled() {
		t.Fatal("expected unit to be cancelled")
	}
	if tracker.Owns(first) {
		t.Fatal("cancelled unit must not own the entry")
	}
	if tracker.CancelAndRemove(pipeline.StageFetch, 3) {
		t.Fatal("second cancel should be a no-op")
	}

	if !tracker.TryStart(pipeline.StageFetch, 3, noopUnit(pipeline.StageFetch, 3)) {
		t.Fatal("expected a fresh unit to start after cancel")
	}
	second, _ := tracker.Lookup(pipeline.StageFetch, 3)
	if second == first || !tracker.Owns(second) {
		t.Fatal("expected the new unit to own the entry")
	}
}

func TestTrackerCompleteIsIdempotent(t *testing.T) {
	tracker := pipeline.NewTracker(pipeline.NewQueue("fetch"), pipeline.NewQueue("transform"))
	tracker.TryStart(pipeline.StageTransform, 2, noopUnit(pipeline.StageTransform, 2))
	tracker.Complete(pipeline.StageTransform, 2)
	tracker.Complete(pipeline.StageTransform, 2)
	tracker.Complete(pipeline.StageFetch, 9)
	if len(tracker.InFlight()) != 0 {
		t.Fatalf("expected empty tracker, got %v", tracker.InFlight())
	}
}

func TestTrackerCancelAll(t *testing.T) {
	tracker := pipeline.NewTracker(pipeline.NewQueue("fetch"), pipeline.NewQueue("transform"))
	tracker.TryStart(pipeline.StageFetch, 0, noopUnit(pipeline.StageFetch, 0))
	tracker.TryStart(pipeline.StageTransform, 1, noopUnit(pipeline.StageTransform, 1))
	units := []*pipeline.Unit{}
	for key, stage := range tracker.InFlight() {
		unit, _ := tracker.Lookup(stage, key)
		units = append(units, unit)
	}

	if got := tracker.CancelAll(); got != 2 {
		t.Fatalf("expected 2 cancelled, got %d", got)
	}
	for _, unit := range units {
		if !unit.Cancelled() {
			t.Fatalf("unit %s not cancelled", unit.ID())
		}
	}
	if tracker.Count(pipeline.StageFetch)+tracker.Count(pipeline.StageTransform) != 0 {
		t.Fatal("expected tracker to be empty")
	}
}

func TestTrackerCancelAfterCompleteLeavesNewUnitAlone(t *testing.T) {
	tracker := pipeline.NewTracker(pipeline.NewQueue("fetch"), pipeline.NewQueue("transform"))
	tracker.TryStart(pipeline.StageFetch, 4, noopUnit(pipeline.StageFetch, 4))
	done, _ := tracker.Lookup(pipeline.StageFetch, 4)
	tracker.Complete(pipeline.StageFetch, 4)

	if tracker.CancelAndRemove(pipeline.StageFetch, 4) {
		t.Fatal("cancel after complete must find nothing")
	}
	if !tracker.TryStart(pipeline.StageFetch, 4, noopUnit(pipeline.StageFetch, 4)) {
		t.Fatal("expected a new unit to start after complete")
	}
	next, _ := tracker.Lookup(pipeline.StageFetch, 4)

	done.Cancel()
	if !done.Cancelled() || tracker.Owns(done) {
		t.Fatal("completed unit must be cancelled and unowned")
	}
	if next.Cancelled() || !tracker.Owns(next) {
		t.Fatal("cancelling a completed unit must not touch its successor")
	}
}
