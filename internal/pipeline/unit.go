package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"lightbox/internal/services"
)

// Stage identifies one phase of the pipeline.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageTransform Stage = "transform"
)

// String returns the stage name.
func (s Stage) String() string {
	return string(s)
}

// Unit is one cancellable execution of a stage against one item. The
// cancelled flag is set once and never reset; it is the only state shared
// between the coordinator and a queue worker without the coordinator lock.
type Unit struct {
	id        string
	stage     Stage
	key       int
	cancelled atomic.Bool
	body      func(ctx context.Context, u *Unit)
}

// NewUnit builds a unit whose body runs when the unit reaches the head of
// its stage queue.
func NewUnit(stage Stage, key int, body func(ctx context.Context, u *Unit)) *Unit {
	return &Unit{
		id:    uuid.NewString(),
		stage: stage,
		key:   key,
		body:  body,
	}
}

// ID returns the unit's correlation identifier.
func (u *Unit) ID() string { return u.id }

// Stage returns the stage the unit runs in.
func (u *Unit) Stage() Stage { return u.stage }

// Key returns the item key the unit targets.
func (u *Unit) Key() int { return u.key }

// Cancel marks the unit cancelled. Safe to call at any time, from any
// goroutine, any number of times.
func (u *Unit) Cancel() {
	u.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (u *Unit) Cancelled() bool {
	return u.cancelled.Load()
}

// Run executes the unit body with stage context attached. A unit cancelled
// before it reaches the head of its queue does nothing.
func (u *Unit) Run(ctx context.Context) {
	if u.Cancelled() || u.body == nil {
		return
	}
	ctx = services.WithItemKey(ctx, u.key)
	ctx = services.WithStage(ctx, u.stage.String())
	ctx = services.WithRequestID(ctx, u.id)
	u.body(ctx, u)
}
