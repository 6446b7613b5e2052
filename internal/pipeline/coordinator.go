package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"lightbox/internal/listing"
	"lightbox/internal/logging"
	"lightbox/internal/services"
	"lightbox/internal/stage"
)

// Lister supplies the ordered item records the pipeline is seeded with.
type Lister interface {
	List(ctx context.Context) ([]listing.Record, error)
}

// RowChangedFunc is invoked with the key of an item whose snapshot changed.
type RowChangedFunc func(key int)

// Coordinator drives items through the fetch and transform stages according
// to the visible set reported by the presentation layer.
type Coordinator struct {
	fetcher     stage.Fetcher
	transformer stage.Transformer
	logger      *slog.Logger

	fetchQueue     *Queue
	transformQueue *Queue
	notifyQueue    *Queue

	mu        sync.Mutex
	store     *Store
	tracker   *Tracker
	visible   []int
	suspended bool
	onRowChg  RowChangedFunc
}

// New constructs a coordinator around the given collaborators. Queues do not
// execute anything until Run is called.
func New(fetcher stage.Fetcher, transformer stage.Transformer, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Coordinator{
		fetcher:        fetcher,
		transformer:    transformer,
		logger:         logging.NewComponentLogger(logger, "pipeline"),
		fetchQueue:     NewQueue(StageFetch.String()),
		transformQueue: NewQueue(StageTransform.String()),
		notifyQueue:    NewQueue("notify"),
		store:          NewStore(),
	}
	c.tracker = NewTracker(c.fetchQueue, c.transformQueue)
	return c
}

// OnRowChanged registers the row-changed callback, replacing any previous
// one. The callback runs on the notification lane, never under the
// coordinator lock.
func (c *Coordinator) OnRowChanged(fn RowChangedFunc) {
	c.mu.Lock()
	c.onRowChg = fn
	c.mu.Unlock()
}

// Load seeds the item store from lister. Listing failures and empty listings
// are reported as services.ErrList and leave the store empty.
func (c *Coordinator) Load(ctx context.Context, lister Lister) error {
	if lister == nil {
		return services.Wrap(services.ErrList, "load", "list items", "no lister configured", nil)
	}
	records, err := lister.List(ctx)
	if err != nil {
		if !errors.Is(err, services.ErrList) {
			err = services.Wrap(services.ErrList, "load", "list items", "", err)
		}
		c.logger.Error("item listing failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "list_failed"),
			logging.String(logging.FieldErrorHint, "check source.location and network access"),
		)
		return err
	}
	if len(records) == 0 {
		return services.Wrap(services.ErrList, "load", "list items", "listing is empty", nil)
	}

	c.mu.Lock()
	err = c.store.LoadInitial(records)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	c.logger.Info("items loaded",
		logging.Int("items", len(records)),
		logging.String(logging.FieldEventType, "items_loaded"),
	)
	return nil
}

// Reload replaces the item set wholesale. Every in-flight unit is cancelled,
// the visible set is forgotten and every row of the new set is notified.
func (c *Coordinator) Reload(records []listing.Record) error {
	if len(records) == 0 {
		return services.Wrap(services.ErrList, "reload", "list items", "listing is empty", nil)
	}
	store := NewStore()
	if err := store.LoadInitial(records); err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	c.mu.Lock()
	cancelled := c.tracker.CancelAll()
	c.store = store
	c.visible = nil
	c.mu.Unlock()

	c.logger.Info("items reloaded",
		logging.Int("items", len(records)),
		logging.Int("cancelled", cancelled),
		logging.String(logging.FieldEventType, "items_reloaded"),
	)
	for key := range records {
		c.notify(key)
	}
	return nil
}

// Run executes the fetch, transform and notification lanes until ctx is
// done.
func (c *Coordinator) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, queue := range []*Queue{c.fetchQueue, c.transformQueue, c.notifyQueue} {
		group.Go(func() error {
			return queue.Run(groupCtx)
		})
	}
	return group.Wait()
}

// ItemCount returns the number of loaded items.
func (c *Coordinator) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Count()
}

// ItemAt returns a snapshot of the item at index, including the stage of any
// in-flight unit.
func (c *Coordinator) ItemAt(index int) (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(index)
}

// Items returns snapshots of every item in key order.
func (c *Coordinator) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, 0, c.store.Count())
	for i := range c.store.Count() {
		item, _ := c.snapshotLocked(i)
		out = append(out, item)
	}
	return out
}

func (c *Coordinator) snapshotLocked(index int) (Item, bool) {
	item, ok := c.store.Get(index)
	if !ok {
		return Item{}, false
	}
	if stage, busy := c.tracker.stageOf(index); busy {
		item.Pending = stage
	}
	return item, true
}
