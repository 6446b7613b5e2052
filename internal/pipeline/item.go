package pipeline

import (
	"errors"
	"strings"

	"lightbox/internal/listing"
)

// State is the persistent lifecycle state of an item. In-progress phases are
// not stored; they are derived from tracker membership.
type State string

const (
	StateNew         State = "new"
	StateFetched     State = "fetched"
	StateTransformed State = "transformed"
	StateFailed      State = "failed"
)

// String returns the lowercase state name.
func (s State) String() string {
	return string(s)
}

// Item is a snapshot of one row of the pipeline.
type Item struct {
	Key     int
	Name    string
	Locator string
	State   State
	// Artifact holds the payload of the most recent completed stage. It is
	// shared with the pipeline and must not be modified.
	Artifact []byte
	// Failure is set when the item is Failed (wraps services.ErrFetch) or when
	// a transform failed on a Fetched item (wraps services.ErrTransform).
	Failure error
	// Pending names the stage currently holding a unit for this item, if any.
	Pending Stage
}

// HasLocator reports whether the item can ever be fetched.
func (i Item) HasLocator() bool {
	return strings.TrimSpace(i.Locator) != ""
}

// InProgress reports whether a unit of work is queued or running for the item.
func (i Item) InProgress() bool {
	return i.Pending != ""
}

// Phase describes the item for display, including derived in-progress phases.
func (i Item) Phase() string {
	switch i.Pending {
	case StageFetch:
		return "fetching"
	case StageTransform:
		return "transforming"
	}
	return i.State.String()
}

var errStoreLoaded = errors.New("item store already loaded")

// Store holds the item collection. Membership is fixed after LoadInitial;
// field writes are serialized by the Coordinator, so Store itself does no
// locking.
type Store struct {
	items  []*Item
	loaded bool
}

// NewStore returns an empty, unloaded store.
func NewStore() *Store {
	return &Store{}
}

// LoadInitial populates the store once, assigning every record the New state
// and its position as key.
func (s *Store) LoadInitial(records []listing.Record) error {
	if s.loaded {
		return errStoreLoaded
	}
	s.items = make([]*Item, len(records))
	for i, rec := range records {
		s.items[i] = &Item{
			Key:     i,
			Name:    rec.Name,
			Locator: strings.TrimSpace(rec.Locator),
			State:   StateNew,
		}
	}
	s.loaded = true
	return nil
}

// Loaded reports whether LoadInitial has run.
func (s *Store) Loaded() bool {
	return s.loaded
}

// Count returns the number of items.
func (s *Store) Count() int {
	return len(s.items)
}

// Get returns a snapshot of the item at index.
func (s *Store) Get(index int) (Item, bool) {
	item := s.at(index)
	if item == nil {
		return Item{}, false
	}
	return *item, true
}

func (s *Store) at(index int) *Item {
	if index < 0 || index >= len(s.items) {
		return nil
	}
	return s.items[index]
}
