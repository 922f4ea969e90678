// Package state owns the in-memory todo list for a session and keeps the
// persistence slot in step with it.
package state

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/persist"
)

// ErrNotLoaded is returned by save attempts made before the initial load.
var ErrNotLoaded = errors.New("list not loaded yet")

// idAttempts bounds regeneration when a fresh id collides.
const idAttempts = 3

// Store holds the current list. Every applied mutation replaces the list
// wholesale and is written back through the bridge.
type Store struct {
	bridge *persist.Bridge
	items  model.List
	loaded bool

	now   func() time.Time
	newID func() string
	log   *log.Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Open loads the list once through bridge and returns a ready Store.
// Load problems are reported, not returned: the store then starts empty.
func Open(ctx context.Context, bridge *persist.Bridge, opts ...Option) (*Store, persist.LoadReport) {
	s := &Store{
		bridge: bridge,
		items:  model.List{},
		now:    time.Now,
		newID:  uuid.NewString,
		log:    logging.Discard(),
	}
	for _, o := range opts {
		o(s)
	}

	items, rep := bridge.Load(ctx)
	s.items = items
	s.loaded = true
	return s, rep
}

// Items returns a copy of the current list.
func (s *Store) Items() model.List {
	return s.items.Clone()
}

// Len reports the number of items.
func (s *Store) Len() int { return len(s.items) }

// Add prepends a new item with a fresh id. The error is a persistence
// failure; the in-memory list is updated regardless.
func (s *Store) Add(ctx context.Context, text string) (model.Result, error) {
	var (
		next model.List
		res  model.Result
	)
	now := s.now()
	for i := 0; i < idAttempts; i++ {
		next, res = model.Add(s.items, text, s.newID(), now)
		if res != model.DuplicateID {
			break
		}
		s.log.Debug("id collision, regenerating", "attempt", i+1)
	}
	return res, s.apply(ctx, next, res)
}

// Toggle flips the done flag of id. Unknown ids are a NotFound no-op.
func (s *Store) Toggle(ctx context.Context, id string) (model.Result, error) {
	next, res := model.Toggle(s.items, id, s.now())
	return res, s.apply(ctx, next, res)
}

// Remove deletes id. Unknown ids are a NotFound no-op.
func (s *Store) Remove(ctx context.Context, id string) (model.Result, error) {
	next, res := model.Remove(s.items, id)
	return res, s.apply(ctx, next, res)
}

func (s *Store) apply(ctx context.Context, next model.List, res model.Result) error {
	if res != model.Applied {
		return nil
	}
	s.items = next
	return s.save(ctx)
}

func (s *Store) save(ctx context.Context) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	if err := s.bridge.Save(ctx, s.items); err != nil {
		s.log.Error("saving list failed", "err", err)
		return err
	}
	return nil
}

// MinIDRef is the shortest ref matched against ids before positions.
const MinIDRef = 8

// Find resolves ref to an item. ref is a 1-based position in the current
// list, an exact id, or an id prefix that matches exactly one item.
// Refs of at least MinIDRef characters try ids first; shorter numeric refs
// are positions.
func (s *Store) Find(ref string) (model.Item, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Item{}, false
	}
	if len(ref) >= MinIDRef {
		if it, ok := s.findID(ref); ok {
			return it, true
		}
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(s.items) {
			return s.items[n-1], true
		}
	}
	return s.findID(ref)
}

func (s *Store) findID(ref string) (model.Item, bool) {
	if i := s.items.Index(ref); i >= 0 {
		return s.items[i], true
	}
	var (
		found model.Item
		hits  int
	)
	for _, it := range s.items {
		if strings.HasPrefix(it.ID, ref) {
			found = it
			hits++
		}
	}
	return found, hits == 1
}
