// Package persist moves the todo list between memory and a store.Slot.
package persist

import (
	"bytes"
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// DefaultKey is the slot the list is stored under.
const DefaultKey = "Todos"

// LoadStatus says where the initial list came from.
type LoadStatus int

const (
	LoadEmpty       LoadStatus = iota // nothing stored yet
	LoadRestored                      // stored list decoded
	LoadMalformed                     // stored document rejected; started empty
	LoadUnavailable                   // slot could not be read; started empty
)

func (s LoadStatus) String() string {
	switch s {
	case LoadRestored:
		return "restored"
	case LoadMalformed:
		return "malformed"
	case LoadUnavailable:
		return "unavailable"
	}
	return "empty"
}

// LoadReport describes the outcome of Bridge.Load.
type LoadReport struct {
	Status LoadStatus
	Count  int
	Err    error
}

// Degraded reports whether a stored list existed but could not be used.
func (r LoadReport) Degraded() bool {
	return r.Status == LoadMalformed || r.Status == LoadUnavailable
}

// Bridge reads and writes the list under a single key.
type Bridge struct {
	slot store.Slot
	key  string
	log  *log.Logger
}

type Option func(*Bridge)

func WithLogger(l *log.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

// NewBridge binds slot and key. An empty key means DefaultKey.
func NewBridge(slot store.Slot, key string, opts ...Option) *Bridge {
	if key == "" {
		key = DefaultKey
	}
	b := &Bridge{slot: slot, key: key, log: logging.Discard()}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Bridge) Key() string { return b.key }

// Load returns the stored list. It never fails: unreadable or malformed
// slots yield an empty list and a report saying why.
func (b *Bridge) Load(ctx context.Context) (model.List, LoadReport) {
	raw, ok, err := b.slot.Get(ctx, b.key)
	if err != nil {
		b.log.Warn("slot unreadable, starting empty", "key", b.key, "err", err)
		return model.List{}, LoadReport{Status: LoadUnavailable, Err: err}
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		b.log.Debug("slot empty", "key", b.key)
		return model.List{}, LoadReport{Status: LoadEmpty}
	}
	l, err := Decode(raw)
	if err != nil {
		b.log.Warn("stored list rejected, starting empty", "key", b.key, "err", err)
		return model.List{}, LoadReport{Status: LoadMalformed, Err: err}
	}
	b.log.Debug("list restored", "key", b.key, "items", len(l))
	return l, LoadReport{Status: LoadRestored, Count: len(l)}
}

// Save replaces the stored list with l.
func (b *Bridge) Save(ctx context.Context, l model.List) error {
	raw, err := Encode(l)
	if err != nil {
		return err
	}
	if err := b.slot.Set(ctx, b.key, raw); err != nil {
		return fmt.Errorf("save %s: %w", b.key, err)
	}
	b.log.Debug("list saved", "key", b.key, "items", len(l))
	return nil
}
