package model

import (
	"strings"
	"time"
)

// Item is the domain model for a todo entry.
type Item struct {
	ID          string
	Text        string
	Done        bool
	CreatedAt   time.Time
	CompletedAt time.Time // zero when not completed
}

// List is an ordered sequence of items, most recent first.
// IDs are unique within a list.
type List []Item

// Result reports what a mutation did, so callers can tell a correct no-op
// from an applied change.
type Result int

const (
	Applied Result = iota
	EmptyText
	NotFound
	DuplicateID
)

func (r Result) String() string {
	switch r {
	case Applied:
		return "applied"
	case EmptyText:
		return "empty text"
	case NotFound:
		return "not found"
	case DuplicateID:
		return "duplicate id"
	}
	return "unknown"
}

// Index returns the position of id in l, or -1.
func (l List) Index(id string) int {
	for i, it := range l {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Stats counts done and pending items.
func (l List) Stats() (done, pending int) {
	for _, it := range l {
		if it.Done {
			done++
		} else {
			pending++
		}
	}
	return
}

// Clone returns a copy that shares no backing array with l.
func (l List) Clone() List {
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Add prepends a new item. Invalid UTF-8 in text is replaced with U+FFFD.
// The input list is never modified.
func Add(l List, text, id string, now time.Time) (List, Result) {
	text = strings.TrimSpace(strings.ToValidUTF8(text, "\uFFFD"))
	if text == "" {
		return l, EmptyText
	}
	if id == "" || l.Index(id) >= 0 {
		return l, DuplicateID
	}
	it := Item{
		ID:        id,
		Text:      text,
		CreatedAt: Timestamp(now),
	}
	out := make(List, 0, len(l)+1)
	out = append(out, it)
	out = append(out, l...)
	return out, Applied
}

// Toggle flips the done flag of the item with the given id.
// CompletedAt is stamped on completion and cleared when the item is reopened.
func Toggle(l List, id string, now time.Time) (List, Result) {
	i := l.Index(id)
	if i < 0 {
		return l, NotFound
	}
	out := l.Clone()
	it := &out[i]
	it.Done = !it.Done
	if it.Done {
		it.CompletedAt = Timestamp(now)
	} else {
		it.CompletedAt = time.Time{}
	}
	return out, Applied
}

// Remove drops the item with the given id.
func Remove(l List, id string) (List, Result) {
	i := l.Index(id)
	if i < 0 {
		return l, NotFound
	}
	out := make(List, 0, len(l)-1)
	out = append(out, l[:i]...)
	out = append(out, l[i+1:]...)
	return out, Applied
}

// Timestamp normalizes t to the millisecond UTC precision items are stored with.
func Timestamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Truncate(time.Millisecond)
}
