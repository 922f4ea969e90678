package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/persist"
	"github.com/Makepad-fr/tada/internal/state"
	"github.com/Makepad-fr/tada/internal/store"
)

var clock = time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, slot store.Slot, texts ...string) (Model, *state.Store) {
	t.Helper()
	n := 0
	s, _ := state.Open(context.Background(), persist.NewBridge(slot, ""),
		state.WithClock(func() time.Time { return clock }),
		state.WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	for _, text := range texts {
		_, err := s.Add(context.Background(), text)
		require.NoError(t, err)
	}
	m := New(context.Background(), s, WithSize(80, 24), WithClock(func() time.Time { return clock }))
	return m, s
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok, "Update should return Model")
	}
	return m
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		if r == ' ' {
			m = send(t, m, keySpace)
			continue
		}
		m = send(t, m, keyRunes(string(r)))
	}
	return m
}

func TestModel_AddItem(t *testing.T) {
	slot := store.NewMemory()
	m, s := newTestModel(t, slot)

	m = send(t, m, keyRunes("a"))
	assert.True(t, m.adding)

	m = typeText(t, m, "Buy milk")
	m = send(t, m, keyEnter)

	assert.False(t, m.adding)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, "Buy milk", s.Items()[0].Text)
	assert.Len(t, m.list.Items(), 1)
	assert.Equal(t, 1, slot.Writes(), "persisted on add")
	assert.Contains(t, m.View(), "Buy milk")
}

func TestModel_AddEmptyShowsError(t *testing.T) {
	m, s := newTestModel(t, store.NewMemory())

	m = send(t, m, keyRunes("a"), keyEnter)
	assert.True(t, m.adding, "stays in add mode")
	assert.Equal(t, "Title cannot be empty", m.addErr)
	assert.Equal(t, 0, s.Len())

	m = send(t, m, keyEsc)
	assert.False(t, m.adding)
	assert.Empty(t, m.addErr)
}

func TestModel_NewItemsGoOnTop(t *testing.T) {
	m, _ := newTestModel(t, store.NewMemory(), "first")

	m = send(t, m, keyRunes("a"))
	m = typeText(t, m, "second")
	m = send(t, m, keyEnter)

	items := m.list.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].(listItem).Text)
	assert.Equal(t, 0, m.list.Index(), "new item selected")
}

func TestModel_ToggleSelected(t *testing.T) {
	m, s := newTestModel(t, store.NewMemory(), "one", "two")

	m = send(t, m, keySpace)
	items := s.Items()
	assert.True(t, items[0].Done, "top item toggled")
	assert.False(t, items[1].Done)
	assert.Equal(t, "toggled", m.status)

	m = send(t, m, keySpace)
	assert.False(t, s.Items()[0].Done)
	assert.True(t, m.list.Items()[0].(listItem).CompletedAt.IsZero())
}

func TestModel_RemoveSelected(t *testing.T) {
	m, s := newTestModel(t, store.NewMemory(), "one", "two", "three")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 1, m.list.Index())
	m = send(t, m, keyRunes("d"))

	require.Equal(t, 2, s.Len())
	assert.Equal(t, "three", s.Items()[0].Text)
	assert.Equal(t, "one", s.Items()[1].Text)
	assert.Len(t, m.list.Items(), 2)
}

func TestModel_RemoveLastClampsSelection(t *testing.T) {
	m, s := newTestModel(t, store.NewMemory(), "one", "two")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, keyRunes("d"))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, m.list.Index())
}

func TestModel_KeysOnEmptyListAreNoops(t *testing.T) {
	slot := store.NewMemory()
	m, _ := newTestModel(t, slot)

	m = send(t, m, keySpace, keyRunes("d"))
	assert.Equal(t, 0, slot.Writes())
	assert.Empty(t, m.status)
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t, store.NewMemory())
	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_FilteringSwallowsCommandKeys(t *testing.T) {
	m, s := newTestModel(t, store.NewMemory(), "alpha", "beta")

	m = send(t, m, keyRunes("/"))
	require.Equal(t, list.Filtering, m.list.FilterState())

	m = send(t, m, keyRunes("d"), keyRunes("a"))
	assert.Equal(t, 2, s.Len(), "d typed into the filter")
	assert.False(t, m.adding, "a typed into the filter")
}

type failingSlot struct {
	*store.Memory
}

func (failingSlot) Set(context.Context, string, []byte) error { return errors.New("disk full") }

func TestModel_SaveErrorShownInStatus(t *testing.T) {
	m, s := newTestModel(t, failingSlot{store.NewMemory()})

	m = send(t, m, keyRunes("a"))
	m = typeText(t, m, "x")
	m = send(t, m, keyEnter)

	assert.Equal(t, 1, s.Len(), "kept in memory")
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "disk full")
	assert.Contains(t, m.View(), "save failed")
}

func TestModel_HeaderCounts(t *testing.T) {
	m, _ := newTestModel(t, store.NewMemory(), "one", "two")
	m = send(t, m, keySpace)
	assert.Contains(t, m.list.Title, "Total")
	assert.Contains(t, m.list.Title, "2")
}
