// Package tui is the interactive todo list.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/state"
	"github.com/Makepad-fr/tada/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	model.Item
}

func (i listItem) FilterValue() string { return i.Text }

// Custom delegate to control how items render (single line)
type itemDelegate struct {
	now func() time.Time
}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	now := d.now()

	text := ui.Truncate(it.Text, max(m.Width()-14, 10))
	line := fmt.Sprintf("%s %s", t.Box(it.Done), t.Aging(model.Classify(it.Item, now)).Render(text))
	if age := model.Age(it.Item, now); age != "" {
		line += " " + t.Muted.Render(age)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprint(w, prefix+line)
}

type keyMap struct {
	add, toggle, remove, quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		toggle: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle")),
		remove: key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "remove")),
		quit:   key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
	}
}

// Model is the bubbletea model. Every mutation goes through the store, which
// persists it immediately.
type Model struct {
	ctx   context.Context
	store *state.Store
	now   func() time.Time
	keys  keyMap

	list list.Model

	// Inline add
	adding bool            // true when inline add is active
	ti     textinput.Model // add input
	addErr string          // last add validation error

	status    string // last operation outcome
	statusErr bool

	width, height int
}

type Option func(*Model)

// WithClock sets the time source used for aging.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
		m.list.SetDelegate(itemDelegate{now: now})
	}
}

// WithSize fixes the initial terminal size.
func WithSize(w, h int) Option {
	return func(m *Model) { m.resize(w, h) }
}

// New builds the model around s.
func New(ctx context.Context, s *state.Store, opts ...Option) Model {
	m := Model{
		ctx:   ctx,
		store: s,
		now:   time.Now,
		keys:  newKeyMap(),
	}

	l := list.New(nil, itemDelegate{now: time.Now}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = ui.Current().Muted
	l.Styles.PaginationStyle = ui.Current().Muted
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")
	extra := func() []key.Binding { return []key.Binding{m.keys.add, m.keys.toggle, m.keys.remove} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra
	m.list = l

	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.Placeholder = "Add a todo..."
	m.ti.CharLimit = 200

	m.resize(terminalSize())
	for _, o := range opts {
		o(&m)
	}
	m.refresh()
	return m
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(ctx context.Context, s *state.Store) error {
	p := tea.NewProgram(New(ctx, s), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.resize(ws.Width, ws.Height)
		return m, nil
	}

	// add mode
	if m.adding {
		if x, ok := msg.(tea.KeyMsg); ok {
			switch x.String() {
			case "enter":
				return m.submitAdd()
			case "esc":
				m.stopAdding()
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit) && m.list.FilterState() == list.Unfiltered:
			return m, tea.Quit
		case key.Matches(msg, m.keys.toggle):
			if it, ok := m.selected(); ok {
				res, err := m.store.Toggle(m.ctx, it.ID)
				m.report(res, err, "toggled")
				return m, m.refresh()
			}
			return m, nil
		case key.Matches(msg, m.keys.remove):
			if it, ok := m.selected(); ok {
				res, err := m.store.Remove(m.ctx, it.ID)
				m.report(res, err, "removed")
				return m, m.refresh()
			}
			return m, nil
		case key.Matches(msg, m.keys.add):
			m.adding = true
			m.addErr = ""
			m.ti.SetValue("")
			m.resize(m.width, m.height)
			return m, m.ti.Focus()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) submitAdd() (tea.Model, tea.Cmd) {
	res, err := m.store.Add(m.ctx, m.ti.Value())
	if res == model.EmptyText {
		m.addErr = "Title cannot be empty"
		return m, nil
	}
	m.report(res, err, "added")
	m.stopAdding()
	cmd := m.refresh()
	m.list.ResetFilter()
	m.list.Select(0)
	return m, cmd
}

func (m *Model) stopAdding() {
	m.adding = false
	m.addErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize(m.width, m.height)
}

func (m *Model) report(res model.Result, err error, verb string) {
	switch {
	case err != nil:
		m.status, m.statusErr = "save failed: "+err.Error(), true
	case res == model.Applied:
		m.status, m.statusErr = verb, false
	default:
		m.status, m.statusErr = res.String(), true
	}
}

func (m Model) selected() (model.Item, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it.Item, ok
}

// refresh rebuilds the list rows and header from the store.
func (m *Model) refresh() tea.Cmd {
	items := m.store.Items()
	rows := make([]list.Item, 0, len(items))
	for _, it := range items {
		rows = append(rows, listItem{it})
	}
	idx := m.list.Index()
	cmd := m.list.SetItems(rows)
	if n := len(m.list.VisibleItems()); idx >= n && n > 0 {
		m.list.Select(n - 1)
	}
	m.list.Title = header(items)
	return cmd
}

func header(items model.List) string {
	t := ui.Current()
	d, p := items.Stats()
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(items),
	)
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	listHeight := h - 4
	if m.adding {
		listHeight = h - 8
	}
	if m.status != "" {
		listHeight--
	}
	m.list.SetSize(max(w-4, 10), max(listHeight, 3))
	m.ti.Width = max(w-12, 10)
}

func (m Model) View() string {
	t := ui.Current()
	content := m.list.View()
	if m.adding {
		title := "Add new item"
		if m.addErr != "" {
			title += " - " + t.Error.Render(m.addErr)
		}
		bar := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderColor).
			Padding(0, 1)
		content += "\n" + bar.Render(title+"\n"+m.ti.View())
	}
	if m.status != "" {
		style := t.Muted
		if m.statusErr {
			style = t.Error
		}
		content += "\n" + style.Render(strings.TrimSpace(m.status))
	}
	return ui.PanelString(content)
}

// terminalSize reports the stdout terminal size, defaulting to 80x24.
func terminalSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}
