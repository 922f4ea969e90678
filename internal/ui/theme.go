package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/model"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style

	// aging and selection
	Warning, Overdue, Done, Selected lipgloss.Style

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor

	BoxUnchecked, BoxChecked string
	SymDone, SymPending      string
	SymOK, SymFail           string
	BarFull, BarEmpty        string
}

var current = classic()

// Themes lists the names SetTheme understands.
var Themes = []string{"classic", "neon", "mono"}

func classic() Theme {
	return Theme{
		Name:    "classic",
		Title:   lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Faint(true),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Pending: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Overdue: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Done:    lipgloss.NewStyle().Faint(true).Strikethrough(true),

		Selected:     lipgloss.NewStyle().Bold(true).Reverse(true),
		Border:       lipgloss.NormalBorder(),
		BorderColor:  lipgloss.Color("8"),
		BoxUnchecked: "☐", BoxChecked: "☑",
		SymDone: "✔", SymPending: "•",
		SymOK: "✔", SymFail: "✖",
		BarFull: "█", BarEmpty: "░",
	}
}

// SetTheme switches the current theme; unknown names select classic.
func SetTheme(name string) {
	t := classic()
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "neon":
		t.Name = "neon"
		t.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
		t.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
		t.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		t.Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("228"))
		t.Overdue = lipgloss.NewStyle().Foreground(lipgloss.Color("197")).Bold(true)
		t.Border = lipgloss.RoundedBorder()
		t.BorderColor = lipgloss.Color("13")
		t.BoxUnchecked, t.BoxChecked = "◻", "◼"
	case "mono":
		plain := lipgloss.NewStyle()
		t = Theme{
			Name:  "mono",
			Title: plain, Muted: plain, Accent: plain, Success: plain, Error: plain,
			Pending: plain, Warning: plain, Overdue: plain,
			Done:         plain.Strikethrough(true),
			Selected:     plain.Reverse(true),
			Border:       lipgloss.ASCIIBorder(),
			BorderColor:  lipgloss.NoColor{},
			BoxUnchecked: "[ ]", BoxChecked: "[x]",
			SymDone: "x", SymPending: "-",
			SymOK: "ok:", SymFail: "error:",
			BarFull: "#", BarEmpty: ".",
		}
	}
	current = t
}

// Current exposes what renderers need.
func Current() Theme { return current }

// Aging returns the text style for an aging bucket.
func (t Theme) Aging(a model.Aging) lipgloss.Style {
	switch a {
	case model.AgingDone:
		return t.Done
	case model.AgingOverdue:
		return t.Overdue
	case model.AgingWarning:
		return t.Warning
	}
	return lipgloss.NewStyle()
}

// Box returns the checkbox glyph for an item, styled.
func (t Theme) Box(done bool) string {
	if done {
		return t.Success.Render(t.BoxChecked)
	}
	return t.Muted.Render(t.BoxUnchecked)
}
