package cli

import (
	"fmt"
	"time"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/state"
	"github.com/Makepad-fr/tada/internal/ui"
)

const (
	maxTextWidth = 80
	idPrefixLen  = state.MinIDRef
)

type renderer struct {
	now     time.Time
	showIDs bool
}

// panel builds the lines of the `ls` panel: header, progress, items, tip.
func (r renderer) panel(items model.List, group bool) []string {
	t := ui.Current()
	d, p := items.Stats()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(items),
	)

	lines := []string{header, t.Muted.Render(ui.ProgressBar(d, d+p, 28)), ""}
	if group {
		lines = append(lines, r.groupLines(items)...)
	} else {
		lines = append(lines, r.flatLines(items, nil)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `tada add \"Buy milk\"`"))
	return lines
}

// flatLines renders items. keep, when non-nil, filters which items are shown;
// indexes always refer to positions in the full list.
func (r renderer) flatLines(items model.List, keep func(model.Item) bool) []string {
	t := ui.Current()
	var out []string
	for i, it := range items {
		if keep != nil && !keep(it) {
			continue
		}
		idx := t.Muted.Render(fmt.Sprintf("%2d.", i+1))
		line := fmt.Sprintf("%s %s", idx, t.Box(it.Done))
		if r.showIDs {
			line += " " + t.Accent.Render(shortID(it.ID))
		}
		line += " " + t.Aging(model.Classify(it, r.now)).Render(ui.Truncate(it.Text, maxTextWidth))
		if age := model.Age(it, r.now); age != "" {
			line += " " + t.Muted.Render(age)
		}
		out = append(out, line)
	}
	if len(out) == 0 {
		if keep != nil {
			return []string{t.Muted.Render("(none)")}
		}
		return []string{t.Muted.Render("no items")}
	}
	return out
}

func (r renderer) groupLines(items model.List) []string {
	t := ui.Current()
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	lines = append(lines, r.flatLines(items, func(it model.Item) bool { return !it.Done })...)
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	lines = append(lines, r.flatLines(items, func(it model.Item) bool { return it.Done })...)
	return lines
}

func shortID(id string) string {
	if len(id) > idPrefixLen {
		return id[:idPrefixLen]
	}
	return id
}
