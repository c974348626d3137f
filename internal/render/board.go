package render

import (
	"fmt"
	"os"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/ALT-F4-LLC/lintdeck/internal/facets"
	"github.com/ALT-F4-LLC/lintdeck/internal/filter"
)

const (
	maxItemsPerColumn = 10
	minColumnWidth    = 24
	maxColumnWidth    = 40
	defaultTermWidth  = 100
)

// BoardOptions configures facet board rendering.
type BoardOptions struct {
	Widgets []facets.Widget
	Refs    facets.Refs
	// Width overrides the terminal width; zero detects it.
	Width int
}

// RenderFacetBoard renders the facet counts of a search as columns, one per
// widget with stats, wrapping to as many rows as the terminal width needs.
// Values selected by the filter are marked.
func RenderFacetBoard(f filter.Filter, stats map[string]filter.Facet, opts BoardOptions) string {
	if opts.Widgets == nil {
		opts.Widgets = facets.DefaultWidgets
	}

	var visible []facets.Widget
	for _, w := range opts.Widgets {
		if w.Visible(stats) {
			visible = append(visible, w)
		}
	}
	if len(visible) == 0 {
		return EmptyState("No facets.", "", true)
	}

	if !ColorsEnabled() {
		return renderPlainBoard(f, stats, visible, opts.Refs)
	}

	tw := opts.Width
	if tw <= 0 {
		tw = terminalWidth()
	}
	return renderColorBoard(f, stats, visible, opts.Refs, tw)
}

// terminalWidth returns the current terminal width, falling back to a default.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultTermWidth
	}
	return w
}

func renderColorBoard(f filter.Filter, stats map[string]filter.Facet, widgets []facets.Widget, refs facets.Refs, tw int) string {
	perRow := max(tw/minColumnWidth, 1)
	perRow = min(perRow, len(widgets))
	colWidth := min(max((tw-(perRow-1))/perRow, minColumnWidth), maxColumnWidth)

	var rows []string
	for start := 0; start < len(widgets); start += perRow {
		end := min(start+perRow, len(widgets))
		var columns []string
		for _, w := range widgets[start:end] {
			columns = append(columns, renderColorColumn(w, f, stats[w.Property], refs, colWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderColorColumn(w facets.Widget, f filter.Filter, stats filter.Facet, refs facets.Refs, colWidth int) string {
	headerColor := lipgloss.Color("15")
	if w.HasValue(f) {
		headerColor = lipgloss.Color("14")
	}
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(headerColor).
		Width(colWidth-2)

	items := w.Items(f, stats, refs)
	visible, overflow := clampItems(items)

	lines := []string{headerStyle.Render(w.Title)}
	contentWidth := max(colWidth-4, 8)
	for _, item := range visible {
		line := boardItemLine(item, contentWidth)
		if item.Active {
			line = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).Render(line)
		}
		lines = append(lines, line)
	}
	if overflow > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(fmt.Sprintf("+%d more", overflow)))
	}

	cardStyle := lipgloss.NewStyle().
		Width(colWidth-2).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8"))

	return cardStyle.Render(strings.Join(lines, "\n"))
}

// boardItemLine lays out "name ....... count" within width runes.
func boardItemLine(item facets.Item, width int) string {
	count := ""
	if item.HasCount {
		count = humanize.Comma(int64(item.Count))
	}
	mark := "  "
	if item.Active {
		mark = "\u2714 " // ✔
	}
	nameWidth := max(width-len(count)-3, 4)
	name := truncate(item.Name, nameWidth)
	pad := max(width-len([]rune(name))-len(count)-2, 1)
	return mark + name + strings.Repeat(" ", pad) + count
}

func clampItems(items []facets.Item) ([]facets.Item, int) {
	if len(items) <= maxItemsPerColumn {
		return items, 0
	}
	return items[:maxItemsPerColumn], len(items) - maxItemsPerColumn
}

// --- Plain text fallback ---

func renderPlainBoard(f filter.Filter, stats map[string]filter.Facet, widgets []facets.Widget, refs facets.Refs) string {
	var b strings.Builder

	for i, w := range widgets {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "=== %s ===\n", w.Title)

		visible, overflow := clampItems(w.Items(f, stats[w.Property], refs))
		for _, item := range visible {
			fmt.Fprintf(&b, "%s\n", boardItemLine(item, maxColumnWidth))
		}
		if overflow > 0 {
			fmt.Fprintf(&b, "  +%d more\n", overflow)
		}
	}

	return b.String()
}
