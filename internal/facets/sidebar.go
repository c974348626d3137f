package facets

import "github.com/ALT-F4-LLC/lintdeck/internal/filter"

// DefaultWidgets lists every widget in sidebar order.
var DefaultWidgets = []Widget{
	Type,
	Resolution,
	Severity,
	Status,
	CreationDate,
	Rule,
	Tag,
	Project,
	Module,
	Directory,
	File,
	Assignee,
	Author,
	Language,
}

// DefaultOpen returns the panels expanded on first display.
func DefaultOpen() map[string]bool {
	return map[string]bool{
		filter.PropResolutions: true,
		filter.PropTypes:       true,
	}
}

// Row is one line of the sidebar: a widget header or one of its items.
type Row struct {
	Widget   Widget
	Header   bool
	Open     bool
	HasValue bool
	Item     Item
}

// Sidebar composes the facet widgets and keeps a cursor over the visible
// rows. It does not own the filter or the open panels; changes are reported
// back to the caller as patches and toggles.
type Sidebar struct {
	Widgets []Widget
	Cursor  int
}

// NewSidebar returns a sidebar with every widget in default order.
func NewSidebar() Sidebar {
	return Sidebar{Widgets: DefaultWidgets}
}

// Rows lists the visible rows: the header of each widget with stats, and
// the items of open widgets.
func (s Sidebar) Rows(f filter.Filter, stats map[string]filter.Facet, refs Refs, open map[string]bool) []Row {
	var rows []Row
	for _, w := range s.Widgets {
		if !w.Visible(stats) {
			continue
		}
		isOpen := open[w.Property]
		rows = append(rows, Row{Widget: w, Header: true, Open: isOpen, HasValue: w.HasValue(f)})
		if !isOpen {
			continue
		}
		for _, item := range w.Items(f, stats[w.Property], refs) {
			rows = append(rows, Row{Widget: w, Item: item})
		}
	}
	return rows
}

// Move shifts the cursor by delta, clamped to rows.
func (s *Sidebar) Move(delta, rows int) {
	s.Cursor += delta
	s.Clamp(rows)
}

// Clamp keeps the cursor within rows after the row count changed.
func (s *Sidebar) Clamp(rows int) {
	if s.Cursor >= rows {
		s.Cursor = rows - 1
	}
	if s.Cursor < 0 {
		s.Cursor = 0
	}
}

// Activate handles selection of the row under the cursor. A header yields
// the property to toggle open; an item yields the filter change.
func (s Sidebar) Activate(f filter.Filter, rows []Row) (patch filter.Patch, toggle string) {
	if s.Cursor < 0 || s.Cursor >= len(rows) {
		return filter.Patch{}, ""
	}
	row := rows[s.Cursor]
	if row.Header {
		return filter.Patch{}, row.Widget.Property
	}
	return row.Widget.Click(f, row.Item.Value), ""
}

// Current returns the row under the cursor.
func (s Sidebar) Current(rows []Row) (Row, bool) {
	if s.Cursor < 0 || s.Cursor >= len(rows) {
		return Row{}, false
	}
	return rows[s.Cursor], true
}

// Toggle returns a copy of open with property flipped.
func Toggle(open map[string]bool, property string) map[string]bool {
	out := make(map[string]bool, len(open)+1)
	for k, v := range open {
		out[k] = v
	}
	out[property] = !open[property]
	return out
}
