// Package facets describes the sidebar widgets that narrow an issue search.
// A Widget is a pure value: given the current filter and the facet counts of
// the last search it lists its items, and a click on an item yields the
// filter.Patch to apply. Widgets never fetch or hold state themselves.
package facets

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ALT-F4-LLC/lintdeck/internal/filter"
	"github.com/ALT-F4-LLC/lintdeck/internal/model"
)

// Kind selects how a widget orders and names its items.
type Kind int

const (
	// KindFixed widgets list a known enumeration in a fixed order.
	KindFixed Kind = iota
	// KindOpen widgets list whatever values the search returned, most
	// frequent first.
	KindOpen
	// KindDate is the creation date widget.
	KindDate
)

// Companion booleans toggled by the empty pseudo-value.
const (
	companionNone     = ""
	companionResolved = "resolved"
	companionAssigned = "assigned"
)

// Widget is one facet panel of the sidebar.
type Widget struct {
	Property string
	Title    string
	Kind     Kind

	fixed     []string
	companion string
	namer     func(value string, refs Refs) string
}

// Item is one selectable row of a widget.
type Item struct {
	Value    string
	Name     string
	Count    int
	HasCount bool
	Active   bool
}

// Refs holds the entities referenced by the last search, used to turn raw
// facet values into display names.
type Refs struct {
	Components map[string]model.Component // by uuid
	Users      map[string]model.User      // by login
	Rules      map[string]model.Rule      // by key
	Languages  map[string]model.Language  // by key
}

// NewRefs indexes referenced entities for name lookup.
func NewRefs(components []model.Component, users []model.User, rules []model.Rule, languages []model.Language) Refs {
	refs := Refs{
		Components: make(map[string]model.Component, len(components)),
		Users:      make(map[string]model.User, len(users)),
		Rules:      make(map[string]model.Rule, len(rules)),
		Languages:  make(map[string]model.Language, len(languages)),
	}
	for _, c := range components {
		if c.UUID != "" {
			refs.Components[c.UUID] = c
		}
	}
	for _, u := range users {
		refs.Users[u.Login] = u
	}
	for _, r := range rules {
		refs.Rules[r.Key] = r
	}
	for _, l := range languages {
		refs.Languages[l.Key] = l
	}
	return refs
}

// Merge adds the entities of other to refs, keeping existing entries.
func (refs Refs) Merge(other Refs) Refs {
	out := NewRefs(nil, nil, nil, nil)
	for _, src := range []Refs{refs, other} {
		for k, v := range src.Components {
			if _, ok := out.Components[k]; !ok {
				out.Components[k] = v
			}
		}
		for k, v := range src.Users {
			if _, ok := out.Users[k]; !ok {
				out.Users[k] = v
			}
		}
		for k, v := range src.Rules {
			if _, ok := out.Rules[k]; !ok {
				out.Rules[k] = v
			}
		}
		for k, v := range src.Languages {
			if _, ok := out.Languages[k]; !ok {
				out.Languages[k] = v
			}
		}
	}
	return out
}

// The widgets of the sidebar.
var (
	Type = Widget{
		Property: filter.PropTypes,
		Title:    "Type",
		Kind:     KindFixed,
		fixed:    enumStrings(model.Types),
		namer: func(v string, _ Refs) string {
			t := model.IssueType(v)
			return t.Icon() + " " + t.Label()
		},
	}
	Resolution = Widget{
		Property:  filter.PropResolutions,
		Title:     "Resolution",
		Kind:      KindFixed,
		fixed:     enumStrings(model.Resolutions),
		companion: companionResolved,
		namer:     func(v string, _ Refs) string { return model.Resolution(v).Label() },
	}
	Severity = Widget{
		Property: filter.PropSeverities,
		Title:    "Severity",
		Kind:     KindFixed,
		fixed:    enumStrings(model.Severities),
		namer: func(v string, _ Refs) string {
			s := model.Severity(v)
			return s.Icon() + " " + v
		},
	}
	Status = Widget{
		Property: filter.PropStatuses,
		Title:    "Status",
		Kind:     KindFixed,
		fixed:    enumStrings(model.Statuses),
		namer: func(v string, _ Refs) string {
			s := model.Status(v)
			return s.Icon() + " " + v
		},
	}
	CreationDate = Widget{
		Property: filter.PropCreatedAt,
		Title:    "Creation Date",
		Kind:     KindDate,
	}
	Rule = Widget{
		Property: filter.PropRules,
		Title:    "Rule",
		Kind:     KindOpen,
		namer: func(v string, refs Refs) string {
			if r, ok := refs.Rules[v]; ok && r.Name != "" {
				return r.Name
			}
			return v
		},
	}
	Tag = Widget{
		Property: filter.PropTags,
		Title:    "Tag",
		Kind:     KindOpen,
	}
	Project = Widget{
		Property: filter.PropProjects,
		Title:    "Project",
		Kind:     KindOpen,
		namer:    componentName,
	}
	Module = Widget{
		Property: filter.PropModules,
		Title:    "Module",
		Kind:     KindOpen,
		namer:    componentName,
	}
	Directory = Widget{
		Property: filter.PropDirectories,
		Title:    "Directory",
		Kind:     KindOpen,
		namer:    func(v string, _ Refs) string { return CollapsePath(v, 15) },
	}
	File = Widget{
		Property: filter.PropFiles,
		Title:    "File",
		Kind:     KindOpen,
		namer: func(v string, refs Refs) string {
			if c, ok := refs.Components[v]; ok && c.Path != "" {
				return CollapsePath(c.Path, 15)
			}
			return v
		},
	}
	Assignee = Widget{
		Property:  filter.PropAssignees,
		Title:     "Assignee",
		Kind:      KindOpen,
		companion: companionAssigned,
		namer: func(v string, refs Refs) string {
			if v == "" {
				return "Unassigned"
			}
			if u, ok := refs.Users[v]; ok && u.Name != "" {
				return u.Name
			}
			return v
		},
	}
	Author = Widget{
		Property: filter.PropAuthors,
		Title:    "Author",
		Kind:     KindOpen,
	}
	Language = Widget{
		Property: filter.PropLanguages,
		Title:    "Language",
		Kind:     KindOpen,
		namer: func(v string, refs Refs) string {
			if l, ok := refs.Languages[v]; ok && l.Name != "" {
				return l.Name
			}
			return v
		},
	}
)

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func componentName(v string, refs Refs) string {
	if c, ok := refs.Components[v]; ok && c.Name != "" {
		return c.Name
	}
	return v
}

// Visible reports whether the last search returned stats for the widget.
// Absent stats mean the facet does not apply, not that it matched nothing.
func (w Widget) Visible(stats map[string]filter.Facet) bool {
	_, ok := stats[w.Property]
	return ok
}

// Name returns the display name of a value.
func (w Widget) Name(value string, refs Refs) string {
	if w.namer == nil {
		return value
	}
	return w.namer(value, refs)
}

// HasValue reports whether the filter constrains the widget's property.
func (w Widget) HasValue(f filter.Filter) bool {
	switch w.companion {
	case companionResolved:
		if !f.Resolved {
			return true
		}
	case companionAssigned:
		if !f.Assigned {
			return true
		}
	}
	if w.Kind == KindDate {
		return f.HasDate()
	}
	return len(f.Values(w.Property)) > 0
}

// IsActive reports whether value is selected in f.
func (w Widget) IsActive(f filter.Filter, value string) bool {
	if value == "" {
		switch w.companion {
		case companionResolved:
			return !f.Resolved
		case companionAssigned:
			return !f.Assigned
		}
	}
	return slices.Contains(f.Values(w.Property), value)
}

// Items lists the widget's rows for display. Fixed widgets keep their
// enumeration order; open widgets sort by descending count, then value,
// with the empty pseudo-value first. Date widgets list their controls; see
// DateItems.
func (w Widget) Items(f filter.Filter, stats filter.Facet, refs Refs) []Item {
	if w.Kind == KindDate {
		return DateItems(f, stats)
	}

	var values []string
	if w.Kind == KindFixed {
		values = w.fixed
	} else {
		values = make([]string, 0, len(stats))
		for v := range stats {
			values = append(values, v)
		}
		slices.SortFunc(values, func(a, b string) int {
			if (a == "") != (b == "") {
				if a == "" {
					return -1
				}
				return 1
			}
			if c := cmp.Compare(stats[b], stats[a]); c != 0 {
				return c
			}
			return strings.Compare(a, b)
		})
	}

	items := make([]Item, 0, len(values))
	for _, v := range values {
		count, ok := stats[v]
		items = append(items, Item{
			Value:    v,
			Name:     w.Name(v, refs),
			Count:    count,
			HasCount: ok,
			Active:   w.IsActive(f, v),
		})
	}
	return items
}

// Click returns the change for a click on value. Ordinary values toggle
// their membership in the property's selection, which stays sorted. The
// empty value of the resolution and assignee widgets flips the companion
// boolean and clears the selection; any other value of those widgets sets
// the companion to true.
func (w Widget) Click(f filter.Filter, value string) filter.Patch {
	if w.Kind == KindDate {
		return DateClick(f, value)
	}

	if value == "" && w.companion != companionNone {
		p := filter.Set(w.Property, []string{})
		switch w.companion {
		case companionResolved:
			p.Resolved = filter.Bool(!f.Resolved)
		case companionAssigned:
			p.Assigned = filter.Bool(!f.Assigned)
		}
		return p
	}

	p := filter.Set(w.Property, filter.Toggle(f.Values(w.Property), value))
	switch w.companion {
	case companionResolved:
		p.Resolved = filter.Bool(true)
	case companionAssigned:
		p.Assigned = filter.Bool(true)
	}
	return p
}

// Clear returns the change that removes every constraint of the widget.
func (w Widget) Clear() filter.Patch {
	if w.Kind == KindDate {
		return ResetDates(filter.Patch{})
	}
	p := filter.Set(w.Property, []string{})
	switch w.companion {
	case companionResolved:
		p.Resolved = filter.Bool(true)
	case companionAssigned:
		p.Assigned = filter.Bool(true)
	}
	return p
}

// CollapsePath shortens a slash-separated path by dropping leading middle
// segments until the middle fits within limit characters. The first and
// last segments are always kept and a cut is marked with "...".
func CollapsePath(path string, limit int) string {
	tokens := strings.Split(path, "/")
	if len(tokens) <= 2 {
		return path
	}
	head, tail := tokens[0], tokens[len(tokens)-1]
	middle := tokens[1 : len(tokens)-1]
	cut := false
	for len(middle) > 0 && len(strings.Join(middle, "/")) > limit {
		middle = middle[1:]
		cut = true
	}
	parts := []string{head}
	if cut {
		parts = append(parts, "...")
	}
	parts = append(parts, middle...)
	parts = append(parts, tail)
	return strings.Join(parts, "/")
}
