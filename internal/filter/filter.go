// Package filter converts between the raw query parameters of a navigation
// location and the typed Filter used to search issues.
package filter

import "slices"

// Filter is the complete set of search constraints. A Filter is a value:
// changes produce a new Filter through Merge and never edit one in place.
type Filter struct {
	Assigned bool
	Resolved bool

	Assignees   []string
	Authors     []string
	Directories []string
	Files       []string
	Languages   []string
	Modules     []string
	Projects    []string
	Resolutions []string
	Rules       []string
	Severities  []string
	Statuses    []string
	Tags        []string
	Types       []string

	CreatedAfter    string
	CreatedBefore   string
	CreatedAt       string
	CreatedInLast   string
	SinceLeakPeriod bool
}

// Property names of the multi-valued fields, as used by facets.
const (
	PropAssignees   = "assignees"
	PropAuthors     = "authors"
	PropDirectories = "directories"
	PropFiles       = "files"
	PropLanguages   = "languages"
	PropModules     = "modules"
	PropProjects    = "projects"
	PropResolutions = "resolutions"
	PropRules       = "rules"
	PropSeverities  = "severities"
	PropStatuses    = "statuses"
	PropTags        = "tags"
	PropTypes       = "types"
	PropCreatedAt   = "createdAt"
)

// Default returns the Filter matching every issue.
func Default() Filter {
	return Parse(nil)
}

// Values returns the selected values of a multi-valued property, or nil for
// an unknown property.
func (f Filter) Values(property string) []string {
	if p := f.field(property); p != nil {
		return *p
	}
	return nil
}

func (f *Filter) field(property string) *[]string {
	switch property {
	case PropAssignees:
		return &f.Assignees
	case PropAuthors:
		return &f.Authors
	case PropDirectories:
		return &f.Directories
	case PropFiles:
		return &f.Files
	case PropLanguages:
		return &f.Languages
	case PropModules:
		return &f.Modules
	case PropProjects:
		return &f.Projects
	case PropResolutions:
		return &f.Resolutions
	case PropRules:
		return &f.Rules
	case PropSeverities:
		return &f.Severities
	case PropStatuses:
		return &f.Statuses
	case PropTags:
		return &f.Tags
	case PropTypes:
		return &f.Types
	default:
		return nil
	}
}

// Equal compares two filters field by field. Slices are compared
// positionally, so the same values in a different order are not equal.
func (f Filter) Equal(g Filter) bool {
	if f.Assigned != g.Assigned || f.Resolved != g.Resolved || f.SinceLeakPeriod != g.SinceLeakPeriod {
		return false
	}
	if f.CreatedAfter != g.CreatedAfter || f.CreatedBefore != g.CreatedBefore ||
		f.CreatedAt != g.CreatedAt || f.CreatedInLast != g.CreatedInLast {
		return false
	}
	for _, af := range arrayFields {
		if !slices.Equal(f.Values(af.property), g.Values(af.property)) {
			return false
		}
	}
	return true
}

// HasDate reports whether any creation date constraint is set.
func (f Filter) HasDate() bool {
	return f.CreatedAfter != "" || f.CreatedBefore != "" || f.CreatedAt != "" ||
		f.CreatedInLast != "" || f.SinceLeakPeriod
}

// Patch is a partial change to a Filter. Nil fields are left untouched; a
// non-nil pointer to an empty value clears the field.
type Patch struct {
	Assigned        *bool
	Resolved        *bool
	SinceLeakPeriod *bool

	CreatedAfter  *string
	CreatedBefore *string
	CreatedAt     *string
	CreatedInLast *string

	// Values maps a multi-valued property name to its new selection.
	Values map[string][]string
}

// Bool returns a pointer to b, for building patches.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }

// Set returns a patch replacing the selection of a multi-valued property.
func Set(property string, values []string) Patch {
	return Patch{Values: map[string][]string{property: values}}
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Assigned == nil && p.Resolved == nil && p.SinceLeakPeriod == nil &&
		p.CreatedAfter == nil && p.CreatedBefore == nil && p.CreatedAt == nil &&
		p.CreatedInLast == nil && len(p.Values) == 0
}

// Merge returns a new Filter with the patch applied. f is not modified and the
// result shares no slices with it.
func Merge(f Filter, p Patch) Filter {
	out := f.clone()
	if p.Assigned != nil {
		out.Assigned = *p.Assigned
	}
	if p.Resolved != nil {
		out.Resolved = *p.Resolved
	}
	if p.SinceLeakPeriod != nil {
		out.SinceLeakPeriod = *p.SinceLeakPeriod
	}
	if p.CreatedAfter != nil {
		out.CreatedAfter = *p.CreatedAfter
	}
	if p.CreatedBefore != nil {
		out.CreatedBefore = *p.CreatedBefore
	}
	if p.CreatedAt != nil {
		out.CreatedAt = *p.CreatedAt
	}
	if p.CreatedInLast != nil {
		out.CreatedInLast = *p.CreatedInLast
	}
	for property, values := range p.Values {
		if field := out.field(property); field != nil {
			*field = cloneStrings(values)
		}
	}
	return out
}

func (f Filter) clone() Filter {
	out := f
	for _, af := range arrayFields {
		field := out.field(af.property)
		*field = cloneStrings(*field)
	}
	return out
}

func cloneStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return slices.Clone(values)
}
