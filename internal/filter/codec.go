package filter

import (
	"net/url"
	"strings"
)

// OpenParam is the location parameter naming the issue shown in detail.
const OpenParam = "open"

// arrayField binds a multi-valued property to its wire parameter name.
type arrayField struct {
	property string
	param    string
}

// arrayFields lists every multi-valued property. Files, modules and
// projects travel under their uuid parameter names.
var arrayFields = []arrayField{
	{PropAssignees, "assignees"},
	{PropAuthors, "authors"},
	{PropDirectories, "directories"},
	{PropFiles, "fileUuids"},
	{PropLanguages, "languages"},
	{PropModules, "moduleUuids"},
	{PropProjects, "projectUuids"},
	{PropResolutions, "resolutions"},
	{PropRules, "rules"},
	{PropSeverities, "severities"},
	{PropStatuses, "statuses"},
	{PropTags, "tags"},
	{PropTypes, "types"},
}

// Parse builds a Filter from raw location parameters. It never fails:
// booleans other than the literal "true" or "false" take their default and
// unknown tokens pass through unchanged.
func Parse(raw url.Values) Filter {
	f := Filter{
		Assigned:        parseBool(raw.Get("assigned"), true),
		Resolved:        parseBool(raw.Get("resolved"), true),
		SinceLeakPeriod: parseBool(raw.Get("sinceLeakPeriod"), false),
		CreatedAfter:    raw.Get("createdAfter"),
		CreatedBefore:   raw.Get("createdBefore"),
		CreatedAt:       raw.Get("createdAt"),
		CreatedInLast:   raw.Get("createdInLast"),
	}
	for _, af := range arrayFields {
		*f.field(af.property) = parseStrings(raw.Get(af.param))
	}
	return f
}

// Serialize converts f to raw parameters, emitting only fields that differ
// from their default.
func Serialize(f Filter) url.Values {
	raw := url.Values{}
	if !f.Assigned {
		raw.Set("assigned", "false")
	}
	if !f.Resolved {
		raw.Set("resolved", "false")
	}
	if f.SinceLeakPeriod {
		raw.Set("sinceLeakPeriod", "true")
	}
	setNonEmpty(raw, "createdAfter", f.CreatedAfter)
	setNonEmpty(raw, "createdBefore", f.CreatedBefore)
	setNonEmpty(raw, "createdAt", f.CreatedAt)
	setNonEmpty(raw, "createdInLast", f.CreatedInLast)
	for _, af := range arrayFields {
		if values := f.Values(af.property); len(values) > 0 {
			raw.Set(af.param, strings.Join(values, ","))
		}
	}
	return raw
}

// Equal reports whether two raw locations describe the same filter. Other
// parameters, such as the open issue, are ignored.
func Equal(a, b url.Values) bool {
	return Parse(a).Equal(Parse(b))
}

// Open returns the key of the issue open in detail, or "".
func Open(raw url.Values) string {
	return raw.Get(OpenParam)
}

// WithOpen returns a copy of raw with key as the open issue; an empty key
// closes it.
func WithOpen(raw url.Values, key string) url.Values {
	out := make(url.Values, len(raw)+1)
	for k, v := range raw {
		out[k] = append([]string(nil), v...)
	}
	if key == "" {
		out.Del(OpenParam)
	} else {
		out.Set(OpenParam, key)
	}
	return out
}

// Location returns the raw parameters for f with the given issue open. An
// empty key leaves no open issue.
func Location(f Filter, open string) url.Values {
	raw := Serialize(f)
	if open != "" {
		raw.Set(OpenParam, open)
	}
	return raw
}

// ParamName returns the wire parameter of a multi-valued property.
func ParamName(property string) string {
	for _, af := range arrayFields {
		if af.property == property {
			return af.param
		}
	}
	return property
}

func parseBool(value string, def bool) bool {
	switch value {
	case "false":
		return false
	case "true":
		return true
	default:
		return def
	}
}

func parseStrings(value string) []string {
	if value == "" {
		return []string{}
	}
	return strings.Split(value, ",")
}

func setNonEmpty(raw url.Values, key, value string) {
	if value != "" {
		raw.Set(key, value)
	}
}
