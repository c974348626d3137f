package filter

import (
	"slices"
)

// ToStringSet converts a slice of strings to a set for O(1) membership checks.
func ToStringSet(ss []string) map[string]struct{} {
	if len(ss) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		set[s] = struct{}{}
	}
	return set
}

// Toggle returns a sorted copy of set with v removed if present and added
// otherwise.
func Toggle(set []string, v string) []string {
	out := make([]string, 0, len(set)+1)
	found := false
	for _, s := range set {
		if s == v {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Union returns the sorted, de-duplicated union of set and values.
func Union(set []string, values ...string) []string {
	seen := ToStringSet(set)
	out := slices.Clone(set)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		if seen == nil {
			seen = make(map[string]struct{})
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
