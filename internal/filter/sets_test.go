package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToggle(t *testing.T) {
	tests := []struct {
		name string
		set  []string
		v    string
		want []string
	}{
		{"add to empty", nil, "b", []string{"b"}},
		{"add sorts", []string{"c", "a"}, "b", []string{"a", "b", "c"}},
		{"remove", []string{"a", "b"}, "a", []string{"b"}},
		{"remove last", []string{"a"}, "a", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Toggle(tt.set, tt.v)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Toggle mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToggleTwiceRestoresSortedSet(t *testing.T) {
	orig := []string{"MAJOR", "BLOCKER"}
	got := Toggle(Toggle(orig, "INFO"), "INFO")
	if diff := cmp.Diff([]string{"BLOCKER", "MAJOR"}, got); diff != "" {
		t.Errorf("double toggle mismatch (-want +got):\n%s", diff)
	}
	if orig[0] != "MAJOR" {
		t.Error("Toggle modified its input")
	}
}

func TestUnion(t *testing.T) {
	got := Union([]string{"bob", "alice"}, "carol", "alice", "carol")
	if diff := cmp.Diff([]string{"alice", "bob", "carol"}, got); diff != "" {
		t.Errorf("Union mismatch (-want +got):\n%s", diff)
	}
	if got := Union(nil, "x"); !cmp.Equal([]string{"x"}, got) {
		t.Errorf("Union(nil, x) = %v", got)
	}
}

func TestToStringSet(t *testing.T) {
	if ToStringSet(nil) != nil {
		t.Error("ToStringSet(nil) should be nil")
	}
	set := ToStringSet([]string{"a", "b", "a"})
	if len(set) != 2 {
		t.Errorf("len = %d, want 2", len(set))
	}
}

func TestParseFacets(t *testing.T) {
	if got := ParseFacets(nil); len(got) != 0 {
		t.Errorf("ParseFacets(nil) = %v, want empty", got)
	}

	got := ParseFacets([]RawFacet{
		{Property: "fileUuids", Values: []FacetValue{{Val: "f1", Count: 3}}},
		{Property: "severities", Values: []FacetValue{{Val: "MAJOR", Count: 10}, {Val: "INFO", Count: 0}}},
		{Property: "tags", Values: nil},
	})
	want := map[string]Facet{
		"files":      {"f1": 3},
		"severities": {"MAJOR": 10, "INFO": 0},
		"tags":       {},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseFacets mismatch (-want +got):\n%s", diff)
	}
}
