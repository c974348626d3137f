package filter

// Facet maps a raw value to the number of matching issues.
type Facet map[string]int

// FacetValue is one bucket of a raw facet as returned by the search endpoint.
type FacetValue struct {
	Val   string `json:"val"`
	Count int    `json:"count"`
}

// RawFacet is one facet as returned by the search endpoint.
type RawFacet struct {
	Property string       `json:"property"`
	Values   []FacetValue `json:"values"`
}

var facetRenames = map[string]string{
	"fileUuids":    PropFiles,
	"moduleUuids":  PropModules,
	"projectUuids": PropProjects,
}

// ParseFacets flattens raw facets into a map keyed by property, renaming the
// uuid-based properties to their filter names.
func ParseFacets(raw []RawFacet) map[string]Facet {
	result := make(map[string]Facet, len(raw))
	for _, facet := range raw {
		values := make(Facet, len(facet.Values))
		for _, v := range facet.Values {
			values[v.Val] = v.Count
		}
		property := facet.Property
		if renamed, ok := facetRenames[property]; ok {
			property = renamed
		}
		result[property] = values
	}
	return result
}
