package types

import (
	"sort"
	"strings"
)

// FacetSchema is the ordered list of dimensions a composite key is built from
type FacetSchema []string

// ParseSchema parses a comma separated dimension list
func ParseSchema(s string) FacetSchema {
	var schema FacetSchema
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			schema = append(schema, part)
		}
	}
	return schema
}

// Len returns the number of dimensions
func (s FacetSchema) Len() int {
	return len(s)
}

// Contains reports whether dim is part of the schema
func (s FacetSchema) Contains(dim string) bool {
	for _, d := range s {
		if d == dim {
			return true
		}
	}
	return false
}

// String returns the schema as a comma separated list
func (s FacetSchema) String() string {
	return strings.Join(s, ",")
}

// Join assembles the composite key for sel. Dimensions the selection does not
// set are reported in missing and skipped in the key.
func (s FacetSchema) Join(sel FacetSelection) (key OfferKey, missing []string) {
	parts := make([]string, 0, len(s))
	for _, dim := range s {
		v, ok := sel[dim]
		if !ok || v == "" {
			missing = append(missing, dim)
			continue
		}
		parts = append(parts, v)
	}
	return OfferKey(strings.Join(parts, KeyDelimiter)), missing
}

// Order lists the dimensions sel sets: schema dimensions first in schema
// order, then the remainder by name.
func (s FacetSchema) Order(sel FacetSelection) []string {
	dims := make([]string, 0, len(sel))
	for _, dim := range s {
		if sel[dim] != "" {
			dims = append(dims, dim)
		}
	}
	for _, dim := range sel.Dimensions() {
		if sel[dim] != "" && !s.Contains(dim) {
			dims = append(dims, dim)
		}
	}
	return dims
}

// FacetSelection maps a dimension name to the chosen value
type FacetSelection map[string]string

// Get returns the value chosen for dim
func (s FacetSelection) Get(dim string) string {
	return s[dim]
}

// Clone returns a copy of the selection
func (s FacetSelection) Clone() FacetSelection {
	out := make(FacetSelection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Dimensions returns the selected dimension names in sorted order
func (s FacetSelection) Dimensions() []string {
	dims := make([]string, 0, len(s))
	for d := range s {
		dims = append(dims, d)
	}
	sort.Strings(dims)
	return dims
}

// Normalize lower-cases and trims every value, as slugs are lower case
func (s FacetSelection) Normalize() FacetSelection {
	out := make(FacetSelection, len(s))
	for k, v := range s {
		out[k] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}
