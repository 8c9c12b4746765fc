// Package facets derives the legal value set of each facet dimension from a
// catalog snapshot.
//
// Explicit vocabulary lists published by the catalog are authoritative. For
// the remaining schema dimensions values come from decomposing composite keys.
// Region, operation type and reservation plan are derived from prices and
// key families.
package facets

import (
	"sort"
	"strings"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

// Source records where a dimension's values came from
type Source string

const (
	SourceExplicit  Source = "explicit"
	SourceKeyTokens Source = "key_tokens"
	SourceDerived   Source = "derived"
)

// Dimension is the vocabulary of one facet
type Dimension struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
	Source Source   `json:"source"`
}

// Index maps dimensions to their sorted vocabularies
type Index struct {
	schema types.FacetSchema
	dims   map[string]Dimension

	// padded keys ("-" + key + "-") for token containment checks
	padded []string
}

// Build derives the vocabulary of every dimension in schema plus the region,
// operation type and reservation plan dimensions. The result is a pure
// function of the catalog snapshot and schema.
func Build(cat *catalog.Catalog, schema types.FacetSchema) *Index {
	ix := &Index{
		schema: schema,
		dims:   make(map[string]Dimension),
	}

	explicit := explicitSlugs(cat)
	tokenValues := make(map[string]map[string]bool)
	var operations, reservations []string

	cat.Range(func(key types.OfferKey, _ *catalog.OfferRecord) bool {
		ix.padded = append(ix.padded, types.KeyDelimiter+string(key)+types.KeyDelimiter)

		// operation and reservation keys form their own families
		switch {
		case key.IsReservation():
			reservations = append(reservations, string(key))
			return true
		case key.IsOperation():
			operations = append(operations, string(key))
			return true
		case len(schema) == 0:
			return true
		}

		segs, ok := Segment(key, schema, explicit)
		if !ok {
			return true
		}
		for i, dim := range schema {
			if tokenValues[dim] == nil {
				tokenValues[dim] = make(map[string]bool)
			}
			tokenValues[dim][segs[i]] = true
		}
		return true
	})

	for _, dim := range schema {
		ix.dims[dim] = Dimension{Name: dim, Values: sortedSet(tokenValues[dim]), Source: SourceKeyTokens}
	}

	if _, ok := ix.dims[types.DimRegion]; !ok || len(ix.dims[types.DimRegion].Values) == 0 {
		ix.dims[types.DimRegion] = Dimension{Name: types.DimRegion, Values: cat.Regions(), Source: SourceDerived}
	}
	ix.dims[types.DimOperationType] = Dimension{Name: types.DimOperationType, Values: sortedUnique(operations), Source: SourceDerived}
	ix.dims[types.DimReservationPlan] = Dimension{Name: types.DimReservationPlan, Values: sortedUnique(reservations), Source: SourceDerived}

	// explicit lists take precedence over anything derived
	for dim, slugs := range explicit {
		ix.dims[dim] = Dimension{Name: dim, Values: sortedUnique(slugs), Source: SourceExplicit}
	}

	return ix
}

// Schema returns the schema the index was built for
func (ix *Index) Schema() types.FacetSchema {
	return ix.schema
}

// Dimensions returns the indexed dimension names, sorted
func (ix *Index) Dimensions() []string {
	names := make([]string, 0, len(ix.dims))
	for name := range ix.dims {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dimension returns one dimension's vocabulary
func (ix *Index) Dimension(name string) (Dimension, bool) {
	d, ok := ix.dims[name]
	return d, ok
}

// Values returns the sorted vocabulary for dim
func (ix *Index) Values(dim string) []string {
	return ix.dims[dim].Values
}

// Vocabulary returns every dimension's values
func (ix *Index) Vocabulary() map[string][]string {
	out := make(map[string][]string, len(ix.dims))
	for name, d := range ix.dims {
		out[name] = d.Values
	}
	return out
}

// Contains reports whether value is legal for dim. A dimension whose
// vocabulary could not be derived from keys accepts any value that appears
// as a whole token run in some catalog key.
func (ix *Index) Contains(dim, value string) bool {
	if value == "" {
		return false
	}
	d, ok := ix.dims[dim]
	if ok && len(d.Values) > 0 {
		i := sort.SearchStrings(d.Values, value)
		return i < len(d.Values) && d.Values[i] == value
	}
	if d.Source == SourceExplicit {
		return false
	}
	needle := types.KeyDelimiter + value + types.KeyDelimiter
	for _, k := range ix.padded {
		if strings.Contains(k, needle) {
			return true
		}
	}
	return false
}

// Validate checks every selected value against the vocabulary. The first
// violation, in dimension name order, is returned as an INVALID_SELECTION
// error.
func (ix *Index) Validate(sel types.FacetSelection) error {
	for _, dim := range sel.Dimensions() {
		if !ix.Contains(dim, sel[dim]) {
			return errors.InvalidSelection(dim, sel[dim])
		}
	}
	return nil
}

// HasExplicit reports whether dim's vocabulary was published by the catalog
func (ix *Index) HasExplicit(dim string) bool {
	return ix.dims[dim].Source == SourceExplicit
}

func explicitSlugs(cat *catalog.Catalog) map[string][]string {
	out := make(map[string][]string)
	for _, dim := range cat.VocabularyDimensions() {
		for _, v := range cat.Vocabulary(dim) {
			out[dim] = append(out[dim], v.Slug)
		}
	}
	return out
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func sortedUnique(values []string) []string {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return sortedSet(set)
}
