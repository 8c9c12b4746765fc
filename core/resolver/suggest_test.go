package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/facets"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
)

func TestSuggest(t *testing.T) {
	b := catalog.NewBuilder()
	b.AddVocabulary(types.DimRedundancy, []catalog.VocabEntry{
		{Slug: "lrs"}, {Slug: "zrs"}, {Slug: "grs"}, {Slug: "ra-grs"},
	})
	b.AddVocabulary(types.DimAccessTier, []catalog.VocabEntry{
		{Slug: "hot"}, {Slug: "cool"}, {Slug: "archive"},
	})
	ix := facets.Build(b.Build(), nil)

	tests := []struct {
		name  string
		dim   string
		value string
		want  string
		ok    bool
	}{
		{"transposition", types.DimAccessTier, "arhcive", "archive", true},
		{"extra letter", types.DimAccessTier, "coool", "cool", true},
		{"case folded", types.DimAccessTier, "HOT", "hot", true},
		{"tie goes to first sorted", types.DimRedundancy, "xrs", "grs", true},
		{"hyphenated", types.DimRedundancy, "ragrs", "ra-grs", true},
		{"too far", types.DimAccessTier, "premium", "", false},
		{"unknown dimension", "nope", "hot", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Suggest(ix, tt.dim, tt.value)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, s.Candidate)
			if ok {
				assert.GreaterOrEqual(t, s.Score, SuggestionCutoff)
				assert.Equal(t, tt.dim, s.Dimension)
			}
		})
	}
}

func TestSuggestion_Apply(t *testing.T) {
	orig := types.FacetSelection{types.DimAccessTier: "hott", types.DimRedundancy: "lrs"}
	s := Suggestion{Dimension: types.DimAccessTier, Input: "hott", Candidate: "hot"}

	got := s.Apply(orig)

	assert.Equal(t, "hot", got[types.DimAccessTier])
	assert.Equal(t, "lrs", got[types.DimRedundancy])
	assert.Equal(t, "hott", orig[types.DimAccessTier])
}
