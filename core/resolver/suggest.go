package resolver

import (
	"strings"

	"github.com/agext/levenshtein"

	"github.com/pratham7049/azure-pricing-calculator/core/facets"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
)

// SuggestionCutoff is the minimum similarity for a value to be suggested
const SuggestionCutoff = 0.6

// Suggestion is a candidate correction for one facet value
type Suggestion struct {
	Dimension string  `json:"dimension"`
	Input     string  `json:"input"`
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
}

// Apply returns a copy of sel with the suggested value substituted
func (s Suggestion) Apply(sel types.FacetSelection) types.FacetSelection {
	out := sel.Clone()
	out[s.Dimension] = s.Candidate
	return out
}

// Suggest ranks the vocabulary of dim by similarity to value and returns the
// best candidate scoring at least SuggestionCutoff. Ties go to the value that
// sorts first.
func Suggest(index *facets.Index, dim, value string) (Suggestion, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	best := Suggestion{Dimension: dim, Input: value}
	for _, candidate := range index.Values(dim) {
		score := levenshtein.Similarity(value, strings.ToLower(candidate), nil)
		if score > best.Score {
			best.Candidate = candidate
			best.Score = score
		}
	}
	if best.Candidate == "" || best.Score < SuggestionCutoff {
		return Suggestion{}, false
	}
	return best, true
}

// Suggest is a convenience wrapper over the resolver's index
func (r *Resolver) Suggest(dim, value string) (Suggestion, bool) {
	return Suggest(r.index, dim, value)
}
