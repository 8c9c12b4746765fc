package facets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
)

// Segment splits key into exactly len(schema) values. A dimension with
// explicit slugs consumes the slug matching the next tokens (slugs may
// contain the delimiter); any other dimension consumes one token. The split
// fails when the tokens do not line up with the schema.
func Segment(key types.OfferKey, schema types.FacetSchema, explicit map[string][]string) ([]string, bool) {
	tokens := strings.Split(string(key), types.KeyDelimiter)
	out := make([]string, 0, len(schema))
	if segment(tokens, schema, explicit, &out) {
		return out, true
	}
	return nil, false
}

func segment(tokens []string, schema types.FacetSchema, explicit map[string][]string, out *[]string) bool {
	if len(schema) == 0 {
		return len(tokens) == 0
	}
	if len(tokens) == 0 {
		return false
	}

	dim := schema[0]
	slugs, ok := explicit[dim]
	if !ok || len(slugs) == 0 {
		*out = append(*out, tokens[0])
		if segment(tokens[1:], schema[1:], explicit, out) {
			return true
		}
		*out = (*out)[:len(*out)-1]
		return false
	}

	for _, slug := range byLengthDesc(slugs) {
		n := strings.Count(slug, types.KeyDelimiter) + 1
		if n > len(tokens) || strings.Join(tokens[:n], types.KeyDelimiter) != slug {
			continue
		}
		*out = append(*out, slug)
		if segment(tokens[n:], schema[1:], explicit, out) {
			return true
		}
		*out = (*out)[:len(*out)-1]
	}
	return false
}

func byLengthDesc(slugs []string) []string {
	out := make([]string, len(slugs))
	copy(out, slugs)
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// InferSchema guesses the key schema of a catalog generation. When explicit
// vocabularies exist it picks the most common ordering of explicit dimensions
// that fully decomposes capacity keys. Without vocabularies it falls back to
// positional dimensions named segment1..segmentN for the most common token
// count. Operation and reservation keys are ignored.
func InferSchema(cat *catalog.Catalog) types.FacetSchema {
	explicit := explicitSlugs(cat)
	delete(explicit, types.DimRegion)

	dims := make([]string, 0, len(explicit))
	for d := range explicit {
		dims = append(dims, d)
	}
	sort.Strings(dims)

	sequences := make(map[string]int)
	tokenCounts := make(map[int]int)

	cat.Range(func(key types.OfferKey, _ *catalog.OfferRecord) bool {
		if key.IsOperation() || key.IsReservation() {
			return true
		}
		tokens := strings.Split(string(key), types.KeyDelimiter)
		tokenCounts[len(tokens)]++
		if len(dims) > 0 {
			var seq []string
			if walk(tokens, dims, explicit, map[string]bool{}, &seq) {
				sequences[strings.Join(seq, ",")]++
			}
		}
		return true
	})

	if best := mostCommon(sequences); best != "" {
		return types.ParseSchema(best)
	}

	n, count := 0, 0
	for tc, c := range tokenCounts {
		if c > count || (c == count && tc < n) {
			n, count = tc, c
		}
	}
	schema := make(types.FacetSchema, n)
	for i := range schema {
		schema[i] = fmt.Sprintf("segment%d", i+1)
	}
	return schema
}

// walk decomposes tokens into slugs of distinct explicit dimensions
func walk(tokens, dims []string, explicit map[string][]string, used map[string]bool, seq *[]string) bool {
	if len(tokens) == 0 {
		return len(*seq) > 0
	}
	for _, dim := range dims {
		if used[dim] {
			continue
		}
		for _, slug := range byLengthDesc(explicit[dim]) {
			n := strings.Count(slug, types.KeyDelimiter) + 1
			if n > len(tokens) || strings.Join(tokens[:n], types.KeyDelimiter) != slug {
				continue
			}
			used[dim] = true
			*seq = append(*seq, dim)
			if walk(tokens[n:], dims, explicit, used, seq) {
				return true
			}
			*seq = (*seq)[:len(*seq)-1]
			used[dim] = false
		}
	}
	return false
}

func mostCommon(counts map[string]int) string {
	best, bestCount := "", 0
	for seq, c := range counts {
		switch {
		case c > bestCount:
			best, bestCount = seq, c
		case c == bestCount && strings.Count(seq, ",") > strings.Count(best, ","):
			best = seq
		case c == bestCount && strings.Count(seq, ",") == strings.Count(best, ",") && seq < best:
			best = seq
		}
	}
	return best
}
