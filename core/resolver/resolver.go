// Package resolver finds the catalog offer for a facet selection.
//
// Matching is tiered: an exact composite key wins, then the first catalog key
// containing the reduced key built from the load-bearing dimensions. Fuzzy
// correction of a single value is only offered as a Suggestion; it is applied
// when the caller confirms it, never implicitly.
package resolver

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/facets"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
	"github.com/pratham7049/azure-pricing-calculator/internal/logging"
)

// Category restricts which key family a resolution pass may return
type Category int

const (
	// CategoryAny admits every key
	CategoryAny Category = iota
	// CategoryCapacity excludes operation keys
	CategoryCapacity
	// CategoryOperation admits operation keys only
	CategoryOperation
)

// String returns string representation
func (c Category) String() string {
	switch c {
	case CategoryCapacity:
		return "capacity"
	case CategoryOperation:
		return "operation"
	default:
		return "any"
	}
}

// Admits reports whether key belongs to the category
func (c Category) Admits(key types.OfferKey) bool {
	switch c {
	case CategoryCapacity:
		return !key.IsOperation()
	case CategoryOperation:
		return key.IsOperation()
	default:
		return true
	}
}

// Request is one resolution query
type Request struct {
	Selection types.FacetSelection
	Schema    types.FacetSchema

	// LoadBearing lists, in key order, the dimensions the partial pass keeps
	LoadBearing []string

	Category Category
}

// Match is a resolved offer
type Match struct {
	Key     types.OfferKey
	Record  *catalog.OfferRecord
	Quality types.MatchQuality
}

// ResolutionFailure reports that no tier produced a match
type ResolutionFailure struct {
	AttemptedKey types.OfferKey
	Reason       error
}

// Error implements error
func (f *ResolutionFailure) Error() string {
	return f.Reason.Error()
}

// Unwrap exposes the NO_MATCH error
func (f *ResolutionFailure) Unwrap() error {
	return f.Reason
}

func noMatch(key types.OfferKey) *ResolutionFailure {
	return &ResolutionFailure{AttemptedKey: key, Reason: errors.NoMatch(string(key))}
}

// Resolver resolves selections against one catalog snapshot. It holds no
// mutable state and may be shared between goroutines.
type Resolver struct {
	cat    *catalog.Catalog
	index  *facets.Index
	logger *zap.Logger
}

// New creates a resolver. index supplies the vocabulary used to validate
// selections and rank suggestions.
func New(cat *catalog.Catalog, index *facets.Index, logger *zap.Logger) *Resolver {
	return &Resolver{
		cat:    cat,
		index:  index,
		logger: logging.OrGlobal(logger),
	}
}

// Catalog returns the catalog being resolved against
func (r *Resolver) Catalog() *catalog.Catalog {
	return r.cat
}

// Index returns the vocabulary index
func (r *Resolver) Index() *facets.Index {
	return r.index
}

// Validate checks the selection against the vocabulary. A violation is an
// INVALID_SELECTION error; when a close vocabulary value exists it is
// attached as the "did_you_mean" context entry.
func (r *Resolver) Validate(sel types.FacetSelection) error {
	err := r.index.Validate(sel)
	if err == nil {
		return nil
	}
	if e, ok := errors.As(err); ok {
		dim, _ := e.Context["dimension"].(string)
		value, _ := e.Context["value"].(string)
		if s, found := Suggest(r.index, dim, value); found {
			e.WithContext("did_you_mean", s.Candidate)
		}
	}
	return err
}

// Resolve validates the selection and runs the exact and partial passes.
//
// When the schema does not name every dimension the selection sets, as with
// a positional schema inferred from a catalog without vocabularies, the exact
// pass accepts the first key composed of exactly the selected values in any
// order, and the partial pass the first key holding every load-bearing value
// as a token run. An empty LoadBearing keeps every selected dimension.
func (r *Resolver) Resolve(req Request) (*Match, error) {
	sel := req.Selection.Normalize()
	if err := r.Validate(sel); err != nil {
		return nil, err
	}

	dims := req.Schema.Order(sel)
	expected, missing := req.Schema.Join(sel)
	covered := len(missing) == 0 && len(dims) == len(req.Schema)
	if !covered {
		expected = types.OfferKey(joinValues(sel, dims))
	}

	if covered {
		if m := r.exact(expected, req.Category); m != nil {
			return m, nil
		}
	} else if m := r.composedOf(valuesOf(sel, dims), req.Category); m != nil {
		return m, nil
	}

	loadBearing := req.LoadBearing
	if len(loadBearing) == 0 {
		loadBearing = dims
	}
	m := r.firstContaining(joinValues(sel, loadBearing), req.Category)
	if m == nil && !covered {
		m = r.firstWithTokens(valuesOf(sel, loadBearing), req.Category)
	}
	if m != nil {
		r.logger.Warn("no exact match, using closest match",
			zap.String("expected", string(expected)),
			zap.Strings("load_bearing", loadBearing),
			zap.String("matched", string(m.Key)))
		return m, nil
	}

	return nil, noMatch(expected)
}

// ResolveConfirmed applies a confirmed suggestion and resolves the corrected
// selection. A successful match is reported with quality Fuzzy.
func (r *Resolver) ResolveConfirmed(req Request, s Suggestion) (*Match, error) {
	req.Selection = s.Apply(req.Selection)
	m, err := r.Resolve(req)
	if err != nil {
		return nil, err
	}
	m.Quality = types.MatchFuzzy
	return m, nil
}

// ResolveKey looks up an explicitly targeted key, such as an operation or
// reservation offer chosen from its vocabulary.
func (r *Resolver) ResolveKey(key types.OfferKey, category Category) (*Match, error) {
	if m := r.exact(key, category); m != nil {
		return m, nil
	}
	return nil, noMatch(key)
}

// FindFirst returns the first key in catalog order containing substr.
func (r *Resolver) FindFirst(substr string, category Category) (*Match, error) {
	if substr != "" {
		if m := r.firstContaining(substr, category); m != nil {
			return m, nil
		}
	}
	return nil, noMatch(types.OfferKey(substr))
}

func (r *Resolver) exact(key types.OfferKey, category Category) *Match {
	if !category.Admits(key) {
		return nil
	}
	rec, ok := r.cat.Get(key)
	if !ok {
		return nil
	}
	return &Match{Key: key, Record: rec, Quality: types.MatchExact}
}

// firstContaining accepts the first hit in catalog order. When several keys
// contain substr the earliest inserted one wins.
func (r *Resolver) firstContaining(substr string, category Category) *Match {
	if substr == "" {
		return nil
	}
	return r.first(category, types.MatchPartial, func(key string) bool {
		return strings.Contains(key, substr)
	})
}

// firstWithTokens returns the first key holding every value as a whole token
// run, in any order.
func (r *Resolver) firstWithTokens(values []string, category Category) *Match {
	if len(values) == 0 {
		return nil
	}
	return r.first(category, types.MatchPartial, func(key string) bool {
		padded := types.KeyDelimiter + key + types.KeyDelimiter
		for _, v := range values {
			if !strings.Contains(padded, types.KeyDelimiter+v+types.KeyDelimiter) {
				return false
			}
		}
		return true
	})
}

// composedOf returns the first key that is exactly the given values joined in
// some order.
func (r *Resolver) composedOf(values []string, category Category) *Match {
	if len(values) == 0 {
		return nil
	}
	return r.first(category, types.MatchExact, func(key string) bool {
		return decomposes(key, values, make([]bool, len(values)), len(values))
	})
}

func (r *Resolver) first(category Category, quality types.MatchQuality, accept func(key string) bool) *Match {
	var m *Match
	r.cat.Range(func(key types.OfferKey, rec *catalog.OfferRecord) bool {
		if category.Admits(key) && accept(string(key)) {
			m = &Match{Key: key, Record: rec, Quality: quality}
			return false
		}
		return true
	})
	return m
}

// decomposes reports whether rest is the unused values joined by the key
// delimiter, each used once.
func decomposes(rest string, values []string, used []bool, left int) bool {
	if left == 0 {
		return rest == ""
	}
	for i, v := range values {
		if used[i] {
			continue
		}
		var next string
		switch {
		case left == 1 && rest == v:
			next = ""
		case left > 1 && strings.HasPrefix(rest, v+types.KeyDelimiter):
			next = rest[len(v)+len(types.KeyDelimiter):]
		default:
			continue
		}
		used[i] = true
		if decomposes(next, values, used, left-1) {
			return true
		}
		used[i] = false
	}
	return false
}

func valuesOf(sel types.FacetSelection, dims []string) []string {
	values := make([]string, 0, len(dims))
	for _, dim := range dims {
		if v := sel[dim]; v != "" {
			values = append(values, v)
		}
	}
	return values
}

func joinValues(sel types.FacetSelection, dims []string) string {
	return strings.Join(valuesOf(sel, dims), types.KeyDelimiter)
}

// Describe renders a match for log lines and CLI output
func (m *Match) Describe() string {
	if m == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s (%s)", m.Key, m.Quality)
}
