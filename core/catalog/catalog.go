// Package catalog holds the aggregated pricing catalog and the loader that
// builds it from paginated sources.
//
// A Catalog is immutable once built. Iteration follows the order in which
// keys first appeared, so every consumer sees the same sequence for the same
// snapshot.
package catalog

import (
	"sort"
	"strings"

	"github.com/pratham7049/azure-pricing-calculator/core/types"
)

// Catalog maps offer keys to offer records
type Catalog struct {
	offers   map[types.OfferKey]*OfferRecord
	order    []types.OfferKey
	vocab    map[string][]VocabEntry
	currency types.Currency
	warnings []string
	pages    int
}

// Len returns the number of offers
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Pages returns the number of pages the catalog was assembled from
func (c *Catalog) Pages() int {
	return c.pages
}

// Get returns the offer for key
func (c *Catalog) Get(key types.OfferKey) (*OfferRecord, bool) {
	if c == nil {
		return nil, false
	}
	rec, ok := c.offers[key]
	return rec, ok
}

// Has reports whether key is present
func (c *Catalog) Has(key types.OfferKey) bool {
	_, ok := c.Get(key)
	return ok
}

// Keys returns all keys in catalog order
func (c *Catalog) Keys() []types.OfferKey {
	if c == nil {
		return nil
	}
	keys := make([]types.OfferKey, len(c.order))
	copy(keys, c.order)
	return keys
}

// Range calls fn for each offer in catalog order until fn returns false
func (c *Catalog) Range(fn func(key types.OfferKey, rec *OfferRecord) bool) {
	if c == nil {
		return
	}
	for _, k := range c.order {
		if !fn(k, c.offers[k]) {
			return
		}
	}
}

// Vocabulary returns the explicit vocabulary published for dim
func (c *Catalog) Vocabulary(dim string) []VocabEntry {
	if c == nil {
		return nil
	}
	return c.vocab[dim]
}

// VocabularyDimensions returns the dimensions with an explicit vocabulary, sorted
func (c *Catalog) VocabularyDimensions() []string {
	if c == nil {
		return nil
	}
	dims := make([]string, 0, len(c.vocab))
	for d := range c.vocab {
		dims = append(dims, d)
	}
	sort.Strings(dims)
	return dims
}

// DisplayName returns the published display name for a slug, or the slug
func (c *Catalog) DisplayName(dim, slug string) string {
	for _, v := range c.Vocabulary(dim) {
		if v.Slug == slug {
			return v.DisplayName
		}
	}
	return slug
}

// Currency returns the catalog-level currency, if the source published one
func (c *Catalog) Currency() types.Currency {
	if c == nil {
		return ""
	}
	return c.currency
}

// Warnings returns page-level warnings recorded while loading
func (c *Catalog) Warnings() []string {
	if c == nil {
		return nil
	}
	return c.warnings
}

// Regions returns every region any offer is priced in, sorted
func (c *Catalog) Regions() []string {
	seen := make(map[string]bool)
	c.Range(func(_ types.OfferKey, rec *OfferRecord) bool {
		for _, r := range rec.Regions() {
			seen[r] = true
		}
		return true
	})
	regions := make([]string, 0, len(seen))
	for r := range seen {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	return regions
}

// KeysContaining returns keys that contain substr, in catalog order
func (c *Catalog) KeysContaining(substr string) []types.OfferKey {
	var keys []types.OfferKey
	c.Range(func(k types.OfferKey, _ *OfferRecord) bool {
		if strings.Contains(string(k), substr) {
			keys = append(keys, k)
		}
		return true
	})
	return keys
}

// Builder assembles a Catalog. It is not safe for concurrent use.
type Builder struct {
	cat *Catalog
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{cat: &Catalog{
		offers: make(map[types.OfferKey]*OfferRecord),
		vocab:  make(map[string][]VocabEntry),
	}}
}

// Add inserts rec. A later record for the same key replaces the earlier one
// but keeps its position.
func (b *Builder) Add(rec *OfferRecord) *Builder {
	if rec == nil || rec.Key == "" {
		return b
	}
	if _, exists := b.cat.offers[rec.Key]; !exists {
		b.cat.order = append(b.cat.order, rec.Key)
	}
	b.cat.offers[rec.Key] = rec
	return b
}

// AddVocabulary merges entries into the vocabulary for dim. Duplicate slugs
// keep the latest display name.
func (b *Builder) AddVocabulary(dim string, entries []VocabEntry) *Builder {
	existing := b.cat.vocab[dim]
	for _, e := range entries {
		if e.Slug == "" {
			continue
		}
		replaced := false
		for i := range existing {
			if existing[i].Slug == e.Slug {
				existing[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, e)
		}
	}
	b.cat.vocab[dim] = existing
	return b
}

// SetCurrency sets the catalog-level currency
func (b *Builder) SetCurrency(c types.Currency) *Builder {
	b.cat.currency = c
	return b
}

// AddWarning records a page-level warning
func (b *Builder) AddWarning(msg string) *Builder {
	b.cat.warnings = append(b.cat.warnings, msg)
	return b
}

// Len returns the number of offers added so far
func (b *Builder) Len() int {
	return len(b.cat.order)
}

// Build returns the catalog. The builder must not be used afterwards.
func (b *Builder) Build() *Catalog {
	cat := b.cat
	b.cat = nil
	return cat
}

// New builds a catalog from records, mainly for fixtures
func New(records ...*OfferRecord) *Catalog {
	b := NewBuilder()
	for _, r := range records {
		b.Add(r)
	}
	return b.Build()
}
