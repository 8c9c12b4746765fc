package catalog

import (
	"context"

	"github.com/pratham7049/azure-pricing-calculator/core/types"
)

// VocabEntry is one published vocabulary value
type VocabEntry struct {
	Slug        string `json:"slug" yaml:"slug"`
	DisplayName string `json:"displayName" yaml:"displayName"`
}

// RawPage is one page of a catalog as decoded by a page source.
//
// Offers is set for dict-of-offers pages, Items for line item pages. A page
// where both are nil did not carry either field and is malformed.
type RawPage struct {
	Offers map[types.OfferKey]*OfferRecord

	Items []*OfferRecord

	// NextPageToken continues pagination; empty ends it
	NextPageToken string

	// Vocabulary holds explicit facet lists keyed by dimension
	Vocabulary map[string][]VocabEntry

	// Currency applies to records that do not carry their own
	Currency types.Currency
}

// Malformed reports whether the page lacks both offers and items
func (p *RawPage) Malformed() bool {
	return p == nil || (p.Offers == nil && p.Items == nil)
}

// Len returns the number of records on the page
func (p *RawPage) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Offers) + len(p.Items)
}

// PageSource yields catalog pages. An empty token requests the first page.
type PageSource interface {
	Next(ctx context.Context, token string) (*RawPage, error)
}

// PageSourceFunc adapts a function to PageSource
type PageSourceFunc func(ctx context.Context, token string) (*RawPage, error)

// Next implements PageSource
func (f PageSourceFunc) Next(ctx context.Context, token string) (*RawPage, error) {
	return f(ctx, token)
}
