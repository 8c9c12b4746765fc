// Package types - Quotation types
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyINR Currency = "INR"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// ResolvedQuote is one priced component of an estimate
type ResolvedQuote struct {
	// Component is the caller's name for the line (e.g. "storage")
	Component string `json:"component"`

	// Kind is the component kind that chose the unit policy
	Kind string `json:"kind"`

	// Selection is the facet selection the line was resolved from
	Selection FacetSelection `json:"selection,omitempty"`

	// MatchedKey is the catalog key that priced the line
	MatchedKey OfferKey `json:"matched_key,omitempty"`

	// MatchQuality records how MatchedKey was found
	MatchQuality MatchQuality `json:"match_quality"`

	// Unit is the catalog unit the rate was read from
	Unit UnitTag `json:"unit,omitempty"`

	// Rate is the catalog rate as published for Unit
	Rate decimal.Decimal `json:"rate"`

	// UnitDivisor is the number of base units Rate covers
	UnitDivisor decimal.Decimal `json:"unit_divisor"`

	// NormalizedRatePerUnit is Rate / UnitDivisor
	NormalizedRatePerUnit decimal.Decimal `json:"normalized_rate_per_unit"`

	// UsageQuantity is the usage in base units
	UsageQuantity decimal.Decimal `json:"usage_quantity"`

	// LineCost is (UsageQuantity / UnitDivisor) * Rate
	LineCost decimal.Decimal `json:"line_cost"`

	// Currency is the currency the offer was priced in
	Currency Currency `json:"currency,omitempty"`

	// Priced is false when pricing was unavailable; LineCost is then zero
	// but must not be read as a free line
	Priced bool `json:"priced"`
}

// Warning is a non-fatal problem accumulated while estimating
type Warning struct {
	// Type is the error kind (NO_MATCH, UNPRICED_REGION, ...)
	Type string `json:"type"`

	// Component is the line the warning belongs to, if any
	Component string `json:"component,omitempty"`

	// Message describes the problem
	Message string `json:"message"`
}

// Quotation is the sole artifact handed to presentation layers
type Quotation struct {
	// ID uniquely identifies this quotation
	ID string `json:"id"`

	// Provider is the catalog's cloud
	Provider Provider `json:"provider,omitempty"`

	// Region is the priced region
	Region string `json:"region"`

	// Currency is the session currency
	Currency Currency `json:"currency"`

	// Lines are the itemized components in request order
	Lines []ResolvedQuote `json:"lines"`

	// Total is the sum of all line costs
	Total decimal.Decimal `json:"total"`

	// Warnings are non-fatal problems
	Warnings []Warning `json:"warnings,omitempty"`

	// GeneratedAt is when the quotation was produced
	GeneratedAt time.Time `json:"generated_at"`
}

// AddWarning appends a warning
func (q *Quotation) AddWarning(w Warning) {
	q.Warnings = append(q.Warnings, w)
}

// Line returns the line for a component name
func (q *Quotation) Line(component string) (ResolvedQuote, bool) {
	for _, l := range q.Lines {
		if l.Component == component {
			return l, true
		}
	}
	return ResolvedQuote{}, false
}

// Complete reports whether every line was priced
func (q *Quotation) Complete() bool {
	for _, l := range q.Lines {
		if !l.Priced {
			return false
		}
	}
	return true
}
