package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pratham7049/azure-pricing-calculator/core/facets"
	"github.com/pratham7049/azure-pricing-calculator/core/resolver"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Offers  int    `json:"offers"`
	Pages   int    `json:"pages"`
	Partial bool   `json:"partial_catalog"`
	Time    string `json:"time"`
}

// FacetsResponse is returned by GET /facets
type FacetsResponse struct {
	Schema     types.FacetSchema  `json:"schema"`
	Dimensions []facets.Dimension `json:"dimensions"`
}

// SuggestResponse is returned by GET /suggest
type SuggestResponse struct {
	Dimension  string               `json:"dimension"`
	Value      string               `json:"value"`
	Valid      bool                 `json:"valid"`
	Suggestion *resolver.Suggestion `json:"suggestion,omitempty"`
}

// KeysResponse is returned by GET /keys
type KeysResponse struct {
	Keys  []types.OfferKey `json:"keys"`
	Count int              `json:"count"`
}

// LineItem is one record of GET /line-items
type LineItem struct {
	Key           types.OfferKey    `json:"key"`
	Fields        map[string]string `json:"fields"`
	UnitPrice     string            `json:"unit_price"`
	UnitOfMeasure string            `json:"unit_of_measure,omitempty"`
	Currency      types.Currency    `json:"currency,omitempty"`
}

// LineItemsResponse is returned by GET /line-items
type LineItemsResponse struct {
	Items []LineItem `json:"items"`
	Count int        `json:"count"`
}

// EstimateResponse is returned by POST /estimate
type EstimateResponse struct {
	RequestID   string           `json:"request_id,omitempty"`
	ContentHash string           `json:"content_hash"`
	Quotation   *types.Quotation `json:"quotation"`
	DurationMs  int64            `json:"duration_ms"`
}

// QuotationSummary is one entry of GET /quotations
type QuotationSummary struct {
	ID          string          `json:"id"`
	ContentHash string          `json:"content_hash,omitempty"`
	Region      string          `json:"region"`
	Currency    types.Currency  `json:"currency"`
	Total       decimal.Decimal `json:"total"`
	Complete    bool            `json:"complete"`
	CreatedAt   time.Time       `json:"created_at"`
}

// QuotationsResponse is returned by GET /quotations
type QuotationsResponse struct {
	Quotations []QuotationSummary `json:"quotations"`
	Count      int                `json:"count"`
}

// ErrorResponse wraps a typed error
type ErrorResponse struct {
	Error *errors.Error `json:"error"`
}
