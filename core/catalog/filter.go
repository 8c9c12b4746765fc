package catalog

import (
	"strings"

	"github.com/pratham7049/azure-pricing-calculator/core/types"
)

// LineItemFilter selects structured line items by field. Empty fields match
// anything. Region, Service, SKU and Type compare case-insensitively; Product,
// Meter and Contains match substrings.
type LineItemFilter struct {
	Region   string `json:"region,omitempty"`
	Service  string `json:"service,omitempty"`
	Product  string `json:"product,omitempty"`
	SKU      string `json:"sku,omitempty"`
	Meter    string `json:"meter,omitempty"`
	Type     string `json:"type,omitempty"`
	Contains string `json:"contains,omitempty"`
}

// IsZero reports whether the filter matches every line item
func (f LineItemFilter) IsZero() bool {
	return f == LineItemFilter{}
}

// Match reports whether rec satisfies the filter
func (f LineItemFilter) Match(rec *OfferRecord) bool {
	if !rec.IsLineItem() {
		return false
	}
	if f.Region != "" && !strings.EqualFold(rec.Region(), f.Region) {
		return false
	}
	if f.Service != "" && !strings.EqualFold(rec.Field(FieldService), f.Service) {
		return false
	}
	if f.SKU != "" && !strings.EqualFold(rec.Field(FieldSKU), f.SKU) {
		return false
	}
	if f.Type != "" && !strings.EqualFold(rec.Field(FieldType), f.Type) {
		return false
	}
	if f.Product != "" && !containsFold(rec.Field(FieldProduct), f.Product) {
		return false
	}
	if f.Meter != "" && !containsFold(rec.Field(FieldMeter), f.Meter) {
		return false
	}
	if f.Contains != "" &&
		!containsFold(string(rec.Key), f.Contains) &&
		!containsFold(rec.Field(FieldProduct), f.Contains) &&
		!containsFold(rec.Field(FieldMeter), f.Contains) {
		return false
	}
	return true
}

// Filter returns the line items matching f in catalog order
func (c *Catalog) Filter(f LineItemFilter) []*OfferRecord {
	var out []*OfferRecord
	for _, k := range c.order {
		if rec := c.offers[k]; f.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// SeriesOf extracts the VM series from a product name such as
// "Virtual Machines Dv3 Series". It returns "" when the name is too short.
func SeriesOf(productName string) string {
	words := strings.Fields(productName)
	if len(words) < 3 {
		return ""
	}
	return words[2]
}

// Series returns the distinct VM series across line items, in catalog order
func (c *Catalog) Series() []string {
	seen := make(map[string]bool)
	var out []string
	c.Range(func(_ types.OfferKey, rec *OfferRecord) bool {
		if s := SeriesOf(rec.Field(FieldProduct)); s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
		return true
	})
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
