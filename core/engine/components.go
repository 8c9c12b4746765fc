package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/pricing"
	"github.com/pratham7049/azure-pricing-calculator/core/resolver"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

// Kind selects how a component is resolved and which unit policy prices it
type Kind string

const (
	KindStorage     Kind = "storage"
	KindOperations  Kind = "operations"
	KindReservation Kind = "reservation"
	KindBandwidth   Kind = "bandwidth"
	KindVM          Kind = "vm"
	KindLineItem    Kind = "lineitem"
)

// Kinds lists every supported kind
var Kinds = []Kind{KindStorage, KindOperations, KindReservation, KindBandwidth, KindVM, KindLineItem}

// Valid reports whether k is supported
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) usesResolver() bool {
	return k == KindStorage || k == KindOperations
}

func (k Kind) category() resolver.Category {
	switch k {
	case KindStorage:
		return resolver.CategoryCapacity
	case KindOperations:
		return resolver.CategoryOperation
	default:
		return resolver.CategoryAny
	}
}

// Default substrings for kinds found by key family
const (
	reservationMarker = "reserved-capacity"
	bandwidthMarker   = "outbound"
)

// Component is one billable part of an estimate
type Component struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`

	// Selection resolves storage and operations offers through the schema
	Selection types.FacetSelection `json:"selection,omitempty"`

	// Confirmed is a fuzzy correction the caller accepted for Selection
	Confirmed *resolver.Suggestion `json:"confirmed,omitempty"`

	// Offer targets a catalog key directly
	Offer types.OfferKey `json:"offer,omitempty"`

	// Contains targets the first key containing the substring
	Contains string `json:"contains,omitempty"`

	// Filter selects structured line items
	Filter catalog.LineItemFilter `json:"filter,omitempty"`

	// Units overrides the kind's unit preference
	Units []types.UnitTag `json:"units,omitempty"`

	// Quantity is the usage in base units: GB, operations, reserved units
	// or VM instances
	Quantity decimal.Decimal `json:"quantity"`

	// QuantitySet marks Quantity as given by the caller. Reservations and VMs
	// default an unset quantity to one unit; an explicit zero prices at zero.
	QuantitySet bool `json:"quantity_set,omitempty"`
}

// countOrOne returns the quantity, or one when it was left unset
func (c Component) countOrOne() decimal.Decimal {
	if !c.QuantitySet && c.Quantity.IsZero() {
		return decimal.NewFromInt(1)
	}
	return c.Quantity
}

func (c Component) usesSelection() bool {
	return c.Kind.usesResolver() && c.Offer == "" && c.Contains == ""
}

func (c Component) policy(def pricing.UnitPolicy) pricing.UnitPolicy {
	if len(c.Units) > 0 {
		return pricing.PolicyFor(c.Units...)
	}
	return def
}

// pricerResult is what a kind-specific pricer found
type pricerResult struct {
	match    *resolver.Match
	rate     pricing.Rate
	quantity decimal.Decimal
	warns    []types.Warning
}

type pricer func(s *session, c Component) (pricerResult, error)

func (e *Engine) pricers(k Kind) pricer {
	switch k {
	case KindStorage:
		return priceWithPolicy(pricing.StoragePolicy)
	case KindOperations:
		return priceWithPolicy(pricing.OperationPolicy)
	case KindReservation:
		return priceReservation
	case KindBandwidth:
		return priceBandwidth
	case KindVM:
		return e.priceVM
	default:
		return priceLineItem
	}
}

// locate finds the offer for a component: explicit key, then substring, then
// schema resolution of the selection.
func locate(s *session, c Component, fallback string) (*resolver.Match, error) {
	cat := c.Kind.category()
	switch {
	case c.Offer != "":
		return s.res.ResolveKey(c.Offer, cat)
	case c.Contains != "":
		return s.res.FindFirst(c.Contains, cat)
	case c.Kind.usesResolver():
		req := resolver.Request{
			Selection:   c.Selection,
			Schema:      s.schema,
			LoadBearing: s.loadBearing,
			Category:    cat,
		}
		if c.Confirmed != nil {
			return s.res.ResolveConfirmed(req, *c.Confirmed)
		}
		return s.res.Resolve(req)
	default:
		return s.res.FindFirst(fallback, cat)
	}
}

func priceWithPolicy(def pricing.UnitPolicy) pricer {
	return func(s *session, c Component) (pricerResult, error) {
		out := pricerResult{quantity: c.Quantity}
		m, err := locate(s, c, "")
		if err != nil {
			return out, err
		}
		out.match = m
		out.rate, err = pricing.ExtractRate(m.Record, s.region, c.policy(def))
		return out, err
	}
}

// priceReservation prices a reserved capacity plan as a monthly rate. An
// unset quantity means one reserved unit.
func priceReservation(s *session, c Component) (pricerResult, error) {
	out := pricerResult{quantity: c.countOrOne()}
	m, err := locate(s, c, reservationMarker)
	if err != nil {
		return out, err
	}
	out.match = m
	out.rate, err = pricing.ReservationRate(m.Record, s.region)
	return out, err
}

func priceBandwidth(s *session, c Component) (pricerResult, error) {
	out := pricerResult{quantity: c.Quantity}
	m, err := locate(s, c, bandwidthMarker)
	if err != nil {
		return out, err
	}
	out.match = m
	out.rate, err = pricing.ExtractRate(m.Record, s.region, c.policy(pricing.BandwidthPolicy))
	return out, err
}

// priceVM prices instances for a full month. An unset quantity means one
// instance. The VM is either a keyed offer priced perhour or a line item.
func (e *Engine) priceVM(s *session, c Component) (pricerResult, error) {
	instances := c.countOrOne()
	out := pricerResult{quantity: instances.Mul(decimal.NewFromInt(int64(e.config.HoursPerMonth)))}

	if c.Offer == "" && c.Contains == "" {
		li, err := priceLineItem(s, Component{Kind: KindLineItem, Name: c.Name, Filter: c.Filter, Quantity: out.quantity})
		return li, err
	}

	m, err := locate(s, c, "")
	if err != nil {
		return out, err
	}
	out.match = m
	if m.Record.IsLineItem() {
		out.rate, err = pricing.LineItemRate(m.Record)
		return out, err
	}
	out.rate, err = pricing.ExtractRate(m.Record, s.region, c.policy(pricing.ComputePolicy))
	return out, err
}

// priceLineItem filters structured line items. One hit is exact; several
// take the first in catalog order and warn.
func priceLineItem(s *session, c Component) (pricerResult, error) {
	out := pricerResult{quantity: c.Quantity}

	f := c.Filter
	if f.Region == "" {
		f.Region = s.region
	}
	hits := s.cat.Filter(f)
	if len(hits) == 0 {
		return out, errors.NoMatch(describeFilter(f))
	}

	out.match = &resolver.Match{Key: hits[0].Key, Record: hits[0], Quality: types.MatchExact}
	if len(hits) > 1 {
		out.match.Quality = types.MatchPartial
		out.warns = append(out.warns, types.Warning{
			Type:      WarningAmbiguous,
			Component: c.Name,
			Message:   fmt.Sprintf("%d line items match %s, using %s", len(hits), describeFilter(f), hits[0].Key),
		})
	}

	var err error
	out.rate, err = pricing.LineItemRate(hits[0])
	return out, err
}

func describeFilter(f catalog.LineItemFilter) string {
	s := "region=" + f.Region
	for _, kv := range [][2]string{
		{"service", f.Service}, {"product", f.Product}, {"sku", f.SKU},
		{"meter", f.Meter}, {"type", f.Type}, {"contains", f.Contains},
	} {
		if kv[1] != "" {
			s += " " + kv[0] + "=" + kv[1]
		}
	}
	return s
}
