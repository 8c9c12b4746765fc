package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pratham7049/azure-pricing-calculator/core/types"
)

// Well-known line item field names
const (
	FieldRegion        = "armRegionName"
	FieldLocation      = "location"
	FieldService       = "serviceName"
	FieldProduct       = "productName"
	FieldSKU           = "skuName"
	FieldSKUID         = "skuId"
	FieldMeter         = "meterName"
	FieldMeterID       = "meterId"
	FieldType          = "type"
	FieldReservation   = "reservationTerm"
	FieldUnitOfMeasure = "unitOfMeasure"
)

// OfferRecord is one priced catalog entry. A record may carry a unit/region
// price map (dict-of-offers catalogs), a single unit price with structured
// fields (line item catalogs), or both.
//
// Records are owned by a Catalog once built and must not be mutated.
type OfferRecord struct {
	Key types.OfferKey

	// Prices maps unit tag to region to price
	Prices map[types.UnitTag]map[string]decimal.Decimal

	// Fields holds scalar attributes (region, sku, meter, ...)
	Fields map[string]string

	// UnitPrice is set for line items
	UnitPrice *decimal.Decimal

	// UnitOfMeasure describes what UnitPrice is per ("1 Hour", "10K")
	UnitOfMeasure string

	// Currency is the offer's currency code, empty when the source omits it
	Currency types.Currency
}

// NewOffer creates an empty record for key
func NewOffer(key types.OfferKey) *OfferRecord {
	return &OfferRecord{
		Key:    key,
		Prices: make(map[types.UnitTag]map[string]decimal.Decimal),
		Fields: make(map[string]string),
	}
}

// SetPrice records a price for unit and region
func (o *OfferRecord) SetPrice(unit types.UnitTag, region string, value decimal.Decimal) *OfferRecord {
	if o.Prices == nil {
		o.Prices = make(map[types.UnitTag]map[string]decimal.Decimal)
	}
	unit = unit.Normalize()
	byRegion, ok := o.Prices[unit]
	if !ok {
		byRegion = make(map[string]decimal.Decimal)
		o.Prices[unit] = byRegion
	}
	byRegion[strings.ToLower(region)] = value
	return o
}

// SetField records a scalar attribute
func (o *OfferRecord) SetField(name, value string) *OfferRecord {
	if o.Fields == nil {
		o.Fields = make(map[string]string)
	}
	o.Fields[name] = value
	return o
}

// SetUnitPrice marks the record as a line item priced per unitOfMeasure
func (o *OfferRecord) SetUnitPrice(value decimal.Decimal, unitOfMeasure string) *OfferRecord {
	o.UnitPrice = &value
	o.UnitOfMeasure = unitOfMeasure
	return o
}

// Price returns the price for unit in region. Unit tags and regions are
// matched case-insensitively.
func (o *OfferRecord) Price(unit types.UnitTag, region string) (decimal.Decimal, bool) {
	if o == nil {
		return decimal.Zero, false
	}
	byRegion, ok := o.Prices[unit.Normalize()]
	if !ok {
		for u, m := range o.Prices {
			if strings.EqualFold(string(u), string(unit)) {
				byRegion, ok = m, true
				break
			}
		}
	}
	if !ok {
		return decimal.Zero, false
	}
	v, ok := byRegion[strings.ToLower(region)]
	return v, ok
}

// Field returns a scalar attribute, matching the name case-insensitively
func (o *OfferRecord) Field(name string) string {
	if o == nil {
		return ""
	}
	if v, ok := o.Fields[name]; ok {
		return v
	}
	for k, v := range o.Fields {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Units returns the unit tags the record is priced in, sorted
func (o *OfferRecord) Units() []types.UnitTag {
	units := make([]types.UnitTag, 0, len(o.Prices))
	for u := range o.Prices {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i] < units[j] })
	return units
}

// Regions returns every region priced under any unit, sorted
func (o *OfferRecord) Regions() []string {
	seen := make(map[string]bool)
	for _, byRegion := range o.Prices {
		for r := range byRegion {
			seen[r] = true
		}
	}
	if r := o.Region(); r != "" {
		seen[r] = true
	}
	regions := make([]string, 0, len(seen))
	for r := range seen {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	return regions
}

// Region returns the line item region, if the record has one
func (o *OfferRecord) Region() string {
	if r := o.Field(FieldRegion); r != "" {
		return strings.ToLower(r)
	}
	return strings.ToLower(o.Field(types.DimRegion))
}

// IsLineItem reports whether the record is a structured line item
func (o *OfferRecord) IsLineItem() bool {
	return o != nil && o.UnitPrice != nil
}
