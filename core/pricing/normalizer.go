package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

// Rate is a catalog price and the number of base units it covers
type Rate struct {
	// Value is the price as published for Unit
	Value decimal.Decimal `json:"value"`

	Unit types.UnitTag `json:"unit"`

	// Divisor converts Value to a per-base-unit rate
	Divisor decimal.Decimal `json:"divisor"`
}

// PerUnit returns Value / Divisor. A zero divisor is treated as 1.
func (r Rate) PerUnit() decimal.Decimal {
	if r.Divisor.IsZero() {
		return r.Value
	}
	return r.Value.Div(r.Divisor)
}

// ExtractRate walks the policy and returns the first unit for which rec has
// a nonzero price in region. A missing region and a zero price are treated
// the same. When no unit qualifies the error is UNPRICED_REGION.
func ExtractRate(rec *catalog.OfferRecord, region string, policy UnitPolicy) (Rate, error) {
	if rec == nil {
		return Rate{}, errors.Internal("extract rate from nil offer", nil)
	}
	for _, c := range policy {
		v, ok := rec.Price(c.Unit, region)
		if !ok || v.IsZero() {
			continue
		}
		return Rate{Value: v, Unit: c.Unit.Normalize(), Divisor: c.Divisor}, nil
	}
	return Rate{}, errors.UnpricedRegion(string(rec.Key), region, policy.unitStrings())
}

// Reservation terms recognised in reservation offer keys
const (
	termOneYear   = "oneyear"
	termThreeYear = "threeyear"
)

// ReservationRate converts a reservation offer's upfront term price to a
// monthly rate. The term comes from the key: "oneyear" reads peroneyear and
// divides by 12, "threeyear" reads perthreeyear and divides by 36. A key
// with no recognisable term falls back to the first unit, in unit-name
// order, that has a price in region. Catalog documents do not preserve the
// order of their price members, so name order stands in for it. That rate is
// treated as already monthly.
//
// The returned Rate carries the monthly value with a divisor of 1.
func ReservationRate(rec *catalog.OfferRecord, region string) (Rate, error) {
	if rec == nil {
		return Rate{}, errors.Internal("reservation rate from nil offer", nil)
	}
	key := strings.ToLower(string(rec.Key))

	var unit types.UnitTag
	switch {
	case strings.Contains(key, termThreeYear):
		unit = types.UnitPerThreeYear
	case strings.Contains(key, termOneYear):
		unit = types.UnitPerOneYear
	}

	if unit != "" {
		v, ok := rec.Price(unit, region)
		if !ok || v.IsZero() {
			return Rate{}, errors.UnpricedRegion(string(rec.Key), region, []string{string(unit)})
		}
		return Rate{
			Value:   MonthlyFromTerm(v, unit),
			Unit:    unit,
			Divisor: decimal.NewFromInt(1),
		}, nil
	}

	for _, u := range rec.Units() {
		v, ok := rec.Price(u, region)
		if ok && !v.IsZero() {
			return Rate{Value: v, Unit: u, Divisor: decimal.NewFromInt(1)}, nil
		}
	}
	units := make([]string, 0, len(rec.Prices))
	for _, u := range rec.Units() {
		units = append(units, string(u))
	}
	return Rate{}, errors.UnpricedRegion(string(rec.Key), region, units)
}

// MonthlyFromTerm converts an upfront term price to a monthly rate
func MonthlyFromTerm(total decimal.Decimal, unit types.UnitTag) decimal.Decimal {
	return total.Div(Divisor(unit))
}
