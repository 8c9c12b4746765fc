// Package cost combines normalized rates and usage quantities into itemized
// and total costs. It performs no currency conversion: every line must be in
// the session currency.
package cost

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

// LineInput is one priced component awaiting totalling
type LineInput struct {
	Component string
	Key       types.OfferKey
	Unit      types.UnitTag

	// Rate is the price per Divisor base units
	Rate    decimal.Decimal
	Divisor decimal.Decimal

	// Quantity is the usage in base units
	Quantity decimal.Decimal

	// Currency is the offer currency, empty when unknown
	Currency types.Currency
}

// Line is a LineInput with its computed cost
type Line struct {
	LineInput
	Cost decimal.Decimal
}

// Totals is the itemized result of ComputeTotal
type Totals struct {
	Currency types.Currency
	Lines    []Line
	Total    decimal.Decimal
}

// LineCost returns (quantity / divisor) * rate. A zero divisor means the
// rate is already per base unit.
func LineCost(rate, quantity, divisor decimal.Decimal) decimal.Decimal {
	if divisor.IsZero() {
		return quantity.Mul(rate)
	}
	// multiply first so exact inputs stay exact
	return quantity.Mul(rate).Div(divisor)
}

// ComputeTotal costs every input and sums them. Zero-quantity and zero-rate
// lines are kept with a zero cost.
//
// All currencies must equal session; when session is empty the first
// currency seen becomes the session currency. A mismatch is a fatal
// CURRENCY_MISMATCH error and no total is produced.
func ComputeTotal(session types.Currency, inputs []LineInput) (*Totals, error) {
	totals := &Totals{
		Currency: session,
		Lines:    make([]Line, 0, len(inputs)),
		Total:    decimal.Zero,
	}

	for _, in := range inputs {
		if in.Quantity.IsNegative() {
			return nil, errors.Input("negative quantity for " + in.Component)
		}
		if in.Currency != "" {
			switch {
			case totals.Currency == "":
				totals.Currency = in.Currency
			case !strings.EqualFold(string(totals.Currency), string(in.Currency)):
				return nil, errors.CurrencyMismatch(string(totals.Currency), string(in.Currency), string(in.Key)).
					WithContext("component", in.Component)
			}
		}

		c := LineCost(in.Rate, in.Quantity, in.Divisor)
		totals.Lines = append(totals.Lines, Line{LineInput: in, Cost: c})
		totals.Total = totals.Total.Add(c)
	}

	return totals, nil
}
