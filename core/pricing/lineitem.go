package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pratham7049/azure-pricing-calculator/core/catalog"
	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

// ParseUnitOfMeasure splits a line item unit of measure such as "1 Hour",
// "10K", "100 GB/Month" or "1/Month" into its scale and unit tag. Unparsable
// input scales by 1 with the perunit tag.
func ParseUnitOfMeasure(uom string) (decimal.Decimal, types.UnitTag) {
	s := strings.TrimSpace(uom)
	if s == "" {
		return decimal.NewFromInt(1), types.UnitPerUnit
	}

	// leading number, with an optional K/M multiplier glued to it
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	scale := decimal.NewFromInt(1)
	if i > 0 {
		if f, err := strconv.ParseFloat(s[:i], 64); err == nil && f > 0 {
			scale = decimal.NewFromFloat(f)
		}
	}
	rest := strings.TrimSpace(s[i:])
	if len(rest) > 0 && i > 0 {
		switch rest[0] {
		case 'K', 'k':
			if len(rest) == 1 || rest[1] == ' ' || rest[1] == '/' {
				scale = scale.Mul(decimal.NewFromInt(1000))
				rest = strings.TrimSpace(rest[1:])
			}
		case 'M':
			if len(rest) == 1 || rest[1] == ' ' || rest[1] == '/' {
				scale = scale.Mul(decimal.NewFromInt(1000000))
				rest = strings.TrimSpace(rest[1:])
			}
		}
	}
	rest = strings.TrimPrefix(rest, "/")

	return scale, unitTagFor(rest)
}

func unitTagFor(rest string) types.UnitTag {
	word := strings.ToLower(strings.TrimSpace(rest))
	if j := strings.IndexAny(word, " /"); j >= 0 {
		word = word[:j]
	}
	switch word {
	case "hour", "hours", "hrs", "hr":
		return types.UnitPerHour
	case "gb", "gib", "gb-mo", "gb-month":
		return types.UnitPerGB
	case "tb", "tib":
		return types.UnitPerTB
	case "month", "months":
		return types.UnitPerMonth
	case "":
		return types.UnitPerUnit
	default:
		return types.UnitTag("per" + word)
	}
}

// LineItemRate returns the rate of a structured line item. The divisor is
// the scale of its unit of measure, so a "10K" price covers 10000 units.
func LineItemRate(rec *catalog.OfferRecord) (Rate, error) {
	if !rec.IsLineItem() {
		key, region := "", ""
		if rec != nil {
			key, region = string(rec.Key), rec.Region()
		}
		return Rate{}, errors.UnpricedRegion(key, region, []string{"unitPrice"})
	}
	scale, unit := ParseUnitOfMeasure(rec.UnitOfMeasure)
	return Rate{Value: *rec.UnitPrice, Unit: unit, Divisor: scale}, nil
}
