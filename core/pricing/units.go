// Package pricing extracts a comparable rate from an offer whatever unit the
// catalog published it in.
//
// Callers declare intent through a unit policy: an ordered list of units,
// each with the number of base units its price covers. The normalizer walks
// the policy and returns the first unit the offer prices in the region.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/pratham7049/azure-pricing-calculator/core/types"
)

// UnitChoice is one acceptable unit and the base units its price covers
type UnitChoice struct {
	Unit    types.UnitTag   `json:"unit"`
	Divisor decimal.Decimal `json:"divisor"`
}

// UnitPolicy is an ordered unit preference
type UnitPolicy []UnitChoice

// Units returns the unit tags in preference order
func (p UnitPolicy) Units() []types.UnitTag {
	out := make([]types.UnitTag, len(p))
	for i, c := range p {
		out[i] = c.Unit
	}
	return out
}

// unitStrings is used in error context
func (p UnitPolicy) unitStrings() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = string(c.Unit)
	}
	return out
}

func choice(unit types.UnitTag, divisor int64) UnitChoice {
	return UnitChoice{Unit: unit, Divisor: decimal.NewFromInt(divisor)}
}

var (
	// StoragePolicy prices capacity per GB; a per-TB price covers 1000 GB
	StoragePolicy = UnitPolicy{
		choice(types.UnitPerGB, 1),
		choice(types.UnitPerTB, 1000),
	}

	// OperationPolicy prices operations per single operation
	OperationPolicy = UnitPolicy{
		choice(types.UnitPerOperation, 1),
		choice(types.UnitPer100, 100),
		choice(types.UnitPer1000, 1000),
		choice(types.UnitPer10K, 10000),
	}

	// BandwidthPolicy prices egress per GB. Some catalogs publish bandwidth
	// prices directly per region.
	BandwidthPolicy = UnitPolicy{
		choice(types.UnitPerGB, 1),
		choice(types.UnitPerUnit, 1),
	}

	// ComputePolicy prices VMs per hour
	ComputePolicy = UnitPolicy{
		choice(types.UnitPerHour, 1),
	}
)

// knownDivisors maps every unit tag with a fixed scale to that scale
var knownDivisors = map[types.UnitTag]int64{
	types.UnitPerGB:        1,
	types.UnitPerTB:        1000,
	types.UnitPerOperation: 1,
	types.UnitPer100:       100,
	types.UnitPer1000:      1000,
	types.UnitPer10K:       10000,
	types.UnitPerHour:      1,
	types.UnitPerMonth:     1,
	types.UnitPerUnit:      1,
	types.UnitPerOneYear:   12,
	types.UnitPerThreeYear: 36,
}

// Divisor returns the base-unit scale of unit. Unknown units scale by 1.
func Divisor(unit types.UnitTag) decimal.Decimal {
	if d, ok := knownDivisors[unit.Normalize()]; ok {
		return decimal.NewFromInt(d)
	}
	return decimal.NewFromInt(1)
}

// PolicyFor builds a policy from unit tags using their known divisors
func PolicyFor(units ...types.UnitTag) UnitPolicy {
	p := make(UnitPolicy, 0, len(units))
	for _, u := range units {
		u = u.Normalize()
		p = append(p, UnitChoice{Unit: u, Divisor: Divisor(u)})
	}
	return p
}
