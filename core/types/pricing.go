// Package types - Pricing types
package types

import "strings"

// UnitTag identifies what quantity a catalog price is denominated per
type UnitTag string

const (
	UnitPerGB        UnitTag = "pergb"
	UnitPerTB        UnitTag = "pertb"
	UnitPer100       UnitTag = "per100"
	UnitPer1000      UnitTag = "per1000"
	UnitPer10K       UnitTag = "per10k"
	UnitPerOperation UnitTag = "peroperation"
	UnitPerOneYear   UnitTag = "peroneyear"
	UnitPerThreeYear UnitTag = "perthreeyear"
	UnitPerHour      UnitTag = "perhour"
	UnitPerMonth     UnitTag = "permonth"

	// UnitPerUnit tags prices published directly per region with no unit level
	UnitPerUnit UnitTag = "perunit"
)

// String returns the string representation
func (u UnitTag) String() string {
	return string(u)
}

// Normalize lower-cases a unit tag; catalogs mix "perTB" and "pertb"
func (u UnitTag) Normalize() UnitTag {
	return UnitTag(strings.ToLower(strings.TrimSpace(string(u))))
}

// MatchQuality ranks how a catalog key was found for a selection
type MatchQuality int

const (
	// MatchNone means the line was not resolved
	MatchNone MatchQuality = iota
	// MatchExact means the composite key was present verbatim
	MatchExact
	// MatchPartial means a catalog key contained the reduced key
	MatchPartial
	// MatchFuzzy means a value was corrected through a confirmed suggestion
	MatchFuzzy
)

// String returns string representation
func (q MatchQuality) String() string {
	switch q {
	case MatchExact:
		return "exact"
	case MatchPartial:
		return "partial"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// MarshalText encodes the quality by name
func (q MatchQuality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText decodes a quality name
func (q *MatchQuality) UnmarshalText(b []byte) error {
	switch string(b) {
	case "exact":
		*q = MatchExact
	case "partial":
		*q = MatchPartial
	case "fuzzy":
		*q = MatchFuzzy
	default:
		*q = MatchNone
	}
	return nil
}
