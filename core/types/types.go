// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions and
// small value helpers.
package types

import "strings"

// Provider represents the cloud whose catalog is being priced
type Provider string

const (
	ProviderAzure   Provider = "azure"
	ProviderAWS     Provider = "aws"
	ProviderUnknown Provider = "unknown"
)

// String returns the string representation of the provider
func (p Provider) String() string {
	return string(p)
}

// IsValid checks if the provider is a known provider
func (p Provider) IsValid() bool {
	switch p {
	case ProviderAWS, ProviderAzure:
		return true
	default:
		return false
	}
}

// OfferKey is a composite, hyphen-joined catalog lookup key
type OfferKey string

// String returns the string representation
func (k OfferKey) String() string {
	return string(k)
}

// IsOperation reports whether the key belongs to the operation key family
func (k OfferKey) IsOperation() bool {
	return strings.Contains(strings.ToLower(string(k)), "operation")
}

// IsReservation reports whether the key belongs to the reservation key family
func (k OfferKey) IsReservation() bool {
	return strings.Contains(strings.ToLower(string(k)), "reserved-capacity")
}

// KeyDelimiter joins facet values into an OfferKey
const KeyDelimiter = "-"

// Facet dimension names
const (
	DimRegion          = "region"
	DimAccountType     = "accountType"
	DimStorageType     = "storageType"
	DimFileStructure   = "fileStructure"
	DimAccessTier      = "accessTier"
	DimRedundancy      = "redundancy"
	DimTier            = "tier"
	DimOperationType   = "operationType"
	DimReservationPlan = "reservationPlan"
)
