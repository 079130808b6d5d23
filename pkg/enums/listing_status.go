package enums

import "fmt"

// ListingStatus describes the lifecycle state of a marketplace listing.
type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "available"
	ListingStatusSold      ListingStatus = "sold"
	ListingStatusPending   ListingStatus = "pending"
	ListingStatusFlagged   ListingStatus = "flagged"
)

var validListingStatuses = []ListingStatus{
	ListingStatusAvailable,
	ListingStatusSold,
	ListingStatusPending,
	ListingStatusFlagged,
}

// IsValid reports whether the value matches the canonical listing status enum.
func (s ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseListingStatus converts the raw string to ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}
