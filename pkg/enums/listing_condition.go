package enums

import "fmt"

// ListingCondition describes the wear grade a seller assigns to a listing.
type ListingCondition string

const (
	ListingConditionExcellent ListingCondition = "excellent"
	ListingConditionGood      ListingCondition = "good"
	ListingConditionFair      ListingCondition = "fair"
	ListingConditionPoor      ListingCondition = "poor"
)

var validListingConditions = []ListingCondition{
	ListingConditionExcellent,
	ListingConditionGood,
	ListingConditionFair,
	ListingConditionPoor,
}

// IsValid reports whether the value matches the canonical condition enum.
func (c ListingCondition) IsValid() bool {
	for _, candidate := range validListingConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// Label returns the display label shown to buyers.
func (c ListingCondition) Label() string {
	switch c {
	case ListingConditionExcellent:
		return "Like New"
	case ListingConditionGood:
		return "Good"
	case ListingConditionFair:
		return "Average"
	case ListingConditionPoor:
		return "Poor"
	}
	return string(c)
}

// ParseListingCondition converts the raw string to ListingCondition.
func ParseListingCondition(value string) (ListingCondition, error) {
	for _, candidate := range validListingConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing condition %q", value)
}
