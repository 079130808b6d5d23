package enums

import "fmt"

// NotificationKind routes stored notifications to their UI treatment.
type NotificationKind string

const (
	NotificationOrderPlaced    NotificationKind = "order_placed"
	NotificationItemSold       NotificationKind = "item_sold"
	NotificationPointsAwarded  NotificationKind = "points_awarded"
	NotificationListingFlagged NotificationKind = "listing_flagged"
)

var validNotificationKinds = []NotificationKind{
	NotificationOrderPlaced,
	NotificationItemSold,
	NotificationPointsAwarded,
	NotificationListingFlagged,
}

// IsValid reports whether the value matches the canonical notification kind enum.
func (k NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts the raw string to NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
