package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is one (cart, listing) line. The pair is unique; quantity is
// always at least one, removal deletes the row.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_listing"`
	ListingID uuid.UUID `gorm:"column:listing_id;type:uuid;not null;uniqueIndex:idx_cart_listing"`
	Listing   *Listing  `gorm:"foreignKey:ListingID"`
	Quantity  int       `gorm:"column:quantity;not null;default:1"`

	AddedAt time.Time `gorm:"column:added_at;autoCreateTime"`
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
