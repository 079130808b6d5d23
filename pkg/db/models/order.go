package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/pkg/enums"
)

// Order is an immutable settlement snapshot. TotalPrice is fixed when the
// order is created and never re-derives from the listing.
type Order struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID   uuid.UUID `gorm:"column:buyer_id;type:uuid;not null;index"`
	Buyer     *User     `gorm:"foreignKey:BuyerID"`
	SellerID  uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index"`
	Seller    *User     `gorm:"foreignKey:SellerID"`
	ListingID uuid.UUID `gorm:"column:listing_id;type:uuid;not null"`
	Listing   *Listing  `gorm:"foreignKey:ListingID"`

	Quantity   int               `gorm:"column:quantity;not null;default:1"`
	TotalPrice decimal.Decimal   `gorm:"column:total_price;type:numeric(10,2);not null"`
	Status     enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
