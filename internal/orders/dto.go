package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
)

// OrderDTO is one settled purchase as shown in history views.
type OrderDTO struct {
	ID           uuid.UUID         `json:"id"`
	BuyerID      uuid.UUID         `json:"buyer_id"`
	SellerID     uuid.UUID         `json:"seller_id"`
	ListingID    uuid.UUID         `json:"listing_id"`
	ListingTitle string            `json:"listing_title,omitempty"`
	Quantity     int               `json:"quantity"`
	TotalPrice   decimal.Decimal   `json:"total_price"`
	Status       enums.OrderStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ListResult is one page of order history.
type ListResult struct {
	Items  []OrderDTO `json:"items"`
	Cursor string     `json:"cursor,omitempty"`
}

// FromModel maps an order row to its transport shape.
func FromModel(o *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:         o.ID,
		BuyerID:    o.BuyerID,
		SellerID:   o.SellerID,
		ListingID:  o.ListingID,
		Quantity:   o.Quantity,
		TotalPrice: o.TotalPrice,
		Status:     o.Status,
		CreatedAt:  o.CreatedAt,
	}
	if o.Listing != nil {
		dto.ListingTitle = o.Listing.Title
	}
	return dto
}
