package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
)

// LineDTO is one cart line with its listing snapshot.
type LineDTO struct {
	ListingID uuid.UUID           `json:"listing_id"`
	Title     string              `json:"title"`
	UnitPrice decimal.Decimal     `json:"unit_price"`
	Currency  enums.Currency      `json:"currency"`
	Quantity  int                 `json:"quantity"`
	LineTotal decimal.Decimal     `json:"line_total"`
	Status    enums.ListingStatus `json:"status"`
	AddedAt   time.Time           `json:"added_at"`
}

// CartDTO is the cart with derived totals. TotalItems counts distinct
// lines, not units.
type CartDTO struct {
	ID         uuid.UUID       `json:"id"`
	Items      []LineDTO       `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// FromModel maps a loaded cart to its transport shape.
func FromModel(cart *models.Cart) CartDTO {
	dto := CartDTO{
		ID:         cart.ID,
		Items:      make([]LineDTO, 0, len(cart.Items)),
		TotalItems: len(cart.Items),
		TotalPrice: decimal.Zero,
		UpdatedAt:  cart.UpdatedAt,
	}
	for _, item := range cart.Items {
		line := LineDTO{
			ListingID: item.ListingID,
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt,
		}
		if item.Listing != nil {
			line.Title = item.Listing.Title
			line.UnitPrice = item.Listing.Price
			line.Currency = item.Listing.Currency
			line.Status = item.Listing.Status
			line.LineTotal = item.Listing.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		dto.TotalPrice = dto.TotalPrice.Add(line.LineTotal)
		dto.Items = append(dto.Items, line)
	}
	return dto
}
