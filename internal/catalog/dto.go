package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
	"github.com/ecofinds/ecofinds-backend/pkg/pagination"
)

// CreateListingInput carries the seller-provided fields for a new listing.
type CreateListingInput struct {
	Title             string
	Description       string
	CategoryID        uuid.UUID
	Condition         enums.ListingCondition
	Price             decimal.Decimal
	OriginalPrice     *decimal.Decimal
	Currency          enums.Currency
	EstimatedWeightKg *decimal.Decimal
	Location          string
	ImageURL          string
}

// UpdateListingInput carries the mutable listing fields. Nil pointers are left untouched.
type UpdateListingInput struct {
	Title             *string
	Description       *string
	Condition         *enums.ListingCondition
	Price             *decimal.Decimal
	OriginalPrice     *decimal.Decimal
	EstimatedWeightKg *decimal.Decimal
	Location          *string
}

// ListParams configures filtering and pagination for the browse endpoint.
type ListParams struct {
	Status     *enums.ListingStatus
	CategoryID *uuid.UUID
	SellerID   *uuid.UUID
	Query      string
	Limit      int
	Cursor     string
}

// ListResult wraps a listing page and the cursor for the next one.
type ListResult struct {
	Items  []ListingDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

// ListingDTO is the transport shape for a listing.
type ListingDTO struct {
	ID                   uuid.UUID              `json:"id"`
	Title                string                 `json:"title"`
	Description          string                 `json:"description,omitempty"`
	CategoryID           uuid.UUID              `json:"category_id"`
	CategoryName         string                 `json:"category_name,omitempty"`
	Condition            enums.ListingCondition `json:"condition"`
	ConditionLabel       string                 `json:"condition_label"`
	Price                decimal.Decimal        `json:"price"`
	OriginalPrice        *decimal.Decimal       `json:"original_price,omitempty"`
	Currency             enums.Currency         `json:"currency"`
	FormattedPrice       string                 `json:"formatted_price"`
	IsSmartPriced        bool                   `json:"is_smart_priced"`
	AIVerified           bool                   `json:"ai_verified"`
	ManualReviewRequired bool                   `json:"manual_review_required"`
	CO2Saved             decimal.Decimal        `json:"co2_saved"`
	SustainabilityScore  int                    `json:"sustainability_score"`
	SellerID             uuid.UUID              `json:"seller_id"`
	SellerUsername       string                 `json:"seller_username,omitempty"`
	Location             string                 `json:"location,omitempty"`
	Status               enums.ListingStatus    `json:"status"`
	ViewsCount           int                    `json:"views_count"`
	LikesCount           int                    `json:"likes_count"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// FromModel maps a listing row to its transport shape.
func FromModel(l *models.Listing) ListingDTO {
	dto := ListingDTO{
		ID:                   l.ID,
		Title:                l.Title,
		Description:          l.Description,
		CategoryID:           l.CategoryID,
		Condition:            l.Condition,
		ConditionLabel:       l.Condition.Label(),
		Price:                l.Price,
		OriginalPrice:        l.OriginalPrice,
		Currency:             l.Currency,
		FormattedPrice:       l.Currency.Symbol() + l.Price.StringFixed(2),
		IsSmartPriced:        l.IsSmartPriced,
		AIVerified:           l.AIVerified,
		ManualReviewRequired: l.ManualReviewRequired,
		CO2Saved:             l.CO2Saved,
		SustainabilityScore:  l.SustainabilityScore,
		SellerID:             l.SellerID,
		Location:             l.Location,
		Status:               l.Status,
		ViewsCount:           l.ViewsCount,
		LikesCount:           l.LikesCount,
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.UpdatedAt,
	}
	if l.Category != nil {
		dto.CategoryName = l.Category.Name
	}
	if l.Seller != nil {
		dto.SellerUsername = l.Seller.Username
	}
	return dto
}

func (p ListParams) toRepoParams() (listListingsParams, error) {
	params := listListingsParams{
		Status:     p.Status,
		CategoryID: p.CategoryID,
		SellerID:   p.SellerID,
		Query:      p.Query,
		Limit:      p.Limit,
	}
	if p.Cursor != "" {
		cursor, err := pagination.ParseCursor(p.Cursor)
		if err != nil {
			return params, err
		}
		params.Cursor = cursor
	}
	return params, nil
}
