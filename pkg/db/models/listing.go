package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/pkg/enums"
)

// Listing is an item a seller offers for sale.
type Listing struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	Title       string                 `gorm:"column:title;not null"`
	Description string                 `gorm:"column:description"`
	CategoryID  uuid.UUID              `gorm:"column:category_id;type:uuid;not null;index"`
	Category    *Category              `gorm:"foreignKey:CategoryID"`
	Condition   enums.ListingCondition `gorm:"column:condition;not null;default:'good'"`

	// OriginalPrice, when present, seeds the one-time resale price derivation.
	OriginalPrice *decimal.Decimal `gorm:"column:original_price;type:numeric(10,2)"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	Currency      enums.Currency   `gorm:"column:currency;not null;default:'USD'"`
	// IsSmartPriced latches after the first derivation; later edits to the
	// original price never re-trigger it.
	IsSmartPriced bool `gorm:"column:is_smart_priced;not null;default:false"`

	AIVerified           bool    `gorm:"column:ai_verified;not null;default:false"`
	FakeDetectionScore   float64 `gorm:"column:fake_detection_score;not null;default:0"`
	ManualReviewRequired bool    `gorm:"column:manual_review_required;not null;default:false"`

	EstimatedWeightKg   *decimal.Decimal `gorm:"column:estimated_weight_kg;type:numeric(8,2)"`
	CO2Saved            decimal.Decimal  `gorm:"column:co2_saved;type:numeric(10,2);not null;default:0"`
	SustainabilityScore int              `gorm:"column:sustainability_score;not null;default:0"`

	SellerID uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index"`
	Seller   *User     `gorm:"foreignKey:SellerID"`
	Location string    `gorm:"column:location"`

	Status     enums.ListingStatus `gorm:"column:status;not null;default:'available';index"`
	ViewsCount int                 `gorm:"column:views_count;not null;default:0"`
	LikesCount int                 `gorm:"column:likes_count;not null;default:0"`

	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
}

func (l *Listing) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// IsAvailable reports whether the listing can still be purchased.
func (l *Listing) IsAvailable() bool {
	return l.Status == enums.ListingStatusAvailable
}
