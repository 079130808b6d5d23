package accounts

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
)

// AccountRepository mutates the gamification fields on user accounts.
type AccountRepository interface {
	WithTx(tx *gorm.DB) AccountRepository
	CreditPurchase(ctx context.Context, userID uuid.UUID, points int, co2 decimal.Decimal) (*models.User, error)
	CreditPoints(ctx context.Context, userID uuid.UUID, points int) (*models.User, error)
	CreditCO2(ctx context.Context, userID uuid.UUID, co2 decimal.Decimal) (*models.User, error)
	AdjustTrustScore(ctx context.Context, userID uuid.UUID, delta int) (*models.User, error)
}
