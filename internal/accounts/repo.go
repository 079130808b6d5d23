package accounts

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
)

// Repository mutates the gamification counters on user accounts.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided GORM handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) AccountRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CreditPurchase applies eco points and CO2 in one account update. The eco
// level is re-evaluated against the new total, stepping at most one tier.
func (r *Repository) CreditPurchase(ctx context.Context, userID uuid.UUID, points int, co2 decimal.Decimal) (*models.User, error) {
	user, err := r.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.EcoPoints += points
	user.EcoLevel = NextLevel(user.EcoLevel, user.EcoPoints)
	user.CO2Saved = user.CO2Saved.Add(co2)

	err = r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"eco_points": user.EcoPoints,
			"eco_level":  user.EcoLevel,
			"co2_saved":  user.CO2Saved,
		}).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreditPoints applies eco points only.
func (r *Repository) CreditPoints(ctx context.Context, userID uuid.UUID, points int) (*models.User, error) {
	return r.CreditPurchase(ctx, userID, points, decimal.Zero)
}

// CreditCO2 applies avoided emissions only.
func (r *Repository) CreditCO2(ctx context.Context, userID uuid.UUID, co2 decimal.Decimal) (*models.User, error) {
	return r.CreditPurchase(ctx, userID, 0, co2)
}

// AdjustTrustScore shifts the trust score by delta, clamped to 0-100.
func (r *Repository) AdjustTrustScore(ctx context.Context, userID uuid.UUID, delta int) (*models.User, error) {
	user, err := r.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	score := user.TrustScore + delta
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	user.TrustScore = score

	err = r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("trust_score", score).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) lockUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	q := r.db.WithContext(ctx)
	// Row locks are a Postgres feature; sqlite (tests) serializes writes anyway.
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
