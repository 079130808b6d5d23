package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
)

// CartRepository persists carts and their lines.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindLine(ctx context.Context, cartID, listingID uuid.UUID) (*models.CartItem, error)
	CreateLine(ctx context.Context, line *models.CartItem) error
	UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, cartID, listingID uuid.UUID) error
	DeleteLines(ctx context.Context, lineIDs []uuid.UUID) error
}
