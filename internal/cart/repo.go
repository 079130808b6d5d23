package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
)

// Repository is the gorm-backed cart store.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to a database handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// GetOrCreateByUser returns the user's cart, creating an empty one on
// first use. Lines come back oldest first with listings preloaded.
func (r *Repository) GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Where(models.Cart{UserID: userID}).
		FirstOrCreate(&cart).
		Error
	if err != nil {
		return nil, err
	}
	return r.loadLines(ctx, &cart)
}

// FindByUser fetches the user's cart, or gorm.ErrRecordNotFound if the
// user never staged anything.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		First(&cart, "user_id = ?", userID).
		Error
	if err != nil {
		return nil, err
	}
	return r.loadLines(ctx, &cart)
}

func (r *Repository) loadLines(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Where("cart_id = ?", cart.ID).
		Order("added_at ASC, id ASC").
		Find(&cart.Items).
		Error
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// FindLine fetches one (cart, listing) line.
func (r *Repository) FindLine(ctx context.Context, cartID, listingID uuid.UUID) (*models.CartItem, error) {
	var line models.CartItem
	err := r.db.WithContext(ctx).
		First(&line, "cart_id = ? AND listing_id = ?", cartID, listingID).
		Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// CreateLine inserts a new cart line.
func (r *Repository) CreateLine(ctx context.Context, line *models.CartItem) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// UpdateLineQuantity sets the quantity on an existing line.
func (r *Repository) UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).
		Error
}

// DeleteLine removes one line. Deleting a missing line is a no-op.
func (r *Repository) DeleteLine(ctx context.Context, cartID, listingID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND listing_id = ?", cartID, listingID).
		Delete(&models.CartItem{}).
		Error
}

// DeleteLines removes exactly the given lines. Settlement passes the line
// ids it read so lines staged mid-settlement survive for the next one.
func (r *Repository) DeleteLines(ctx context.Context, lineIDs []uuid.UUID) error {
	if len(lineIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", lineIDs).
		Delete(&models.CartItem{}).
		Error
}
