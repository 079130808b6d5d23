package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ecofinds/ecofinds-backend/pkg/db"
	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
	"github.com/ecofinds/ecofinds-backend/pkg/pagination"
)

// Repository exposes listing persistence for the catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided GORM handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) ListingRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new listing row.
func (r *Repository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// Update saves the full listing row.
func (r *Repository) Update(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// Delete removes a listing by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Listing{}).Error
}

// FindByID fetches a listing with its category and seller preloaded.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Seller").
		First(&listing, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// FindByIDForUpdate fetches the listing holding a row lock for the rest of
// the transaction. Locks are a Postgres feature; sqlite serializes anyway.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// UpdateStatus sets the status for the specified listing.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ListingStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// IncrementViews bumps the view counter without touching updated_at.
func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
}

// AddLike records userID liking the listing, bumping the counter on the
// first like only. Returns false when the like already existed.
func (r *Repository) AddLike(ctx context.Context, listingID, userID uuid.UUID) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		like := &models.ListingLike{ListingID: listingID, UserID: userID}
		if err := tx.Create(like).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return nil
			}
			return err
		}
		created = true
		return tx.Model(&models.Listing{}).
			Where("id = ?", listingID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	return created, err
}

// RemoveLike drops the user's like and decrements the counter, clamped at
// zero. Returns false when there was no like to remove.
func (r *Repository) RemoveLike(ctx context.Context, listingID, userID uuid.UUID) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("listing_id = ? AND user_id = ?", listingID, userID).
			Delete(&models.ListingLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		return tx.Model(&models.Listing{}).
			Where("id = ? AND likes_count > 0", listingID).
			UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error
	})
	return removed, err
}

// CountActiveBySeller counts the seller's available listings.
func (r *Repository) CountActiveBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("seller_id = ? AND status = ?", sellerID, enums.ListingStatusAvailable).
		Count(&count).Error
	return count, err
}

type listListingsParams struct {
	Status     *enums.ListingStatus
	CategoryID *uuid.UUID
	SellerID   *uuid.UUID
	Query      string
	Limit      int
	Cursor     *pagination.Cursor
}

// List returns listings newest first with cursor pagination.
func (r *Repository) List(ctx context.Context, params listListingsParams) ([]models.Listing, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Preload("Category")
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}
	if params.SellerID != nil {
		query = query.Where("seller_id = ?", *params.SellerID)
	}
	if params.Query != "" {
		like := "%" + params.Query + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var listings []models.Listing
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&listings).Error; err != nil {
		return nil, nil, err
	}

	if len(listings) > normalized {
		next := listings[normalized]
		listings = listings[:normalized]
		return listings, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return listings, nil, nil
}
