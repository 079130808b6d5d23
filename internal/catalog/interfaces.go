package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
	"github.com/ecofinds/ecofinds-backend/pkg/pagination"
)

// ListingRepository defines the persistence surface required by the catalog service.
type ListingRepository interface {
	WithTx(tx *gorm.DB) ListingRepository
	Create(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ListingStatus) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	AddLike(ctx context.Context, listingID, userID uuid.UUID) (bool, error)
	RemoveLike(ctx context.Context, listingID, userID uuid.UUID) (bool, error)
	CountActiveBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
	List(ctx context.Context, params listListingsParams) ([]models.Listing, *pagination.Cursor, error)
}
