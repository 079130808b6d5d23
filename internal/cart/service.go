package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/pkg/config"
	"github.com/ecofinds/ecofinds-backend/pkg/db"
	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/ecofinds/ecofinds-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type listingLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

// Service exposes cart staging operations.
type Service interface {
	AddLine(ctx context.Context, userID, listingID uuid.UUID, quantity int) (*CartDTO, error)
	UpdateLineQuantity(ctx context.Context, userID, listingID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveLine(ctx context.Context, userID, listingID uuid.UUID) (*CartDTO, error)
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

type service struct {
	repo       CartRepository
	tx         txRunner
	listings   listingLoader
	maxLineQty int
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, listings listingLoader, cfg config.CartConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if listings == nil {
		return nil, fmt.Errorf("listing loader required")
	}
	if cfg.MaxLineQuantity < 1 {
		return nil, fmt.Errorf("max line quantity must be at least 1")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		listings:   listings,
		maxLineQty: cfg.MaxLineQuantity,
	}, nil
}

// AddLine stages a listing in the buyer's cart. A missing quantity means
// one; adding a listing twice increments the existing line.
func (s *service) AddLine(ctx context.Context, userID, listingID uuid.UUID, quantity int) (*CartDTO, error) {
	if userID == uuid.Nil || listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and listing ids are required")
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 || quantity > s.maxLineQty {
		return nil, ErrInvalidQuantity
	}

	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.SellerID == userID {
		return nil, ErrSelfPurchase
	}
	if listing.Status != enums.ListingStatusAvailable {
		return nil, ErrListingUnavailable
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.GetOrCreateByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}

		line, err := repo.FindLine(ctx, cart.ID, listingID)
		switch {
		case err == nil:
			next := line.Quantity + quantity
			if next > s.maxLineQty {
				return ErrInvalidQuantity
			}
			return repo.UpdateLineQuantity(ctx, line.ID, next)
		case errors.Is(err, gorm.ErrRecordNotFound):
			create := &models.CartItem{
				CartID:    cart.ID,
				ListingID: listingID,
				Quantity:  quantity,
			}
			if err := repo.CreateLine(ctx, create); err != nil {
				if db.IsUniqueViolation(err) {
					return pkgerrors.New(pkgerrors.CodeConflict, "cart line changed, retry")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart line")
			}
			return nil
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
		}
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// UpdateLineQuantity replaces the quantity on an existing line.
func (s *service) UpdateLineQuantity(ctx context.Context, userID, listingID uuid.UUID, quantity int) (*CartDTO, error) {
	if userID == uuid.Nil || listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and listing ids are required")
	}
	if quantity < 1 || quantity > s.maxLineQty {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	line, err := s.repo.FindLine(ctx, cart.ID, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing is not in the cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	if err := s.repo.UpdateLineQuantity(ctx, line.ID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}
	return s.Get(ctx, userID)
}

// RemoveLine drops a listing from the cart. Removing a listing that was
// never staged is a no-op.
func (s *service) RemoveLine(ctx context.Context, userID, listingID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil || listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and listing ids are required")
	}

	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.Get(ctx, userID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.DeleteLine(ctx, cart.ID, listingID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
	}
	return s.Get(ctx, userID)
}

// Get returns the cart with derived totals. A user who never staged
// anything gets an empty cart without creating a row.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CartDTO{Items: []LineDTO{}, TotalPrice: decimal.Zero}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	dto := FromModel(cart)
	return &dto, nil
}
