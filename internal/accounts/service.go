package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/users"
	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	pkgerrors "github.com/ecofinds/ecofinds-backend/pkg/errors"
)

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type listingCounter interface {
	CountActiveBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
}

type orderCounter interface {
	CountByBuyer(ctx context.Context, buyerID uuid.UUID) (int64, error)
	CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
}

// Summary aggregates the profile and gamification state shown on the account page.
type Summary struct {
	User           *users.UserDTO `json:"user"`
	ActiveListings int64          `json:"active_listings"`
	TotalPurchases int64          `json:"total_purchases"`
	TotalSales     int64          `json:"total_sales"`
}

// Service exposes account read operations.
type Service interface {
	GetSummary(ctx context.Context, userID uuid.UUID) (*Summary, error)
}

type service struct {
	users    userLoader
	listings listingCounter
	orders   orderCounter
}

// NewService builds an accounts service backed by the provided stack.
func NewService(users userLoader, listings listingCounter, orders orderCounter) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if listings == nil {
		return nil, fmt.Errorf("listing counter required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order counter required")
	}
	return &service{users: users, listings: listings, orders: orders}, nil
}

// GetSummary returns the profile plus listing and order counts.
func (s *service) GetSummary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	listings, err := s.listings.CountActiveBySeller(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count listings")
	}
	purchases, err := s.orders.CountByBuyer(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count purchases")
	}
	sales, err := s.orders.CountBySeller(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count sales")
	}

	return &Summary{
		User:           users.FromModel(user),
		ActiveListings: listings,
		TotalPurchases: purchases,
		TotalSales:     sales,
	}, nil
}
