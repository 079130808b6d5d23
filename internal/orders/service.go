package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/ecofinds/ecofinds-backend/pkg/errors"
	"github.com/ecofinds/ecofinds-backend/pkg/pagination"
)

// Service exposes order history and fulfillment operations.
type Service interface {
	ListPurchases(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*ListResult, error)
	ListSales(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*ListResult, error)
	UpdateStatus(ctx context.Context, actorID, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error)
}

type service struct {
	repo OrderRepository
}

// NewService builds an order service.
func NewService(repo OrderRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo}, nil
}

// ListPurchases pages through the buyer's order history.
func (s *service) ListPurchases(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.ListByBuyer(ctx, buyerID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases")
	}
	return toListResult(rows, next), nil
}

// ListSales pages through the seller's order history.
func (s *service) ListSales(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.ListBySeller(ctx, sellerID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	return toListResult(rows, next), nil
}

// UpdateStatus moves an order along the fulfillment flow. Sellers drive
// confirmed and shipped, buyers acknowledge delivered, and either side
// may cancel while the transition table still allows it.
func (s *service) UpdateStatus(ctx context.Context, actorID, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error) {
	if actorID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor and order ids are required")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if actorID != order.BuyerID && actorID != order.SellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	if !allowedActor(order, actorID, next) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "status change not allowed for this user")
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
			WithDetails(map[string]any{"from": order.Status, "to": next})
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = next
	dto := FromModel(order)
	return &dto, nil
}

func allowedActor(order *models.Order, actorID uuid.UUID, next enums.OrderStatus) bool {
	switch next {
	case enums.OrderStatusConfirmed, enums.OrderStatusShipped:
		return actorID == order.SellerID
	case enums.OrderStatusDelivered:
		return actorID == order.BuyerID
	case enums.OrderStatusCancelled:
		return true
	default:
		return false
	}
}

func toListResult(rows []models.Order, next *pagination.Cursor) *ListResult {
	items := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: items, Cursor: cursor}
}
