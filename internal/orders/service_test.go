package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/ecofinds/ecofinds-backend/pkg/errors"
	"github.com/ecofinds/ecofinds-backend/pkg/pagination"
)

func newOrder(status enums.OrderStatus) *models.Order {
	return &models.Order{
		ID:         uuid.New(),
		BuyerID:    uuid.New(),
		SellerID:   uuid.New(),
		ListingID:  uuid.New(),
		Quantity:   1,
		TotalPrice: decimal.RequireFromString("20"),
		Status:     status,
	}
}

func newStatusService(t *testing.T, order *models.Order) Service {
	t.Helper()
	svc, err := NewService(&stubOrderRepo{order: order})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSellerConfirmsPendingOrder(t *testing.T) {
	t.Parallel()

	order := newOrder(enums.OrderStatusPending)
	svc := newStatusService(t, order)

	dto, err := svc.UpdateStatus(context.Background(), order.SellerID, order.ID, enums.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if dto.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", dto.Status)
	}
}

func TestBuyerCannotConfirm(t *testing.T) {
	t.Parallel()

	order := newOrder(enums.OrderStatusPending)
	svc := newStatusService(t, order)

	_, err := svc.UpdateStatus(context.Background(), order.BuyerID, order.ID, enums.OrderStatusConfirmed)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestBuyerAcknowledgesDelivery(t *testing.T) {
	t.Parallel()

	order := newOrder(enums.OrderStatusShipped)
	svc := newStatusService(t, order)

	dto, err := svc.UpdateStatus(context.Background(), order.BuyerID, order.ID, enums.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if dto.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", dto.Status)
	}
}

func TestTerminalOrdersAreImmutable(t *testing.T) {
	t.Parallel()

	order := newOrder(enums.OrderStatusDelivered)
	svc := newStatusService(t, order)

	_, err := svc.UpdateStatus(context.Background(), order.SellerID, order.ID, enums.OrderStatusCancelled)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestStrangerCannotTouchOrder(t *testing.T) {
	t.Parallel()

	order := newOrder(enums.OrderStatusPending)
	svc := newStatusService(t, order)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), order.ID, enums.OrderStatusCancelled)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

type stubOrderRepo struct {
	order *models.Order
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) OrderRepository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	return order, nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.order
	return &copied, nil
}

func (s *stubOrderRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Order, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (s *stubOrderRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Order, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	if s.order != nil && s.order.ID == id {
		s.order.Status = status
	}
	return nil
}

func (s *stubOrderRepo) CountByBuyer(ctx context.Context, buyerID uuid.UUID) (int64, error) {
	return 0, nil
}

func (s *stubOrderRepo) CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	return 0, nil
}
