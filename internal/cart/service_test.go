package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/pkg/config"
	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/ecofinds/ecofinds-backend/pkg/errors"
)

func testConfig() config.CartConfig {
	return config.CartConfig{MaxLineQuantity: 10}
}

func newListing(sellerID uuid.UUID, price string, status enums.ListingStatus) *models.Listing {
	return &models.Listing{
		ID:       uuid.New(),
		Title:    "Listing",
		Price:    decimal.RequireFromString(price),
		Currency: enums.CurrencyUSD,
		SellerID: sellerID,
		Status:   status,
	}
}

func newTestService(t *testing.T, listings ...*models.Listing) (Service, *stubRepo) {
	t.Helper()
	loader := stubListings{byID: map[uuid.UUID]*models.Listing{}}
	for _, l := range listings {
		loader.byID[l.ID] = l
	}
	repo := &stubRepo{listings: loader.byID}
	svc, err := NewService(repo, stubTx{}, loader, testConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func TestAddLineDefaultsQuantityToOne(t *testing.T) {
	t.Parallel()

	buyer := uuid.New()
	listing := newListing(uuid.New(), "12.50", enums.ListingStatusAvailable)
	svc, _ := newTestService(t, listing)

	dto, err := svc.AddLine(context.Background(), buyer, listing.ID, 0)
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	if len(dto.Items) != 1 || dto.Items[0].Quantity != 1 {
		t.Fatalf("expected one line of quantity 1, got %+v", dto.Items)
	}
}

func TestAddLineIncrementsExistingLine(t *testing.T) {
	t.Parallel()

	buyer := uuid.New()
	listing := newListing(uuid.New(), "10", enums.ListingStatusAvailable)
	svc, _ := newTestService(t, listing)
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, buyer, listing.ID, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	dto, err := svc.AddLine(ctx, buyer, listing.ID, 3)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(dto.Items) != 1 || dto.Items[0].Quantity != 5 {
		t.Fatalf("expected merged line of quantity 5, got %+v", dto.Items)
	}

	// Pushing past the cap fails, the line stays untouched.
	if _, err := svc.AddLine(ctx, buyer, listing.ID, 6); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestAddLineRejectsOwnListing(t *testing.T) {
	t.Parallel()

	seller := uuid.New()
	listing := newListing(seller, "10", enums.ListingStatusAvailable)
	svc, _ := newTestService(t, listing)

	if _, err := svc.AddLine(context.Background(), seller, listing.ID, 1); !errors.Is(err, ErrSelfPurchase) {
		t.Fatalf("expected ErrSelfPurchase, got %v", err)
	}
}

func TestAddLineRejectsSoldListing(t *testing.T) {
	t.Parallel()

	listing := newListing(uuid.New(), "10", enums.ListingStatusSold)
	svc, _ := newTestService(t, listing)

	if _, err := svc.AddLine(context.Background(), uuid.New(), listing.ID, 1); !errors.Is(err, ErrListingUnavailable) {
		t.Fatalf("expected ErrListingUnavailable, got %v", err)
	}
}

func TestUpdateLineQuantityBounds(t *testing.T) {
	t.Parallel()

	buyer := uuid.New()
	listing := newListing(uuid.New(), "10", enums.ListingStatusAvailable)
	svc, _ := newTestService(t, listing)
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, buyer, listing.ID, 1); err != nil {
		t.Fatalf("add line: %v", err)
	}

	if _, err := svc.UpdateLineQuantity(ctx, buyer, listing.ID, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for zero, got %v", err)
	}
	if _, err := svc.UpdateLineQuantity(ctx, buyer, listing.ID, 11); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity above cap, got %v", err)
	}

	dto, err := svc.UpdateLineQuantity(ctx, buyer, listing.ID, 4)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Items[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", dto.Items[0].Quantity)
	}
}

func TestUpdateLineQuantityMissingLine(t *testing.T) {
	t.Parallel()

	buyer := uuid.New()
	staged := newListing(uuid.New(), "10", enums.ListingStatusAvailable)
	other := newListing(uuid.New(), "10", enums.ListingStatusAvailable)
	svc, _ := newTestService(t, staged, other)
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, buyer, staged.ID, 1); err != nil {
		t.Fatalf("add line: %v", err)
	}

	_, err := svc.UpdateLineQuantity(ctx, buyer, other.ID, 2)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveLineIsIdempotent(t *testing.T) {
	t.Parallel()

	buyer := uuid.New()
	listing := newListing(uuid.New(), "10", enums.ListingStatusAvailable)
	svc, _ := newTestService(t, listing)
	ctx := context.Background()

	// Removing from a cart that never existed succeeds with an empty cart.
	dto, err := svc.RemoveLine(ctx, buyer, listing.ID)
	if err != nil {
		t.Fatalf("remove on empty: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", dto.Items)
	}

	if _, err := svc.AddLine(ctx, buyer, listing.ID, 2); err != nil {
		t.Fatalf("add line: %v", err)
	}
	dto, err = svc.RemoveLine(ctx, buyer, listing.ID)
	if err != nil {
		t.Fatalf("remove staged line: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected line gone, got %+v", dto.Items)
	}
	if _, err := svc.RemoveLine(ctx, buyer, listing.ID); err != nil {
		t.Fatalf("second remove must be a no-op: %v", err)
	}
}

func TestGetDerivesTotals(t *testing.T) {
	t.Parallel()

	buyer := uuid.New()
	cheap := newListing(uuid.New(), "5.25", enums.ListingStatusAvailable)
	pricey := newListing(uuid.New(), "100", enums.ListingStatusAvailable)
	svc, _ := newTestService(t, cheap, pricey)
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, buyer, cheap.ID, 2); err != nil {
		t.Fatalf("add cheap: %v", err)
	}
	if _, err := svc.AddLine(ctx, buyer, pricey.ID, 1); err != nil {
		t.Fatalf("add pricey: %v", err)
	}

	dto, err := svc.Get(ctx, buyer)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if dto.TotalItems != 2 {
		t.Fatalf("total_items counts lines, got %d", dto.TotalItems)
	}
	if !dto.TotalPrice.Equal(decimal.RequireFromString("110.50")) {
		t.Fatalf("expected 110.50, got %s", dto.TotalPrice)
	}
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubListings struct {
	byID map[uuid.UUID]*models.Listing
}

func (s stubListings) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return listing, nil
}

type stubRepo struct {
	listings map[uuid.UUID]*models.Listing
	carts    map[uuid.UUID]*models.Cart
	lines    []*models.CartItem
}

func (s *stubRepo) WithTx(tx *gorm.DB) CartRepository { return s }

func (s *stubRepo) GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if s.carts == nil {
		s.carts = map[uuid.UUID]*models.Cart{}
	}
	cart, ok := s.carts[userID]
	if !ok {
		cart = &models.Cart{ID: uuid.New(), UserID: userID}
		s.carts[userID] = cart
	}
	return s.snapshot(cart), nil
}

func (s *stubRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, ok := s.carts[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s.snapshot(cart), nil
}

func (s *stubRepo) snapshot(cart *models.Cart) *models.Cart {
	out := &models.Cart{ID: cart.ID, UserID: cart.UserID}
	for _, line := range s.lines {
		if line.CartID != cart.ID {
			continue
		}
		copied := *line
		copied.Listing = s.listings[line.ListingID]
		out.Items = append(out.Items, copied)
	}
	return out
}

func (s *stubRepo) FindLine(ctx context.Context, cartID, listingID uuid.UUID) (*models.CartItem, error) {
	for _, line := range s.lines {
		if line.CartID == cartID && line.ListingID == listingID {
			return line, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) CreateLine(ctx context.Context, line *models.CartItem) error {
	line.ID = uuid.New()
	s.lines = append(s.lines, line)
	return nil
}

func (s *stubRepo) UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	for _, line := range s.lines {
		if line.ID == lineID {
			line.Quantity = quantity
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubRepo) DeleteLine(ctx context.Context, cartID, listingID uuid.UUID) error {
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.CartID == cartID && line.ListingID == listingID {
			continue
		}
		kept = append(kept, line)
	}
	s.lines = kept
	return nil
}

func (s *stubRepo) DeleteLines(ctx context.Context, lineIDs []uuid.UUID) error {
	drop := make(map[uuid.UUID]bool, len(lineIDs))
	for _, id := range lineIDs {
		drop[id] = true
	}
	kept := s.lines[:0]
	for _, line := range s.lines {
		if drop[line.ID] {
			continue
		}
		kept = append(kept, line)
	}
	s.lines = kept
	return nil
}
