package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/accounts"
	"github.com/ecofinds/ecofinds-backend/internal/cart"
	"github.com/ecofinds/ecofinds-backend/internal/catalog"
	"github.com/ecofinds/ecofinds-backend/internal/orders"
	"github.com/ecofinds/ecofinds-backend/pkg/config"
	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
	"github.com/ecofinds/ecofinds-backend/pkg/logger"
	"github.com/ecofinds/ecofinds-backend/pkg/redis"
)

type fixture struct {
	conn     *gorm.DB
	svc      Service
	locker   *stubLocker
	notifier *stubNotifier
	accounts accounts.AccountRepository
}

func newFixture(t *testing.T, opts ...func(*ServiceParams)) *fixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	tables := []any{&models.User{}, &models.Category{}, &models.Listing{}, &models.Cart{}, &models.CartItem{}, &models.Order{}}
	if err := conn.AutoMigrate(tables...); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}

	locker := &stubLocker{}
	notifier := &stubNotifier{}
	params := ServiceParams{
		Carts:    cart.NewRepository(conn),
		Listings: catalog.NewRepository(conn),
		Orders:   orders.NewRepository(conn),
		Accounts: accounts.NewRepository(conn),
		Tx:       gormTx{conn: conn},
		Locker:   locker,
		Notifier: notifier,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Config:   config.CheckoutConfig{LockTTL: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(&params)
	}

	svc, err := NewService(params)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{conn: conn, svc: svc, locker: locker, notifier: notifier, accounts: params.Accounts}
}

func (f *fixture) seedUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        name + "@example.com",
		Username:     name,
		PasswordHash: "x",
		EcoLevel:     enums.EcoLevelApprentice,
		TrustScore:   50,
	}
	if err := f.conn.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return user
}

func (f *fixture) seedListing(t *testing.T, seller *models.User, price, co2 string, status enums.ListingStatus) *models.Listing {
	t.Helper()
	category := &models.Category{
		Name:             fmt.Sprintf("Category %s", uuid.NewString()[:8]),
		AvgCO2PerKg:      decimal.RequireFromString("5"),
		DepreciationRate: decimal.RequireFromString("0.2"),
	}
	if err := f.conn.Create(category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	listing := &models.Listing{
		Title:      fmt.Sprintf("Listing %s", uuid.NewString()[:8]),
		CategoryID: category.ID,
		Condition:  enums.ListingConditionGood,
		Price:      decimal.RequireFromString(price),
		Currency:   enums.CurrencyUSD,
		CO2Saved:   decimal.RequireFromString(co2),
		SellerID:   seller.ID,
		Status:     status,
	}
	if err := f.conn.Create(listing).Error; err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	return listing
}

func (f *fixture) stage(t *testing.T, buyer *models.User, listing *models.Listing, qty int) {
	t.Helper()
	repo := cart.NewRepository(f.conn)
	record, err := repo.GetOrCreateByUser(context.Background(), buyer.ID)
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}
	line := &models.CartItem{CartID: record.ID, ListingID: listing.ID, Quantity: qty}
	if err := repo.CreateLine(context.Background(), line); err != nil {
		t.Fatalf("stage line: %v", err)
	}
}

func TestSettleCreatesOrdersAndCreditsBuyer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	buyer := f.seedUser(t, "buyer")
	sellerA := f.seedUser(t, "seller-a")
	sellerB := f.seedUser(t, "seller-b")
	chair := f.seedListing(t, sellerA, "40", "8.5", enums.ListingStatusAvailable)
	lamp := f.seedListing(t, sellerB, "12.50", "2.5", enums.ListingStatusAvailable)
	f.stage(t, buyer, chair, 1)
	f.stage(t, buyer, lamp, 2)

	result, err := f.svc.Settle(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if len(result.Orders) != 2 || len(result.RejectedLines) != 0 {
		t.Fatalf("expected 2 orders with no rejects, got %+v", result)
	}
	if result.PointsEarned != 50 {
		t.Fatalf("expected 50 points, got %d", result.PointsEarned)
	}
	if !result.CO2Saved.Equal(decimal.RequireFromString("11")) {
		t.Fatalf("expected 11 kg co2, got %s", result.CO2Saved)
	}
	if result.EcoLevel != enums.EcoLevelApprentice {
		t.Fatalf("unexpected eco level %s", result.EcoLevel)
	}

	// The lamp line snapshots price times quantity.
	for _, order := range result.Orders {
		if order.ListingID == lamp.ID && !order.TotalPrice.Equal(decimal.RequireFromString("25")) {
			t.Fatalf("expected lamp snapshot 25, got %s", order.TotalPrice)
		}
		if order.Status != enums.OrderStatusPending {
			t.Fatalf("expected pending order, got %s", order.Status)
		}
	}

	var sold models.Listing
	if err := f.conn.First(&sold, "id = ?", chair.ID).Error; err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	if sold.Status != enums.ListingStatusSold {
		t.Fatalf("expected listing sold, got %s", sold.Status)
	}

	var lineCount int64
	if err := f.conn.Model(&models.CartItem{}).Count(&lineCount).Error; err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if lineCount != 0 {
		t.Fatalf("expected empty cart, got %d lines", lineCount)
	}

	var credited models.User
	if err := f.conn.First(&credited, "id = ?", buyer.ID).Error; err != nil {
		t.Fatalf("reload buyer: %v", err)
	}
	if credited.EcoPoints != 50 {
		t.Fatalf("expected 50 points persisted, got %d", credited.EcoPoints)
	}

	var trusted models.User
	if err := f.conn.First(&trusted, "id = ?", sellerA.ID).Error; err != nil {
		t.Fatalf("reload seller: %v", err)
	}
	if trusted.TrustScore != 51 {
		t.Fatalf("expected seller trust 51, got %d", trusted.TrustScore)
	}

	if f.notifier.count(buyer.ID) != 1 || f.notifier.count(sellerA.ID) != 1 || f.notifier.count(sellerB.ID) != 1 {
		t.Fatalf("unexpected notifications: %+v", f.notifier.sent)
	}
	if !f.locker.released {
		t.Fatal("expected lock release")
	}
}

func TestSettleEmptyCart(t *testing.T) {
	f := newFixture(t)
	buyer := f.seedUser(t, "buyer")

	if _, err := f.svc.Settle(context.Background(), buyer.ID); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestSettleWhileLockHeld(t *testing.T) {
	f := newFixture(t)
	buyer := f.seedUser(t, "buyer")
	f.locker.held = true

	if _, err := f.svc.Settle(context.Background(), buyer.ID); !errors.Is(err, ErrCheckoutInProgress) {
		t.Fatalf("expected ErrCheckoutInProgress, got %v", err)
	}
}

func TestSettleRejectsSoldLineAndSettlesTheRest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	buyer := f.seedUser(t, "buyer")
	seller := f.seedUser(t, "seller")
	alive := f.seedListing(t, seller, "30", "4", enums.ListingStatusAvailable)
	gone := f.seedListing(t, seller, "20", "3", enums.ListingStatusSold)
	f.stage(t, buyer, alive, 1)
	f.stage(t, buyer, gone, 1)

	result, err := f.svc.Settle(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if len(result.Orders) != 1 || result.Orders[0].ListingID != alive.ID {
		t.Fatalf("expected one order for the live listing, got %+v", result.Orders)
	}
	if len(result.RejectedLines) != 1 || result.RejectedLines[0].ListingID != gone.ID {
		t.Fatalf("expected the sold listing rejected, got %+v", result.RejectedLines)
	}
	if result.PointsEarned != 25 {
		t.Fatalf("expected 25 points, got %d", result.PointsEarned)
	}

	// The rejected line leaves the cart with everything else.
	var lineCount int64
	if err := f.conn.Model(&models.CartItem{}).Count(&lineCount).Error; err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if lineCount != 0 {
		t.Fatalf("expected empty cart, got %d lines", lineCount)
	}
}

func TestSettleAllLinesRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	buyer := f.seedUser(t, "buyer")
	seller := f.seedUser(t, "seller")
	gone := f.seedListing(t, seller, "20", "3", enums.ListingStatusSold)
	f.stage(t, buyer, gone, 1)

	result, err := f.svc.Settle(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if len(result.Orders) != 0 || result.PointsEarned != 0 {
		t.Fatalf("expected no orders or points, got %+v", result)
	}

	var credited models.User
	if err := f.conn.First(&credited, "id = ?", buyer.ID).Error; err != nil {
		t.Fatalf("reload buyer: %v", err)
	}
	if credited.EcoPoints != 0 {
		t.Fatalf("expected no credit, got %d points", credited.EcoPoints)
	}
	if len(f.notifier.sent) != 0 {
		t.Fatalf("expected no notifications, got %+v", f.notifier.sent)
	}
}

func TestSettleRollsBackWhenCreditFails(t *testing.T) {
	f := newFixture(t, func(p *ServiceParams) {
		p.Accounts = failingAccounts{}
	})
	ctx := context.Background()

	buyer := f.seedUser(t, "buyer")
	seller := f.seedUser(t, "seller")
	listing := f.seedListing(t, seller, "30", "4", enums.ListingStatusAvailable)
	f.stage(t, buyer, listing, 1)

	if _, err := f.svc.Settle(ctx, buyer.ID); err == nil {
		t.Fatal("expected settlement failure")
	}

	// Nothing from the aborted settlement may stick.
	var stored models.Listing
	if err := f.conn.First(&stored, "id = ?", listing.ID).Error; err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	if stored.Status != enums.ListingStatusAvailable {
		t.Fatalf("expected listing still available, got %s", stored.Status)
	}
	var orderCount, lineCount int64
	if err := f.conn.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if err := f.conn.Model(&models.CartItem{}).Count(&lineCount).Error; err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if orderCount != 0 || lineCount != 1 {
		t.Fatalf("expected rollback, got %d orders and %d lines", orderCount, lineCount)
	}
}

func TestSettleSurvivesNotifierFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.fail = true
	ctx := context.Background()

	buyer := f.seedUser(t, "buyer")
	seller := f.seedUser(t, "seller")
	listing := f.seedListing(t, seller, "30", "4", enums.ListingStatusAvailable)
	f.stage(t, buyer, listing, 1)

	result, err := f.svc.Settle(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("settle must not fail on notifications: %v", err)
	}
	if len(result.Orders) != 1 {
		t.Fatalf("expected one order, got %+v", result.Orders)
	}
}

func TestSettleLeavesConcurrentlyStagedLines(t *testing.T) {
	var hooked *cartRepoWithHook
	f := newFixture(t, func(p *ServiceParams) {
		hooked = &cartRepoWithHook{CartRepository: p.Carts}
		p.Carts = hooked
	})
	ctx := context.Background()

	buyer := f.seedUser(t, "buyer")
	seller := f.seedUser(t, "seller")
	chair := f.seedListing(t, seller, "40", "8.5", enums.ListingStatusAvailable)
	lamp := f.seedListing(t, seller, "12.50", "2.5", enums.ListingStatusAvailable)
	f.stage(t, buyer, chair, 1)

	// The lamp is staged after the settlement has read the cart, as a
	// second request racing the checkout would.
	hooked.afterFind = func() {
		f.stage(t, buyer, lamp, 1)
	}

	result, err := f.svc.Settle(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if len(result.Orders) != 1 || result.Orders[0].ListingID != chair.ID {
		t.Fatalf("expected only the chair to settle, got %+v", result.Orders)
	}

	remaining, err := cart.NewRepository(f.conn).FindByUser(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("reload cart: %v", err)
	}
	if len(remaining.Items) != 1 || remaining.Items[0].ListingID != lamp.ID {
		t.Fatalf("expected the late lamp line to survive, got %+v", remaining.Items)
	}
}

// cartRepoWithHook fires afterFind once, right after the settlement's
// cart read, to stage a line mid-settlement.
type cartRepoWithHook struct {
	cart.CartRepository
	afterFind func()
	fired     bool
}

func (r *cartRepoWithHook) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	record, err := r.CartRepository.FindByUser(ctx, userID)
	if err == nil && !r.fired && r.afterFind != nil {
		r.fired = true
		r.afterFind()
	}
	return record, err
}

type gormTx struct {
	conn *gorm.DB
}

func (g gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.conn.WithContext(ctx).Transaction(fn)
}

type stubLocker struct {
	held     bool
	released bool
}

func (s *stubLocker) AcquireCartLock(ctx context.Context, buyerID string, ttl time.Duration) (lockLease, error) {
	if s.held {
		return nil, redis.ErrLockHeld
	}
	return stubLease{locker: s}, nil
}

type stubLease struct {
	locker *stubLocker
}

func (s stubLease) Release(ctx context.Context) error {
	s.locker.released = true
	return nil
}

type stubNotifier struct {
	fail bool
	sent []uuid.UUID
}

func (s *stubNotifier) Notify(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind, body string) error {
	if s.fail {
		return errors.New("notification channel down")
	}
	s.sent = append(s.sent, userID)
	return nil
}

func (s *stubNotifier) count(userID uuid.UUID) int {
	n := 0
	for _, id := range s.sent {
		if id == userID {
			n++
		}
	}
	return n
}

type failingAccounts struct{}

func (failingAccounts) WithTx(tx *gorm.DB) accounts.AccountRepository { return failingAccounts{} }

func (failingAccounts) CreditPurchase(ctx context.Context, userID uuid.UUID, points int, co2 decimal.Decimal) (*models.User, error) {
	return nil, errors.New("credit failed")
}

func (failingAccounts) CreditPoints(ctx context.Context, userID uuid.UUID, points int) (*models.User, error) {
	return nil, errors.New("credit failed")
}

func (failingAccounts) CreditCO2(ctx context.Context, userID uuid.UUID, co2 decimal.Decimal) (*models.User, error) {
	return nil, errors.New("credit failed")
}

func (failingAccounts) AdjustTrustScore(ctx context.Context, userID uuid.UUID, delta int) (*models.User, error) {
	return nil, errors.New("credit failed")
}
