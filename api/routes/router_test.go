package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ecofinds/ecofinds-backend/internal/accounts"
	"github.com/ecofinds/ecofinds-backend/internal/auth"
	cartsvc "github.com/ecofinds/ecofinds-backend/internal/cart"
	"github.com/ecofinds/ecofinds-backend/internal/catalog"
	checkoutsvc "github.com/ecofinds/ecofinds-backend/internal/checkout"
	"github.com/ecofinds/ecofinds-backend/internal/notifications"
	ordersvc "github.com/ecofinds/ecofinds-backend/internal/orders"
	"github.com/ecofinds/ecofinds-backend/internal/users"
	pkgAuth "github.com/ecofinds/ecofinds-backend/pkg/auth"
	"github.com/ecofinds/ecofinds-backend/pkg/auth/session"
	"github.com/ecofinds/ecofinds-backend/pkg/config"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
	"github.com/ecofinds/ecofinds-backend/pkg/logger"
	"github.com/ecofinds/ecofinds-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

func (stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

type stubCatalogService struct{}

func (stubCatalogService) Create(ctx context.Context, sellerID uuid.UUID, input catalog.CreateListingInput) (*catalog.ListingDTO, error) {
	return &catalog.ListingDTO{}, nil
}

func (stubCatalogService) Update(ctx context.Context, sellerID, listingID uuid.UUID, input catalog.UpdateListingInput) (*catalog.ListingDTO, error) {
	return &catalog.ListingDTO{}, nil
}

func (stubCatalogService) Get(ctx context.Context, listingID uuid.UUID, countView bool) (*catalog.ListingDTO, error) {
	return &catalog.ListingDTO{}, nil
}

func (stubCatalogService) List(ctx context.Context, params catalog.ListParams) (*catalog.ListResult, error) {
	return &catalog.ListResult{}, nil
}

func (stubCatalogService) Like(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	return true, nil
}

func (stubCatalogService) Unlike(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	return false, nil
}

func (stubCatalogService) Delete(ctx context.Context, sellerID, listingID uuid.UUID) error {
	return nil
}

type stubCartService struct{}

func (stubCartService) AddLine(ctx context.Context, userID, listingID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{}, nil
}

func (stubCartService) UpdateLineQuantity(ctx context.Context, userID, listingID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{}, nil
}

func (stubCartService) RemoveLine(ctx context.Context, userID, listingID uuid.UUID) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{}, nil
}

func (stubCartService) Get(ctx context.Context, userID uuid.UUID) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{}, nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) Settle(ctx context.Context, buyerID uuid.UUID) (*checkoutsvc.SettlementResult, error) {
	return &checkoutsvc.SettlementResult{}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) ListPurchases(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*ordersvc.ListResult, error) {
	return &ordersvc.ListResult{}, nil
}

func (stubOrdersService) ListSales(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*ordersvc.ListResult, error) {
	return &ordersvc.ListResult{}, nil
}

func (stubOrdersService) UpdateStatus(ctx context.Context, actorID, orderID uuid.UUID, next enums.OrderStatus) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}

type stubAccountsService struct{}

func (stubAccountsService) GetSummary(ctx context.Context, userID uuid.UUID) (*accounts.Summary, error) {
	return &accounts.Summary{}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) Notify(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind, body string) error {
	return nil
}

func (stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:        cfg,
		Logger:        logg,
		DB:            stubPinger{},
		Sessions:      stubSessionManager{},
		AuthService:   stubAuthService{},
		Register:      stubRegisterService{},
		Catalog:       stubCatalogService{},
		Cart:          stubCartService{},
		Checkout:      stubCheckoutService{},
		Orders:        stubOrdersService{},
		Accounts:      stubAccountsService{},
		Notifications: stubNotificationsService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "router-test",
		EcoLevel: enums.EcoLevelApprentice,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if env := resp.Header().Get("X-EcoFinds-Env"); env != "test" {
		t.Fatalf("unexpected env header %q", env)
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	for _, path := range []string{"/api/v1/cart", "/api/v1/listings", "/api/v1/orders/purchases", "/api/v1/profile"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s got %d", path, resp.Code)
		}
	}
}

func TestProtectedGroupAcceptsValidJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCheckoutRouteRequiresAuth(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
