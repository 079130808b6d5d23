package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecofinds/ecofinds-backend/api/controllers"
	"github.com/ecofinds/ecofinds-backend/api/middleware"
	"github.com/ecofinds/ecofinds-backend/internal/accounts"
	"github.com/ecofinds/ecofinds-backend/internal/auth"
	cartsvc "github.com/ecofinds/ecofinds-backend/internal/cart"
	"github.com/ecofinds/ecofinds-backend/internal/catalog"
	"github.com/ecofinds/ecofinds-backend/internal/categories"
	checkoutsvc "github.com/ecofinds/ecofinds-backend/internal/checkout"
	"github.com/ecofinds/ecofinds-backend/internal/notifications"
	ordersvc "github.com/ecofinds/ecofinds-backend/internal/orders"
	"github.com/ecofinds/ecofinds-backend/internal/users"
	"github.com/ecofinds/ecofinds-backend/pkg/auth/session"
	"github.com/ecofinds/ecofinds-backend/pkg/config"
	"github.com/ecofinds/ecofinds-backend/pkg/db"
	"github.com/ecofinds/ecofinds-backend/pkg/logger"
	"github.com/ecofinds/ecofinds-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	Sessions       sessionManager
	AuthService    auth.Service
	Register       auth.RegisterService
	Catalog        catalog.Service
	Cart           cartsvc.Service
	Checkout       checkoutsvc.Service
	Orders         ordersvc.Service
	Accounts       accounts.Service
	Notifications  notifications.Service
	CategoriesRepo *categories.Repository
	UsersRepo      *users.Repository
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.Register(deps.Register, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.Login(deps.AuthService, logg))
		r.Post("/refresh", controllers.Refresh(deps.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).Post("/logout", controllers.Logout(deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/listings", func(r chi.Router) {
			r.Get("/", controllers.ListingBrowse(deps.Catalog, logg))
			r.Post("/", controllers.ListingCreate(deps.Catalog, logg))
			r.Get("/{listingID}", controllers.ListingDetail(deps.Catalog, logg))
			r.Patch("/{listingID}", controllers.ListingUpdate(deps.Catalog, logg))
			r.Delete("/{listingID}", controllers.ListingDelete(deps.Catalog, logg))
			r.Post("/{listingID}/like", controllers.ListingLike(deps.Catalog, logg))
			r.Delete("/{listingID}/like", controllers.ListingUnlike(deps.Catalog, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Patch("/items/{listingID}", controllers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/items/{listingID}", controllers.CartRemoveItem(deps.Cart, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/purchases", controllers.OrderPurchases(deps.Orders, logg))
			r.Get("/sales", controllers.OrderSales(deps.Orders, logg))
			r.Patch("/{orderID}/status", controllers.OrderUpdateStatus(deps.Orders, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(deps.CategoriesRepo, logg))
			r.Post("/", controllers.CategoryCreate(deps.CategoriesRepo, logg))
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(deps.Accounts, logg))
			r.Patch("/", controllers.ProfileUpdate(deps.UsersRepo, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationList(deps.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.NotificationMarkRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.NotificationMarkAllRead(deps.Notifications, logg))
		})
	})

	return r
}
