package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/accounts"
	"github.com/ecofinds/ecofinds-backend/internal/cart"
	"github.com/ecofinds/ecofinds-backend/internal/catalog"
	"github.com/ecofinds/ecofinds-backend/internal/orders"
	"github.com/ecofinds/ecofinds-backend/pkg/config"
	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/ecofinds/ecofinds-backend/pkg/errors"
	"github.com/ecofinds/ecofinds-backend/pkg/logger"
	"github.com/ecofinds/ecofinds-backend/pkg/metrics"
	"github.com/ecofinds/ecofinds-backend/pkg/redis"
)

// purchasePoints is credited to the buyer for every order created.
const purchasePoints = 25

// sellerTrustDelta rewards each completed sale.
const sellerTrustDelta = 1

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind, body string) error
}

// RejectedLine is a cart line that failed the in-transaction re-check.
type RejectedLine struct {
	ListingID uuid.UUID `json:"listing_id"`
	Title     string    `json:"title,omitempty"`
	Reason    string    `json:"reason"`
}

// SettlementResult is the outcome of one checkout.
type SettlementResult struct {
	Orders        []orders.OrderDTO `json:"orders"`
	RejectedLines []RejectedLine    `json:"rejected_lines,omitempty"`
	PointsEarned  int               `json:"points_earned"`
	CO2Saved      decimal.Decimal   `json:"co2_saved"`
	EcoLevel      enums.EcoLevel    `json:"eco_level,omitempty"`
}

// Service turns a staged cart into order snapshots.
type Service interface {
	Settle(ctx context.Context, buyerID uuid.UUID) (*SettlementResult, error)
}

type service struct {
	carts    cart.CartRepository
	listings catalog.ListingRepository
	orders   orders.OrderRepository
	accounts accounts.AccountRepository
	tx       txRunner
	locker   cartLocker
	notify   notifier
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
	lockTTL  time.Duration
}

// ServiceParams bundles the dependencies required to build a checkout service.
type ServiceParams struct {
	Carts    cart.CartRepository
	Listings catalog.ListingRepository
	Orders   orders.OrderRepository
	Accounts accounts.AccountRepository
	Tx       txRunner
	Locker   cartLocker
	Notifier notifier
	Metrics  *metrics.CheckoutMetrics
	Logger   *logger.Logger
	Config   config.CheckoutConfig
}

// NewService builds a checkout service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Listings == nil {
		return nil, fmt.Errorf("listing repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("account repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Locker == nil {
		return nil, fmt.Errorf("cart locker required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Config.LockTTL <= 0 {
		return nil, fmt.Errorf("lock ttl must be positive")
	}
	return &service{
		carts:    params.Carts,
		listings: params.Listings,
		orders:   params.Orders,
		accounts: params.Accounts,
		tx:       params.Tx,
		locker:   params.Locker,
		notify:   params.Notifier,
		metrics:  params.Metrics,
		logg:     params.Logger,
		lockTTL:  params.Config.LockTTL,
	}, nil
}

// Settle converts every surviving cart line into a pending order, marks
// the listings sold, empties the cart and credits the buyer, all inside
// one transaction serialized per buyer. Lines whose listing was sold or
// withdrawn since it was staged are rejected individually; the rest of
// the cart settles.
func (s *service) Settle(ctx context.Context, buyerID uuid.UUID) (*SettlementResult, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	start := time.Now()
	ctx = s.logg.WithUserID(ctx, buyerID.String())

	lease, err := s.locker.AcquireCartLock(ctx, buyerID.String(), s.lockTTL)
	if err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			s.metrics.IncFailure("lock_held")
			return nil, ErrCheckoutInProgress
		}
		s.metrics.IncFailure("lock")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Warn(ctx, "release checkout lock failed")
		}
	}()

	staged, err := s.carts.FindByUser(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncFailure("empty_cart")
			return nil, ErrEmptyCart
		}
		s.metrics.IncFailure("load_cart")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(staged.Items) == 0 {
		s.metrics.IncFailure("empty_cart")
		return nil, ErrEmptyCart
	}

	result := &SettlementResult{CO2Saved: decimal.Zero}
	var sellerIDs []uuid.UUID

	// Only the lines read above settle. Lines staged concurrently stay
	// in the cart for the next checkout instead of being wiped unordered.
	stagedLineIDs := make([]uuid.UUID, 0, len(staged.Items))
	for _, line := range staged.Items {
		stagedLineIDs = append(stagedLineIDs, line.ID)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		listingRepo := s.listings.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)
		cartRepo := s.carts.WithTx(tx)
		accountRepo := s.accounts.WithTx(tx)

		co2 := decimal.Zero
		for _, line := range staged.Items {
			listing, err := listingRepo.FindByIDForUpdate(ctx, line.ListingID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					result.RejectedLines = append(result.RejectedLines, RejectedLine{
						ListingID: line.ListingID,
						Reason:    ErrListingNoLongerAvailable.Message(),
					})
					s.metrics.IncRejectedLine("missing")
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock listing")
			}
			if listing.Status != enums.ListingStatusAvailable {
				result.RejectedLines = append(result.RejectedLines, RejectedLine{
					ListingID: listing.ID,
					Title:     listing.Title,
					Reason:    ErrListingNoLongerAvailable.Message(),
				})
				s.metrics.IncRejectedLine("unavailable")
				continue
			}

			order := &models.Order{
				BuyerID:    buyerID,
				SellerID:   listing.SellerID,
				ListingID:  listing.ID,
				Quantity:   line.Quantity,
				TotalPrice: listing.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
				Status:     enums.OrderStatusPending,
			}
			created, err := orderRepo.Create(ctx, order)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
			}
			if err := listingRepo.UpdateStatus(ctx, listing.ID, enums.ListingStatusSold); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark listing sold")
			}

			dto := orders.FromModel(created)
			dto.ListingTitle = listing.Title
			result.Orders = append(result.Orders, dto)
			co2 = co2.Add(listing.CO2Saved)
			sellerIDs = append(sellerIDs, listing.SellerID)
		}

		if err := cartRepo.DeleteLines(ctx, stagedLineIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "empty cart")
		}

		if len(result.Orders) == 0 {
			return nil
		}

		points := purchasePoints * len(result.Orders)
		user, err := accountRepo.CreditPurchase(ctx, buyerID, points, co2)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit purchase")
		}
		for _, sellerID := range sellerIDs {
			if _, err := accountRepo.AdjustTrustScore(ctx, sellerID, sellerTrustDelta); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit seller trust")
			}
		}
		result.PointsEarned = points
		result.CO2Saved = co2
		result.EcoLevel = user.EcoLevel
		return nil
	})
	if err != nil {
		s.metrics.IncFailure("transaction")
		s.metrics.ObserveSettlement("failure", time.Since(start))
		return nil, err
	}

	s.metrics.AddOrders(len(result.Orders))
	s.metrics.ObserveSettlement("success", time.Since(start))

	if len(result.Orders) > 0 {
		s.sendSettlementNotifications(ctx, buyerID, sellerIDs, result)
	}
	return result, nil
}

// sendSettlementNotifications is fire-and-forget. The orders are already
// committed, so failures are aggregated and logged, never returned.
func (s *service) sendSettlementNotifications(ctx context.Context, buyerID uuid.UUID, sellerIDs []uuid.UUID, result *SettlementResult) {
	var errs error

	body := fmt.Sprintf("Order placed for %d item(s). You earned %d eco points.", len(result.Orders), result.PointsEarned)
	errs = multierr.Append(errs, s.notify.Notify(ctx, buyerID, enums.NotificationOrderPlaced, body))

	for i, sellerID := range sellerIDs {
		title := result.Orders[i].ListingTitle
		errs = multierr.Append(errs, s.notify.Notify(ctx, sellerID, enums.NotificationItemSold,
			fmt.Sprintf("Your listing %q was sold.", title)))
	}

	if errs != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", errs.Error()), "settlement notifications failed")
	}
}
