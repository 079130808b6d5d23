package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/internal/ai"
	"github.com/ecofinds/ecofinds-backend/internal/pricing"
	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/ecofinds/ecofinds-backend/pkg/errors"
	"github.com/ecofinds/ecofinds-backend/pkg/logger"
	"github.com/ecofinds/ecofinds-backend/pkg/pagination"
)

// listingRewardPoints is credited to the seller for every published listing.
const listingRewardPoints = 10

type categoryLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type accountCrediter interface {
	CreditPoints(ctx context.Context, userID uuid.UUID, points int) (*models.User, error)
}

type notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind, body string) error
}

// Service exposes listing lifecycle operations.
type Service interface {
	Create(ctx context.Context, sellerID uuid.UUID, input CreateListingInput) (*ListingDTO, error)
	Update(ctx context.Context, sellerID, listingID uuid.UUID, input UpdateListingInput) (*ListingDTO, error)
	Get(ctx context.Context, listingID uuid.UUID, countView bool) (*ListingDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Delete(ctx context.Context, sellerID, listingID uuid.UUID) error
	Like(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
	Unlike(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
}

type service struct {
	repo       ListingRepository
	categories categoryLoader
	accounts   accountCrediter
	verifier   ai.ImageVerifier
	abuse      ai.AbuseDetector
	notify     notifier
	logg       *logger.Logger
}

// ServiceParams bundles the dependencies required to build a catalog service.
type ServiceParams struct {
	Repo       ListingRepository
	Categories categoryLoader
	Accounts   accountCrediter
	Verifier   ai.ImageVerifier
	Abuse      ai.AbuseDetector
	Notifier   notifier
	Logger     *logger.Logger
}

// NewService builds a catalog service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("listing repository required")
	}
	if params.Categories == nil {
		return nil, fmt.Errorf("category loader required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("account crediter required")
	}
	if params.Verifier == nil {
		return nil, fmt.Errorf("image verifier required")
	}
	if params.Abuse == nil {
		return nil, fmt.Errorf("abuse detector required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:       params.Repo,
		categories: params.Categories,
		accounts:   params.Accounts,
		verifier:   params.Verifier,
		abuse:      params.Abuse,
		notify:     params.Notifier,
		logg:       params.Logger,
	}, nil
}

// Create publishes a listing, deriving the resale price once when an
// original price is supplied, and credits the seller's eco points.
func (s *service) Create(ctx context.Context, sellerID uuid.UUID, input CreateListingInput) (*ListingDTO, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	condition := input.Condition
	if condition == "" {
		condition = enums.ListingConditionGood
	} else if !condition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid condition")
	}
	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	} else if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}
	if input.OriginalPrice != nil && !input.OriginalPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "original price must be positive")
	}
	if input.OriginalPrice == nil && !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.EstimatedWeightKg != nil && input.EstimatedWeightKg.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "estimated weight cannot be negative")
	}

	category, err := s.categories.FindByID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	listing := &models.Listing{
		Title:             strings.TrimSpace(input.Title),
		Description:       input.Description,
		CategoryID:        category.ID,
		Condition:         condition,
		Price:             input.Price,
		OriginalPrice:     input.OriginalPrice,
		Currency:          currency,
		EstimatedWeightKg: input.EstimatedWeightKg,
		SellerID:          sellerID,
		Location:          input.Location,
		Status:            enums.ListingStatusAvailable,
	}

	if input.OriginalPrice != nil {
		listing.Price = pricing.ResalePrice(*input.OriginalPrice, category.DepreciationRate, condition)
		listing.IsSmartPriced = true
	}
	if input.EstimatedWeightKg != nil {
		listing.CO2Saved = pricing.CO2Saved(*input.EstimatedWeightKg, category.AvgCO2PerKg)
	}
	listing.SustainabilityScore = pricing.SustainabilityScore(condition, listing.CO2Saved)

	s.applyVerification(ctx, listing, input.ImageURL)

	created, err := s.repo.Create(ctx, listing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}

	// Gamification is best-effort; the listing stays published either way.
	if _, err := s.accounts.CreditPoints(ctx, sellerID, listingRewardPoints); err != nil {
		s.logg.Error(s.logg.WithListingID(ctx, created.ID.String()), "credit listing reward", err)
	} else if err := s.notify.Notify(ctx, sellerID, enums.NotificationPointsAwarded,
		fmt.Sprintf("You earned %d eco points for listing %q", listingRewardPoints, created.Title)); err != nil {
		s.logg.Warn(s.logg.WithListingID(ctx, created.ID.String()), "listing reward notification failed")
	}

	dto := FromModel(created)
	dto.CategoryName = category.Name
	return &dto, nil
}

// Update applies seller edits. The resale derivation only runs if the
// listing was never smart-priced.
func (s *service) Update(ctx context.Context, sellerID, listingID uuid.UUID, input UpdateListingInput) (*ListingDTO, error) {
	listing, err := s.loadOwned(ctx, sellerID, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status == enums.ListingStatusSold {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "sold listings cannot be edited")
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
		}
		listing.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		listing.Description = *input.Description
	}
	if input.Condition != nil {
		if !input.Condition.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid condition")
		}
		listing.Condition = *input.Condition
	}
	if input.Location != nil {
		listing.Location = *input.Location
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		listing.Price = *input.Price
	}
	if input.OriginalPrice != nil {
		if !input.OriginalPrice.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "original price must be positive")
		}
		listing.OriginalPrice = input.OriginalPrice
	}

	category, err := s.categories.FindByID(ctx, listing.CategoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	// The derivation latches on first use; later original-price edits are stored only.
	if listing.OriginalPrice != nil && !listing.IsSmartPriced {
		listing.Price = pricing.ResalePrice(*listing.OriginalPrice, category.DepreciationRate, listing.Condition)
		listing.IsSmartPriced = true
	}

	if input.EstimatedWeightKg != nil {
		if input.EstimatedWeightKg.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "estimated weight cannot be negative")
		}
		listing.EstimatedWeightKg = input.EstimatedWeightKg
		listing.CO2Saved = pricing.CO2Saved(*input.EstimatedWeightKg, category.AvgCO2PerKg)
	}
	listing.SustainabilityScore = pricing.SustainabilityScore(listing.Condition, listing.CO2Saved)

	updated, err := s.repo.Update(ctx, listing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing")
	}
	dto := FromModel(updated)
	dto.CategoryName = category.Name
	return &dto, nil
}

// Get returns the listing, optionally counting the view.
func (s *service) Get(ctx context.Context, listingID uuid.UUID, countView bool) (*ListingDTO, error) {
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	if countView {
		if err := s.repo.IncrementViews(ctx, listingID); err != nil {
			s.logg.Warn(s.logg.WithListingID(ctx, listingID.String()), "increment views failed")
		} else {
			listing.ViewsCount++
		}
	}

	dto := FromModel(listing)
	return &dto, nil
}

// Like records the user's like once. The second like of the same listing
// is a no-op and reports false.
func (s *service) Like(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || listingID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "user and listing ids are required")
	}
	if _, err := s.repo.FindByID(ctx, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	created, err := s.repo.AddLike(ctx, listingID, userID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add like")
	}
	return created, nil
}

// Unlike removes the user's like if present.
func (s *service) Unlike(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || listingID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "user and listing ids are required")
	}
	removed, err := s.repo.RemoveLike(ctx, listingID, userID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove like")
	}
	return removed, nil
}

// List returns a filtered, cursor-paginated page of listings.
func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	repoParams, err := params.toRepoParams()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, repoParams)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}

	items := make([]ListingDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: items, Cursor: cursor}, nil
}

// Delete removes a seller-owned listing.
func (s *service) Delete(ctx context.Context, sellerID, listingID uuid.UUID) error {
	listing, err := s.loadOwned(ctx, sellerID, listingID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, listing.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete listing")
	}
	return nil
}

func (s *service) loadOwned(ctx context.Context, sellerID, listingID uuid.UUID) (*models.Listing, error) {
	if sellerID == uuid.Nil || listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller and listing ids are required")
	}
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing belongs to another seller")
	}
	return listing, nil
}

func (s *service) applyVerification(ctx context.Context, listing *models.Listing, imageURL string) {
	result, err := s.verifier.VerifyListingImage(ctx, imageURL, listing.Title)
	if err != nil {
		s.logg.Warn(ctx, "image verification failed, publishing unverified")
		listing.AIVerified = false
		return
	}
	listing.AIVerified = result.Verified
	listing.FakeDetectionScore = result.FakeScore
	listing.ManualReviewRequired = result.ManualReviewRequired

	abuse, err := s.abuse.DetectAbuse(ctx, listing.Title+"\n"+listing.Description)
	if err != nil {
		s.logg.Warn(ctx, "abuse detection failed, publishing unflagged")
		return
	}
	if abuse.Abusive {
		listing.ManualReviewRequired = true
	}
}
