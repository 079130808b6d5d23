package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecofinds/ecofinds-backend/api/middleware"
	"github.com/ecofinds/ecofinds-backend/api/responses"
	"github.com/ecofinds/ecofinds-backend/api/validators"
	"github.com/ecofinds/ecofinds-backend/internal/catalog"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/ecofinds/ecofinds-backend/pkg/errors"
	"github.com/ecofinds/ecofinds-backend/pkg/logger"
	"github.com/ecofinds/ecofinds-backend/pkg/pagination"
)

type createListingRequest struct {
	Title             string           `json:"title" validate:"required,max=200"`
	Description       string           `json:"description" validate:"max=5000"`
	CategoryID        uuid.UUID        `json:"category_id" validate:"required"`
	Condition         string           `json:"condition" validate:"required"`
	Price             decimal.Decimal  `json:"price" validate:"required"`
	OriginalPrice     *decimal.Decimal `json:"original_price"`
	Currency          string           `json:"currency"`
	EstimatedWeightKg *decimal.Decimal `json:"estimated_weight_kg"`
	Location          string           `json:"location" validate:"max=200"`
	ImageURL          string           `json:"image_url" validate:"omitempty,url"`
}

func (p createListingRequest) toInput() (catalog.CreateListingInput, error) {
	condition, err := enums.ParseListingCondition(p.Condition)
	if err != nil {
		return catalog.CreateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition")
	}

	currency := enums.CurrencyUSD
	if p.Currency != "" {
		currency, err = enums.ParseCurrency(p.Currency)
		if err != nil {
			return catalog.CreateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
		}
	}

	return catalog.CreateListingInput{
		Title:             strings.TrimSpace(p.Title),
		Description:       strings.TrimSpace(p.Description),
		CategoryID:        p.CategoryID,
		Condition:         condition,
		Price:             p.Price,
		OriginalPrice:     p.OriginalPrice,
		Currency:          currency,
		EstimatedWeightKg: p.EstimatedWeightKg,
		Location:          validators.SanitizeString(p.Location, 200),
		ImageURL:          strings.TrimSpace(p.ImageURL),
	}, nil
}

type updateListingRequest struct {
	Title             *string          `json:"title" validate:"omitempty,max=200"`
	Description       *string          `json:"description" validate:"omitempty,max=5000"`
	Condition         *string          `json:"condition"`
	Price             *decimal.Decimal `json:"price"`
	OriginalPrice     *decimal.Decimal `json:"original_price"`
	EstimatedWeightKg *decimal.Decimal `json:"estimated_weight_kg"`
	Location          *string          `json:"location" validate:"omitempty,max=200"`
}

func (p updateListingRequest) toInput() (catalog.UpdateListingInput, error) {
	input := catalog.UpdateListingInput{
		Title:             p.Title,
		Description:       p.Description,
		Price:             p.Price,
		OriginalPrice:     p.OriginalPrice,
		EstimatedWeightKg: p.EstimatedWeightKg,
		Location:          p.Location,
	}
	if p.Condition != nil {
		condition, err := enums.ParseListingCondition(*p.Condition)
		if err != nil {
			return catalog.UpdateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition")
		}
		input.Condition = &condition
	}
	return input, nil
}

// ListingCreate publishes a new listing for the authenticated seller.
func ListingCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Create(r.Context(), sellerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, listing)
	}
}

// ListingUpdate applies seller edits to an owned listing.
func ListingUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listingID, err := parseListingID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Update(r.Context(), sellerID, listingID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// ListingDetail returns one listing and records the view.
func ListingDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		listingID, err := parseListingID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Get(r.Context(), listingID, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// ListingBrowse returns a filtered, cursor-paginated listing feed.
func ListingBrowse(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := catalog.ListParams{
			Query:  validators.SanitizeString(r.URL.Query().Get("q"), 200),
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseListingStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			params.Status = &status
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
			categoryID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
				return
			}
			params.CategoryID = &categoryID
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("mine")); raw != "" {
			mine, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mine value"))
				return
			}
			if mine {
				sellerID, err := authenticatedUserID(r)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				params.SellerID = &sellerID
			}
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListingDelete removes an owned listing.
func ListingDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listingID, err := parseListingID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), sellerID, listingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ListingLike records the caller's like. Liking twice is a no-op.
func ListingLike(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		userID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listingID, err := parseListingID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := svc.Like(r.Context(), userID, listingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"liked": true})
	}
}

// ListingUnlike removes the caller's like if present.
func ListingUnlike(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		userID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listingID, err := parseListingID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := svc.Unlike(r.Context(), userID, listingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"liked": false})
	}
}

func parseListingID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "listingID"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	listingID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing id")
	}
	return listingID, nil
}

func authenticatedUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return userID, nil
}
