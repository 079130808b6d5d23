package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecofinds/ecofinds-backend/api/responses"
	"github.com/ecofinds/ecofinds-backend/api/validators"
	"github.com/ecofinds/ecofinds-backend/internal/categories"
	"github.com/ecofinds/ecofinds-backend/pkg/db"
	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	pkgerrors "github.com/ecofinds/ecofinds-backend/pkg/errors"
	"github.com/ecofinds/ecofinds-backend/pkg/logger"
)

type categoryResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Icon             string          `json:"icon"`
	Color            string          `json:"color"`
	AvgCO2PerKg      decimal.Decimal `json:"avg_co2_per_kg"`
	DepreciationRate decimal.Decimal `json:"depreciation_rate"`
	CreatedAt        time.Time       `json:"created_at"`
}

func newCategoryResponse(c models.Category) categoryResponse {
	return categoryResponse{
		ID:               c.ID,
		Name:             c.Name,
		Description:      c.Description,
		Icon:             c.Icon,
		Color:            c.Color,
		AvgCO2PerKg:      c.AvgCO2PerKg,
		DepreciationRate: c.DepreciationRate,
		CreatedAt:        c.CreatedAt,
	}
}

type createCategoryRequest struct {
	Name             string           `json:"name" validate:"required,max=100"`
	Description      string           `json:"description" validate:"max=500"`
	Icon             string           `json:"icon"`
	Color            string           `json:"color"`
	AvgCO2PerKg      decimal.Decimal  `json:"avg_co2_per_kg"`
	DepreciationRate *decimal.Decimal `json:"depreciation_rate"`
}

// CategoryList returns all categories ordered by name.
func CategoryList(repo *categories.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "categories repository unavailable"))
			return
		}

		list, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories"))
			return
		}

		items := make([]categoryResponse, len(list))
		for i, category := range list {
			items[i] = newCategoryResponse(category)
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// CategoryCreate adds a reference category.
func CategoryCreate(repo *categories.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "categories repository unavailable"))
			return
		}

		var payload createCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rate := decimal.NewFromFloat(0.20)
		if payload.DepreciationRate != nil {
			rate = *payload.DepreciationRate
		}
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "depreciation rate must be between 0 and 1"))
			return
		}
		if payload.AvgCO2PerKg.IsNegative() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "avg co2 per kg must not be negative"))
			return
		}

		category := &models.Category{
			Name:             strings.TrimSpace(payload.Name),
			Description:      strings.TrimSpace(payload.Description),
			Icon:             strings.TrimSpace(payload.Icon),
			Color:            strings.TrimSpace(payload.Color),
			AvgCO2PerKg:      payload.AvgCO2PerKg,
			DepreciationRate: rate,
		}

		created, err := repo.Create(r.Context(), category)
		if err != nil {
			if db.IsUniqueViolation(err) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "category already exists"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCategoryResponse(*created))
	}
}
