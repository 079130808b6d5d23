package controllers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/ecofinds/ecofinds-backend/api/responses"
	"github.com/ecofinds/ecofinds-backend/api/validators"
	"github.com/ecofinds/ecofinds-backend/internal/accounts"
	"github.com/ecofinds/ecofinds-backend/internal/users"
	pkgerrors "github.com/ecofinds/ecofinds-backend/pkg/errors"
	"github.com/ecofinds/ecofinds-backend/pkg/logger"
)

type updateProfileRequest struct {
	Bio                  *string `json:"bio" validate:"omitempty,max=1000"`
	Location             *string `json:"location" validate:"omitempty,max=200"`
	Language             *string `json:"language" validate:"omitempty,min=2,max=8"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}

// ProfileGet returns the gamification summary for the authenticated user.
func ProfileGet(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		userID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.GetSummary(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// ProfileUpdate applies the mutable profile fields.
func ProfileUpdate(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users repository unavailable"))
			return
		}

		userID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := repo.UpdateProfile(r.Context(), userID, users.UpdateProfileDTO{
			Bio:                  payload.Bio,
			Location:             payload.Location,
			Language:             payload.Language,
			NotificationsEnabled: payload.NotificationsEnabled,
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile"))
			return
		}
		responses.WriteSuccess(w, users.FromModel(user))
	}
}
