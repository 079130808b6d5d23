package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecofinds/ecofinds-backend/pkg/db/models"
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID                   uuid.UUID       `json:"id"`
	Email                string          `json:"email"`
	Username             string          `json:"username"`
	Bio                  string          `json:"bio,omitempty"`
	Location             string          `json:"location,omitempty"`
	EcoPoints            int             `json:"eco_points"`
	EcoLevel             enums.EcoLevel  `json:"eco_level"`
	EcoBadge             string          `json:"eco_badge"`
	CO2Saved             decimal.Decimal `json:"co2_saved"`
	IsVerified           bool            `json:"is_verified"`
	TrustScore           int             `json:"trust_score"`
	Language             string          `json:"language"`
	NotificationsEnabled bool            `json:"notifications_enabled"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	Username     string
	PasswordHash string
	Bio          string
	Location     string
	Language     string
}

// UpdateProfileDTO carries the mutable profile fields. Nil pointers are left untouched.
type UpdateProfileDTO struct {
	Bio                  *string
	Location             *string
	Language             *string
	NotificationsEnabled *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:                   u.ID,
		Email:                u.Email,
		Username:             u.Username,
		Bio:                  u.Bio,
		Location:             u.Location,
		EcoPoints:            u.EcoPoints,
		EcoLevel:             u.EcoLevel,
		EcoBadge:             u.EcoLevel.Badge(),
		CO2Saved:             u.CO2Saved,
		IsVerified:           u.IsVerified,
		TrustScore:           u.TrustScore,
		Language:             u.Language,
		NotificationsEnabled: u.NotificationsEnabled,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	language := c.Language
	if language == "" {
		language = "en"
	}

	return &models.User{
		Email:                c.Email,
		Username:             c.Username,
		PasswordHash:         c.PasswordHash,
		Bio:                  c.Bio,
		Location:             c.Location,
		EcoLevel:             enums.EcoLevelApprentice,
		TrustScore:           50,
		Language:             language,
		NotificationsEnabled: true,
	}
}
