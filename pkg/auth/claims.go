package auth

import (
	"github.com/ecofinds/ecofinds-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Username string
	EcoLevel enums.EcoLevel
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID      `json:"user_id"`
	Username string         `json:"username"`
	EcoLevel enums.EcoLevel `json:"eco_level"`
	jwt.RegisteredClaims
}
