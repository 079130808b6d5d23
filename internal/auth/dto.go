package auth

import (
	"github.com/ecofinds/ecofinds-backend/internal/users"
)

// RegisterRequest contains the payload required to open an account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=8"`
	Bio      string `json:"bio,omitempty"`
	Location string `json:"location,omitempty"`
	Language string `json:"language,omitempty"`
}

// LoginRequest authenticates by email or username.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// RefreshRequest rotates a session using the expired access token and
// its paired refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is the token pair handed to a signed-in client.
type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}
