package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// User represents a user entity. Email and PasswordHash are null for accounts
// created through wallet sign-in only.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Email        null.String `json:"email,omitempty"`
	Name         string      `json:"name"`
	PasswordHash null.String `json:"-"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// RegisterInput represents input for email registration
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginInput represents input for email login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshInput represents input for refreshing a token pair
type RefreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user,omitempty"`
}
