package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest is the public sign-up payload.
type RegisterRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	Surname       string `json:"surname" validate:"required,max=100"`
	Nick          string `json:"nick" validate:"required,max=50"`
	Email         string `json:"email" validate:"required,email,max=255"`
	Phone         string `json:"phone" validate:"required,max=20"`
	Password      string `json:"password" validate:"required,min=6,max=72"`
	PersonalData  bool   `json:"personalData"`
	PrivacyPolicy bool   `json:"privacyPolicy"`
	Notifications bool   `json:"notifications"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminLoginRequest authenticates against the admin panel using an email or a nick.
type AdminLoginRequest struct {
	Identifier string `json:"-" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	User      UserInfo  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Surname string   `json:"surname"`
	Nick    string   `json:"nick"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone,omitempty"`
	Role    UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID int64    `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	Nick   string   `json:"nick"`
	jwt.RegisteredClaims
}
