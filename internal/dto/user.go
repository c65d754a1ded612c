package dto

import (
	"time"

	"github.com/echoprep/echoprep_backend/internal/core/domain"
)

// RegisterRequest is the body of POST /users/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest is the body of POST /users/login. Either email or username identifies the user.
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest carries the refresh token for clients that do not send cookies.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ExchangeCodeRequest is the body of POST /users/google/exchange-code.
type ExchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// UserResponse is the public profile of a user.
type UserResponse struct {
	UserID       string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	AuthProvider string    `json:"authProvider"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AuthResponse is returned by register, login and Google sign-in.
type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// TokenPairResponse is returned by POST /users/refresh-token.
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:       user.GetUserID(),
		Username:     user.GetUsername(),
		Email:        user.GetEmail(),
		AuthProvider: string(user.AuthProvider),
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}
