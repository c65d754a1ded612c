package services

import (
	"context"

	"github.com/echoprep/echoprep_backend/internal/core/domain"
	"github.com/echoprep/echoprep_backend/internal/dto"
)

// TokenPair is a freshly issued, already persisted access/refresh pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// UserAuthSvc defines operations for user authentication and session rotation
type UserAuthSvc interface {
	// Register creates a local user and signs them in. Duplicate username or email fails with a conflict.
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, *TokenPair, error)

	// Login verifies credentials and rotates the user's refresh token.
	Login(ctx context.Context, req dto.LoginRequest) (*domain.User, *TokenPair, error)

	// RefreshSession exchanges the current refresh token for a new pair.
	// Any token other than the one last issued to the user fails with Unauthorized.
	RefreshSession(ctx context.Context, refreshToken string) (*TokenPair, error)

	// Logout unsets the stored refresh token.
	Logout(ctx context.Context, userID string) error

	// SignInOAuthUser finds the user by provider identity or email, creating it when absent, and signs them in.
	SignInOAuthUser(ctx context.Context, name, email string, provider domain.AuthProvider, providerUserID string) (*domain.User, *TokenPair, error)
}

// UserLifecycleSvc defines operations for managing user lifecycle
type UserLifecycleSvc interface {
	// DeleteAccount removes the user together with their interviews and resumes.
	DeleteAccount(ctx context.Context, userID string) error
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserAuthSvc
	UserLifecycleSvc
}
