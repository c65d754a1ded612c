package repositories

import (
	"context"
	"time"

	"github.com/echoprep/echoprep_backend/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by email (case-insensitive).
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUserByUsername retrieves a user by username.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user. Returns apperrors.ErrDuplicate when the username or email is taken.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateRefreshToken overwrites the single stored refresh token hash of a user.
	UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error

	// ClearRefreshToken unsets the stored refresh token of a user.
	ClearRefreshToken(ctx context.Context, userID string) error
}

// UserLifecycleManager defines operations for managing user lifecycle
type UserLifecycleManager interface {
	// DeleteUserCascade removes the user's interviews, resumes and the user itself atomically.
	DeleteUserCascade(ctx context.Context, userID string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	UserLifecycleManager
}
