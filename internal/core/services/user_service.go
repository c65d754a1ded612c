package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/echoprep/echoprep_backend/internal/apperrors"
	"github.com/echoprep/echoprep_backend/internal/core/domain"
	"github.com/echoprep/echoprep_backend/internal/core/ports/external"
	portsrepo "github.com/echoprep/echoprep_backend/internal/core/ports/repositories"
	portssvc "github.com/echoprep/echoprep_backend/internal/core/ports/services"
	"github.com/echoprep/echoprep_backend/internal/dto"
	"github.com/echoprep/echoprep_backend/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/xid"
)

// userService owns registration, credential checks and refresh token rotation.
// A user holds exactly one refresh token hash; every login or refresh overwrites it.
type userService struct {
	BaseService
	userRepo   portsrepo.UserRepositoryFacade
	resumeRepo portsrepo.ResumeRepositoryFacade
	tokens     portssvc.TokenSvcFacade
	archive    external.ObjectStore
	now        func() time.Time
}

// UserServiceOption is a functional option for configuring the user service
type UserServiceOption func(*userService)

// WithResumeArchive lets account deletion remove archived resume files.
func WithResumeArchive(resumeRepo portsrepo.ResumeRepositoryFacade, archive external.ObjectStore) UserServiceOption {
	return func(s *userService) {
		s.resumeRepo = resumeRepo
		s.archive = archive
	}
}

// NewUserService creates a new user service with the provided options
func NewUserService(userRepo portsrepo.UserRepositoryFacade, tokens portssvc.TokenSvcFacade, options ...UserServiceOption) portssvc.UserSvcFacade {
	svc := &userService{
		userRepo: userRepo,
		tokens:   tokens,
		now:      time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, *portssvc.TokenPair, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || strings.TrimSpace(req.Password) == "" {
		return nil, nil, apperrors.NewBadRequestError("All fields are required")
	}

	if taken, err := s.identityTaken(ctx, username, email); err != nil {
		return nil, nil, err
	} else if taken {
		s.LogInfo(ctx, "Registration rejected, identity taken", slog.String("username", username))
		return nil, nil, apperrors.NewConflictError("User with email or username already exists")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: &hash,
		AuthProvider: domain.ProviderLocal,
		AuditFields:  domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, nil, apperrors.NewConflictError("User with email or username already exists")
		}
		s.LogError(ctx, err, "Failed to save user", slog.String("username", username))
		return nil, nil, fmt.Errorf("failed to save user: %w", err)
	}

	pair, err := s.issueSession(ctx, &user)
	if err != nil {
		return nil, nil, err
	}
	s.LogInfo(ctx, "User registered", slog.String("user_id", user.UserID))
	return user.Sanitized(), pair, nil
}

func (s *userService) Login(ctx context.Context, req dto.LoginRequest) (*domain.User, *portssvc.TokenPair, error) {
	email := strings.TrimSpace(req.Email)
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if email == "" && username == "" {
		return nil, nil, apperrors.NewBadRequestError("Username or email is required")
	}

	var user *domain.User
	var err error
	if email != "" {
		user, err = s.userRepo.FindUserByEmail(ctx, email)
	} else {
		user, err = s.userRepo.FindUserByUsername(ctx, username)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.NewUnauthorizedError("Invalid user credentials")
		}
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.PasswordHash == nil || !utils.CheckPasswordHash(req.Password, *user.PasswordHash) {
		s.LogInfo(ctx, "Login rejected", slog.String("user_id", user.UserID))
		return nil, nil, apperrors.NewUnauthorizedError("Invalid user credentials")
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	s.LogInfo(ctx, "User logged in", slog.String("user_id", user.UserID))
	return user.Sanitized(), pair, nil
}

func (s *userService) RefreshSession(ctx context.Context, refreshToken string) (*portssvc.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.NewUnauthorizedError("Unauthorized request")
	}

	claims, err := s.tokens.Verify(ctx, refreshToken, portssvc.RefreshToken)
	if err != nil {
		s.LogWarn(ctx, err, "Refresh token rejected")
		return nil, apperrors.NewUnauthorizedError("Invalid refresh token")
	}

	user, err := s.userRepo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewUnauthorizedError("Invalid refresh token")
		}
		return nil, fmt.Errorf("failed to load user for refresh: %w", err)
	}

	// Only the most recently issued token matches the stored hash.
	if user.RefreshTokenHash == nil || !utils.CompareRefreshTokenHash(refreshToken, *user.RefreshTokenHash) {
		s.LogInfo(ctx, "Stale or revoked refresh token presented", slog.String("user_id", user.UserID))
		return nil, apperrors.NewUnauthorizedError("Refresh token is expired or used")
	}
	if user.RefreshTokenExpiryTime != nil && s.now().After(*user.RefreshTokenExpiryTime) {
		return nil, apperrors.NewAppError(401, "Refresh token is expired or used", apperrors.ErrRefreshTokenExpired)
	}

	return s.issueSession(ctx, user)
}

func (s *userService) Logout(ctx context.Context, userID string) error {
	if err := s.userRepo.ClearRefreshToken(ctx, userID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to clear refresh token", slog.String("user_id", userID))
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	s.LogInfo(ctx, "User logged out", slog.String("user_id", userID))
	return nil
}

func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	var archivedKeys []string
	if s.archive != nil && s.resumeRepo != nil {
		resumes, err := s.resumeRepo.ListResumesByUser(ctx, userID)
		if err != nil {
			s.LogWarn(ctx, err, "Failed to list resumes for archive cleanup", slog.String("user_id", userID))
		}
		for _, r := range resumes {
			archivedKeys = append(archivedKeys, ResumeArchiveKey(userID, r.StoredName))
		}
	}

	if err := s.userRepo.DeleteUserCascade(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("User not found")
		}
		s.LogError(ctx, err, "Failed to delete account", slog.String("user_id", userID))
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if len(archivedKeys) > 0 {
		if err := s.archive.Delete(ctx, archivedKeys...); err != nil {
			s.LogWarn(ctx, err, "Failed to remove archived resumes", slog.String("user_id", userID), slog.Int("count", len(archivedKeys)))
		}
	}
	s.LogInfo(ctx, "Account deleted", slog.String("user_id", userID))
	return nil
}

func (s *userService) SignInOAuthUser(ctx context.Context, name, email string, provider domain.AuthProvider, providerUserID string) (*domain.User, *portssvc.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || providerUserID == "" {
		return nil, nil, apperrors.NewBadRequestError("Essential user information missing from provider token")
	}

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		// Existing account, signed in through a verified provider email.
	case errors.Is(err, apperrors.ErrNotFound):
		user, err = s.createOAuthUser(ctx, name, email, provider, providerUserID)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("failed to look up oauth user: %w", err)
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user.Sanitized(), pair, nil
}

func (s *userService) createOAuthUser(ctx context.Context, name, email string, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	username := oauthUsername(name, email)
	if _, err := s.userRepo.FindUserByUsername(ctx, username); err == nil {
		username = username + "-" + xid.New().String()[:6]
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	now := s.now()
	pid := providerUserID
	user := domain.User{
		UserID:         uuid.NewString(),
		Username:       username,
		Email:          email,
		AuthProvider:   provider,
		ProviderUserID: &pid,
		AuditFields:    domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewConflictError("User with email or username already exists")
		}
		return nil, fmt.Errorf("failed to save oauth user: %w", err)
	}
	s.LogInfo(ctx, "OAuth user created", slog.String("user_id", user.UserID), slog.String("provider", string(provider)))
	return &user, nil
}

// issueSession mints a token pair and persists the refresh token hash, invalidating the previous one.
func (s *userService) issueSession(ctx context.Context, user *domain.User) (*portssvc.TokenPair, error) {
	accessToken, _, err := s.tokens.IssueAccessToken(ctx, user)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate access token", slog.String("user_id", user.UserID))
		return nil, apperrors.NewAppError(500, "Something went wrong while generating refresh and access token", err)
	}
	refreshToken, expiresAt, err := s.tokens.IssueRefreshToken(ctx, user)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate refresh token", slog.String("user_id", user.UserID))
		return nil, apperrors.NewAppError(500, "Something went wrong while generating refresh and access token", err)
	}
	if err := s.userRepo.UpdateRefreshToken(ctx, user.UserID, utils.HashRefreshToken(refreshToken), expiresAt); err != nil {
		s.LogError(ctx, err, "Failed to persist refresh token", slog.String("user_id", user.UserID))
		return nil, apperrors.NewAppError(500, "Something went wrong while generating refresh and access token", err)
	}
	return &portssvc.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *userService) identityTaken(ctx context.Context, username, email string) (bool, error) {
	if _, err := s.userRepo.FindUserByUsername(ctx, username); err == nil {
		return true, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	if _, err := s.userRepo.FindUserByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return false, nil
}

func oauthUsername(name, email string) string {
	base := strings.ToLower(strings.Join(strings.Fields(name), ""))
	if base == "" {
		base, _, _ = strings.Cut(email, "@")
	}
	return base
}

// ResumeArchiveKey is the object key of an archived resume.
func ResumeArchiveKey(userID, storedName string) string {
	return "resumes/" + userID + "/" + storedName
}
