package services

import (
	"context"
	"fmt"
	"time"

	"github.com/echoprep/echoprep_backend/internal/apperrors"
	"github.com/echoprep/echoprep_backend/internal/core/domain"
	portssvc "github.com/echoprep/echoprep_backend/internal/core/ports/services"
	"github.com/echoprep/echoprep_backend/internal/platform/config"
	"github.com/echoprep/echoprep_backend/internal/utils"
)

// tokenService mints and verifies JWTs. Access and refresh tokens use different secrets
// so one can never be replayed as the other.
type tokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

var _ portssvc.TokenSvcFacade = (*tokenService)(nil)

func (s *tokenService) IssueAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	claims := utils.SessionClaims{
		Email:    user.Email,
		Username: user.Username,
		Kind:     string(portssvc.AccessToken),
	}
	token, exp, err := utils.GenerateJWT(user.UserID, claims, s.cfg.AccessTokenSecret, s.cfg.AccessTokenExpiry, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, exp, nil
}

func (s *tokenService) IssueRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	claims := utils.SessionClaims{Kind: string(portssvc.RefreshToken)}
	token, exp, err := utils.GenerateJWT(user.UserID, claims, s.cfg.RefreshTokenSecret, s.cfg.RefreshTokenExpiry, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, exp, nil
}

func (s *tokenService) Verify(ctx context.Context, token string, kind portssvc.TokenKind) (*portssvc.TokenClaims, error) {
	var secret string
	switch kind {
	case portssvc.AccessToken:
		secret = s.cfg.AccessTokenSecret
	case portssvc.RefreshToken:
		secret = s.cfg.RefreshTokenSecret
	default:
		return nil, fmt.Errorf("%w: unknown token kind %q", apperrors.ErrUnauthorized, kind)
	}

	claims, err := utils.ParseAndValidateJWT(token, secret, s.cfg.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	if claims.Kind != string(kind) {
		return nil, fmt.Errorf("%w: expected %s token, got %q", apperrors.ErrUnauthorized, kind, claims.Kind)
	}

	out := &portssvc.TokenClaims{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Username: claims.Username,
		Kind:     kind,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
