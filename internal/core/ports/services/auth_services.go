package services

import (
	"context"
	"time"

	"github.com/echoprep/echoprep_backend/internal/core/domain"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// TokenKind selects the signing secret used to mint or verify a token.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// TokenClaims are the verified claims of an access or refresh token.
type TokenClaims struct {
	UserID    string
	Email     string
	Username  string
	Kind      TokenKind
	ExpiresAt time.Time
}

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	// IssueAccessToken signs a short-lived token carrying the user's id, email and username.
	IssueAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
	// IssueRefreshToken signs a long-lived token carrying only the user id.
	// The caller must persist it on the user, overwriting any previous one.
	IssueRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error)
	// Verify checks signature, expiry and kind. It fails with apperrors.ErrUnauthorized.
	Verify(ctx context.Context, token string, kind TokenKind) (*TokenClaims, error)
}

// GoogleOAuthHandlerSvcFacade defines the interface for Google OAuth operations.
type GoogleOAuthHandlerSvcFacade interface {
	// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)
	// ValidateGoogleIDToken validates an ID token string from Google and returns its payload.
	ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error)
}
