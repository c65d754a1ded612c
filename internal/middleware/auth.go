package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/echoprep/echoprep_backend/internal/apperrors"
	portssvc "github.com/echoprep/echoprep_backend/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the caller from the access token cookie or, failing that,
// an "Authorization: Bearer" header. The referenced user must still exist.
func AuthMiddleware(tokens portssvc.TokenSvcFacade, users portssvc.UserReaderSvc, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		logger := GetLoggerFromCtx(ctx)

		tokenString := accessTokenFromRequest(c, cookieName)
		if tokenString == "" {
			logger.Warn("Access token missing")
			abortWithError(c, apperrors.NewUnauthorizedError("Unauthorized request"))
			return
		}

		claims, err := tokens.Verify(ctx, tokenString, portssvc.AccessToken)
		if err != nil {
			logger.Warn("Invalid access token", slog.String("error", err.Error()))
			abortWithError(c, apperrors.NewUnauthorizedError("Invalid access token"))
			return
		}

		user, err := users.GetUserByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				logger.Warn("Access token references a missing user", slog.String("user_id", claims.UserID))
			} else {
				logger.Error("Failed to load user for access token", slog.String("user_id", claims.UserID), slog.String("error", err.Error()))
			}
			abortWithError(c, apperrors.NewUnauthorizedError("Invalid access token"))
			return
		}

		ctx = context.WithValue(ctx, userIDKey, user.UserID)
		ctx = context.WithValue(ctx, userKey, user.Sanitized())
		ctx = WithLogger(ctx, logger.With(slog.String("user_id", user.UserID)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func accessTokenFromRequest(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
