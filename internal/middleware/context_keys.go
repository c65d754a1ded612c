package middleware

import (
	"github.com/echoprep/echoprep_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// userIDKey and userKey hold the authenticated caller in the request context.
const (
	userIDKey = contextKey("userID")
	userKey   = contextKey("user")
)

// GetUserIDFromContext retrieves the authenticated user ID.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetUserFromContext retrieves the authenticated user, without secret fields.
func GetUserFromContext(c *gin.Context) (*domain.User, bool) {
	user, ok := c.Request.Context().Value(userKey).(*domain.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
