package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/echoprep/echoprep_backend/internal/apperrors"
	"github.com/echoprep/echoprep_backend/internal/dto"
	"github.com/gin-gonic/gin"
)

// ErrorBoundary renders errors pushed with c.Error, and recovered panics, as the single
// error envelope. It must be registered before any handler that can fail.
func ErrorBoundary() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				GetLoggerFromCtx(c.Request.Context()).Error("Panic recovered",
					slog.String("panic", fmt.Sprint(r)),
					slog.String("stack", string(debug.Stack())))
				if c.Writer.Written() {
					c.Abort()
					return
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.NewErrorResponse(http.StatusInternalServerError, "Internal Server Error", nil))
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		renderError(c, c.Errors.Last().Err)
	}
}

func renderError(c *gin.Context, err error) {
	status := apperrors.StatusFromError(err)
	message := apperrors.MessageFromError(err)

	var details []string
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		details = appErr.Errors
	}

	logger := GetLoggerFromCtx(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", slog.Int("status", status), slog.String("error", err.Error()))
	} else {
		logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	}

	c.JSON(status, dto.NewErrorResponse(status, message, details))
}

// NotFoundHandler renders unknown routes with the error envelope.
func NotFoundHandler(c *gin.Context) {
	_ = c.Error(apperrors.NewNotFoundError("Route not found"))
}
