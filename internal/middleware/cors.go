package middleware

import (
	"log/slog"
	"regexp"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows credentialed requests from the explicit allow-list and from any origin matching pattern.
func CORS(allowedOrigins []string, pattern string, logger *slog.Logger) gin.HandlerFunc {
	var originPattern *regexp.Regexp
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			logger.Error("Invalid CORS origin pattern, ignoring it", slog.String("pattern", pattern), slog.String("error", err.Error()))
		} else {
			originPattern = re
		}
	}

	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if slices.Contains(allowedOrigins, origin) {
				return true
			}
			return originPattern != nil && originPattern.MatchString(origin)
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Next-Token"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
