package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AnalyticsClient is satisfied by *utils.PosthogClientWrapper.
type AnalyticsClient interface {
	IsInitialized() bool
	Enqueue(distinctID string, event string, properties map[string]any)
}

// pathsToSkip contains paths that should not be tracked by PostHog
var pathsToSkip = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// PosthogMiddleware tracks successful authenticated API calls, one event per route.
// "/api/v1/interview/:interviewId/message" is tracked as "api_v1_interview_message".
func PosthogMiddleware(client AnalyticsClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !client.IsInitialized() || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			return
		}
		eventName := routeEventName(c.FullPath())
		if eventName == "" {
			return
		}

		client.Enqueue(userID, eventName, map[string]any{
			"method":      c.Request.Method,
			"route":       c.FullPath(),
			"status_code": c.Writer.Status(),
		})
	}
}

// PosthogEvent sends a custom event for the authenticated caller.
func PosthogEvent(c *gin.Context, client AnalyticsClient, eventName string, properties map[string]any) {
	if client == nil || !client.IsInitialized() {
		return
	}
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}
	if properties == nil {
		properties = make(map[string]any)
	}
	properties["route"] = c.FullPath()
	client.Enqueue(userID, eventName, properties)
}

func routeEventName(fullPath string) string {
	segments := strings.Split(strings.Trim(fullPath, "/"), "/")
	kept := segments[:0]
	for _, s := range segments {
		if s == "" || strings.HasPrefix(s, ":") || strings.HasPrefix(s, "*") {
			continue
		}
		kept = append(kept, s)
	}
	return strings.Join(kept, "_")
}
