package handlers

import (
	"net/http"
	"time"

	portssvc "github.com/echoprep/echoprep_backend/internal/core/ports/services"
	"github.com/echoprep/echoprep_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// sessionCookies writes the token pair as httpOnly cookies scoped to the whole site.
type sessionCookies struct {
	accessName    string
	refreshName   string
	accessMaxAge  int
	refreshMaxAge int
	secure        bool
}

func newSessionCookies(cfg *config.Config) sessionCookies {
	return sessionCookies{
		accessName:    cfg.AccessTokenCookieName,
		refreshName:   cfg.RefreshTokenCookieName,
		accessMaxAge:  maxAgeSeconds(cfg.AccessTokenExpiry),
		refreshMaxAge: maxAgeSeconds(cfg.RefreshTokenExpiry),
		secure:        cfg.IsProduction,
	}
}

func (s sessionCookies) set(c *gin.Context, pair *portssvc.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.accessName, pair.AccessToken, s.accessMaxAge, "/", "", s.secure, true)
	c.SetCookie(s.refreshName, pair.RefreshToken, s.refreshMaxAge, "/", "", s.secure, true)
}

func (s sessionCookies) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.accessName, "", -1, "/", "", s.secure, true)
	c.SetCookie(s.refreshName, "", -1, "/", "", s.secure, true)
}

func maxAgeSeconds(d time.Duration) int {
	return int(d / time.Second)
}
