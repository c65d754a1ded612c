package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/echoprep/echoprep_backend/internal/apperrors"
	"github.com/echoprep/echoprep_backend/internal/core/domain"
	portssvc "github.com/echoprep/echoprep_backend/internal/core/ports/services"
	"github.com/echoprep/echoprep_backend/internal/dto"
	"github.com/echoprep/echoprep_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// GoogleOAuthHandler handles Google OAuth related requests.
// It exchanges the frontend's authorization code and signs the user in with the regular session cookies.
type GoogleOAuthHandler struct {
	googleOAuthService portssvc.GoogleOAuthHandlerSvcFacade
	userService        portssvc.UserSvcFacade
	cookies            sessionCookies
}

// NewGoogleOAuthHandler creates a new instance of GoogleOAuthHandler.
func NewGoogleOAuthHandler(
	googleOAuthService portssvc.GoogleOAuthHandlerSvcFacade,
	userService portssvc.UserSvcFacade,
	cookies sessionCookies,
) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		googleOAuthService: googleOAuthService,
		userService:        userService,
		cookies:            cookies,
	}
}

// ExchangeCodeGoogle handles the POST request from the frontend containing the authorization code from Google.
// It exchanges the code for Google tokens, validates the ID token, finds or creates the user
// and issues the application token pair.
// @Summary Exchange a Google authorization code for a session
// @Description Exchange authorization code, validate the Google ID token and sign the user in
// @Tags oauth
// @Accept  json
// @Produce  json
// @Param   code body dto.ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid authorization code"
// @Failure 401 {object} dto.ErrorResponse "Invalid Google ID token"
// @Failure 504 {object} dto.ErrorResponse "Google unreachable"
// @Router /users/google/exchange-code [post]
func (h *GoogleOAuthHandler) ExchangeCodeGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	var req dto.ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnContext(ctx, "Failed to bind JSON for exchange code request", slog.String("error", err.Error()))
		h.fail(c, apperrors.NewBadRequestError("Authorization code is required.", err.Error()))
		return
	}

	// 1. Exchange authorization code for Google tokens
	oauth2Token, err := h.googleOAuthService.ExchangeCodeForToken(ctx, req.Code)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to exchange authorization code with Google", slog.String("error", err.Error()))
		appErr := apperrors.NewGatewayTimeoutError("Failed to communicate with Google OAuth service.")
		// invalid_grant means the code itself was bad, which is the client's problem in this flow
		lowered := strings.ToLower(err.Error())
		if strings.Contains(lowered, "invalid_grant") || strings.Contains(lowered, "bad request") {
			appErr = apperrors.NewBadRequestError("Invalid or expired authorization code provided by Google.")
		}
		h.fail(c, appErr)
		return
	}

	idTokenString, ok := oauth2Token.Extra("id_token").(string)
	if !ok || idTokenString == "" {
		logger.ErrorContext(ctx, "ID token not found in Google's token response")
		h.fail(c, apperrors.NewInternalServerError("Failed to retrieve ID token from Google."))
		return
	}

	// 2. Validate Google's ID Token
	payload, err := h.googleOAuthService.ValidateGoogleIDToken(ctx, idTokenString)
	if err != nil {
		logger.WarnContext(ctx, "Google ID token validation failed", slog.String("error", err.Error()))
		h.fail(c, apperrors.NewUnauthorizedError("Invalid Google ID token"))
		return
	}

	// 3. Extract user information from the validated payload
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	providerUserID := payload.Subject
	if email == "" || providerUserID == "" {
		logger.ErrorContext(ctx, "Essential claims (email or sub) missing from Google ID token payload")
		h.fail(c, apperrors.NewBadRequestError("Essential user information missing from Google token."))
		return
	}

	// 4. Find or create the user and issue the session
	user, pair, err := h.userService.SignInOAuthUser(ctx, name, email, domain.ProviderGoogle, providerUserID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to sign in OAuth user", slog.String("error", err.Error()), slog.String("google_user_id", providerUserID))
		h.fail(c, err)
		return
	}
	logger.InfoContext(ctx, "User signed in via Google OAuth", slog.String("user_id", user.UserID))

	h.cookies.set(c, pair)
	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, authResponse(user, pair), "User logged in successfully"))
}

func (h *GoogleOAuthHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// registerGoogleOAuthRoutes registers the Google OAuth routes.
func registerGoogleOAuthRoutes(rg *gin.RouterGroup, h *GoogleOAuthHandler, limit gin.HandlerFunc) {
	googleRoutes := rg.Group("/google")
	{
		googleRoutes.POST("/exchange-code", limit, h.ExchangeCodeGoogle)
	}
}
