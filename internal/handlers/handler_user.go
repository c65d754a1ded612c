package handlers

import (
	"log/slog"
	"net/http"

	"github.com/echoprep/echoprep_backend/internal/apperrors"
	"github.com/echoprep/echoprep_backend/internal/core/domain"
	portssvc "github.com/echoprep/echoprep_backend/internal/core/ports/services"
	"github.com/echoprep/echoprep_backend/internal/dto"
	"github.com/echoprep/echoprep_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// userHandler handles HTTP requests related to users and their sessions.
type userHandler struct {
	userService portssvc.UserSvcFacade
	cookies     sessionCookies
}

// newUserHandler creates a new userHandler.
func newUserHandler(us portssvc.UserSvcFacade, cookies sessionCookies) *userHandler {
	return &userHandler{
		userService: us,
		cookies:     cookies,
	}
}

// registerPublicUserRoutes registers the routes reachable without an access token.
func registerPublicUserRoutes(rg *gin.RouterGroup, h *userHandler, limit gin.HandlerFunc) {
	rg.POST("/register", limit, h.register)
	rg.POST("/login", limit, h.login)
	rg.POST("/refresh-token", limit, h.refreshToken)
}

// registerUserRoutes registers the routes that require the auth gate.
func registerUserRoutes(rg *gin.RouterGroup, h *userHandler) {
	rg.POST("/logout", h.logout)
	rg.GET("/me", h.me)
	rg.DELETE("/delete-account", h.deleteAccount)
}

// register godoc
// @Summary Register a new user
// @Description Creates a local account and signs the user in.
// @Tags users
// @Accept json
// @Produce json
// @Param user body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.APIResponse{data=dto.AuthResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Username or email already taken"
// @Failure 429 {object} dto.ErrorResponse
// @Router /users/register [post]
func (h *userHandler) register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewBadRequestError("Invalid request payload", err.Error()))
		return
	}

	user, pair, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.cookies.set(c, pair)
	c.JSON(http.StatusCreated, dto.NewAPIResponse(http.StatusCreated, authResponse(user, pair), "User registered successfully"))
}

// login godoc
// @Summary Log in
// @Description Verifies credentials by email or username and issues a fresh token pair.
// @Tags users
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /users/login [post]
func (h *userHandler) login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewBadRequestError("Invalid request payload", err.Error()))
		return
	}
	if req.Email == "" && req.Username == "" {
		_ = c.Error(apperrors.NewBadRequestError("Username or email is required"))
		return
	}

	user, pair, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.cookies.set(c, pair)
	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, authResponse(user, pair), "User logged in successfully"))
}

// refreshToken godoc
// @Summary Rotate the session
// @Description Exchanges the current refresh token, from cookie or body, for a new token pair.
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.RefreshTokenRequest false "Refresh token for non-cookie clients"
// @Success 200 {object} dto.APIResponse{data=dto.TokenPairResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/refresh-token [post]
func (h *userHandler) refreshToken(c *gin.Context) {
	token, _ := c.Cookie(h.cookies.refreshName)
	if token == "" {
		var req dto.RefreshTokenRequest
		// An empty or non-JSON body simply means no token was sent.
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}

	pair, err := h.userService.RefreshSession(c.Request.Context(), token)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.cookies.set(c, pair)
	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, dto.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "Access token refreshed"))
}

// logout godoc
// @Summary Log out
// @Description Revokes the stored refresh token and clears the session cookies.
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/logout [post]
func (h *userHandler) logout(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthorizedError("Unauthorized request"))
		return
	}

	if err := h.userService.Logout(c.Request.Context(), userID); err != nil {
		_ = c.Error(err)
		return
	}

	h.cookies.clear(c)
	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, nil, "User logged out"))
}

// me godoc
// @Summary Current user
// @Description Returns the profile of the authenticated caller.
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (h *userHandler) me(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthorizedError("Unauthorized request"))
		return
	}
	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, dto.ToUserResponse(user), "User fetched successfully"))
}

// deleteAccount godoc
// @Summary Delete account
// @Description Deletes the caller together with their interviews and resumes.
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/delete-account [delete]
func (h *userHandler) deleteAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthorizedError("Unauthorized request"))
		return
	}

	if err := h.userService.DeleteAccount(c.Request.Context(), userID); err != nil {
		_ = c.Error(err)
		return
	}
	logger.Info("Account deleted", slog.String("user_id", userID))

	h.cookies.clear(c)
	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, nil, "Account deleted successfully"))
}

func authResponse(user *domain.User, pair *portssvc.TokenPair) dto.AuthResponse {
	return dto.AuthResponse{
		User:         dto.ToUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}
