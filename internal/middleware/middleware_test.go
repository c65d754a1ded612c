package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/echoprep/echoprep_backend/internal/apperrors"
	"github.com/echoprep/echoprep_backend/internal/core/domain"
	portssvc "github.com/echoprep/echoprep_backend/internal/core/ports/services"
	"github.com/echoprep/echoprep_backend/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) IssueAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) IssueRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) Verify(ctx context.Context, token string, kind portssvc.TokenKind) (*portssvc.TokenClaims, error) {
	args := m.Called(ctx, token, kind)
	var claims *portssvc.TokenClaims
	if args.Get(0) != nil {
		claims = args.Get(0).(*portssvc.TokenClaims)
	}
	return claims, args.Error(1)
}

type MockUserReader struct {
	mock.Mock
}

func (m *MockUserReader) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

type AuthMiddlewareTestSuite struct {
	suite.Suite
	tokens *MockTokenService
	users  *MockUserReader
	router *gin.Engine
}

func (s *AuthMiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.tokens = new(MockTokenService)
	s.users = new(MockUserReader)

	s.router = gin.New()
	s.router.Use(ErrorBoundary())
	s.router.GET("/me", AuthMiddleware(s.tokens, s.users, "accessToken"), func(c *gin.Context) {
		user, ok := GetUserFromContext(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		userID, _ := GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": userID, "hasHash": user.PasswordHash != nil})
	})
}

func TestAuthMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}

func (s *AuthMiddlewareTestSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *AuthMiddlewareTestSuite) assertUnauthorized(w *httptest.ResponseRecorder) {
	s.Equal(http.StatusUnauthorized, w.Code)
	var body dto.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.False(body.Success)
	s.Equal(http.StatusUnauthorized, body.StatusCode)
	s.NotNil(body.Errors)
}

func (s *AuthMiddlewareTestSuite) TestMissingToken() {
	w := s.serve(httptest.NewRequest(http.MethodGet, "/me", nil))
	s.assertUnauthorized(w)
	s.tokens.AssertNotCalled(s.T(), "Verify", mock.Anything, mock.Anything, mock.Anything)
}

func (s *AuthMiddlewareTestSuite) TestCookieWinsOverHeader() {
	hash := "secret"
	s.tokens.On("Verify", mock.Anything, "cookie-token", portssvc.AccessToken).
		Return(&portssvc.TokenClaims{UserID: "u1"}, nil).Once()
	s.users.On("GetUserByID", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: &hash}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")
	w := s.serve(req)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"id":"u1","hasHash":false}`, w.Body.String())
	s.tokens.AssertExpectations(s.T())
}

func (s *AuthMiddlewareTestSuite) TestBearerHeader() {
	s.tokens.On("Verify", mock.Anything, "header-token", portssvc.AccessToken).
		Return(&portssvc.TokenClaims{UserID: "u1"}, nil).Once()
	s.users.On("GetUserByID", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer header-token")
	s.Equal(http.StatusOK, s.serve(req).Code)
}

func (s *AuthMiddlewareTestSuite) TestMalformedHeader() {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	s.assertUnauthorized(s.serve(req))
}

func (s *AuthMiddlewareTestSuite) TestInvalidToken() {
	s.tokens.On("Verify", mock.Anything, "bad", portssvc.AccessToken).Return(nil, apperrors.ErrUnauthorized).Once()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	s.assertUnauthorized(s.serve(req))
}

func (s *AuthMiddlewareTestSuite) TestDeletedUser() {
	s.tokens.On("Verify", mock.Anything, "tok", portssvc.AccessToken).
		Return(&portssvc.TokenClaims{UserID: "gone"}, nil).Once()
	s.users.On("GetUserByID", mock.Anything, "gone").Return(nil, apperrors.ErrNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok")
	s.assertUnauthorized(s.serve(req))
}

func TestErrorBoundary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorBoundary())
	r.NoRoute(NotFoundHandler)
	r.GET("/bad", func(c *gin.Context) {
		_ = c.Error(apperrors.NewBadRequestError("Job Role is required", "jobRole"))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection refused"))
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	tests := []struct {
		path    string
		status  int
		message string
		errors  []string
	}{
		{"/bad", http.StatusBadRequest, "Job Role is required", []string{"jobRole"}},
		{"/plain", http.StatusInternalServerError, "Something went wrong", []string{}},
		{"/panic", http.StatusInternalServerError, "Internal Server Error", []string{}},
		{"/nowhere", http.StatusNotFound, "Route not found", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.StatusCode)
			assert.Equal(t, tt.message, body.Message)
			assert.False(t, body.Success)
			assert.Equal(t, tt.errors, body.Errors)
		})
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}, `^https://[^/]+\.netlify\.app$`, slog.Default()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:5173", true},
		{"https://echoprep-preview.netlify.app", true},
		{"https://evil.example.com", false},
		{"https://a.netlify.app.evil.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if tt.allowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
				assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Next-Token")
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lim, err := NewIPRateLimiter("2-M")
	require.NoError(t, err)

	r := gin.New()
	r.Use(ErrorBoundary())
	r.POST("/login", RateLimit(lim), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	_, err = NewIPRateLimiter("lots")
	assert.Error(t, err)
}

type fakeAnalytics struct {
	events []string
	users  []string
}

func (f *fakeAnalytics) IsInitialized() bool { return true }

func (f *fakeAnalytics) Enqueue(distinctID string, event string, _ map[string]any) {
	f.users = append(f.users, distinctID)
	f.events = append(f.events, event)
}

func TestPosthogMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sink := &fakeAnalytics{}

	r := gin.New()
	r.Use(PosthogMiddleware(sink))
	authed := func(c *gin.Context) {
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), userIDKey, "u1"))
	}
	r.POST("/api/v1/interview/:interviewId/message", authed, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/interview/history", authed, func(c *gin.Context) { c.Status(http.StatusForbidden) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/v1/interview/abc/message", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/interview/history", nil),
		httptest.NewRequest(http.MethodGet, "/health", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, []string{"api_v1_interview_message"}, sink.events)
	assert.Equal(t, []string{"u1"}, sink.users)
}

func TestGetLoggerFromCtxDefaults(t *testing.T) {
	assert.Same(t, slog.Default(), GetLoggerFromCtx(context.Background()))

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Same(t, custom, GetLoggerFromCtx(WithLogger(context.Background(), custom)))
}
