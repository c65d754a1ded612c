package handlers

import (
	"log/slog"

	"github.com/echoprep/echoprep_backend/cmd/docs"
	portssvc "github.com/echoprep/echoprep_backend/internal/core/ports/services"
	"github.com/echoprep/echoprep_backend/internal/middleware"
	"github.com/echoprep/echoprep_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// analytics may be nil.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	logger *slog.Logger,
	analytics middleware.AnalyticsClient,
) error {
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		middleware.CORS(cfg.CORSOrigins, cfg.CORSOriginPattern, logger),
		middleware.ErrorBoundary(),
	)
	r.NoRoute(middleware.NotFoundHandler)

	r.GET("/", getHome)
	r.GET("/health", getHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if err := setupAPIV1Routes(r, cfg, services, analytics); err != nil {
		return err
	}

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group. Only the session bootstrap routes skip the auth gate.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	analytics middleware.AnalyticsClient,
) error {
	authLimiter, err := middleware.NewIPRateLimiter(cfg.AuthRateLimit)
	if err != nil {
		return err
	}
	limit := middleware.RateLimit(authLimiter)

	cookies := newSessionCookies(cfg)
	userH := newUserHandler(services.User, cookies)
	googleH := NewGoogleOAuthHandler(services.GoogleOAuthHandler, services.User, cookies)

	v1 := r.Group("/api/v1")

	publicUsers := v1.Group("/users")
	registerPublicUserRoutes(publicUsers, userH, limit)
	registerGoogleOAuthRoutes(publicUsers, googleH, limit)

	protected := v1.Group("",
		middleware.AuthMiddleware(services.TokenService, services.User, cfg.AccessTokenCookieName),
		middleware.PosthogMiddleware(analytics),
	)
	registerUserRoutes(protected.Group("/users"), userH)
	registerInterviewRoutes(protected.Group("/interview"), newInterviewHandler(services.Interview, analytics))
	registerResumeRoutes(protected.Group("/resume"), newResumeHandler(services.Resume, cfg.MaxUploadBytes))
	return nil
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
