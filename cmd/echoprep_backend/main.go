package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/echoprep/echoprep_backend/internal/adapters/ai/gemini"
	"github.com/echoprep/echoprep_backend/internal/adapters/pdf"
	"github.com/echoprep/echoprep_backend/internal/adapters/storage/s3"
	portsrepo "github.com/echoprep/echoprep_backend/internal/core/ports/repositories"
	"github.com/echoprep/echoprep_backend/internal/core/services"
	"github.com/echoprep/echoprep_backend/internal/handlers"
	"github.com/echoprep/echoprep_backend/internal/platform/config"
	"github.com/echoprep/echoprep_backend/internal/repositories/database/pgsql"
	"github.com/echoprep/echoprep_backend/internal/repositories/memory"
	"github.com/echoprep/echoprep_backend/internal/utils"
	"github.com/echoprep/echoprep_backend/pkg/database"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// @title EchoPrep Backend API
// @version 1.0
// @description Interview practice backend: sessions, AI grading and ATS resume scoring.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger = newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	collab, err := buildCollaborators(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize collaborators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	serviceContainer := services.NewServiceContainer(cfg, repos, collab)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, serviceContainer, logger, posthogClient); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", slog.String("error", err.Error()))
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// openStore selects the repositories named by STORE_DRIVER. Postgres is migrated before use.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory store")
		return memory.NewRepositoryProvider(), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		database.ClosePgxPool(dbPool)
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

func buildCollaborators(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.Collaborators, error) {
	ai, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:      cfg.GeminiAPIKey,
		Model:       cfg.GeminiModel,
		Temperature: cfg.GeminiTemperature,
		Logger:      logger,
	})
	if err != nil {
		return services.Collaborators{}, err
	}

	collab := services.Collaborators{
		AI:        ai,
		Extractor: pdf.NewExtractor(),
	}

	if cfg.S3Enabled() {
		archive, err := s3.NewArchive(ctx, s3.Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
		if err != nil {
			return services.Collaborators{}, err
		}
		collab.Archive = archive
		logger.Info("Resume archive enabled", slog.String("bucket", cfg.S3Bucket))
	}

	return collab, nil
}
