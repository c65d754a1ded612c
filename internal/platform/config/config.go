package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/echoprep/echoprep_backend/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	defaultCORSOriginPattern = `^https://[^/]+\.netlify\.app$`
	devSecretBytes           = 32
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	LogLevel      string
	StoreDriver   string
	DatabaseURL   string
	EnableDBCheck bool

	// Tokens
	AccessTokenSecret      string
	AccessTokenExpiry      time.Duration
	RefreshTokenSecret     string
	RefreshTokenExpiry     time.Duration
	JWTIssuer              string
	AccessTokenCookieName  string
	RefreshTokenCookieName string

	// HTTP
	CORSOrigins       []string
	CORSOriginPattern string
	MaxUploadBytes    int64
	AuthRateLimit     string

	// AI
	GeminiAPIKey      string
	GeminiModel       string
	GeminiTemperature float64
	AITimeout         time.Duration

	// Resume archive
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string

	// Analytics
	PosthogAPIKey   string
	PosthogEndpoint string

	// External OAuth Providers
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// S3Enabled reports whether resume archiving is configured.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("ACCESS_TOKEN_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_EXPIRY", "15m")
	v.SetDefault("REFRESH_TOKEN_SECRET", "")
	v.SetDefault("REFRESH_TOKEN_EXPIRY", "240h")
	v.SetDefault("JWT_ISSUER", "echoprep-backend")
	v.SetDefault("ACCESS_TOKEN_COOKIE_NAME", "accessToken")
	v.SetDefault("REFRESH_TOKEN_COOKIE_NAME", "refreshToken")
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("CORS_ORIGIN", "http://localhost:5173")
	v.SetDefault("CORS_ORIGIN_PATTERN", defaultCORSOriginPattern)
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("AUTH_RATE_LIMIT", "5-M")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-flash-latest")
	v.SetDefault("GEMINI_TEMPERATURE", 0.2)
	v.SetDefault("AI_TIMEOUT", "30s")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BASE_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URL", "")

	// Actual environment variables override .env values and defaults.
	v.AutomaticEnv()

	cfg := &Config{
		Port:                   v.GetString("PORT"),
		IsProduction:           v.GetBool("IS_PRODUCTION"),
		LogLevel:               v.GetString("LOG_LEVEL"),
		StoreDriver:            strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseURL:            v.GetString("PGSQL_URL"),
		EnableDBCheck:          v.GetBool("ENABLE_DB_CHECK"),
		AccessTokenSecret:      v.GetString("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret:     v.GetString("REFRESH_TOKEN_SECRET"),
		JWTIssuer:              v.GetString("JWT_ISSUER"),
		AccessTokenCookieName:  v.GetString("ACCESS_TOKEN_COOKIE_NAME"),
		RefreshTokenCookieName: v.GetString("REFRESH_TOKEN_COOKIE_NAME"),
		CORSOriginPattern:      v.GetString("CORS_ORIGIN_PATTERN"),
		MaxUploadBytes:         v.GetInt64("MAX_UPLOAD_BYTES"),
		AuthRateLimit:          v.GetString("AUTH_RATE_LIMIT"),
		GeminiAPIKey:           v.GetString("GEMINI_API_KEY"),
		GeminiModel:            v.GetString("GEMINI_MODEL"),
		GeminiTemperature:      v.GetFloat64("GEMINI_TEMPERATURE"),
		S3Bucket:               v.GetString("S3_BUCKET"),
		S3Region:               v.GetString("S3_REGION"),
		S3BaseEndpoint:         v.GetString("S3_BASE_ENDPOINT"),
		S3AccessKey:            v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:            v.GetString("S3_SECRET_KEY"),
		PosthogAPIKey:          v.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint:        v.GetString("POSTHOG_ENDPOINT"),
		GoogleClientID:         v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:     v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:      v.GetString("GOOGLE_REDIRECT_URL"),
	}

	cfg.AccessTokenExpiry = parseDuration(v.GetString("ACCESS_TOKEN_EXPIRY"), 15*time.Minute, "ACCESS_TOKEN_EXPIRY")
	cfg.RefreshTokenExpiry = parseDuration(v.GetString("REFRESH_TOKEN_EXPIRY"), 240*time.Hour, "REFRESH_TOKEN_EXPIRY")
	cfg.AITimeout = parseDuration(v.GetString("AI_TIMEOUT"), 30*time.Second, "AI_TIMEOUT")

	origins := v.GetString("CORS_ORIGINS")
	if origins == "" {
		origins = v.GetString("CORS_ORIGIN")
	}
	cfg.CORSOrigins = splitList(origins)

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
		log.Printf("Warning: Invalid MAX_UPLOAD_BYTES. Defaulting to %d.\n", cfg.MaxUploadBytes)
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("PGSQL_URL is required when STORE_DRIVER is postgres")
		}
	case StoreDriverMemory:
		log.Println("Warning: STORE_DRIVER=memory, records are lost on restart.")
	default:
		return nil, errors.New("STORE_DRIVER must be postgres or memory")
	}

	if err := cfg.resolveSecrets(); err != nil {
		return nil, err
	}

	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set. AI grading will always fall back to defaults.")
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		log.Println("Warning: Google OAuth is not fully configured. Google sign-in will not function.")
	}

	return cfg, nil
}

// resolveSecrets enforces distinct signing secrets. Outside production missing secrets
// are replaced by per-process random values.
func (c *Config) resolveSecrets() error {
	if c.IsProduction {
		if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
			return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set in production")
		}
	}
	var err error
	if c.AccessTokenSecret == "" {
		log.Println("Warning: ACCESS_TOKEN_SECRET not set. Using a random secret, tokens will not survive a restart.")
		if c.AccessTokenSecret, err = utils.GenerateSecureRandomString(devSecretBytes); err != nil {
			return err
		}
	}
	if c.RefreshTokenSecret == "" {
		log.Println("Warning: REFRESH_TOKEN_SECRET not set. Using a random secret, tokens will not survive a restart.")
		if c.RefreshTokenSecret, err = utils.GenerateSecureRandomString(devSecretBytes); err != nil {
			return err
		}
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	return nil
}

func parseDuration(raw string, fallback time.Duration, key string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
