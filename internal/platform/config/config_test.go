package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, 240*time.Hour, cfg.RefreshTokenExpiry)
	assert.Equal(t, "accessToken", cfg.AccessTokenCookieName)
	assert.Equal(t, "refreshToken", cfg.RefreshTokenCookieName)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "gemini-flash-latest", cfg.GeminiModel)
	assert.Equal(t, `^https://[^/]+\.netlify\.app$`, cfg.CORSOriginPattern)
	assert.NotEmpty(t, cfg.AccessTokenSecret)
	assert.NotEqual(t, cfg.AccessTokenSecret, cfg.RefreshTokenSecret)
	assert.False(t, cfg.S3Enabled())
}

func TestLoadConfigCORSOrigins(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://echoprep.app ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:5173", "https://echoprep.app"}, cfg.CORSOrigins)
}

func TestLoadConfigInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"STORE_DRIVER": "postgres", "PGSQL_URL": ""}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}},
		{"production without secrets", map[string]string{"STORE_DRIVER": "memory", "IS_PRODUCTION": "true"}},
		{"equal secrets", map[string]string{"STORE_DRIVER": "memory", "ACCESS_TOKEN_SECRET": "same", "REFRESH_TOKEN_SECRET": "same"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
