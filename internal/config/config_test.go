package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFailsWithoutJWTSecret(t *testing.T) {
	t.Setenv("PORTAL_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "jwt secret")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORTAL_JWT_SECRET", "unit-test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "3000", cfg.AppPort)
	require.Equal(t, time.Hour, cfg.TokenTTL)
	require.Equal(t, "local", cfg.StorageDriver)
	require.Equal(t, "public/uploads", cfg.UploadDir)
	require.Equal(t, 5, cfg.UploadMaxMB)
	require.Equal(t, 10, cfg.MaxOpenConns)
	require.False(t, cfg.StrictVisibility)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORTAL_JWT_SECRET", "unit-test-secret")
	t.Setenv("PORTAL_APP_PORT", "8088")
	t.Setenv("PORTAL_TOKEN_TTL", "30m")
	t.Setenv("PORTAL_STORAGE_DRIVER", "Cloudinary")
	t.Setenv("PORTAL_UPLOAD_MAX_MB", "20")
	t.Setenv("PORTAL_STRICT_VISIBILITY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8088", cfg.HTTPAddress())
	require.Equal(t, 30*time.Minute, cfg.TokenTTL)
	require.Equal(t, "cloudinary", cfg.StorageDriver)
	require.Equal(t, 20, cfg.UploadMaxMB)
	require.True(t, cfg.StrictVisibility)
}

func TestLoadRejectsBadTokenTTL(t *testing.T) {
	t.Setenv("PORTAL_JWT_SECRET", "unit-test-secret")
	t.Setenv("PORTAL_TOKEN_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestHTTPAddressKeepsExplicitColon(t *testing.T) {
	cfg := Config{AppPort: ":9090"}
	require.Equal(t, ":9090", cfg.HTTPAddress())
}
