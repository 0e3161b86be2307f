package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, ScanModeDirect, cfg.Scan.Mode)
	assert.Equal(t, "http://localhost:8080", cfg.App.PublicBaseURL)
	assert.Equal(t, []string{"*"}, cfg.App.CORSOrigins)
	assert.Equal(t, "qr-logos", cfg.MinIO.Bucket)
	assert.True(t, cfg.MinIO.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Jobs.LogoSweepGrace)
	assert.Equal(t, 10*time.Minute, cfg.Redis.SlugCacheTTL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SCAN_MODE", "queue")
	t.Setenv("PUBLIC_BASE_URL", "https://qr.example.com/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("MINIO_ENABLED", "false")
	t.Setenv("LOGO_SWEEP_GRACE", "2h")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, ScanModeQueue, cfg.Scan.Mode)
	// trailing slash bị bỏ để ghép /r/{slug}
	assert.Equal(t, "https://qr.example.com", cfg.App.PublicBaseURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.App.CORSOrigins)
	assert.False(t, cfg.MinIO.Enabled)
	assert.Equal(t, 2*time.Hour, cfg.Jobs.LogoSweepGrace)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store driver", map[string]string{"STORE_DRIVER": "mysql"}},
		{"unknown scan mode", map[string]string{"SCAN_MODE": "kafka"}},
		{"bad cron", map[string]string{"LOGO_SWEEP_CRON": "every day"}},
		{"default secret in production", map[string]string{"APP_ENV": "production", "DB_PASSWORD": "x"}},
		{"no db password in production", map[string]string{"APP_ENV": "production", "JWT_SECRET": "real-secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
