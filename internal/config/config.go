package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App   AppConfig
	Store StoreConfig
	Redis RedisConfig
	JWT   JWTConfig
	MinIO MinIOConfig
	Scan  ScanConfig
	Jobs  JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	// PublicBaseURL là prefix của redirect URL được encode vào QR (vd: https://qr.example.com)
	PublicBaseURL string
	// CORSOrigins: origin của dashboard, "*" cho dev
	CORSOrigins []string
}

// StoreConfig chọn backend cho Link Store Gateway
type StoreConfig struct {
	Driver     string // postgres | sqlite
	SQLitePath string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
	// SlugCacheTTL: thời gian cache slug -> destination
	SlugCacheTTL time.Duration
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string // minioadmin
	SecretKey string // minioadmin
	Bucket    string // qr-logos
	UseSSL    bool   // false for local
	// Enabled=false: logo lưu trong RAM (dev không có MinIO)
	Enabled bool
}

// ScanConfig quyết định cách scan count được ghi nhận
type ScanConfig struct {
	Mode string // direct | queue
}

type JobConfig struct {
	LogoSweepCron  string
	LogoSweepGrace time.Duration
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"

	ScanModeDirect = "direct"
	ScanModeQueue  = "queue"

	defaultJWTSecret = "your-secret-key-change-in-production"
)

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:          getEnv("APP_NAME", "QR Link API"),
			Environment:   getEnv("APP_ENV", "development"),
			Port:          getEnv("APP_PORT", "8080"),
			Version:       getEnv("APP_VERSION", "1.0.0"),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
			CORSOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Store: StoreConfig{
			Driver:     getEnv("STORE_DRIVER", StoreDriverPostgres),
			SQLitePath: getEnv("SQLITE_PATH", "qrlink.db"),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			SlugCacheTTL: getEnvDuration("REDIS_SLUG_TTL", 10*time.Minute),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 15),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "qr-logos"),
			UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
			Enabled:   getEnv("MINIO_ENABLED", "true") == "true",
		},
		Scan: ScanConfig{
			Mode: getEnv("SCAN_MODE", ScanModeDirect),
		},
		Jobs: JobConfig{
			LogoSweepCron:  getEnv("LOGO_SWEEP_CRON", "0 3 * * *"),
			LogoSweepGrace: getEnvDuration("LOGO_SWEEP_GRACE", 24*time.Hour),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverSQLite:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverSQLite, c.Store.Driver)
	}

	switch c.Scan.Mode {
	case ScanModeDirect, ScanModeQueue:
	default:
		return fmt.Errorf("SCAN_MODE must be %q or %q, got %q", ScanModeDirect, ScanModeQueue, c.Scan.Mode)
	}

	if _, err := cron.ParseStandard(c.Jobs.LogoSweepCron); err != nil {
		return fmt.Errorf("invalid LOGO_SWEEP_CRON %q: %w", c.Jobs.LogoSweepCron, err)
	}

	if c.App.PublicBaseURL == "" {
		return fmt.Errorf("PUBLIC_BASE_URL must not be empty")
	}

	// Production environment phải có JWT secret
	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Store.Driver == StoreDriverPostgres && getEnv("DB_PASSWORD", "") == "" && getEnv("DATABASE_URL", "") == "" {
			return fmt.Errorf("DB_PASSWORD or DATABASE_URL must be set in production")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvList đọc danh sách phân cách bằng dấu phẩy
func getEnvList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
