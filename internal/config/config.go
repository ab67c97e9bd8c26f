package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const devShareSecret = "development-share-secret"

type Config struct {
	// Application
	AppName  string
	AppEnv   string
	AppURL   string
	Port     string
	Timezone string
	LogLevel string

	// Data
	SeedPath     string // empty: bundled seed data
	StoreLatency bool   // simulate network latency in the in-memory store
	ReportDelay  time.Duration

	// Database for durable preferences (default: sqlite)
	DBDriver     string
	DBConnection string

	// Images
	ImageMaxWidth  int
	ImageMaxHeight int
	ImageQuality   float64
	UploadMaxSize  int64

	// Capture
	CaptureSingleShot bool
	CaptureSessionTTL time.Duration
	CameraDriver      string // "relay" or "virtual"

	// Storage for posted photos: "memory" or "s3"
	StorageDriver          string
	S3Region               string
	S3Bucket               string
	S3AccessKey            string
	S3SecretKey            string
	S3Endpoint             string        // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	S3PresignExpiryPublic  time.Duration // default: 7 days
	S3PresignExpiryPrivate time.Duration // default: 1 hour

	// Sharing
	EmailFrom       string
	ResendAPIKey    string
	ShareSecret     string
	ShareLinkExpiry time.Duration

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:  envString("APP_NAME", "FlipTrack"),
		AppEnv:   envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:   envRequired("APP_URL"), // Required: base URL for share links
		Port:     envString("PORT", "8090"),
		Timezone: envString("TIMEZONE", "Local"),
		LogLevel: envString("LOG_LEVEL", ""), // empty: debug in development, info otherwise

		// Data
		SeedPath:     envString("SEED_PATH", ""),
		StoreLatency: envBool("STORE_LATENCY", true),
		ReportDelay:  envDuration("REPORT_DELAY", 300*time.Millisecond),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/fliptrack.db?_pragma=journal_mode(WAL)"),

		// Images
		ImageMaxWidth:  envInt("IMAGE_MAX_WIDTH", 1200),
		ImageMaxHeight: envInt("IMAGE_MAX_HEIGHT", 1200),
		ImageQuality:   envFloat("IMAGE_QUALITY", 0.8),
		UploadMaxSize:  int64(envInt("UPLOAD_MAX_SIZE", 10<<20)), // 10MB

		// Capture
		CaptureSingleShot: envBool("CAPTURE_SINGLE_SHOT", false),
		CaptureSessionTTL: envDuration("CAPTURE_SESSION_TTL", 30*time.Minute),
		CameraDriver:      envString("CAMERA_DRIVER", "relay"),

		// Storage
		StorageDriver:          envString("STORAGE_DRIVER", "memory"),
		S3Region:               envString("S3_REGION", ""),
		S3Bucket:               envString("S3_BUCKET", ""),
		S3AccessKey:            envString("S3_ACCESS_KEY", ""),
		S3SecretKey:            envString("S3_SECRET_KEY", ""),
		S3Endpoint:             envString("S3_ENDPOINT", ""),
		S3PresignExpiryPublic:  envDuration("S3_PRESIGN_EXPIRY_PUBLIC", 168*time.Hour),
		S3PresignExpiryPrivate: envDuration("S3_PRESIGN_EXPIRY_PRIVATE", 1*time.Hour),

		// Sharing (RESEND_API_KEY optional: without it reports fall back to clipboard)
		EmailFrom:       envString("EMAIL_FROM", "reports@example.com"),
		ResendAPIKey:    envString("RESEND_API_KEY", ""),
		ShareSecret:     envString("SHARE_SECRET", devShareSecret),
		ShareLinkExpiry: envDuration("SHARE_LINK_EXPIRY", 72*time.Hour),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	if cfg.StorageDriver == "s3" {
		cfg.S3Region = envRequired("S3_REGION")
		cfg.S3Bucket = envRequired("S3_BUCKET")
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures secrets are not left on development defaults.
func validateProduction(cfg *Config) {
	if cfg.ShareSecret == "" || cfg.ShareSecret == devShareSecret {
		slog.Error("production deployment requires SHARE_SECRET",
			"hint", "set APP_ENV=development for local testing")
		os.Exit(1)
	}
	if cfg.CameraDriver == "virtual" {
		slog.Warn("virtual camera enabled in production", "hint", "set CAMERA_DRIVER=relay")
	}
}

// Location resolves Timezone, falling back to the local zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("config invalid timezone, using local", "timezone", c.Timezone, "error", err)
		return time.Local
	}
	return loc
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("config invalid float, using default", "key", key, "value", v, "default", def)
		return def
	}
	return f
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// EmailEnabled reports whether reports can be shared by email.
func (c *Config) EmailEnabled() bool {
	return c.ResendAPIKey != ""
}

// Sanitized returns a copy of the config with only public/safe fields.
// Safe to expose in ctx, templates and client-facing contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:  c.AppName,
		AppEnv:   c.AppEnv,
		AppURL:   c.AppURL,
		Port:     c.Port,
		Timezone: c.Timezone,

		ImageMaxWidth:     c.ImageMaxWidth,
		ImageMaxHeight:    c.ImageMaxHeight,
		ImageQuality:      c.ImageQuality,
		UploadMaxSize:     c.UploadMaxSize,
		CaptureSingleShot: c.CaptureSingleShot,
		CameraDriver:      c.CameraDriver,

		EmailFrom:  c.EmailFrom,
		S3Endpoint: c.S3Endpoint, // Needed for CSP policies
	}
}
