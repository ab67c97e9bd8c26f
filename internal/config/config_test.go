package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_URL", "http://localhost:8090")
	t.Setenv("IMAGE_QUALITY", "0.6")
	t.Setenv("IMAGE_MAX_WIDTH", "not-a-number")
	t.Setenv("REPORT_DELAY", "0s")
	t.Setenv("CAPTURE_SINGLE_SHOT", "true")
	t.Setenv("SHARE_SECRET", "s3cret")

	cfg := Load()

	assert.Equal(t, "FlipTrack", cfg.AppName)
	assert.Equal(t, 0.6, cfg.ImageQuality)
	assert.Equal(t, 1200, cfg.ImageMaxWidth, "invalid values fall back to the default")
	assert.Zero(t, cfg.ReportDelay)
	assert.True(t, cfg.CaptureSingleShot)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.False(t, cfg.EmailEnabled())
	assert.True(t, cfg.IsDevelopment())
}

func TestSanitized(t *testing.T) {
	cfg := &Config{
		AppName:      "FlipTrack",
		ShareSecret:  "s3cret",
		ResendAPIKey: "re_123",
		S3SecretKey:  "aws",
		DBConnection: "postgres://u:p@h/db",
	}

	safe := cfg.Sanitized()

	require.NotSame(t, cfg, safe)
	assert.Equal(t, "FlipTrack", safe.AppName)
	assert.Empty(t, safe.ShareSecret)
	assert.Empty(t, safe.ResendAPIKey)
	assert.Empty(t, safe.S3SecretKey)
	assert.Empty(t, safe.DBConnection)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, (&Config{Timezone: "UTC"}).Location())
	assert.Equal(t, time.Local, (&Config{Timezone: "Mars/Olympus"}).Location())
}
