package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("", true))
	assert.Equal(t, slog.LevelInfo, ParseLevel("", false))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info", true))
	assert.Equal(t, slog.LevelInfo, ParseLevel("INFO", false))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning", false))
	assert.Equal(t, slog.LevelError, ParseLevel(" error ", true))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud", false))
}

func TestInit(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	Init(false, "warn", "")
	assert.NotNil(t, Log)
	assert.Same(t, Log, slog.Default())
	assert.False(t, Log.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, Log.Enabled(context.Background(), slog.LevelWarn))
}
