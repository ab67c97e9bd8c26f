package ctxkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/templui/fliptrack/internal/config"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))
	assert.Nil(t, Config(ctx))
	assert.Empty(t, CSRFToken(ctx))

	cfg := &config.Config{AppName: "FlipTrack"}
	ctx = WithConfig(WithRequestID(WithCSRFToken(ctx, "tok"), "req-1"), cfg)

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Same(t, cfg, Config(ctx))
	assert.Equal(t, "tok", CSRFToken(ctx))
}
