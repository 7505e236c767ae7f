package log

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetup_DefaultLevel(t *testing.T) {
	Setup(false, false)

	ctx := context.Background()
	handler := slog.Default().Handler()
	assert.True(t, handler.Enabled(ctx, slog.LevelInfo), "INFO should be enabled in default mode")
	assert.True(t, handler.Enabled(ctx, slog.LevelWarn), "WARN should be enabled in default mode")
	assert.False(t, handler.Enabled(ctx, slog.LevelDebug), "DEBUG should not be enabled in default mode")
}

func TestSetup_VerboseLevel(t *testing.T) {
	Setup(true, false)

	handler := slog.Default().Handler()
	assert.True(t, handler.Enabled(context.Background(), slog.LevelDebug), "DEBUG should be enabled in verbose mode")
}

func TestSetup_QuietTakesPrecedence(t *testing.T) {
	Setup(true, true)

	ctx := context.Background()
	handler := slog.Default().Handler()
	assert.False(t, handler.Enabled(ctx, slog.LevelDebug))
	assert.False(t, handler.Enabled(ctx, slog.LevelInfo))
	assert.True(t, handler.Enabled(ctx, slog.LevelWarn))
	assert.True(t, handler.Enabled(ctx, slog.LevelError))
}
