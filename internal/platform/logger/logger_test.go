package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanalab/tarot-api/internal/config"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		level       string
		wantEnabled slog.Level
		wantMuted   slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		// Unknown levels fall back to info.
		{"verbose", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			log, err := Setup(config.ServerConfig{Port: 8080, LogLevel: tc.level})
			require.NoError(t, err)
			require.NotNil(t, log)

			ctx := context.Background()
			assert.True(t, log.Enabled(ctx, tc.wantEnabled))
			assert.False(t, log.Enabled(ctx, tc.wantMuted))
		})
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	t.Parallel()

	attached := slog.Default().With(slog.String("trace_id", "abc"))
	ctx := WithLogger(context.Background(), attached)

	assert.Same(t, attached, FromContext(ctx))
	assert.Same(t, attached, FromContextOrDefault(ctx, nil))
}

func TestFromContextFallsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.NotNil(t, FromContext(ctx))

	def := slog.Default().With(slog.String("component", "test"))
	assert.Same(t, def, FromContextOrDefault(ctx, def))
}
