package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)

	var out map[string]any
	require.NoError(t, sonic.UnmarshalString(line, &out))
	return out
}

func TestLogger_KeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONTo(&buf, LevelInfo).With("service", "weekly-lotto-api")

	logger.Warn("board rejected", "game_id", 7, "error", errors.New("sales closed"), "dangling")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "board rejected", entry["msg"])
	assert.Equal(t, "weekly-lotto-api", entry["service"])
	assert.EqualValues(t, 7, entry["game_id"])
	assert.Equal(t, "sales closed", entry["error"])
	assert.Contains(t, entry, "dangling")
	assert.Contains(t, entry["caller"], "logger_test.go")
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONTo(&buf, LevelWarn)

	logger.Info("hidden")
	logger.Debug("hidden")
	assert.Zero(t, buf.Len())
}

func TestLogger_TraceIDsFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONTo(&buf, LevelInfo)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "game week published")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestLogger_NilSafe(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Info("no logger configured")
		_ = logger.With("k", "v")
		_ = logger.Sync()
	})
}
