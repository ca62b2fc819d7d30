package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerFileOutput(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logPath := filepath.Join(t.TempDir(), "wfip.log")
	InitLogger(false, logPath)

	LogInfo("scan complete", "ui_name", "checkout")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "scan complete", entry["msg"])
	assert.Equal(t, "checkout", entry["ui_name"])
}

func TestInitLoggerDebugLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logPath := filepath.Join(t.TempDir(), "wfip.log")
	InitLogger(true, logPath)

	LogDebug("probe")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "probe")
}

func TestDebugSuppressedByDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logPath := filepath.Join(t.TempDir(), "wfip.log")
	InitLogger(false, logPath)

	LogDebug("hidden")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
}

func TestLogError(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logPath := filepath.Join(t.TempDir(), "wfip.log")
	InitLogger(false, logPath)

	LogError("refresh failed", errors.New("connection refused"), "source", "caniuse")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "connection refused")
	assert.Contains(t, string(data), "caniuse")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	}}

	logger := slog.New(h)
	logger.Info("fan out")

	assert.Contains(t, a.String(), "fan out")
	assert.Contains(t, b.String(), "fan out")
}

func TestMultiHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{slog.NewJSONHandler(&buf, nil)}}

	logger := slog.New(h).With("ui_name", "billing")
	logger.Info("tagged")

	assert.Contains(t, buf.String(), "billing")
}

func TestMultiHandlerEnabled(t *testing.T) {
	quiet := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})
	loud := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})

	h := &multiHandler{handlers: []slog.Handler{quiet, loud}}
	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))

	h = &multiHandler{handlers: []slog.Handler{quiet}}
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}
