package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestNewLogger_JSONDefault(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := newLogger(&buf, LoggerOptions{Level: "info"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	logger.Debug("hidden")
	logger.Info("assessed", "tier", "good")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "assessed", rec["msg"])
	assert.Equal(t, "good", rec["tier"])
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := newLogger(&buf, LoggerOptions{Format: "text"})
	require.NoError(t, err)

	logger.Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
}

func TestNewLogger_FileFanout(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "service.log")

	logger, cleanup, err := newLogger(&buf, LoggerOptions{Format: "text", File: path})
	require.NoError(t, err)

	logger.Warn("model slow", "op", "predict")
	require.NoError(t, cleanup())

	assert.Contains(t, buf.String(), "model slow")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &rec))
	assert.Equal(t, "model slow", rec["msg"])
	assert.Equal(t, "predict", rec["op"])
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, _, err := newLogger(&bytes.Buffer{}, LoggerOptions{Level: "chatty"})
	assert.Error(t, err)
}
