package iologger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/eufgis/fgrdb/pkg/config"
	"github.com/eufgis/fgrdb/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, config.LogConfig{Format: "json", Level: "warn"})
	ctx := context.Background()
	assert.False(t, h.Enabled(ctx, slog.LevelInfo))
	assert.True(t, h.Enabled(ctx, slog.LevelWarn))

	slog.New(h).Warn("Refresh failed", "key", "ds1")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "Refresh failed", rec["msg"])
	assert.Equal(t, "ds1", rec["key"])

	buf.Reset()
	h = NewHandler(&buf, config.LogConfig{Format: "text", Level: "debug"})
	slog.New(h).Debug("Compiled filters", "count", 2)
	assert.Contains(t, buf.String(), "msg=\"Compiled filters\" count=2")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, v := range tests {
		assert.Equal(t, v.want, parseLevel(v.in), v.in)
	}
}

func TestInitFile(t *testing.T) {
	def := slog.Default()
	defer slog.SetDefault(def)

	dir := t.TempDir()
	cfg := config.LogConfig{Format: "json", Level: "info", Destination: "file"}
	require.NoError(t, Init(dir, cfg))
	slog.Info("first")
	require.NoError(t, Init(dir, cfg))
	slog.Info("second")

	bs, err := os.ReadFile(filepath.Join(dir, LogFile))
	require.NoError(t, err)
	assert.Contains(t, string(bs), "first")
	assert.Contains(t, string(bs), "second")
}

func TestInitError(t *testing.T) {
	def := slog.Default()
	defer slog.SetDefault(def)

	cfg := config.LogConfig{Destination: "file"}
	err := Init(filepath.Join(t.TempDir(), "missing"), cfg)
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.CreateLogFileError, gnErr.Code)
}
