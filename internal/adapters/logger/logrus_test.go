package logger

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLogrusLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})
	ctx := context.Background()

	l.Debug(ctx, "debug message")
	l.Info(ctx, "info message")
	assert.Empty(t, buf.String())

	l.Warn(ctx, "poll failed", map[string]interface{}{"attempt": 3})
	out := buf.String()
	assert.Contains(t, out, "poll failed")
	assert.Contains(t, out, "attempt=3")
	assert.Contains(t, out, "level=warning")
}

func TestLogrusLogger_ErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})

	l.Error(context.Background(), errors.New("connection reset"), "exit attempt failed", map[string]interface{}{"tradeID": "T1"})

	out := buf.String()
	assert.Contains(t, out, "exit attempt failed")
	assert.Contains(t, out, "connection reset")
	assert.Contains(t, out, "tradeID=T1")
}

func TestLogrusLogger_WritesRotatingFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "sync.log")
	l := New(Config{Level: LevelInfo, Output: &console, File: path, MaxSizeMB: 1, MaxBackups: 1})
	defer l.Close()

	l.Info(context.Background(), "snapshot published")

	assert.Contains(t, console.String(), "snapshot published")
	assert.FileExists(t, path)
	require.NoError(t, l.Close())
}
