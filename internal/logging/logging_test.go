package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestFileLoggerWritesJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l := New(Config{Level: slog.LevelInfo, Dir: dir, Service: "todo"})

	l.Debug("hidden")
	l.Info("task added", "id", "abc")
	require.NoError(t, l.Close())

	require.NotEmpty(t, l.Path())
	assert.True(t, strings.HasPrefix(filepath.Base(l.Path()), "todo_"))

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "task added", rec["msg"])
	assert.Equal(t, "abc", rec["id"])
	assert.Equal(t, "todo", rec["service"])
}

func TestCloseIsIdempotent(t *testing.T) {
	l := New(Config{Dir: t.TempDir()})
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
}

func TestUnusableDirUsesFallback(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	var out bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Dir: filepath.Join(blocker, "logs"), Service: "todo", Fallback: &out})
	defer logger.Close()

	logger.Info("hello")
	assert.Empty(t, logger.Path())
	assert.Contains(t, out.String(), "msg=hello")
}
