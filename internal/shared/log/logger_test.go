package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuarp/taskguard-api/internal/shared/config"
)

func newConfig(t *testing.T, yaml string) config.ConfigProvider {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := config.Init(config.Options{YAMLPath: path})
	require.NoError(t, err)
	return cfg
}

func TestParseLevel_TableDriven(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: " WARN ", want: slog.LevelWarn},
		{input: "warning", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "", want: slog.LevelInfo},
		{input: "verbose", want: slog.LevelInfo},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, parseLevel(tc.input))
		})
	}
}

func TestJSONLoggerAddsServiceAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, newConfig(t, "logging:\n  level: warn\n  service: taskguard-worker\n"))

	logger.Info("dropped")
	logger.Warn("task deferred", "task_name", "send_email")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	entry := map[string]any{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "task deferred", entry["msg"])
	assert.Equal(t, "taskguard-worker", entry["service"])
	assert.Equal(t, "send_email", entry["task_name"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`, entry["time"])
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, newConfig(t, "logging:\n  format: text\n"))

	logger.Info("worker consumer started", "concurrency", 4)
	assert.Contains(t, buf.String(), "msg=\"worker consumer started\"")
	assert.Contains(t, buf.String(), "concurrency=4")
}
