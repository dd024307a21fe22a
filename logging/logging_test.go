package logging

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

func TestNewWritesTextAndJSON(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "robot.log")

	logger, closeLog, err := New(Options{Writer: &buf, LogFile: path})
	require.NoError(t, err)

	logger.Info("run finished", "attempt", "a1f3", "steps", 6)
	logger.Debug("hidden")
	require.NoError(t, closeLog())

	assert.Contains(t, buf.String(), "run finished")
	assert.Contains(t, buf.String(), "attempt=a1f3")
	assert.NotContains(t, buf.String(), "hidden")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &record))
	assert.Equal(t, "run finished", record["msg"])
	assert.Equal(t, float64(6), record["steps"])
}

func TestNewLevelIsShared(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)

	logger, _, err := New(Options{Writer: &buf, Level: level})
	require.NoError(t, err)

	logger.Debug("before")
	level.Set(slog.LevelDebug)
	logger.Debug("after")

	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "after")
}

func TestNewBadLogFile(t *testing.T) {
	_, _, err := New(Options{LogFile: filepath.Join(t.TempDir(), "missing", "robot.log")})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)

	l, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestToJournalKey(t *testing.T) {
	assert.Equal(t, "ATTEMPT_ID", toJournalKey("attempt.id"))
	assert.Equal(t, "RUN_ID", toJournalKey("run_id"))
}
