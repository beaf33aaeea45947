package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerDefaultConfig(t *testing.T) {
	logger := NewLogger(nil)
	require.NotNil(t, logger)
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelWarn, Output: &buf})

	logger.Debug("should not appear")
	logger.Info("should not appear either")
	require.Empty(t, buf.String())

	logger.Warn("a warning", "key", "value")
	require.Contains(t, buf.String(), "[WARN]")
	require.Contains(t, buf.String(), "a warning")
	require.Contains(t, buf.String(), "key=value")
}

func TestLoggerErrorf(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf})

	logger.Errorf("failed: %s (%d)", "disk full", 5)
	require.Contains(t, buf.String(), "[ERROR]")
	require.Contains(t, buf.String(), "failed: disk full (5)")
}

func TestDefaultAndSetDefault(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewLogger(&Config{Level: LevelDebug, Output: &buf}))
	t.Cleanup(func() { SetDefault(NewLogger(nil)) })

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	require.Contains(t, out, "debug message")
	require.Contains(t, out, "info message")
	require.Contains(t, out, "warn message")
	require.Contains(t, out, "error message")
}
