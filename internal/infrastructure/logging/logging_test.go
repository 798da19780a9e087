package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		{input: "", expected: slog.LevelInfo},
		{input: "debug", expected: slog.LevelDebug},
		{input: "INFO", expected: slog.LevelInfo},
		{input: "warning", expected: slog.LevelWarn},
		{input: " error ", expected: slog.LevelError},
		{input: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestNew_Stderr(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Config{Level: "warn"}, &buf)
	require.NoError(t, err)
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("persons batch absent", "ids", 3)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "persons batch absent")
	assert.Contains(t, buf.String(), "ids=3")
}

func TestNew_Verbose(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Config{Level: "error", Verbose: true}, &buf)
	require.NoError(t, err)

	logger.Debug("fetching", "path", "/platform/users/current.json")

	assert.Contains(t, buf.String(), "fetching")
}

func TestNew_File(t *testing.T) {
	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "famgraph.log")

	logger, closeFn, err := New(Config{File: path}, &stderr)
	require.NoError(t, err)
	logger.Info("downloading ancestors", "generation", 1)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "downloading ancestors")
	assert.Empty(t, stderr.String())
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New(Config{Level: "loud"}, &bytes.Buffer{})

	assert.Error(t, err)
}
