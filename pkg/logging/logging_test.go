package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, closer, err := New(Options{Verbosity: tt.verbosity, Output: &buf})
			require.NoError(t, err)
			defer func() { _ = closer.Close() }()

			assert.Equal(t, tt.wantLevel, Level(tt.verbosity))
			assert.Equal(t, tt.wantLevel, logger.GetLevel())
		})
	}
}

func TestNewConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Verbosity: 1, Output: &buf})
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()

	logger.Info().Msg("visible message")
	logger.Debug().Msg("hidden message")

	out := buf.String()
	assert.Contains(t, out, "visible message")
	assert.NotContains(t, out, "hidden message")
	// Buffers are not terminals, so no ANSI escapes
	assert.NotContains(t, out, "\x1b[")
}

func TestNewWithLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "state", "plugs", "plugs.log")

	var buf bytes.Buffer
	logger, closer, err := New(Options{Verbosity: 0, Output: &buf, LogFile: logPath})
	require.NoError(t, err)

	logger.Warn().Str("task", "build").Msg("written to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"written to file"`)
	assert.Contains(t, string(data), `"task":"build"`)
}

func TestNewWithUnwritableLogFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, closer, err := New(Options{LogFile: filepath.Join(blocker, "plugs.log")})
	assert.Error(t, err)
	assert.NotNil(t, closer)
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	component := Component(logger, "write")
	component.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"component":"write"`)
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	fielded := WithFields(logger, map[string]interface{}{"task": "js", "depth": 2})
	fielded.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"task":"js"`)
	assert.Contains(t, buf.String(), `"depth":2`)
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	done := LogOperationStart(logger, "combine")
	done(nil)

	out := buf.String()
	assert.Contains(t, out, "Operation started")
	assert.Contains(t, out, "Operation completed")
	assert.Contains(t, out, `"operation":"combine"`)
	assert.NotContains(t, out, "Operation failed")
}

func TestLogOperationStart_Failure(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	done := LogOperationStart(logger, "write")
	done(errors.New("disk full"))

	out := buf.String()
	assert.Contains(t, out, "Operation failed")
	assert.Contains(t, out, `"error":"disk full"`)
	assert.Contains(t, out, `"duration":`)
	assert.NotContains(t, out, "Operation completed")
}
