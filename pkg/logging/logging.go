package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Options configures a logger. The zero value logs warnings to stderr
// without a log file.
type Options struct {
	// Verbosity maps to levels: 0 warn, 1 info, 2 debug, 3+ trace.
	Verbosity int
	// NoColor disables colored console output.
	NoColor bool
	// LogFile is an optional JSON log file. DefaultLogFile() gives the
	// conventional location.
	LogFile string
	// Output is the console writer, stderr when nil.
	Output io.Writer
}

// Level returns the zerolog level for a verbosity count.
func Level(verbosity int) zerolog.Level {
	switch verbosity {
	case 0:
		return zerolog.WarnLevel
	case 1:
		return zerolog.InfoLevel
	case 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// New builds a logger from opts. It writes to a console writer and, when
// opts.LogFile is set, to the log file as well. The returned closer releases
// the log file and is never nil.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    opts.NoColor || !isTerminal(out),
	}

	var writers []io.Writer
	writers = append(writers, consoleWriter)

	var closer io.Closer = nopCloser{}
	if opts.LogFile != "" {
		logFileHandle, err := setupLogFile(opts.LogFile)
		if err != nil {
			return zerolog.Nop(), closer, err
		}
		writers = append(writers, logFileHandle)
		closer = logFileHandle
	}

	multi := io.MultiWriter(writers...)
	logger := zerolog.New(multi).Level(Level(opts.Verbosity)).With().Timestamp().Logger()

	// Add caller information for debug and trace levels
	if opts.Verbosity >= 2 {
		logger = logger.With().Caller().Logger()
	}

	logger.Debug().Int("verbosity", opts.Verbosity).Str("logFile", opts.LogFile).Msg("Logger initialized")
	return logger, closer, nil
}

// Component returns a logger tagged with the given component name
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// WithFields returns a logger with additional fields
func WithFields(logger zerolog.Logger, fields map[string]interface{}) zerolog.Logger {
	return logger.With().Fields(fields).Logger()
}

// DefaultLogFile returns the log file location under the XDG state directory.
func DefaultLogFile() (string, error) {
	return xdg.StateFile(filepath.Join("plugs", "plugs.log"))
}

// setupLogFile creates the log file and its parent directories
func setupLogFile(logPath string) (*os.File, error) {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return file, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// LogOperationStart logs the start of an operation and returns a function
// logging how it ended: completed, or failed with err.
func LogOperationStart(logger zerolog.Logger, operation string) func(err error) {
	start := time.Now()
	logger.Debug().
		Str("operation", operation).
		Msg("Operation started")

	return func(err error) {
		if err != nil {
			logger.Debug().
				Str("operation", operation).
				Dur("duration", time.Since(start)).
				Err(err).
				Msg("Operation failed")
			return
		}
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
