package run

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/plugs/pkg/config"
	"github.com/arthur-debert/plugs/pkg/files"
	"github.com/arthur-debert/plugs/pkg/logging"
	"github.com/arthur-debert/plugs/pkg/types"
)

// TaskSeparator joins nested task names.
const TaskSeparator = ":"

// Run carries what every stage of one invocation shares: configuration,
// logger, filesystem, project root and the stack of tasks being run.
// A Run is immutable; Enter returns a new one.
type Run struct {
	id      string
	cfg     *config.Config
	logger  zerolog.Logger
	fs      types.FS
	root    string
	started time.Time
	tasks   []string
	now     func() time.Time
}

// New creates a run rooted at root. A nil cfg uses the embedded defaults.
func New(cfg *config.Config, logger zerolog.Logger, fsys types.FS, root string) *Run {
	if cfg == nil {
		if d, err := config.Default(); err == nil {
			cfg = d
		} else {
			cfg = &config.Config{}
		}
	}
	id := uuid.NewString()
	return &Run{
		id:      id,
		cfg:     cfg,
		logger:  logger.With().Str("run", id[:8]).Logger(),
		fs:      fsys,
		root:    filepath.Clean(root),
		started: time.Now(),
		now:     time.Now,
	}
}

// ID identifies the run in logs.
func (r *Run) ID() string { return r.id }

// Config returns the effective configuration.
func (r *Run) Config() *config.Config { return r.cfg }

// FS returns the filesystem stages read from and write to.
func (r *Run) FS() types.FS { return r.fs }

// Root returns the project root.
func (r *Run) Root() string { return r.root }

// Enter returns a run with task pushed onto the task stack. The receiver
// is unchanged.
func (r *Run) Enter(task string) *Run {
	next := *r
	next.tasks = append(slices.Clip(r.tasks), task)
	return &next
}

// Tasks returns the task stack, outermost first.
func (r *Run) Tasks() []string { return slices.Clone(r.tasks) }

// TaskName returns the task stack joined with ":".
func (r *Run) TaskName() string { return strings.Join(r.tasks, TaskSeparator) }

// Logger returns the run logger, tagged with the current task.
func (r *Run) Logger() zerolog.Logger {
	if len(r.tasks) == 0 {
		return r.logger
	}
	return logging.WithFields(r.logger, map[string]interface{}{
		"task":  r.TaskName(),
		"depth": len(r.tasks),
	})
}

// Debug starts a debug-level event.
func (r *Run) Debug() *zerolog.Event {
	l := r.Logger()
	return l.Debug()
}

// Log starts an info-level event.
func (r *Run) Log() *zerolog.Event {
	l := r.Logger()
	return l.Info()
}

// Alert starts a warning event.
func (r *Run) Alert() *zerolog.Event {
	l := r.Logger()
	return l.Warn()
}

// Error starts an error event.
func (r *Run) Error() *zerolog.Event {
	l := r.Logger()
	return l.Error()
}

// Elapsed returns the time since the run started.
func (r *Run) Elapsed() time.Duration { return r.now().Sub(r.started) }

// Stopwatch starts timing and returns a func reporting the time since.
func (r *Run) Stopwatch() func() time.Duration {
	start := r.now()
	return func() time.Duration { return r.now().Sub(start) }
}

// FormatElapsed renders Elapsed for humans: milliseconds under a second,
// seconds with two decimals above.
func (r *Run) FormatElapsed() string { return FormatDuration(r.Elapsed()) }

// FormatDuration renders d the way FormatElapsed does.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%d ms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2f sec", d.Seconds())
}

// Files returns an empty container for dir, resolved against the project
// root, set up from the run configuration.
func (r *Run) Files(dir string) (*files.Files, error) {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(r.root, dir)
	}
	return files.New(dir,
		files.WithFS(r.fs),
		files.WithLogger(r.Logger()),
		files.WithSourceMapMarker(r.cfg.Files.SourceMapMarker),
		files.WithSourceMapProbing(r.cfg.Files.ProbeSourceMaps),
	)
}
