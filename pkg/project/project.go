package project

import (
	"context"
	stderrors "errors"
	"io/fs"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.starlark.net/starlark"

	"github.com/arthur-debert/plugs/pkg/errors"
	"github.com/arthur-debert/plugs/pkg/files"
	"github.com/arthur-debert/plugs/pkg/paths"
	"github.com/arthur-debert/plugs/pkg/pipe"
	"github.com/arthur-debert/plugs/pkg/run"
	"github.com/arthur-debert/plugs/pkg/types"
)

// DefaultFile is the build script looked up in the project root.
const DefaultFile = "build.star"

// Task is a named pipe declared by the build script. A task may also, or
// only, depend on other tasks, which run first.
type Task struct {
	Name string
	Desc string
	Deps []string
	Pipe *pipe.TaskPipe
}

// Project holds the tasks declared by a build script.
type Project struct {
	root   string
	file   string
	logger zerolog.Logger
	tasks  map[string]*Task
}

// LoadOptions configures Load.
type LoadOptions struct {
	// File is the build script, relative to the root. Defaults to
	// DefaultFile.
	File string
	// Logger receives info() and warn() output.
	Logger zerolog.Logger
	// Env overrides the process environment seen by getenv().
	Env func(string) (string, bool)
}

// Load executes the build script of the project rooted at root.
func Load(ctx context.Context, fsys types.FS, root string, opts LoadOptions) (*Project, error) {
	name := opts.File
	if name == "" {
		name = DefaultFile
	}
	script, err := paths.Resolve(name, root)
	if err != nil {
		return nil, err
	}

	src, err := fsys.ReadFile(script.Absolute)
	if err != nil {
		code := errors.ErrFileRead
		if stderrors.Is(err, fs.ErrNotExist) {
			code = errors.ErrFileNotFound
		}
		return nil, errors.Wrapf(err, code, "cannot read build script %s", script.Relative).
			WithDetail("path", script.Absolute)
	}

	p := &Project{
		root:   paths.SanitizePath(root),
		file:   script.Absolute,
		logger: opts.Logger,
		tasks:  map[string]*Task{},
	}

	env := opts.Env
	if env == nil {
		env = lookupEnv
	}

	thread := &starlark.Thread{
		Name: "main",
		Print: func(thread *starlark.Thread, msg string) {
			opts.Logger.Info().Str("thread", thread.Name).Msg(msg)
		},
	}
	thread.SetLocal("loaderCtx", &loaderCtx{project: p, env: env})

	stop := context.AfterFunc(ctx, func() { thread.Cancel(ctx.Err().Error()) })
	defer stop()

	if _, err := starlark.ExecFile(thread, script.Relative, src, predeclared()); err != nil {
		var evalErr *starlark.EvalError
		if stderrors.As(err, &evalErr) {
			err = eris.Errorf("failed to execute %s:\n%s", script.Relative, evalErr.Backtrace())
		} else {
			err = eris.Wrapf(err, "failed to execute %s", script.Relative)
		}
		return nil, errors.Wrapf(err, errors.ErrTaskLoad, "cannot load %s", script.Relative).
			WithDetail("path", script.Absolute)
	}

	if err := p.checkDeps(); err != nil {
		return nil, err
	}

	p.logger.Debug().Str("file", script.Absolute).Int("tasks", len(p.tasks)).Msg("Loaded build script")
	return p, nil
}

func (p *Project) checkDeps() error {
	for _, name := range sortedNames(p.tasks) {
		for _, dep := range p.tasks[name].Deps {
			if _, ok := p.tasks[dep]; !ok {
				return errors.Newf(errors.ErrTaskLoad, "task %q depends on unknown task %q", name, dep).
					WithDetail("path", p.file)
			}
		}
	}
	return nil
}

// Root returns the project root.
func (p *Project) Root() string { return p.root }

// File returns the build script path.
func (p *Project) File() string { return p.file }

// Tasks returns the declared tasks sorted by name.
func (p *Project) Tasks() []*Task {
	names := sortedNames(p.tasks)
	out := make([]*Task, len(names))
	for i, name := range names {
		out[i] = p.tasks[name]
	}
	return out
}

// Task returns the task called name.
func (p *Project) Task(name string) (*Task, error) {
	t, ok := p.tasks[name]
	if !ok {
		return nil, errors.Newf(errors.ErrTaskNotFound, "task %q not found", name).
			WithDetail("name", name).
			WithDetail("available", sortedNames(p.tasks))
	}
	return t, nil
}

// Run runs the named tasks in order. Dependencies run before the tasks
// depending on them, once per call. The first failure stops the run.
func (p *Project) Run(ctx context.Context, r *run.Run, names ...string) (map[string]*files.Files, error) {
	for _, name := range names {
		if _, err := p.Task(name); err != nil {
			return nil, err
		}
	}

	rn := &runner{project: p, done: map[string]*files.Files{}, active: map[string]bool{}}
	for _, name := range names {
		if _, err := rn.run(ctx, r, name); err != nil {
			return nil, err
		}
	}
	return rn.done, nil
}

type runner struct {
	project *Project
	done    map[string]*files.Files
	active  map[string]bool
}

func (rn *runner) run(ctx context.Context, r *run.Run, name string) (*files.Files, error) {
	if out, ok := rn.done[name]; ok {
		return out, nil
	}
	if rn.active[name] {
		return nil, errors.Newf(errors.ErrTaskLoad, "task %q depends on itself", name).
			WithDetail("task", r.TaskName())
	}
	t, err := rn.project.Task(name)
	if err != nil {
		return nil, err
	}

	rn.active[name] = true
	defer delete(rn.active, name)

	tr := r.Enter(name)
	for _, dep := range t.Deps {
		if _, err := rn.run(ctx, tr, dep); err != nil {
			return nil, err
		}
	}

	var out *files.Files
	if t.Pipe != nil {
		tr.Log().Msg("Starting task")
		elapsed := tr.Stopwatch()
		if out, err = t.Pipe.Run(ctx, tr); err != nil {
			return nil, err
		}
		tr.Log().Int("files", out.Len()).Str("elapsed", run.FormatDuration(elapsed())).Msg("Task finished")
	}
	rn.done[name] = out
	return out, nil
}
