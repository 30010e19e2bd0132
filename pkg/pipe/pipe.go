package pipe

import (
	"context"
	"fmt"

	"github.com/arthur-debert/plugs/pkg/files"
	"github.com/arthur-debert/plugs/pkg/logging"
	"github.com/arthur-debert/plugs/pkg/run"
)

// Plug is one stage of a pipe. It receives a Files and returns the Files
// handed to the next stage. Plugs do not mutate their input; they fork it.
type Plug interface {
	Process(ctx context.Context, in *files.Files, r *run.Run) (*files.Files, error)
}

// PlugFunc adapts a function to Plug.
type PlugFunc func(ctx context.Context, in *files.Files, r *run.Run) (*files.Files, error)

// Process calls f.
func (f PlugFunc) Process(ctx context.Context, in *files.Files, r *run.Run) (*files.Files, error) {
	return f(ctx, in, r)
}

// Origin produces the first Files of a task.
type Origin interface {
	Read(ctx context.Context, r *run.Run) (*files.Files, error)
}

// OriginFunc adapts a function to Origin.
type OriginFunc func(ctx context.Context, r *run.Run) (*files.Files, error)

// Read calls f.
func (f OriginFunc) Read(ctx context.Context, r *run.Run) (*files.Files, error) {
	return f(ctx, r)
}

// link is a node of an immutable chain. Appending creates a child link.
type link struct {
	parent *link
	name   string
	plug   Plug
	err    error
}

func (l *link) append(name string, plug Plug, err error) *link {
	return &link{parent: l, name: name, plug: plug, err: err}
}

// stages returns the chain from root to tip.
func (l *link) stages() []*link {
	var out []*link
	for n := l; n != nil; n = n.parent {
		out = append(out, n)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// firstErr returns the first construction error from the root.
func (l *link) firstErr() error {
	for _, n := range l.stages() {
		if n.err != nil {
			return n.err
		}
	}
	return nil
}

func (l *link) names() []string {
	stages := l.stages()
	out := make([]string, len(stages))
	for i, n := range stages {
		out[i] = n.name
	}
	return out
}

func (l *link) process(ctx context.Context, in *files.Files, r *run.Run) (*files.Files, error) {
	if err := l.firstErr(); err != nil {
		return nil, err
	}

	logger := r.Logger()
	current := in
	for _, n := range l.stages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		done := logging.LogOperationStart(logger, n.name)
		out, err := n.plug.Process(ctx, current, r)
		done(err)
		if err != nil {
			return nil, err
		}
		current = out
	}
	return current, nil
}

func stageName(plug Plug) string {
	if named, ok := plug.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", plug)
}

// PlugPipe is a chain of plugs that is itself a Plug. The zero value and
// New() are the identity pipe.
type PlugPipe struct {
	tip *link
}

// New returns an empty pipe.
func New() *PlugPipe { return &PlugPipe{} }

// Plug returns a pipe running p's stages followed by plug. p is unchanged.
func (p *PlugPipe) Plug(plug Plug) *PlugPipe {
	return &PlugPipe{tip: p.tip.append(stageName(plug), plug, nil)}
}

// Use appends the installed plug name built from args. A construction
// error is kept in the pipe and returned by Err and Process.
func (p *PlugPipe) Use(name string, args ...any) *PlugPipe {
	plug, err := construct(name, args)
	return &PlugPipe{tip: p.tip.append(name, plug, err)}
}

// Err returns the first construction error of the chain.
func (p *PlugPipe) Err() error { return p.tip.firstErr() }

// Stages returns the stage names, first to last.
func (p *PlugPipe) Stages() []string { return p.tip.names() }

// Process runs the stages in order. The first failure stops the pipe and
// is returned unchanged.
func (p *PlugPipe) Process(ctx context.Context, in *files.Files, r *run.Run) (*files.Files, error) {
	if p.tip == nil {
		return in, nil
	}
	return p.tip.process(ctx, in, r)
}

// Name implements the stage naming used in logs.
func (p *PlugPipe) Name() string { return "pipe" }

// TaskPipe is a chain starting from an Origin. It cannot be nested; it
// only runs.
type TaskPipe struct {
	origin Origin
	name   string
	tip    *link
}

// From starts a task pipe reading its input from origin.
func From(origin Origin) *TaskPipe {
	name := "origin"
	if named, ok := origin.(interface{ Name() string }); ok {
		name = named.Name()
	}
	return &TaskPipe{origin: origin, name: name}
}

// Plug returns a pipe running t's stages followed by plug.
func (t *TaskPipe) Plug(plug Plug) *TaskPipe {
	return &TaskPipe{origin: t.origin, name: t.name, tip: t.tip.append(stageName(plug), plug, nil)}
}

// Use appends the installed plug name built from args.
func (t *TaskPipe) Use(name string, args ...any) *TaskPipe {
	plug, err := construct(name, args)
	return &TaskPipe{origin: t.origin, name: t.name, tip: t.tip.append(name, plug, err)}
}

// Err returns the first construction error of the chain.
func (t *TaskPipe) Err() error { return t.tip.firstErr() }

// Stages returns the origin name followed by the stage names.
func (t *TaskPipe) Stages() []string {
	return append([]string{t.name}, t.tip.names()...)
}

// Run reads the origin and runs every stage in order. Construction errors
// fail the pipe before the origin is read.
func (t *TaskPipe) Run(ctx context.Context, r *run.Run) (*files.Files, error) {
	if err := t.Err(); err != nil {
		return nil, err
	}

	in, err := t.origin.Read(ctx, r)
	if err != nil {
		return nil, err
	}
	if t.tip == nil {
		return in, nil
	}
	return t.tip.process(ctx, in, r)
}
