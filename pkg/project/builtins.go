package project

import (
	"fmt"
	"os"
	"runtime"

	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"

	"github.com/arthur-debert/plugs/pkg/pipe"
	"github.com/arthur-debert/plugs/pkg/plugs/read"
)

// loaderCtx is the state shared by the builtins of one script execution.
type loaderCtx struct {
	project *Project
	env     func(string) (string, bool)
}

func getCtx(thread *starlark.Thread) *loaderCtx {
	return thread.Local("loaderCtx").(*loaderCtx)
}

func predeclared() starlark.StringDict {
	return starlark.StringDict{
		"OS":     starlark.String(runtime.GOOS),
		"ARCH":   starlark.String(runtime.GOARCH),
		"info":   starlark.NewBuiltin("info", starInfo),
		"warn":   starlark.NewBuiltin("warn", starWarn),
		"getenv": starlark.NewBuiltin("getenv", getenv),
		"read":   starlark.NewBuiltin("read", starRead),
		"task":   starlark.NewBuiltin("task", task),
		"plugs":  starlark.NewBuiltin("plugs", starPlugs),
	}
}

func position(thread *starlark.Thread) string {
	pos := thread.CallFrame(1).Pos
	return fmt.Sprintf("%s:%d:%d", pos.Filename(), pos.Line, pos.Col)
}

func starInfo(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &message)
	if err != nil {
		return nil, err
	}

	getCtx(thread).project.logger.Info().Msgf("%s: %s", position(thread), message)
	return starlark.None, nil
}

func starWarn(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &message)
	if err != nil {
		return nil, err
	}

	getCtx(thread).project.logger.Warn().Msgf("%s: %s", position(thread), message)
	return starlark.None, nil
}

func getenv(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var key string
	var defaultValue string

	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &key, "default?", &defaultValue)
	if err != nil {
		return nil, err
	}

	if value, ok := getCtx(thread).env(key); ok {
		return starlark.String(value), nil
	}
	return starlark.String(defaultValue), nil
}

// read(dir, *globs, allow_empty=False, dot=False) starts a pipe.
func starRead(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(args) < 1 {
		return nil, eris.Errorf("%s: expects a directory", fn.Name())
	}

	parts := make([]string, len(args))
	for idx, arg := range args {
		value, ok := arg.(starlark.String)
		if !ok {
			return nil, eris.Errorf("%s: only accepts string arguments but argument %d was a %s", fn.Name(), idx, arg.Type())
		}
		parts[idx] = value.GoString()
	}

	var opts read.Options
	var caseSensitive starlark.Value = starlark.None
	err := starlark.UnpackArgs(fn.Name(), nil, kwargs,
		"allow_empty?", &opts.AllowEmpty, "dot?", &opts.Dot, "case_sensitive?", &caseSensitive)
	if err != nil {
		return nil, err
	}
	if b, ok := caseSensitive.(starlark.Bool); ok {
		value := bool(b)
		opts.CaseSensitive = &value
	}

	reader, err := read.Origin(parts[0], parts[1:], opts)
	if err != nil {
		return nil, eris.Wrapf(err, "%s", fn.Name())
	}
	return pipeValue{pipe: pipe.From(reader)}, nil
}

// task(name, pipe=None, desc="", deps=[]) declares a task.
func task(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var desc string
	var pipeArg starlark.Value = starlark.None
	var deps *starlark.List

	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "pipe?", &pipeArg, "desc?", &desc, "deps?", &deps)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, eris.Errorf("%s: name cannot be empty", fn.Name())
	}

	t := &Task{Name: name, Desc: desc}
	switch value := pipeArg.(type) {
	case starlark.NoneType:
	case pipeValue:
		t.Pipe = value.pipe
	default:
		return nil, eris.Errorf("%s: expected a pipe but found %s", fn.Name(), pipeArg.Type())
	}

	if deps != nil {
		if t.Deps, err = iterableToStrings(deps, "deps"); err != nil {
			return nil, err
		}
	}
	if t.Pipe == nil && len(t.Deps) == 0 {
		return nil, eris.Errorf("%s: task %q has neither a pipe nor deps", fn.Name(), name)
	}

	p := getCtx(thread).project
	if _, exists := p.tasks[name]; exists {
		return nil, eris.Errorf("%s: task %q is already declared", fn.Name(), name)
	}
	p.tasks[name] = t
	return taskValue{task: t}, nil
}

// plugs() lists the installed plug names.
func starPlugs(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	names := pipe.Installed()
	values := make([]starlark.Value, len(names))
	for i, name := range names {
		values[i] = starlark.String(name)
	}
	return starlark.NewList(values), nil
}

func lookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}
