package project

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"

	"github.com/arthur-debert/plugs/pkg/pipe"
)

// pipeValue exposes a task pipe to scripts. Every installed plug is a
// method returning a longer pipe: read("src").filter("*.js").write("dist").
type pipeValue struct {
	pipe *pipe.TaskPipe
}

var _ starlark.HasAttrs = pipeValue{}

// String returns a representation listing the stages
func (p pipeValue) String() string {
	return fmt.Sprintf("<pipe %s>", strings.Join(p.pipe.Stages(), " | "))
}

// Type always returns "pipe"
func (p pipeValue) Type() string { return "pipe" }

// Freeze doesn't do anything since pipes are immutable anyway
func (p pipeValue) Freeze() {}

// Truth always returns true
func (p pipeValue) Truth() starlark.Bool { return starlark.True }

// Hash always returns an error since pipes are not hashable
func (p pipeValue) Hash() (uint32, error) {
	return 0, eris.New("pipe is not a hashable type")
}

// Attr returns the plug method name, or nil when no such plug is
// installed.
func (p pipeValue) Attr(name string) (starlark.Value, error) {
	if _, err := pipe.Lookup(name); err != nil {
		return nil, nil
	}
	return starlark.NewBuiltin(name, func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		plugArgs, err := plugArguments(fn.Name(), args, kwargs)
		if err != nil {
			return nil, err
		}

		next := p.pipe.Use(name, plugArgs...)
		if err := next.Err(); err != nil {
			return nil, eris.Wrapf(err, "%s", fn.Name())
		}
		return pipeValue{pipe: next}, nil
	}), nil
}

// AttrNames lists the installed plugs.
func (p pipeValue) AttrNames() []string {
	return pipe.Installed()
}

// taskValue is returned by task() so scripts can refer to declared tasks.
type taskValue struct {
	task *Task
}

func (t taskValue) String() string {
	return fmt.Sprintf("<task %s: %s>", t.task.Name, t.task.Desc)
}

func (t taskValue) Type() string         { return "task" }
func (t taskValue) Freeze()              {}
func (t taskValue) Truth() starlark.Bool { return starlark.True }
func (t taskValue) Hash() (uint32, error) {
	return starlark.String(t.task.Name).Hash()
}

// plugArguments converts positional arguments to plug arguments and adds
// keyword arguments as a trailing options map.
func plugArguments(fnName string, args starlark.Tuple, kwargs []starlark.Tuple) ([]any, error) {
	out := make([]any, 0, len(args)+1)
	for idx, arg := range args {
		value, err := toGo(arg)
		if err != nil {
			return nil, eris.Wrapf(err, "%s: argument %d", fnName, idx)
		}
		out = append(out, value)
	}

	if len(kwargs) > 0 {
		opts := make(map[string]any, len(kwargs))
		for _, kv := range kwargs {
			key := string(kv[0].(starlark.String))
			value, err := toGo(kv[1])
			if err != nil {
				return nil, eris.Wrapf(err, "%s: keyword %s", fnName, key)
			}
			opts[key] = value
		}
		out = append(out, opts)
	}
	return out, nil
}

// toGo converts a Starlark value to its Go counterpart. Lists of strings
// become []string so plugs can take glob lists.
func toGo(v starlark.Value) (any, error) {
	switch value := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return value.GoString(), nil
	case starlark.Bool:
		return bool(value), nil
	case starlark.Int:
		i, ok := value.Int64()
		if !ok {
			return nil, eris.Errorf("integer %s is too large", value.String())
		}
		return int(i), nil
	case starlark.Float:
		return float64(value), nil
	case *starlark.List:
		return iterableToGo(value)
	case starlark.Tuple:
		return iterableToGo(value)
	case *starlark.Dict:
		out := make(map[string]any, value.Len())
		for _, item := range value.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, eris.Errorf("found key type %s in dict but only strings are supported", item[0].Type())
			}
			converted, err := toGo(item[1])
			if err != nil {
				return nil, err
			}
			out[key.GoString()] = converted
		}
		return out, nil
	}
	return nil, eris.Errorf("values of type %s cannot be passed to plugs", v.Type())
}

type starlarkIterable interface {
	Len() int
	Iterate() starlark.Iterator
}

func iterableToGo(input starlarkIterable) (any, error) {
	values := make([]any, 0, input.Len())
	allStrings := true

	iter := input.Iterate()
	defer iter.Done()
	var item starlark.Value
	for iter.Next(&item) {
		converted, err := toGo(item)
		if err != nil {
			return nil, err
		}
		if _, ok := converted.(string); !ok {
			allStrings = false
		}
		values = append(values, converted)
	}

	if !allStrings {
		return values, nil
	}
	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = v.(string)
	}
	return strs, nil
}

func iterableToStrings(input starlarkIterable, field string) ([]string, error) {
	if input == nil {
		return nil, nil
	}
	result := make([]string, 0, input.Len())

	iter := input.Iterate()
	defer iter.Done()
	var item starlark.Value
	for iter.Next(&item) {
		switch value := item.(type) {
		case starlark.String:
			result = append(result, value.GoString())
		case taskValue:
			result = append(result, value.task.Name)
		default:
			return nil, eris.Errorf("expected all items in %s to be strings but found %s", field, item.Type())
		}
	}
	return result, nil
}

func sortedNames(m map[string]*Task) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
