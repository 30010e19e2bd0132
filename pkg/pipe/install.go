package pipe

import (
	stderrors "errors"

	"github.com/arthur-debert/plugs/pkg/errors"
	"github.com/arthur-debert/plugs/pkg/registry"
)

// Constructor builds a plug from the arguments given to Use.
type Constructor func(args ...any) (Plug, error)

// Factory builds a single-stage pipe from constructor arguments.
type Factory func(args ...any) *PlugPipe

var installed = registry.New[Constructor](
	registry.WithKind("plug"),
	registry.WithNotFoundCode(errors.ErrPlugNotFound),
)

// Install registers ctor under name, making it available to Use. Names are
// installed once.
func Install(name string, ctor Constructor) (Factory, error) {
	if ctor == nil {
		return nil, errors.Newf(errors.ErrInvalidInput, "plug %q has no constructor", name)
	}
	if err := installed.Register(name, ctor); err != nil {
		return nil, err
	}
	return func(args ...any) *PlugPipe {
		return New().Use(name, args...)
	}, nil
}

// MustInstall is Install for package initialization. It panics on error.
func MustInstall(name string, ctor Constructor) Factory {
	factory, err := Install(name, ctor)
	if err != nil {
		panic(err)
	}
	return factory
}

// Lookup returns the constructor installed under name.
func Lookup(name string) (Constructor, error) {
	return installed.Get(name)
}

// Installed returns the installed plug names, sorted.
func Installed() []string {
	return installed.List()
}

func construct(name string, args []any) (Plug, error) {
	ctor, err := installed.Get(name)
	if err != nil {
		return nil, err
	}

	plug, err := ctor(args...)
	if err != nil {
		var coded *errors.PlugsError
		if stderrors.As(err, &coded) {
			return nil, err
		}
		return nil, errors.Wrapf(err, errors.ErrPlugInvalid, "cannot create plug %q", name).
			WithDetail("plug", name)
	}
	if plug == nil {
		return nil, errors.Newf(errors.ErrPlugInvalid, "plug %q constructor returned nothing", name).
			WithDetail("plug", name)
	}
	return plug, nil
}
