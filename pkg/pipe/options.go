package pipe

import (
	"github.com/go-viper/mapstructure/v2"

	"github.com/arthur-debert/plugs/pkg/errors"
)

// Strings splits leading string arguments (or a []string) from the rest.
// Plugs taking globs use it before decoding their options.
func Strings(args []any) ([]string, []any) {
	var out []string
	for i, arg := range args {
		switch v := arg.(type) {
		case string:
			out = append(out, v)
		case []string:
			out = append(out, v...)
		default:
			return out, args[i:]
		}
	}
	return out, nil
}

// DecodeOptions builds the options of plug name from defaults and at most
// one argument: a T, a *T, or a map of option names (koanf tags) to
// values. Unknown option names are rejected.
func DecodeOptions[T any](name string, defaults T, args ...any) (T, error) {
	opts := defaults
	switch len(args) {
	case 0:
		return opts, nil
	case 1:
	default:
		return opts, errors.Newf(errors.ErrPlugInvalid, "plug %q takes at most one options argument, got %d", name, len(args)).
			WithDetail("plug", name)
	}

	switch v := args[0].(type) {
	case nil:
		return opts, nil
	case T:
		return v, nil
	case *T:
		if v == nil {
			return opts, nil
		}
		return *v, nil
	case map[string]any:
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "koanf",
			Result:           &opts,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		})
		if err != nil {
			return defaults, errors.Wrap(err, errors.ErrInternal, "cannot build options decoder")
		}
		if err := dec.Decode(v); err != nil {
			return defaults, errors.Wrapf(err, errors.ErrPlugInvalid, "invalid options for plug %q", name).
				WithDetail("plug", name)
		}
		return opts, nil
	}
	return opts, errors.Newf(errors.ErrPlugInvalid, "plug %q cannot take options of type %T", name, args[0]).
		WithDetail("plug", name)
}
