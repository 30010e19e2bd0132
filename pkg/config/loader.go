package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/plugs/pkg/errors"
)

// EnvPrefix prefixes environment overrides: PLUGS_WRITE_ENCODING sets
// write.encoding.
const EnvPrefix = "PLUGS_"

// ProjectFiles are the project configuration file names, first match wins.
var ProjectFiles = []string{"plugs.toml", ".plugs.toml", "plugs.yaml", "plugs.yml"}

// LoadOptions selects the configuration layers.
type LoadOptions struct {
	// Dir is searched for ProjectFiles. Empty skips discovery.
	Dir string
	// File is an explicit configuration file, used instead of discovery.
	File string
	// Overrides are dotted keys applied last, typically from flags.
	Overrides map[string]interface{}
	// SkipEnv ignores PLUGS_* environment variables.
	SkipEnv bool
}

// Loaded is a configuration along with the project file it came from.
type Loaded struct {
	*Config
	// File is the project configuration file used, "" when none.
	File string
}

// Default returns the embedded defaults.
func Default() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}
	return unmarshal(k)
}

// Load merges, in increasing priority: embedded defaults, the project file,
// PLUGS_* environment variables and explicit overrides. The result is
// validated.
func Load(opts LoadOptions) (*Loaded, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Load project config if it exists
	path, err := projectFile(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
				WithDetail("path", path)
		}
	}

	// 3. Load env vars
	if !opts.SkipEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 4. Apply overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		if path != "" {
			if pe, ok := err.(*errors.PlugsError); ok {
				pe.WithDetail("path", path)
			}
		}
		return nil, err
	}
	return &Loaded{Config: cfg, File: path}, nil
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode config")
	}
	return &cfg, nil
}

func projectFile(opts LoadOptions) (string, error) {
	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "config file %s", opts.File).
				WithDetail("path", opts.File)
		}
		return opts.File, nil
	}
	if opts.Dir == "" {
		return "", nil
	}
	for _, name := range ProjectFiles {
		path := filepath.Join(opts.Dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

// envKey maps PLUGS_SECTION_SOME_KEY to section.some_key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}
