package filter

import (
	"context"
	"iter"

	"github.com/arthur-debert/plugs/pkg/files"
	"github.com/arthur-debert/plugs/pkg/glob"
	"github.com/arthur-debert/plugs/pkg/pipe"
	"github.com/arthur-debert/plugs/pkg/run"
)

// Name is the name the plug is installed under.
const Name = "filter"

// DefaultScriptExtension is used by ScriptsOnly when no extension is set.
const DefaultScriptExtension = ".js"

// Options controls which path of a file is matched.
type Options struct {
	// MatchOriginalPaths matches the relative path of the file each member
	// was derived from, one step back. Members without an original are
	// never selected.
	MatchOriginalPaths bool `koanf:"match_original_paths"`
	// ScriptsOnly drops members whose own extension is not ScriptExtension.
	ScriptsOnly bool `koanf:"scripts_only"`
	// ScriptExtension defaults to files.script_extension from the run
	// configuration.
	ScriptExtension string `koanf:"script_extension"`
	// CaseSensitive overrides files.case_sensitive when set.
	CaseSensitive *bool `koanf:"case_sensitive"`
	// Dot lets wildcards match dot files.
	Dot bool `koanf:"dot"`
}

// DefaultOptions matches original paths.
func DefaultOptions() Options {
	return Options{MatchOriginalPaths: true}
}

// Filter is set to the factory of the installed plug.
var Filter = pipe.MustInstall(Name, newPlug)

// Select lazily yields the members of in whose relevant path matches
// globs, in container order. It never changes in.
func Select(in *files.Files, globs []string, opts Options) (iter.Seq[*files.File], error) {
	globOpts := glob.DefaultOptions()
	if opts.CaseSensitive != nil {
		globOpts.CaseSensitive = *opts.CaseSensitive
	}
	globOpts.Dot = opts.Dot

	m, err := glob.Compile(globs, globOpts)
	if err != nil {
		return nil, err
	}

	ext := opts.ScriptExtension
	if ext == "" {
		ext = DefaultScriptExtension
	}

	return in.Filter(func(f *files.File) bool {
		if opts.ScriptsOnly && f.Extension() != ext {
			return false
		}
		candidate := f
		if opts.MatchOriginalPaths {
			if candidate = f.Original(); candidate == nil {
				return false
			}
		}
		return m.Match(candidate.SlashPath())
	}), nil
}

type plug struct {
	globs []string
	opts  Options
}

func newPlug(args ...any) (pipe.Plug, error) {
	globs, rest := pipe.Strings(args)
	opts, err := pipe.DecodeOptions(Name, DefaultOptions(), rest...)
	if err != nil {
		return nil, err
	}
	// validate the globs now rather than in the middle of a run
	if _, err := glob.Compile(globs, glob.DefaultOptions()); err != nil {
		return nil, err
	}
	return &plug{globs: globs, opts: opts}, nil
}

func (p *plug) Name() string { return Name }

// Process returns a container with the selected members. The members are
// shared with in, not copied.
func (p *plug) Process(ctx context.Context, in *files.Files, r *run.Run) (*files.Files, error) {
	opts := p.opts
	if cfg := r.Config(); cfg != nil {
		if opts.ScriptExtension == "" {
			opts.ScriptExtension = cfg.Files.ScriptExtension
		}
		if opts.CaseSensitive == nil {
			caseSensitive := cfg.Files.CaseSensitive
			opts.CaseSensitive = &caseSensitive
		}
	}

	selected, err := Select(in, p.globs, opts)
	if err != nil {
		return nil, err
	}

	out := in.ForkEmpty()
	for f := range selected {
		if err := out.Put(f); err != nil {
			return nil, err
		}
	}

	r.Debug().Int("in", in.Len()).Int("out", out.Len()).Strs("globs", p.globs).Msg("Filtered files")
	return out, nil
}
