package sourcemaps

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/plugs/pkg/config"
	"github.com/arthur-debert/plugs/pkg/errors"
	"github.com/arthur-debert/plugs/pkg/files"
	"github.com/arthur-debert/plugs/pkg/parallel"
	"github.com/arthur-debert/plugs/pkg/pipe"
	"github.com/arthur-debert/plugs/pkg/run"
	"github.com/arthur-debert/plugs/pkg/sourcemap"
)

// Name is the name the plug is installed under.
const Name = "sourcemaps"

// Options controls how source maps are emitted. Unset fields take the
// values of the [sourcemaps] and [files] configuration sections.
type Options struct {
	// Mode is inline, external or none.
	Mode string `koanf:"mode"`
	// Combine traces maps back through the provenance chain.
	Combine *bool `koanf:"combine"`
	// SourcesContent keeps embedded source contents.
	SourcesContent *bool `koanf:"sources_content"`
	// Marker is the reference comment key, "sourceMappingURL" by default.
	Marker string `koanf:"marker"`
}

// Resolve fills unset fields from cfg.
func (o Options) Resolve(cfg *config.Config) Options {
	if cfg == nil {
		if d, err := config.Default(); err == nil {
			cfg = d
		} else {
			cfg = &config.Config{}
		}
	}
	if o.Mode == "" {
		o.Mode = cfg.SourceMaps.Mode
	}
	if o.Combine == nil {
		combine := cfg.SourceMaps.Combine
		o.Combine = &combine
	}
	if o.SourcesContent == nil {
		content := cfg.SourceMaps.SourcesContent
		o.SourcesContent = &content
	}
	if o.Marker == "" {
		o.Marker = cfg.Files.SourceMapMarker
	}
	if o.Marker == "" {
		o.Marker = sourcemap.DefaultMarker
	}
	return o
}

func (o Options) validate() error {
	switch o.Mode {
	case "", config.ModeInline, config.ModeExternal, config.ModeNone:
		return nil
	}
	return errors.Newf(errors.ErrPlugInvalid, "unknown source map mode %q", o.Mode).
		WithDetail("plug", Name)
}

func (o Options) mapOptions() files.MapOptions {
	return files.MapOptions{
		Combine:        o.Combine != nil && *o.Combine,
		SourcesContent: o.SourcesContent != nil && *o.SourcesContent,
	}
}

// SourceMaps is set to the factory of the installed plug.
var SourceMaps = pipe.MustInstall(Name, newPlug)

type plug struct {
	opts Options
}

func newPlug(args ...any) (pipe.Plug, error) {
	// a single string is the mode: sourcemaps("external")
	modes, rest := pipe.Strings(args)
	opts, err := pipe.DecodeOptions(Name, Options{}, rest...)
	if err != nil {
		return nil, err
	}
	switch len(modes) {
	case 0:
	case 1:
		opts.Mode = modes[0]
	default:
		return nil, errors.Newf(errors.ErrPlugInvalid, "plug %q takes one mode, got %v", Name, modes).
			WithDetail("plug", Name)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &plug{opts: opts}, nil
}

func (p *plug) Name() string { return Name }

func (p *plug) Process(ctx context.Context, in *files.Files, r *run.Run) (*files.Files, error) {
	return Apply(ctx, in, r, p.opts)
}

type emitted struct {
	file     *files.File
	raw      *sourcemap.Map
	encoded  []byte
	contents string
	// sibling is the external map file the contents referenced.
	sibling *files.File
}

// Apply emits the source map of every member of in that has one and
// returns the result as a fork of in. Members without a map are carried
// over untouched. Maps are computed concurrently; the output keeps the
// order of in.
func Apply(ctx context.Context, in *files.Files, r *run.Run, opts Options) (*files.Files, error) {
	opts = opts.Resolve(r.Config())
	if err := opts.validate(); err != nil {
		return nil, err
	}
	mapOpts := opts.mapOptions()

	results, err := parallel.Map(ctx, in.List(), func(ctx context.Context, _ int, f *files.File) (*emitted, error) {
		own, err := f.SourceMap(ctx)
		if err != nil || own == nil {
			return nil, err
		}
		contents, err := f.Contents(ctx)
		if err != nil {
			return nil, err
		}

		sibling, err := f.SourceMapSibling(ctx)
		if err != nil {
			return nil, err
		}

		e := &emitted{file: f, raw: own.Raw(), contents: contents, sibling: sibling}
		if opts.Mode == config.ModeNone {
			return e, nil
		}

		combined, err := f.CombinedSourceMap(ctx, mapOpts)
		if err != nil {
			return nil, err
		}
		if e.encoded, err = combined.Produce(mapOpts); err != nil {
			return nil, err
		}
		return e, nil
	})
	if err != nil {
		return nil, err
	}

	out := in.Fork()
	count := 0
	for _, e := range results {
		if e == nil {
			continue
		}
		if err := emit(out, e, opts); err != nil {
			return nil, err
		}
		count++
	}

	r.Debug().Str("mode", opts.Mode).Int("maps", count).Msg("Processed source maps")
	return out, nil
}

// emit replaces the file in out. The replacement stands in for the
// original file: it keeps the file's own map and provenance, so combining
// it again gives the same result. The map file the old reference pointed
// at is dropped unless it is the one being emitted.
func emit(out *files.Files, e *emitted, opts Options) error {
	path := e.file.AbsolutePath()
	contents := e.contents

	if e.sibling != nil && (opts.Mode != config.ModeExternal || e.sibling.AbsolutePath() != path+".map") {
		out.Remove(e.sibling.AbsolutePath())
	}

	switch opts.Mode {
	case config.ModeInline:
		contents = sourcemap.AppendReference(contents, opts.Marker, sourcemap.InlineURL(e.encoded))
	case config.ModeExternal:
		mapPath := path + ".map"
		if _, err := out.Add(mapPath, files.WithContents(string(e.encoded)), files.WithoutSourceMap()); err != nil {
			return err
		}
		contents = sourcemap.AppendReference(contents, opts.Marker, filepath.Base(mapPath))
	case config.ModeNone:
		contents = sourcemap.StripReferences(contents, opts.Marker)
		_, err := out.Add(path,
			files.WithOriginal(e.file.Original()),
			files.WithContents(contents),
			files.WithoutSourceMap(),
		)
		return err
	}

	_, err := out.Add(path,
		files.WithOriginal(e.file.Original()),
		files.WithContents(contents),
		files.WithSourceMap(e.raw),
	)
	return err
}
