package write

import (
	"context"
	"io/fs"
	"path/filepath"

	"golang.org/x/text/encoding"

	"github.com/arthur-debert/plugs/pkg/config"
	"github.com/arthur-debert/plugs/pkg/errors"
	"github.com/arthur-debert/plugs/pkg/files"
	"github.com/arthur-debert/plugs/pkg/parallel"
	"github.com/arthur-debert/plugs/pkg/paths"
	"github.com/arthur-debert/plugs/pkg/pipe"
	"github.com/arthur-debert/plugs/pkg/plugs/sourcemaps"
	"github.com/arthur-debert/plugs/pkg/run"
	"github.com/arthur-debert/plugs/pkg/sourcemap"
)

// Name is the name the plug is installed under.
const Name = "write"

// Options controls where and how files are written. Unset fields take
// the values of the [write] configuration section.
type Options struct {
	// Directory is the output directory, relative to the input directory.
	// It must be the input directory or one of its descendants.
	Directory string `koanf:"directory"`
	// SourceMaps runs the sourcemaps stage before writing.
	SourceMaps bool `koanf:"sourcemaps"`
	// SourceMapOptions configures that stage.
	SourceMapOptions sourcemaps.Options `koanf:"sourcemap_options"`
	// Encoding is utf-8, latin1, utf-16le or utf-16be.
	Encoding string `koanf:"encoding"`
	// FileMode and DirMode are octal permission strings.
	FileMode string `koanf:"file_mode"`
	DirMode  string `koanf:"dir_mode"`
}

// Write is set to the factory of the installed plug.
var Write = pipe.MustInstall(Name, newPlug)

type plug struct {
	opts Options
}

func newPlug(args ...any) (pipe.Plug, error) {
	// write("dist") is write(directory="dist")
	dirs, rest := pipe.Strings(args)
	opts, err := pipe.DecodeOptions(Name, Options{}, rest...)
	if err != nil {
		return nil, err
	}
	switch len(dirs) {
	case 0:
	case 1:
		opts.Directory = dirs[0]
	default:
		return nil, errors.Newf(errors.ErrPlugInvalid, "plug %q takes one directory, got %v", Name, dirs).
			WithDetail("plug", Name)
	}
	if opts.Encoding != "" {
		if _, err := encoderFor(opts.Encoding); err != nil {
			return nil, err
		}
	}
	return &plug{opts: opts}, nil
}

func (p *plug) Name() string { return Name }

func (p *plug) Process(ctx context.Context, in *files.Files, r *run.Run) (*files.Files, error) {
	return Files(ctx, in, r, p.opts)
}

type settings struct {
	enc      string
	fileMode fs.FileMode
	dirMode  fs.FileMode
}

func resolve(opts Options, cfg *config.Config) (settings, error) {
	var s settings
	w := config.Write{Encoding: "utf-8", FileMode: "0644", DirMode: "0755"}
	if cfg != nil {
		w = cfg.Write
	}
	if opts.Encoding != "" {
		w.Encoding = opts.Encoding
	}
	if opts.FileMode != "" {
		w.FileMode = opts.FileMode
	}
	if opts.DirMode != "" {
		w.DirMode = opts.DirMode
	}

	var err error
	if s.fileMode, s.dirMode, err = w.Modes(); err != nil {
		return s, err
	}
	s.enc = w.Encoding
	return s, nil
}

// Files writes every member of in and returns the written files. The
// output directory is checked before anything is written. When it differs
// from the input directory each file is re-homed under it, keeping the
// input file as its original; the input files are untouched. Source maps
// are emitted for the location files are written to.
func Files(ctx context.Context, in *files.Files, r *run.Run, opts Options) (*files.Files, error) {
	target := in.Directory()
	if opts.Directory != "" {
		resolved, err := paths.Resolve(opts.Directory, in.Directory())
		if err != nil {
			return nil, err
		}
		target = resolved.Absolute
	}

	s, err := resolve(opts, r.Config())
	if err != nil {
		return nil, err
	}
	enc, err := encoderFor(s.enc)
	if err != nil {
		return nil, err
	}
	if in.FS() == nil {
		return nil, errors.New(errors.ErrFileWrite, "no filesystem to write to")
	}

	out := in
	switch {
	case target != in.Directory():
		if out, err = rehome(ctx, in, r, target, opts); err != nil {
			return nil, err
		}
	case opts.SourceMaps:
		if out, err = sourcemaps.Apply(ctx, in, r, opts.SourceMapOptions); err != nil {
			return nil, err
		}
	}

	list := out.List()
	err = parallel.Each(ctx, list, func(ctx context.Context, _ int, f *files.File) error {
		return writeFile(ctx, out, f, enc, s)
	})
	if err != nil {
		return nil, err
	}

	r.Log().Int("files", len(list)).Str("directory", target).Msg("Wrote files")
	return out, nil
}

// rehome moves every member of in under target. With source maps on, each
// file's map is resolved where the file was and relocated to where it is
// written, so its sources still point at the same files.
func rehome(ctx context.Context, in *files.Files, r *run.Run, target string, opts Options) (*files.Files, error) {
	out, err := in.EmptyIn(target)
	if err != nil {
		return nil, err
	}

	list := in.List()
	relocated := make([]*sourcemap.Map, len(list))
	smOpts := opts.SourceMapOptions.Resolve(r.Config())
	if opts.SourceMaps {
		mapOpts := files.MapOptions{Combine: *smOpts.Combine, SourcesContent: *smOpts.SourcesContent}
		relocated, err = parallel.Map(ctx, list, func(ctx context.Context, _ int, f *files.File) (*sourcemap.Map, error) {
			m, err := f.CombinedSourceMap(ctx, mapOpts)
			if err != nil || m == nil {
				return nil, err
			}
			dest, err := paths.JoinPaths(target, f.RelativePath())
			if err != nil {
				return nil, err
			}
			return m.Relocate(dest), nil
		})
		if err != nil {
			return nil, err
		}
	}

	for i, f := range list {
		mapOpt := files.WithoutSourceMap()
		if relocated[i] != nil {
			mapOpt = files.WithSourceMap(relocated[i])
		}
		_, err := out.Add(f.RelativePath(),
			files.WithOriginal(f),
			files.WithContentsFunc(f.Contents),
			mapOpt,
		)
		if err != nil {
			return nil, err
		}
	}
	if !opts.SourceMaps {
		return out, nil
	}

	// maps were combined before relocating
	combine := false
	smOpts.Combine = &combine
	return sourcemaps.Apply(ctx, out, r, smOpts)
}

func writeFile(ctx context.Context, out *files.Files, f *files.File, enc encoding.Encoding, s settings) error {
	contents, err := f.Contents(ctx)
	if err != nil {
		return err
	}
	data, err := encode(enc, contents)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileEncode, "cannot encode %s as %s", f.SlashPath(), s.enc).
			WithDetail("path", f.AbsolutePath())
	}

	fsys := out.FS()
	dir := filepath.Dir(f.AbsolutePath())
	if err := fsys.MkdirAll(dir, s.dirMode); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir).
			WithDetail("path", dir)
	}
	if err := fsys.WriteFile(f.AbsolutePath(), data, s.fileMode); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", f.AbsolutePath()).
			WithDetail("path", f.AbsolutePath())
	}
	return nil
}
