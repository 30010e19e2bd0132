package read

import (
	"context"
	"strings"

	"github.com/arthur-debert/plugs/pkg/errors"
	"github.com/arthur-debert/plugs/pkg/files"
	"github.com/arthur-debert/plugs/pkg/glob"
	"github.com/arthur-debert/plugs/pkg/paths"
	"github.com/arthur-debert/plugs/pkg/pipe"
	"github.com/arthur-debert/plugs/pkg/run"
)

// Name identifies the origin in logs and stage listings.
const Name = "read"

// Options controls which files are read.
type Options struct {
	// AllowEmpty accepts a read that matches nothing.
	AllowEmpty bool `koanf:"allow_empty"`
	// Dot lets wildcards match dot files.
	Dot bool `koanf:"dot"`
	// CaseSensitive overrides files.case_sensitive when set.
	CaseSensitive *bool `koanf:"case_sensitive"`
}

// Reader lists files under a directory of the project and produces them
// as the first Files of a task. Contents are read lazily.
type Reader struct {
	dir   string
	globs []string
	opts  Options
}

// Origin returns a reader for the files under dir, relative to the project
// root, matching globs. No globs matches every file.
func Origin(dir string, globs []string, opts Options) (*Reader, error) {
	if dir == "" {
		dir = "."
	}
	if err := paths.ValidatePath(dir); err != nil {
		return nil, err
	}
	if _, err := glob.Compile(globs, glob.DefaultOptions()); err != nil {
		return nil, err
	}
	return &Reader{dir: dir, globs: globs, opts: opts}, nil
}

// Pipe starts a task pipe reading globs under dir.
func Pipe(dir string, globs ...string) (*pipe.TaskPipe, error) {
	reader, err := Origin(dir, globs, Options{})
	if err != nil {
		return nil, err
	}
	return pipe.From(reader), nil
}

// Name implements stage naming.
func (o *Reader) Name() string { return Name }

// Directory returns the directory as given, relative to the project root.
func (o *Reader) Directory() string { return o.dir }

// Globs returns the globs.
func (o *Reader) Globs() []string { return o.globs }

// Read walks the directory and returns the matching files, in lexical
// order. The directory must not escape the project root.
func (o *Reader) Read(ctx context.Context, r *run.Run) (*files.Files, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := paths.Resolve(o.dir, r.Root())
	if err != nil {
		return nil, err
	}

	globOpts := glob.DefaultOptions()
	globOpts.CaseSensitive = r.Config().Files.CaseSensitive
	if o.opts.CaseSensitive != nil {
		globOpts.CaseSensitive = *o.opts.CaseSensitive
	}
	globOpts.Dot = o.opts.Dot

	m, err := glob.Compile(o.globs, globOpts)
	if err != nil {
		return nil, err
	}
	found, err := glob.Walk(r.FS(), dir.Absolute, m)
	if err != nil {
		return nil, err
	}

	out, err := r.Files(dir.Absolute)
	if err != nil {
		return nil, err
	}
	for _, rel := range found {
		if _, err := out.Add(rel); err != nil {
			return nil, err
		}
	}

	if out.Len() == 0 && !o.opts.AllowEmpty {
		return nil, errors.BuildFailure(
			"No files found in "+dir.Relative+" matching "+strings.Join(o.globs, ", "),
			map[string]interface{}{"directory": dir.Absolute, "globs": o.globs},
		)
	}

	r.Debug().Str("directory", dir.Absolute).Int("files", out.Len()).Msg("Read files")
	return out, nil
}
