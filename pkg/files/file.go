package files

import (
	"context"
	stderrors "errors"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/plugs/pkg/errors"
	"github.com/arthur-debert/plugs/pkg/paths"
	"github.com/arthur-debert/plugs/pkg/sourcemap"
)

// File is a virtual file: a path inside a Files container, lazily read
// contents and a lazily resolved source map.
type File struct {
	files    *Files
	path     paths.Resolved
	original *File

	contents  *memo[string]
	sourceMap *memo[*FileSourceMap] // nil when source maps are disabled
}

type sourceMapMode int

const (
	sourceMapDefault sourceMapMode = iota
	sourceMapProbe
	sourceMapDisabled
	sourceMapSupplied
)

type fileConfig struct {
	original *File
	contents *string
	load     func(ctx context.Context) (string, error)
	mapMode  sourceMapMode
	rawMap   *sourcemap.Map
}

// FileOption configures a file created by Files.Add.
type FileOption func(*fileConfig)

// WithOriginal records the file this one was derived from.
func WithOriginal(original *File) FileOption {
	return func(c *fileConfig) { c.original = original }
}

// WithContents sets already known contents. The file never reads its path.
func WithContents(contents string) FileOption {
	return func(c *fileConfig) {
		c.contents = &contents
		c.load = nil
	}
}

// WithContentsFunc makes the file compute its contents with fn instead of
// reading its path. fn runs at most once successfully.
func WithContentsFunc(fn func(ctx context.Context) (string, error)) FileOption {
	return func(c *fileConfig) {
		c.load = fn
		c.contents = nil
	}
}

// WithSourceMap attaches a known source map.
func WithSourceMap(raw *sourcemap.Map) FileOption {
	return func(c *fileConfig) {
		if raw == nil {
			c.mapMode = sourceMapDisabled
			return
		}
		c.mapMode = sourceMapSupplied
		c.rawMap = raw
	}
}

// WithoutSourceMap disables source maps for the file.
func WithoutSourceMap() FileOption {
	return func(c *fileConfig) { c.mapMode = sourceMapDisabled }
}

// WithSourceMapProbe makes the file look for a source map reference in its
// contents even when the container does not probe by default.
func WithSourceMapProbe() FileOption {
	return func(c *fileConfig) { c.mapMode = sourceMapProbe }
}

func newFile(files *Files, resolved paths.Resolved, cfg fileConfig) *File {
	f := &File{files: files, path: resolved, original: cfg.original}

	switch {
	case cfg.contents != nil:
		f.contents = cachedMemo(*cfg.contents)
	case cfg.load != nil:
		f.contents = newMemo(cfg.load)
	default:
		f.contents = newMemo(f.readContents)
	}

	mode := cfg.mapMode
	if mode == sourceMapDefault {
		mode = sourceMapDisabled
		if files.probe {
			mode = sourceMapProbe
		}
	}
	switch mode {
	case sourceMapProbe:
		f.sourceMap = newMemo(f.probeSourceMap)
	case sourceMapSupplied:
		f.sourceMap = cachedMemo(&FileSourceMap{file: f, raw: cfg.rawMap.Clone()})
	}

	return f
}

// AbsolutePath is the file's key in its container.
func (f *File) AbsolutePath() string { return f.path.Absolute }

// RelativePath is the path relative to the container directory.
func (f *File) RelativePath() string { return f.path.Relative }

// SlashPath is RelativePath with forward slashes, the form globs match.
func (f *File) SlashPath() string { return paths.ToSlash(f.path.Relative) }

// Extension returns the file extension including the dot.
func (f *File) Extension() string { return filepath.Ext(f.path.Absolute) }

// Original returns the file this one was derived from, or nil.
func (f *File) Original() *File { return f.original }

// Files returns the container that created the file.
func (f *File) Files() *Files { return f.files }

func (f *File) String() string { return f.SlashPath() }

// Contents returns the file contents, reading them on first use. Once a
// read has succeeded the value is cached and the backing file is never
// consulted again. Callers arriving while a read is in progress wait for
// that read instead of starting another one.
func (f *File) Contents(ctx context.Context) (string, error) {
	return f.contents.get(ctx)
}

// ContentsSync is Contents for callers without a context. It blocks on the
// same read.
func (f *File) ContentsSync() (string, error) {
	return f.contents.get(context.Background())
}

// HasSourceMap reports whether source maps are enabled for the file. The
// map itself may still resolve to nil.
func (f *File) HasSourceMap() bool { return f.sourceMap != nil }

// SourceMap resolves the file's source map, at most once successfully.
// It returns nil without error when source maps are disabled or no map is
// found.
func (f *File) SourceMap(ctx context.Context) (*FileSourceMap, error) {
	if f.sourceMap == nil {
		return nil, nil
	}
	return f.sourceMap.get(ctx)
}

// CombinedSourceMap resolves the file's source map and, when opts.Combine
// is set, combines it with the maps along the provenance chain so it
// points at the earliest known sources.
func (f *File) CombinedSourceMap(ctx context.Context, opts MapOptions) (*FileSourceMap, error) {
	own, err := f.SourceMap(ctx)
	if err != nil || own == nil {
		return own, err
	}
	if !opts.Combine || f.original == nil {
		return own, nil
	}

	ancestor, err := f.original.CombinedSourceMap(ctx, opts)
	if err != nil {
		return nil, err
	}
	return own.Combine(ancestor, opts)
}

func (f *File) readContents(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.files.fs == nil {
		return "", errors.Newf(errors.ErrFileRead, "no filesystem to read %s", f.path.Absolute)
	}

	data, err := f.files.fs.ReadFile(f.path.Absolute)
	if err != nil {
		code := errors.ErrFileRead
		if stderrors.Is(err, fs.ErrNotExist) {
			code = errors.ErrFileNotFound
		}
		return "", errors.Wrapf(err, code, "cannot read %s", f.path.Absolute).
			WithDetail("path", f.path.Absolute)
	}

	f.files.logger.Trace().Str("path", f.path.Absolute).Int("bytes", len(data)).Msg("Read file")
	return string(data), nil
}

func (f *File) probeSourceMap(ctx context.Context) (*FileSourceMap, error) {
	contents, err := f.Contents(ctx)
	if err != nil {
		return nil, err
	}

	ref, ok := sourcemap.FindReference(contents, f.files.marker)
	if !ok {
		return nil, nil
	}

	if ref.IsInline() {
		data, err := ref.Data()
		if err != nil {
			return nil, withPath(err, f)
		}
		raw, err := sourcemap.Parse(data)
		if err != nil {
			return nil, withPath(err, f)
		}
		return &FileSourceMap{file: f, raw: raw}, nil
	}

	sibling := f.siblingMap(ref.URL)
	if sibling == nil {
		f.files.logger.Warn().
			Str("path", f.path.Absolute).
			Str("url", ref.URL).
			Msg("Source map not found")
		return nil, nil
	}

	data, err := sibling.Contents(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := sourcemap.Parse([]byte(data))
	if err != nil {
		return nil, withPath(err, sibling)
	}
	return &FileSourceMap{file: f, raw: raw}, nil
}

// SourceMapSibling returns the member holding the external source map
// that the file's contents reference, or nil when the reference is inline,
// missing or points outside the container.
func (f *File) SourceMapSibling(ctx context.Context) (*File, error) {
	contents, err := f.Contents(ctx)
	if err != nil {
		return nil, err
	}
	ref, ok := sourcemap.FindReference(contents, f.files.marker)
	if !ok || ref.IsInline() {
		return nil, nil
	}
	return f.siblingMap(ref.URL), nil
}

func (f *File) siblingMap(ref string) *File {
	if strings.Contains(ref, "://") {
		return nil
	}
	unescaped, err := url.PathUnescape(ref)
	if err != nil {
		return nil
	}
	target := filepath.Join(filepath.Dir(f.path.Absolute), filepath.FromSlash(unescaped))
	return f.files.Get(target)
}

func withPath(err error, f *File) error {
	if pe, ok := err.(*errors.PlugsError); ok {
		return pe.WithDetail("path", f.path.Absolute)
	}
	return err
}
