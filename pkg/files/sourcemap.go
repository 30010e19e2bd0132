package files

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/plugs/pkg/sourcemap"
)

// MapOptions controls source map combination and serialization.
type MapOptions struct {
	// Combine traces maps through the provenance chain.
	Combine bool `koanf:"combine" mapstructure:"combine"`
	// SourcesContent keeps embedded source contents when serializing.
	SourcesContent bool `koanf:"sources_content" mapstructure:"sources_content"`
}

// FileSourceMap is a source map owned by a file. Relative source paths are
// resolved against the owning file's directory.
type FileSourceMap struct {
	file *File
	raw  *sourcemap.Map
}

// NewFileSourceMap wraps raw as the map of file.
func NewFileSourceMap(file *File, raw *sourcemap.Map) *FileSourceMap {
	return &FileSourceMap{file: file, raw: raw.Clone()}
}

// File returns the owning file.
func (m *FileSourceMap) File() *File { return m.file }

// Raw returns a copy of the underlying map.
func (m *FileSourceMap) Raw() *sourcemap.Map { return m.raw.Clone() }

// Sources returns the map's sources as absolute paths. Sources that are
// URLs are returned unchanged.
func (m *FileSourceMap) Sources() []string {
	out := make([]string, len(m.raw.Sources))
	for i, s := range m.raw.Sources {
		out[i] = m.absolute(withRoot(m.raw.SourceRoot, s))
	}
	return out
}

func (m *FileSourceMap) absolute(source string) string {
	if isURL(source) || filepath.IsAbs(filepath.FromSlash(source)) {
		return source
	}
	return filepath.Join(filepath.Dir(m.file.AbsolutePath()), filepath.FromSlash(source))
}

// relative expresses an absolute source path relative to the owning file.
func (m *FileSourceMap) relative(abs string) string {
	if isURL(abs) {
		return abs
	}
	rel, err := filepath.Rel(filepath.Dir(m.file.AbsolutePath()), abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// Relocate returns a copy of the raw map with its sources rewritten
// relative to a file at absPath, so the map still points at the same
// sources once the file is written there. A relative source root is folded
// into the sources. Absolute and URL sources, and maps with an absolute or
// URL source root, are kept as is.
func (m *FileSourceMap) Relocate(absPath string) *sourcemap.Map {
	raw := m.raw.Clone()
	root := raw.SourceRoot
	if isURL(root) || filepath.IsAbs(filepath.FromSlash(root)) {
		return raw
	}

	dir := filepath.Dir(absPath)
	for i, s := range raw.Sources {
		src := withRoot(root, s)
		if isURL(src) || filepath.IsAbs(filepath.FromSlash(src)) {
			raw.Sources[i] = src
			continue
		}
		rel, err := filepath.Rel(dir, m.absolute(src))
		if err != nil {
			raw.Sources[i] = src
			continue
		}
		raw.Sources[i] = filepath.ToSlash(rel)
	}
	raw.SourceRoot = ""
	return raw
}

// Combine returns a map tracing m through ancestor, the map of the file m's
// file was derived from. Without opts.Combine, or without an ancestor, m
// is returned unchanged.
func (m *FileSourceMap) Combine(ancestor *FileSourceMap, opts MapOptions) (*FileSourceMap, error) {
	if !opts.Combine || ancestor == nil {
		return m, nil
	}

	target := ""
	ancestorPath := ancestor.file.AbsolutePath()
	for _, s := range m.raw.Sources {
		if m.absolute(withRoot(m.raw.SourceRoot, s)) == ancestorPath {
			target = s
			break
		}
	}

	combined, err := sourcemap.Combine(m.raw, ancestor.raw, sourcemap.CombineOptions{
		Target: target,
		AncestorSource: func(s string) string {
			return m.relative(ancestor.absolute(s))
		},
	})
	if err != nil {
		return nil, withPath(err, m.file)
	}
	return &FileSourceMap{file: m.file, raw: combined}, nil
}

// Produce serializes the map canonically. The "file" field is set to the
// owning file's base name.
func (m *FileSourceMap) Produce(opts MapOptions) ([]byte, error) {
	raw := m.raw.Clone()
	raw.File = filepath.Base(m.file.AbsolutePath())
	if !opts.SourcesContent {
		raw.SourcesContent = nil
	}
	return sourcemap.Encode(raw)
}

func withRoot(root, source string) string {
	if root == "" || isURL(source) {
		return source
	}
	return path.Join(root, source)
}

func isURL(s string) bool {
	return strings.Contains(s, "://") || strings.HasPrefix(s, "data:")
}
