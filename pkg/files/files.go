package files

import (
	"iter"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/plugs/pkg/errors"
	"github.com/arthur-debert/plugs/pkg/paths"
	"github.com/arthur-debert/plugs/pkg/sourcemap"
	"github.com/arthur-debert/plugs/pkg/types"
)

// Files is an insertion-ordered set of files keyed by absolute path, all
// located under one directory. Containers are not mutated downstream of
// the stage that produced them: stages derive new state with Fork.
type Files struct {
	directory string
	fs        types.FS
	logger    zerolog.Logger
	marker    string
	probe     bool

	mu      sync.RWMutex
	members *memberSet
}

// memberSet is shared between forks until one of them writes.
type memberSet struct {
	refs   atomic.Int32
	order  []string
	byPath map[string]*File
}

func newMemberSet() *memberSet {
	s := &memberSet{byPath: map[string]*File{}}
	s.refs.Store(1)
	return s
}

// Option configures a Files container.
type Option func(*Files)

// WithFS sets the filesystem files are read from.
func WithFS(fsys types.FS) Option {
	return func(f *Files) { f.fs = fsys }
}

// WithLogger sets the logger used for warnings such as missing source maps.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Files) { f.logger = logger }
}

// WithSourceMapMarker sets the comment key used to find source maps.
func WithSourceMapMarker(marker string) Option {
	return func(f *Files) { f.marker = marker }
}

// WithSourceMapProbing sets whether new files look for a source map
// reference in their contents by default.
func WithSourceMapProbing(probe bool) Option {
	return func(f *Files) { f.probe = probe }
}

// New creates an empty container for directory, which must be absolute.
func New(directory string, opts ...Option) (*Files, error) {
	if err := paths.ValidatePath(directory); err != nil {
		return nil, err
	}
	if !filepath.IsAbs(directory) {
		return nil, errors.Newf(errors.ErrPathInvalid, "directory %q is not absolute", directory)
	}

	f := &Files{
		directory: paths.SanitizePath(directory),
		logger:    zerolog.Nop(),
		marker:    sourcemap.DefaultMarker,
		probe:     true,
		members:   newMemberSet(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Directory returns the base directory of every member.
func (f *Files) Directory() string { return f.directory }

// FS returns the filesystem members are read from.
func (f *Files) FS() types.FS { return f.fs }

// Logger returns the container logger.
func (f *Files) Logger() zerolog.Logger { return f.logger }

// Add creates a file for path, resolved against the directory, and stores
// it. A path outside the directory is rejected. Adding a path that is
// already present replaces that member in place.
func (f *Files) Add(path string, opts ...FileOption) (*File, error) {
	resolved, err := paths.Resolve(path, f.directory)
	if err != nil {
		return nil, err
	}

	var cfg fileConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	file := newFile(f, resolved, cfg)
	f.store(file)
	return file, nil
}

// Put stores an existing file without copying it. The file keeps its own
// container for source map lookups; its path must lie under this
// container's directory.
func (f *Files) Put(file *File) error {
	if !paths.IsChild(f.directory, file.AbsolutePath()) {
		return errors.Newf(errors.ErrPathEscape, "%s is outside of %s", file.AbsolutePath(), f.directory).
			WithDetail("path", file.AbsolutePath())
	}
	f.store(file)
	return nil
}

func (f *Files) store(file *File) {
	f.mu.Lock()
	defer f.mu.Unlock()

	set := f.writable()
	key := file.AbsolutePath()
	if _, exists := set.byPath[key]; !exists {
		set.order = append(set.order, key)
	}
	set.byPath[key] = file
}

// writable returns a member set this container may mutate, copying the
// shared one first. Callers hold f.mu.
func (f *Files) writable() *memberSet {
	if f.members.refs.Load() > 1 {
		cp := &memberSet{
			order:  slices.Clone(f.members.order),
			byPath: maps.Clone(f.members.byPath),
		}
		cp.refs.Store(1)
		f.members.refs.Add(-1)
		f.members = cp
	}
	return f.members
}

// Remove drops the member at path, resolved against the directory, and
// reports whether it was present. Forks sharing the member are unaffected.
func (f *Files) Remove(path string) bool {
	resolved, err := paths.Resolve(path, f.directory)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.members.byPath[resolved.Absolute]; !ok {
		return false
	}
	set := f.writable()
	delete(set.byPath, resolved.Absolute)
	set.order = slices.DeleteFunc(set.order, func(key string) bool { return key == resolved.Absolute })
	return true
}

// Get returns the member at path, resolved against the directory, or nil.
func (f *Files) Get(path string) *File {
	resolved, err := paths.Resolve(path, f.directory)
	if err != nil {
		return nil
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.members.byPath[resolved.Absolute]
}

// Len returns the number of members.
func (f *Files) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.members.order)
}

// List returns the members in insertion order.
func (f *Files) List() []*File {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]*File, len(f.members.order))
	for i, key := range f.members.order {
		out[i] = f.members.byPath[key]
	}
	return out
}

// All iterates over the members in insertion order, as of the start of
// the iteration.
func (f *Files) All() iter.Seq[*File] {
	return func(yield func(*File) bool) {
		for _, file := range f.List() {
			if !yield(file) {
				return
			}
		}
	}
}

// Filter lazily yields the members satisfying pred, in insertion order.
func (f *Files) Filter(pred func(*File) bool) iter.Seq[*File] {
	return func(yield func(*File) bool) {
		for file := range f.All() {
			if pred(file) && !yield(file) {
				return
			}
		}
	}
}

// Fork returns a container with the same directory that starts with this
// container's members. Additions to either side never show up in the
// other.
func (f *Files) Fork() *Files {
	f.mu.RLock()
	defer f.mu.RUnlock()

	f.members.refs.Add(1)
	fork := f.empty(f.directory)
	fork.members = f.members
	return fork
}

// ForkEmpty returns an empty container with the same directory and
// settings.
func (f *Files) ForkEmpty() *Files {
	return f.empty(f.directory)
}

// EmptyIn returns an empty container with the same settings rooted at
// directory.
func (f *Files) EmptyIn(directory string) (*Files, error) {
	return New(directory,
		WithFS(f.fs),
		WithLogger(f.logger),
		WithSourceMapMarker(f.marker),
		WithSourceMapProbing(f.probe),
	)
}

func (f *Files) empty(directory string) *Files {
	return &Files{
		directory: directory,
		fs:        f.fs,
		logger:    f.logger,
		marker:    f.marker,
		probe:     f.probe,
		members:   newMemberSet(),
	}
}
