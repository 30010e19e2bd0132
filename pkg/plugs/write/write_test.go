package write_test

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/plugs/pkg/errors"
	"github.com/arthur-debert/plugs/pkg/files"
	"github.com/arthur-debert/plugs/pkg/filesystem"
	"github.com/arthur-debert/plugs/pkg/pipe"
	"github.com/arthur-debert/plugs/pkg/plugs/sourcemaps"
	"github.com/arthur-debert/plugs/pkg/plugs/write"
	"github.com/arthur-debert/plugs/pkg/run"
	"github.com/arthur-debert/plugs/pkg/sourcemap"
	"github.com/arthur-debert/plugs/pkg/types"
)

// recordingFS records mutations and fails writes to the listed paths.
type recordingFS struct {
	types.FS
	mu       sync.Mutex
	mutated  []string
	failures map[string]error
}

func (r *recordingFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	r.mu.Lock()
	r.mutated = append(r.mutated, "write "+name)
	err := r.failures[name]
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.FS.WriteFile(name, data, perm)
}

func (r *recordingFS) MkdirAll(path string, perm fs.FileMode) error {
	r.mu.Lock()
	r.mutated = append(r.mutated, "mkdir "+path)
	r.mu.Unlock()
	return r.FS.MkdirAll(path, perm)
}

func (r *recordingFS) Remove(name string) error {
	r.mu.Lock()
	r.mutated = append(r.mutated, "remove "+name)
	r.mu.Unlock()
	return r.FS.Remove(name)
}

func setup(t *testing.T, names ...string) (*files.Files, *run.Run, *recordingFS) {
	t.Helper()
	rfs := &recordingFS{FS: filesystem.NewMemory(), failures: map[string]error{}}
	in, err := files.New("/project/src", files.WithFS(rfs))
	require.NoError(t, err)
	for _, name := range names {
		_, err := in.Add(name, files.WithContents("contents of "+name))
		require.NoError(t, err)
	}
	return in, run.New(nil, zerolog.Nop(), rfs, "/project"), rfs
}

func read(t *testing.T, fsys types.FS, path string) string {
	t.Helper()
	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestFiles_InPlace(t *testing.T) {
	in, r, rfs := setup(t, "a.js", "lib/b.js")

	out, err := write.Files(context.Background(), in, r, write.Options{})
	require.NoError(t, err)
	assert.Same(t, in, out)

	assert.Equal(t, "contents of a.js", read(t, rfs, "/project/src/a.js"))
	assert.Equal(t, "contents of lib/b.js", read(t, rfs, "/project/src/lib/b.js"))
}

func TestFiles_Rehome(t *testing.T) {
	in, r, rfs := setup(t, "a.js", "lib/b.js")

	out, err := write.Files(context.Background(), in, r, write.Options{Directory: "dist"})
	require.NoError(t, err)

	assert.Equal(t, "/project/src/dist", out.Directory())
	assert.Equal(t, "contents of lib/b.js", read(t, rfs, "/project/src/dist/lib/b.js"))

	rehomed := out.Get("lib/b.js")
	require.NotNil(t, rehomed)
	assert.Same(t, in.Get("lib/b.js"), rehomed.Original())
	assert.False(t, rehomed.HasSourceMap())

	// originals are untouched
	assert.Equal(t, 2, in.Len())
	assert.Equal(t, "/project/src/a.js", in.Get("a.js").AbsolutePath())
}

func TestFiles_Containment(t *testing.T) {
	for _, dir := range []string{"..", "../dist", "/elsewhere", "dist/../../out"} {
		t.Run(dir, func(t *testing.T) {
			in, r, rfs := setup(t, "a.js")

			_, err := write.Files(context.Background(), in, r, write.Options{Directory: dir})
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrPathEscape))
			assert.Equal(t, errors.KindValidation, errors.KindOf(err))
			assert.Empty(t, rfs.mutated)
		})
	}
}

func TestFiles_Encodings(t *testing.T) {
	tests := []struct {
		encoding string
		want     []byte
	}{
		{"utf-8", []byte("caf\xc3\xa9")},
		{"latin1", []byte{'c', 'a', 'f', 0xe9}},
		{"utf-16le", []byte{'c', 0, 'a', 0, 'f', 0, 0xe9, 0}},
		{"utf-16be", []byte{0, 'c', 0, 'a', 0, 'f', 0, 0xe9}},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			in, r, rfs := setup(t)
			_, err := in.Add("a.txt", files.WithContents("café"))
			require.NoError(t, err)

			_, err = write.Files(context.Background(), in, r, write.Options{Encoding: tt.encoding})
			require.NoError(t, err)

			data, err := rfs.ReadFile("/project/src/a.txt")
			require.NoError(t, err)
			assert.Equal(t, tt.want, data)
		})
	}
}

func TestFiles_LowestIndexFailure(t *testing.T) {
	in, r, rfs := setup(t, "a.js", "b.js", "c.js")
	rfs.failures["/project/src/c.js"] = stderrors.New("disk full")
	rfs.failures["/project/src/a.js"] = stderrors.New("read only")

	_, err := write.Files(context.Background(), in, r, write.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileWrite))
	assert.Equal(t, "/project/src/a.js", errors.GetErrorDetails(err)["path"])

	// the other writes still happened
	assert.Equal(t, "contents of b.js", read(t, rfs, "/project/src/b.js"))
}

func TestFiles_SourceMaps(t *testing.T) {
	in, r, rfs := setup(t)
	_, err := in.Add("a.js",
		files.WithContents("let a"),
		files.WithSourceMap(&sourcemap.Map{Version: 3, Sources: []string{"a.ts"}, Mappings: "AAAA"}),
	)
	require.NoError(t, err)

	_, err = write.Files(context.Background(), in, r, write.Options{SourceMaps: true})
	require.NoError(t, err)

	written := read(t, rfs, "/project/src/a.js")
	assert.True(t, strings.HasPrefix(written, "let a\n//# sourceMappingURL=data:application/json;base64,"))

	c, err := in.Get("a.js").ContentsSync()
	require.NoError(t, err)
	assert.Equal(t, "let a", c)
}

func TestFiles_SourceMapsRehomed(t *testing.T) {
	tests := []struct {
		name    string
		dir     string
		path    string
		sources string
	}{
		{"one level down", "dist", "/project/src/dist/a.js", `["../a.ts"]`},
		{"two levels down", "out/js", "/project/src/out/js/a.js", `["../../a.ts"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, r, rfs := setup(t)
			_, err := in.Add("a.js",
				files.WithContents("let a"),
				files.WithSourceMap(&sourcemap.Map{Version: 3, Sources: []string{"a.ts"}, Mappings: "AAAA"}),
			)
			require.NoError(t, err)

			out, err := write.Files(context.Background(), in, r, write.Options{Directory: tt.dir, SourceMaps: true})
			require.NoError(t, err)

			written := read(t, rfs, tt.path)
			prefix := "let a\n//# sourceMappingURL=data:application/json;base64,"
			require.True(t, strings.HasPrefix(written, prefix), written)
			data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(written, prefix))
			require.NoError(t, err)
			assert.Equal(t, `{"version":3,"file":"a.js","sources":`+tt.sources+`,"names":[],"mappings":"AAAA"}`, string(data))

			// the written map still resolves to the original source
			m, err := out.Get("a.js").SourceMap(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []string{"/project/src/a.ts"}, m.Sources())
			assert.Same(t, in.Get("a.js"), out.Get("a.js").Original())
		})
	}
}

func TestFiles_SourceMapsRehomedExternal(t *testing.T) {
	in, r, rfs := setup(t)
	_, err := in.Add("lib/a.js",
		files.WithContents("let a"),
		files.WithSourceMap(&sourcemap.Map{Version: 3, SourceRoot: "ts", Sources: []string{"a.ts"}, Mappings: "AAAA"}),
	)
	require.NoError(t, err)

	_, err = write.Files(context.Background(), in, r, write.Options{
		Directory:        "dist",
		SourceMaps:       true,
		SourceMapOptions: sourcemaps.Options{Mode: "external"},
	})
	require.NoError(t, err)

	assert.Equal(t, "let a\n//# sourceMappingURL=a.js.map", read(t, rfs, "/project/src/dist/lib/a.js"))
	assert.Equal(t, `{"version":3,"file":"a.js","sources":["../../lib/ts/a.ts"],"names":[],"mappings":"AAAA"}`,
		read(t, rfs, "/project/src/dist/lib/a.js.map"))
}

func TestFiles_Modes(t *testing.T) {
	root := t.TempDir()
	osfs := filesystem.NewOS()
	in, err := files.New(root, files.WithFS(osfs))
	require.NoError(t, err)
	_, err = in.Add("out/a.txt", files.WithContents("a"))
	require.NoError(t, err)

	r := run.New(nil, zerolog.Nop(), osfs, root)
	_, err = write.Files(context.Background(), in, r, write.Options{FileMode: "0600", DirMode: "0700"})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(root, "out", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	info, err = os.Stat(filepath.Join(root, "out"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestPlug(t *testing.T) {
	in, r, rfs := setup(t, "a.js")

	t.Run("directory argument", func(t *testing.T) {
		_, err := write.Write("build").Process(context.Background(), in, r)
		require.NoError(t, err)
		assert.Equal(t, "contents of a.js", read(t, rfs, "/project/src/build/a.js"))
	})

	t.Run("options map", func(t *testing.T) {
		p := pipe.New().Use(write.Name, map[string]any{"directory": "out", "encoding": "latin1"})
		require.NoError(t, p.Err())
		_, err := p.Process(context.Background(), in, r)
		require.NoError(t, err)
		assert.Equal(t, "contents of a.js", read(t, rfs, "/project/src/out/a.js"))
	})

	t.Run("unsupported encoding", func(t *testing.T) {
		p := pipe.New().Use(write.Name, map[string]any{"encoding": "ebcdic"})
		assert.True(t, errors.IsErrorCode(p.Err(), errors.ErrPlugInvalid))
	})
}
