package files_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/plugs/pkg/errors"
	"github.com/arthur-debert/plugs/pkg/files"
)

func paths(list []*files.File) []string {
	out := make([]string, len(list))
	for i, f := range list {
		out[i] = f.SlashPath()
	}
	return out
}

func TestNew(t *testing.T) {
	_, err := files.New("relative/dir")
	assert.True(t, errors.IsErrorCode(err, errors.ErrPathInvalid))

	_, err = files.New("")
	assert.Error(t, err)

	container, err := files.New("/p/./src/")
	require.NoError(t, err)
	assert.Equal(t, "/p/src", container.Directory())
	assert.Equal(t, 0, container.Len())
}

func TestAdd(t *testing.T) {
	container, err := files.New("/p")
	require.NoError(t, err)

	t.Run("insertion order", func(t *testing.T) {
		for _, p := range []string{"c.js", "a.js", "b/d.js"} {
			_, err := container.Add(p, files.WithContents(p))
			require.NoError(t, err)
		}
		assert.Equal(t, []string{"c.js", "a.js", "b/d.js"}, paths(container.List()))
	})

	t.Run("replacement keeps position", func(t *testing.T) {
		replaced, err := container.Add("/p/a.js", files.WithContents("new"))
		require.NoError(t, err)
		assert.Equal(t, []string{"c.js", "a.js", "b/d.js"}, paths(container.List()))
		assert.Same(t, replaced, container.Get("a.js"))
	})

	t.Run("escaping path is rejected", func(t *testing.T) {
		_, err := container.Add("../outside.js")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrPathEscape))
		assert.Equal(t, 3, container.Len())
	})
}

func TestGet(t *testing.T) {
	container, err := files.New("/p")
	require.NoError(t, err)
	f, err := container.Add("src/a.js", files.WithContents(""))
	require.NoError(t, err)

	assert.Same(t, f, container.Get("src/a.js"))
	assert.Same(t, f, container.Get("/p/src/a.js"))
	assert.Same(t, f, container.Get("./src/../src/a.js"))
	assert.Nil(t, container.Get("src/b.js"))
	assert.Nil(t, container.Get("/elsewhere/a.js"))
}

func TestForkIsolation(t *testing.T) {
	a, err := files.New("/p")
	require.NoError(t, err)
	for _, p := range []string{"one.js", "two.js"} {
		_, err := a.Add(p, files.WithContents(p))
		require.NoError(t, err)
	}

	b := a.Fork()
	assert.Equal(t, a.Directory(), b.Directory())
	assert.Equal(t, paths(a.List()), paths(b.List()))

	_, err = b.Add("three.js", files.WithContents("3"))
	require.NoError(t, err)
	_, err = b.Add("one.js", files.WithContents("override"))
	require.NoError(t, err)

	assert.Equal(t, []string{"one.js", "two.js"}, paths(a.List()))
	assert.Nil(t, a.Get("three.js"))
	got, err := a.Get("one.js").ContentsSync()
	require.NoError(t, err)
	assert.Equal(t, "one.js", got, "the source keeps its own member")

	assert.Equal(t, []string{"one.js", "two.js", "three.js"}, paths(b.List()))
	got, err = b.Get("one.js").ContentsSync()
	require.NoError(t, err)
	assert.Equal(t, "override", got)

	t.Run("source additions do not reach the fork", func(t *testing.T) {
		c := a.Fork()
		_, err := a.Add("four.js", files.WithContents("4"))
		require.NoError(t, err)
		assert.Nil(t, c.Get("four.js"))
		assert.Equal(t, 2, c.Len())
	})

	t.Run("fork of fork", func(t *testing.T) {
		d := b.Fork()
		_, err := d.Add("five.js", files.WithContents("5"))
		require.NoError(t, err)
		assert.Equal(t, 3, b.Len())
		assert.Equal(t, 4, d.Len())
	})
}

func TestForkEmptyAndEmptyIn(t *testing.T) {
	a, err := files.New("/p")
	require.NoError(t, err)
	_, err = a.Add("x.js", files.WithContents(""))
	require.NoError(t, err)

	e := a.ForkEmpty()
	assert.Equal(t, "/p", e.Directory())
	assert.Equal(t, 0, e.Len())

	out, err := a.EmptyIn("/p/dist")
	require.NoError(t, err)
	assert.Equal(t, "/p/dist", out.Directory())
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, 1, a.Len())
}

func TestPut(t *testing.T) {
	a, err := files.New("/p")
	require.NoError(t, err)
	f, err := a.Add("src/x.js", files.WithContents(""))
	require.NoError(t, err)

	b := a.ForkEmpty()
	require.NoError(t, b.Put(f))
	assert.Same(t, f, b.Get("src/x.js"))
	assert.Same(t, a, f.Files(), "shared files keep their container")

	narrow, err := files.New("/p/lib")
	require.NoError(t, err)
	err = narrow.Put(f)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPathEscape))
}

func TestAllAndFilter(t *testing.T) {
	container, err := files.New("/p")
	require.NoError(t, err)
	for _, p := range []string{"a.js", "b.css", "c.js", "d.js"} {
		_, err := container.Add(p, files.WithContents(""))
		require.NoError(t, err)
	}

	all := slices.Collect(container.All())
	assert.Equal(t, []string{"a.js", "b.css", "c.js", "d.js"}, paths(all))

	visited := 0
	for f := range container.Filter(func(f *files.File) bool {
		visited++
		return f.Extension() == ".js"
	}) {
		if f.SlashPath() == "c.js" {
			break
		}
	}
	assert.Equal(t, 3, visited, "filtering is lazy")

	js := slices.Collect(container.Filter(func(f *files.File) bool { return f.Extension() == ".js" }))
	assert.Equal(t, []string{"a.js", "c.js", "d.js"}, paths(js))
}

func TestRemove(t *testing.T) {
	a, err := files.New("/p")
	require.NoError(t, err)
	for _, name := range []string{"a.js", "b.js", "c.js"} {
		_, err := a.Add(name, files.WithContents(name))
		require.NoError(t, err)
	}
	b := a.Fork()

	assert.True(t, b.Remove("b.js"))
	assert.False(t, b.Remove("b.js"))
	assert.False(t, b.Remove("../outside.js"))

	assert.Equal(t, []string{"a.js", "c.js"}, paths(b.List()))
	assert.Nil(t, b.Get("b.js"))

	// the fork source keeps the member
	assert.Equal(t, []string{"a.js", "b.js", "c.js"}, paths(a.List()))
	assert.NotNil(t, a.Get("b.js"))
}
