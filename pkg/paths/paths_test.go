// Test Type: Unit Test
// Description: Tests for path resolution and containment

package paths_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/plugs/pkg/errors"
	"github.com/arthur-debert/plugs/pkg/paths"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		base     string
		wantAbs  string
		wantRel  string
		wantCode errors.ErrorCode
	}{
		{name: "relative child", input: "src/a.js", base: "/project", wantAbs: "/project/src/a.js", wantRel: "src/a.js"},
		{name: "dot segments", input: "./src/../lib/b.js", base: "/project", wantAbs: "/project/lib/b.js", wantRel: "lib/b.js"},
		{name: "absolute child", input: "/project/dist", base: "/project", wantAbs: "/project/dist", wantRel: "dist"},
		{name: "base itself", input: ".", base: "/project", wantAbs: "/project", wantRel: "."},
		{name: "escapes with dots", input: "../other", base: "/project", wantCode: errors.ErrPathEscape},
		{name: "absolute outside", input: "/tmp/out", base: "/project", wantCode: errors.ErrPathEscape},
		{name: "sibling with common prefix", input: "/project-other/x", base: "/project", wantCode: errors.ErrPathEscape},
		{name: "empty", input: "", base: "/project", wantCode: errors.ErrPathInvalid},
		{name: "relative base", input: "a", base: "project", wantCode: errors.ErrPathInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := paths.Resolve(tt.input, tt.base)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, tt.wantCode), "got %v", err)
				assert.Equal(t, errors.KindValidation, errors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.wantAbs), got.Absolute)
			assert.Equal(t, filepath.FromSlash(tt.wantRel), got.Relative)
		})
	}
}

func TestIsChild(t *testing.T) {
	assert.True(t, paths.IsChild("/project", "/project"))
	assert.True(t, paths.IsChild("/project", "/project/a/b"))
	assert.True(t, paths.IsChild("/project/", "/project/a/../b"))
	assert.True(t, paths.IsChild("/project", "/project/..hidden"))
	assert.False(t, paths.IsChild("/project", "/"))
	assert.False(t, paths.IsChild("/project", "/project2"))
	assert.False(t, paths.IsChild("/project/a", "/project/b"))
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, paths.ValidatePath("a/b"))
	assert.Error(t, paths.ValidatePath(""))
	assert.Error(t, paths.ValidatePath("a\x00b"))
}

func TestJoinPaths(t *testing.T) {
	got, err := paths.JoinPaths("a", "b", "c.js")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("a", "b", "c.js"), got)

	_, err = paths.JoinPaths("a", "b\x00")
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	assert.Equal(t, "/home/tester", paths.ExpandHome("~"))
	assert.Equal(t, "/home/tester/src", paths.ExpandHome("~/src"))
	assert.Equal(t, "~other/src", paths.ExpandHome("~other/src"))
	assert.Equal(t, "/abs", paths.ExpandHome("/abs"))
}

func TestIsHiddenPath(t *testing.T) {
	assert.True(t, paths.IsHiddenPath("a/.plugs.toml"))
	assert.False(t, paths.IsHiddenPath("a/plugs.toml"))
}
