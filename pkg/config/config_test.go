package config

import (
	"os"
	"path/filepath"
	"testing"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/plugs/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "build.star", cfg.Project.BuildFile)
	assert.Equal(t, "default", cfg.Project.DefaultTask)
	assert.True(t, cfg.Project.Lock)
	assert.Equal(t, ".js", cfg.Files.ScriptExtension)
	assert.Equal(t, "sourceMappingURL", cfg.Files.SourceMapMarker)
	assert.True(t, cfg.Files.ProbeSourceMaps)
	assert.Equal(t, ModeInline, cfg.SourceMaps.Mode)
	assert.True(t, cfg.SourceMaps.Combine)
	assert.Equal(t, "utf-8", cfg.Write.Encoding)

	file, dir, err := cfg.Write.Modes()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), file)
	assert.Equal(t, os.FileMode(0755), dir)
}

func TestLoad_NoProjectFile(t *testing.T) {
	loaded, err := Load(LoadOptions{Dir: t.TempDir(), SkipEnv: true})
	require.NoError(t, err)
	assert.Empty(t, loaded.File)
	assert.Equal(t, ModeInline, loaded.SourceMaps.Mode)
}

func TestLoad_ProjectTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plugs.toml", `
[sourcemaps]
mode = "external"

[write]
encoding = "latin1"
`)

	loaded, err := Load(LoadOptions{Dir: dir, SkipEnv: true})
	require.NoError(t, err)
	assert.Equal(t, path, loaded.File)
	assert.Equal(t, ModeExternal, loaded.SourceMaps.Mode)
	assert.Equal(t, "latin1", loaded.Write.Encoding)
	// untouched keys keep their defaults
	assert.True(t, loaded.SourceMaps.Combine)
	assert.Equal(t, "build.star", loaded.Project.BuildFile)
}

func TestLoad_ProjectYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plugs.yaml", `
project:
  build_file: tasks.star
files:
  case_sensitive: false
`)

	loaded, err := Load(LoadOptions{Dir: dir, SkipEnv: true})
	require.NoError(t, err)
	assert.Equal(t, "tasks.star", loaded.Project.BuildFile)
	assert.False(t, loaded.Files.CaseSensitive)
}

func TestLoad_DiscoveryOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plugs.toml", "[project]\ndefault_task = \"from-toml\"\n")
	writeFile(t, dir, "plugs.yaml", "project:\n  default_task: from-yaml\n")

	loaded, err := Load(LoadOptions{Dir: dir, SkipEnv: true})
	require.NoError(t, err)
	assert.Equal(t, path, loaded.File)
	assert.Equal(t, "from-toml", loaded.Project.DefaultTask)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plugs.toml", "[project]\ndefault_task = \"discovered\"\n")
	explicit := writeFile(t, t.TempDir(), "other.toml", "[project]\ndefault_task = \"explicit\"\n")

	loaded, err := Load(LoadOptions{Dir: dir, File: explicit, SkipEnv: true})
	require.NoError(t, err)
	assert.Equal(t, "explicit", loaded.Project.DefaultTask)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(LoadOptions{File: filepath.Join(t.TempDir(), "nope.toml"), SkipEnv: true})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plugs.toml", "[project\nbuild_file = ")

	_, err := Load(LoadOptions{Dir: dir, SkipEnv: true})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
	assert.Equal(t, errors.KindParse, errors.KindOf(err))
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PLUGS_SOURCEMAPS_MODE", "none")
	t.Setenv("PLUGS_FILES_SCRIPT_EXTENSION", ".mjs")
	t.Setenv("PLUGS_LOG_VERBOSITY", "2")

	loaded, err := Load(LoadOptions{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, ModeNone, loaded.SourceMaps.Mode)
	assert.Equal(t, ".mjs", loaded.Files.ScriptExtension)
	assert.Equal(t, 2, loaded.Log.Verbosity)
}

func TestLoad_OverridesWin(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plugs.toml", "[log]\nverbosity = 1\n")
	t.Setenv("PLUGS_LOG_VERBOSITY", "2")

	loaded, err := Load(LoadOptions{
		Dir:       dir,
		Overrides: map[string]interface{}{"log.verbosity": 3, "log.no_color": true},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Log.Verbosity)
	assert.True(t, loaded.Log.NoColor)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"mode", "[sourcemaps]\nmode = \"sideways\"\n"},
		{"encoding", "[write]\nencoding = \"ebcdic\"\n"},
		{"file mode", "[write]\nfile_mode = \"rw-r--r--\"\n"},
		{"build file", "[project]\nbuild_file = \"\"\n"},
		{"extension", "[files]\nscript_extension = \"js\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "plugs.toml", tt.content)

			_, err := Load(LoadOptions{Dir: dir, SkipEnv: true})
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
			assert.Equal(t, path, errors.GetErrorDetails(err)["path"])
		})
	}
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("0o750")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0750), mode)

	_, err = ParseMode("1777")
	assert.Error(t, err)
	_, err = ParseMode("")
	assert.Error(t, err)
}

func TestNormalizeEncoding(t *testing.T) {
	assert.Equal(t, "utf-8", NormalizeEncoding(""))
	assert.Equal(t, "utf-8", NormalizeEncoding("UTF8"))
	assert.Equal(t, "latin1", NormalizeEncoding("binary"))
	assert.Equal(t, "utf-16le", NormalizeEncoding("ucs2"))
	assert.Equal(t, "utf-16be", NormalizeEncoding("utf16be"))
	assert.Empty(t, NormalizeEncoding("shift-jis"))
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "write.encoding", envKey("PLUGS_WRITE_ENCODING"))
	assert.Equal(t, "files.source_map_marker", envKey("PLUGS_FILES_SOURCE_MAP_MARKER"))
}

func TestDump(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	cfg.SourceMaps.Mode = ModeExternal

	t.Run("toml", func(t *testing.T) {
		data, err := Dump(cfg, FormatTOML)
		require.NoError(t, err)

		var decoded map[string]map[string]interface{}
		require.NoError(t, toml.Unmarshal(data, &decoded))
		assert.Equal(t, ModeExternal, decoded["sourcemaps"]["mode"])
		assert.Equal(t, "build.star", decoded["project"]["build_file"])
	})

	t.Run("yaml", func(t *testing.T) {
		data, err := Dump(cfg, FormatYAML)
		require.NoError(t, err)

		var decoded map[string]map[string]interface{}
		require.NoError(t, yaml.Unmarshal(data, &decoded))
		assert.Equal(t, ModeExternal, decoded["sourcemaps"]["mode"])
		assert.Equal(t, "0644", decoded["write"]["file_mode"])
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Dump(cfg, "ini")
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}
