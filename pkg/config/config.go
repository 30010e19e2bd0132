package config

import (
	"io/fs"
	"strconv"
	"strings"

	"github.com/arthur-debert/plugs/pkg/errors"
)

// Source map output modes.
const (
	ModeInline   = "inline"
	ModeExternal = "external"
	ModeNone     = "none"
)

// Config is the effective configuration of a plugs run.
type Config struct {
	Project    Project    `koanf:"project"`
	Log        Log        `koanf:"log"`
	Files      Files      `koanf:"files"`
	SourceMaps SourceMaps `koanf:"sourcemaps"`
	Write      Write      `koanf:"write"`
}

// Project locates the build script.
type Project struct {
	BuildFile   string `koanf:"build_file"`
	DefaultTask string `koanf:"default_task"`
	Lock        bool   `koanf:"lock"`
}

// Log mirrors logging.Options.
type Log struct {
	Verbosity int    `koanf:"verbosity"`
	File      string `koanf:"file"`
	NoColor   bool   `koanf:"no_color"`
}

// Files holds defaults for reading and selecting files.
type Files struct {
	ScriptExtension string `koanf:"script_extension"`
	CaseSensitive   bool   `koanf:"case_sensitive"`
	SourceMapMarker string `koanf:"source_map_marker"`
	ProbeSourceMaps bool   `koanf:"probe_source_maps"`
}

// SourceMaps holds defaults for the sourcemaps stage.
type SourceMaps struct {
	Mode           string `koanf:"mode"`
	Combine        bool   `koanf:"combine"`
	SourcesContent bool   `koanf:"sources_content"`
}

// Write holds defaults for the write stage.
type Write struct {
	Encoding string `koanf:"encoding"`
	FileMode string `koanf:"file_mode"`
	DirMode  string `koanf:"dir_mode"`
}

// Modes parses the octal file and directory modes.
func (w Write) Modes() (file, dir fs.FileMode, err error) {
	if file, err = ParseMode(w.FileMode); err != nil {
		return 0, 0, err
	}
	if dir, err = ParseMode(w.DirMode); err != nil {
		return 0, 0, err
	}
	return file, dir, nil
}

// ParseMode parses an octal permission string such as "0644".
func ParseMode(s string) (fs.FileMode, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0o"), 8, 32)
	if err != nil || v > 0o777 {
		return 0, errors.Newf(errors.ErrConfigValid, "invalid permission %q", s)
	}
	return fs.FileMode(v), nil
}

// Encodings supported by the write stage.
var Encodings = []string{"utf-8", "latin1", "utf-16le", "utf-16be"}

// NormalizeEncoding maps encoding aliases to their canonical name, or ""
// when the encoding is unknown.
func NormalizeEncoding(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return "utf-8"
	case "latin1", "latin-1", "iso-8859-1", "binary":
		return "latin1"
	case "utf-16le", "utf16le", "ucs2", "ucs-2":
		return "utf-16le"
	case "utf-16be", "utf16be":
		return "utf-16be"
	}
	return ""
}

// Validate checks values that cannot be expressed by types alone.
func (c *Config) Validate() error {
	switch c.SourceMaps.Mode {
	case ModeInline, ModeExternal, ModeNone:
	default:
		return errors.Newf(errors.ErrConfigValid, "sourcemaps.mode must be one of inline, external, none; got %q", c.SourceMaps.Mode)
	}
	if NormalizeEncoding(c.Write.Encoding) == "" {
		return errors.Newf(errors.ErrConfigValid, "write.encoding %q is not supported", c.Write.Encoding).
			WithDetail("supported", Encodings)
	}
	if _, _, err := c.Write.Modes(); err != nil {
		return err
	}
	if c.Project.BuildFile == "" {
		return errors.New(errors.ErrConfigValid, "project.build_file cannot be empty")
	}
	if c.Files.ScriptExtension != "" && !strings.HasPrefix(c.Files.ScriptExtension, ".") {
		return errors.Newf(errors.ErrConfigValid, "files.script_extension must start with a dot; got %q", c.Files.ScriptExtension)
	}
	if c.Log.Verbosity < 0 {
		return errors.New(errors.ErrConfigValid, "log.verbosity cannot be negative")
	}
	return nil
}
