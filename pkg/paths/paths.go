package paths

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/plugs/pkg/errors"
)

// Resolved is a path resolved against a base directory.
type Resolved struct {
	// Absolute is the cleaned absolute path.
	Absolute string
	// Relative is Absolute relative to the base, "." for the base itself.
	Relative string
}

// Resolve resolves name against baseDir. Absolute names are only cleaned.
// The result must be baseDir itself or one of its descendants, otherwise
// Resolve fails with ErrPathEscape.
func Resolve(name, baseDir string) (Resolved, error) {
	if err := ValidatePath(name); err != nil {
		return Resolved{}, err
	}
	if !filepath.IsAbs(baseDir) {
		return Resolved{}, errors.Newf(errors.ErrPathInvalid, "base directory %q is not absolute", baseDir)
	}

	base := SanitizePath(baseDir)
	abs := SanitizePath(name)
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(base, abs)
	}

	if !ContainsPath(base, abs) {
		return Resolved{}, errors.Newf(errors.ErrPathEscape, "%s resolves outside of %s", name, base).
			WithDetail("path", abs).
			WithDetail("base", base)
	}

	rel, err := RelativePath(base, abs)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{Absolute: abs, Relative: rel}, nil
}

// IsChild reports whether candidate is parent itself or lies below it.
func IsChild(parent, candidate string) bool {
	return ContainsPath(parent, candidate)
}

// Abs returns path as a cleaned absolute path, expanding a leading ~.
func Abs(path string) (string, error) {
	abs, err := filepath.Abs(ExpandHome(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrPathInvalid, "cannot make %s absolute", path)
	}
	return abs, nil
}

// ExpandHome expands ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}
