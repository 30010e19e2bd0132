package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/plugs/pkg/errors"
)

// ValidatePath performs basic validation on a path.
// It checks for:
// - Empty paths
// - Null bytes
// - Excessive path length
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(errors.ErrPathInvalid, "path cannot be empty")
	}

	if strings.Contains(path, "\x00") {
		return errors.New(errors.ErrPathInvalid, "path contains null bytes")
	}

	// Common filesystem limit
	if len(path) > 4096 {
		return errors.New(errors.ErrPathInvalid, "path exceeds maximum length")
	}

	return nil
}

// SanitizePath cleans a path: home expansion, separator normalization and
// resolution of . and .. elements.
func SanitizePath(path string) string {
	cleaned := filepath.Clean(ExpandHome(path))
	if cleaned == "" {
		return "."
	}
	return cleaned
}

// JoinPaths safely joins path elements, rejecting null bytes.
func JoinPaths(elem ...string) (string, error) {
	for _, e := range elem {
		if strings.Contains(e, "\x00") {
			return "", errors.New(errors.ErrPathInvalid, "path element contains null bytes")
		}
	}
	return filepath.Join(elem...), nil
}

// RelativePath returns the relative path from base to target.
// Returns an error if the paths cannot be made relative.
func RelativePath(base, target string) (string, error) {
	base = SanitizePath(base)
	target = SanitizePath(target)

	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrPathInvalid,
			"cannot determine relative path from %s to %s", base, target)
	}

	return rel, nil
}

// ContainsPath checks if child is contained within parent.
// Both paths are normalized before comparison.
func ContainsPath(parent, child string) bool {
	parent = SanitizePath(parent)
	child = SanitizePath(child)

	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ToSlash returns a relative path in the forward-slash form used by globs
// and source maps.
func ToSlash(path string) string {
	return filepath.ToSlash(path)
}

// IsHiddenPath returns true if the basename starts with a dot.
func IsHiddenPath(path string) bool {
	base := filepath.Base(path)
	return len(base) > 0 && base[0] == '.'
}
