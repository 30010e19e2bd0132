package glob

import (
	"path"
	"path/filepath"

	"github.com/arthur-debert/plugs/pkg/errors"
	"github.com/arthur-debert/plugs/pkg/types"
)

// Walk lists the regular files under dir whose slash-separated relative
// paths satisfy m. Results come in lexical depth-first order.
func Walk(fsys types.FS, dir string, m *Matcher) ([]string, error) {
	var out []string
	if err := walk(fsys, dir, "", m, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func walk(fsys types.FS, root, rel string, m *Matcher, out *[]string) error {
	entries, err := fsys.ReadDir(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "cannot list %s", filepath.Join(root, rel))
	}

	for _, entry := range entries {
		child := entry.Name()
		if rel != "" {
			child = path.Join(rel, entry.Name())
		}

		if entry.IsDir() {
			if err := walk(fsys, root, child, m, out); err != nil {
				return err
			}
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		if m.Match(child) {
			*out = append(*out, child)
		}
	}
	return nil
}
