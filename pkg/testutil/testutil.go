package testutil

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"testing"

	"github.com/arthur-debert/plugs/pkg/filesystem"
	"github.com/arthur-debert/plugs/pkg/types"
)

// Project creates the given files under a fresh temporary directory and
// returns its path. The directory is removed when the test completes.
func Project(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for _, name := range sortedNames(files) {
		CreateFile(t, root, name, files[name])
	}
	return root
}

// MemoryProject creates the given files under root in a new in-memory FS.
func MemoryProject(t *testing.T, root string, files map[string]string) types.FS {
	t.Helper()

	fsys := filesystem.NewMemory()
	if err := fsys.MkdirAll(root, 0755); err != nil {
		t.Fatalf("Failed to create project root %s: %v", root, err)
	}
	for _, name := range sortedNames(files) {
		full := path.Join(root, name)
		if err := fsys.MkdirAll(path.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create parent directories for %s: %v", full, err)
		}
		if err := fsys.WriteFile(full, []byte(files[name]), 0644); err != nil {
			t.Fatalf("Failed to create file %s: %v", full, err)
		}
	}
	return fsys
}

// CreateFile creates a file with the given content in the specified directory.
// It fails the test if the file cannot be created.
func CreateFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))

	// Create parent directories if needed
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}

	return path
}

// ReadFile reads a file through fsys and returns it as a string.
// It fails the test if the file cannot be read.
func ReadFile(t *testing.T, fsys types.FS, path string) string {
	t.Helper()

	content, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	return string(content)
}

// AssertFileContent checks that a file exists and has the expected content.
func AssertFileContent(t *testing.T, fsys types.FS, path, expected string) {
	t.Helper()

	actual := ReadFile(t, fsys, path)
	if actual != expected {
		t.Errorf("File %s content mismatch\nExpected: %q\nActual: %q", path, expected, actual)
	}
}

// AssertNoFile checks that a file does not exist.
func AssertNoFile(t *testing.T, fsys types.FS, path string) {
	t.Helper()

	if _, err := fsys.Stat(path); !os.IsNotExist(err) {
		t.Errorf("File %s exists but should not", path)
	}
}

func sortedNames(files map[string]string) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
