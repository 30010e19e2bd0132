package types

import (
	"io/fs"
)

// FS is the filesystem interface used for every real read and write.
// Only the read origin and the write stage touch it; everything else
// works on in-memory files.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Remove(name string) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)
}
