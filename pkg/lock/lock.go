// Package lock provides the advisory project lock held while a build
// writes files, so two runs never write the same tree at once.
package lock

import (
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/arthur-debert/plugs/pkg/errors"
)

// FileName is the lock file created in the project root.
const FileName = ".plugs.lock"

// Lock wraps a flock file lock.
type Lock struct {
	flock *flock.Flock
	path  string
}

// New creates a lock on path. Nothing is created until the lock is taken.
func New(path string) *Lock {
	return &Lock{
		flock: flock.New(path),
		path:  path,
	}
}

// ForProject returns the lock of the project rooted at root.
func ForProject(root string) *Lock {
	return New(filepath.Join(root, FileName))
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Lock acquires the lock, blocking until it is available.
func (l *Lock) Lock() error {
	if err := l.flock.Lock(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to acquire lock on %s", l.path).
			WithDetail("path", l.path)
	}
	return nil
}

// TryLock attempts to acquire the lock without blocking. It returns false
// when another process holds it.
func (l *Lock) TryLock() (bool, error) {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileWrite, "failed to try lock on %s", l.path).
			WithDetail("path", l.path)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (l *Lock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to release lock on %s", l.path).
			WithDetail("path", l.path)
	}
	return nil
}

// Acquire takes the project lock of root without waiting. A lock held by
// another run is a build failure.
func Acquire(root string) (*Lock, error) {
	l := ForProject(root)
	acquired, err := l.TryLock()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, errors.BuildFailure("Another plugs run holds "+l.path, map[string]interface{}{"path": l.path})
	}
	return l, nil
}
