package io

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is the name of the lock file created inside a locked
// directory.
const LockFileName = ".lock"

// FileLock is an exclusive lock on a directory, held across processes. A
// second process trying to lock the same directory fails instead of
// waiting.
type FileLock struct {
	lockFile *flock.Flock
	path     string
}

// NewFileLock creates the lock of the given directory. Nothing is locked
// until Lock is called.
func NewFileLock(dir string) *FileLock {
	lockPath := filepath.Join(dir, LockFileName)

	return &FileLock{
		lockFile: flock.New(lockPath),
		path:     lockPath,
	}
}

// Lock acquires the lock, creating the directory if needed. It fails if
// another process holds the lock.
func (fl *FileLock) Lock() error {
	dir := filepath.Dir(fl.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for lock file %s: %w", fl.path, err)
	}

	locked, err := fl.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire file lock at %s: %w", fl.path, err)
	}
	if !locked {
		return fmt.Errorf("cannot acquire exclusive lock on %s: another process is already using this directory", fl.path)
	}
	return nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.lockFile.Unlock(); err != nil {
		return fmt.Errorf("failed to release file lock at %s: %w", fl.path, err)
	}
	return nil
}

// Path returns the path to the lock file.
func (fl *FileLock) Path() string {
	return fl.path
}
