//go:build unix

// Package flock provides a named exclusive scoped lock over a filesystem path.
// The lock is advisory and cross-process: independent processes sharing a cache
// directory coordinate through the same lock file, and the kernel releases the
// lock automatically if the holder dies, so there is no stale-lock hazard.
package flock

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Acquire blocks until the caller holds an exclusive lock on lockPath and
// returns a release func. Release unlocks, closes, and removes the lock file;
// a lock file already gone at that point is not an error.
func Acquire(lockPath string) (release func(), err error) {
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", lockPath, err)
	}
	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
		os.Remove(lockPath)
	}, nil
}

// With runs fn while holding the lock for lockPath. The lock is released even
// when fn fails. Locks on different paths never interfere.
func With(lockPath string, fn func() error) error {
	release, err := Acquire(lockPath)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}
