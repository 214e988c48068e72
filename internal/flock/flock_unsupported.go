//go:build !unix

package flock

import "fmt"

// Acquire is unavailable on non-unix builds because the lock depends on flock(2).
func Acquire(lockPath string) (release func(), err error) {
	return nil, fmt.Errorf("file locking is only supported on unix builds")
}

// With is unavailable on non-unix builds because the lock depends on flock(2).
func With(lockPath string, fn func() error) error {
	return fmt.Errorf("file locking is only supported on unix builds")
}
