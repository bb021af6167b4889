// Package lockfile provides an advisory flock-based lock so that several
// processes driving the same bridges do not interleave their changes.
package lockfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

const retryInterval = 10 * time.Millisecond

type Lock struct {
	path string
	f    *os.File
}

// New opens (creating if needed) the lock file at path. The file stays open
// until Close; Acquire and Release flock it per critical section.
func New(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}
	return &Lock{path: path, f: f}, nil
}

func (l *Lock) Path() string {
	return l.path
}

// TryAcquire attempts the exclusive lock without blocking.
func (l *Lock) TryAcquire() (bool, error) {
	err := unix.Flock(int(l.f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return true, nil
	}
	if err == unix.EWOULDBLOCK {
		return false, nil
	}
	return false, fmt.Errorf("flock %s: %w", l.path, err)
}

// Acquire blocks until the exclusive lock is held or ctx is done.
func (l *Lock) Acquire(ctx context.Context) error {
	for {
		ok, err := l.TryAcquire()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("acquire lock %s: %w", l.path, ctx.Err())
		case <-time.After(retryInterval):
		}
	}
}

func (l *Lock) Release() error {
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("unlock %s: %w", l.path, err)
	}
	return nil
}

func (l *Lock) Close() error {
	return l.f.Close()
}
