// Package lockfile provides the cross-process mutual exclusion used by the
// limiter: an exclusive advisory lock on a dedicated file next to the event
// log.
//
// The lock file carries no data - only its existence and the OS-level flock
// held on it matter. Advisory means it only constrains cooperating callers
// that acquire the same path; it does not prevent non-cooperating access to
// the event log. Callers sharing an event log must share the lock path, and
// the semantics assume a local filesystem with working POSIX advisory locks.
package lockfile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// retryDelay is how often a blocked Acquire re-attempts the flock while
// waiting for the current holder.
const retryDelay = 25 * time.Millisecond

// Lock is an exclusive advisory lock held on a filesystem path.
//
// A Lock is scoped to one limiter invocation: acquired at the start of the
// critical section and released before the invocation returns, on every
// exit path. Prefer WithLock, which guarantees that shape.
type Lock struct {
	fl *flock.Flock

	mu       sync.Mutex
	released bool
}

// Acquire blocks until an exclusive advisory lock on path is held, creating
// the lock file if it does not exist.
//
// The wait is unbounded by default; callers that need a bound pass a context
// with a deadline. A directory that cannot be written to surfaces as an
// immediate error rather than a hang.
func Acquire(ctx context.Context, path string) (*Lock, error) {
	fl := flock.New(path)

	locked, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("acquire lock %s: not obtained", path)
	}

	return &Lock{fl: fl}, nil
}

// Release drops the lock and closes the underlying file handle.
// Safe to call more than once; only the first call does anything.
func (l *Lock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.released {
		return nil
	}
	l.released = true

	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.fl.Path(), err)
	}
	return nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.fl.Path()
}

// WithLock runs fn while holding the exclusive lock on path.
//
// The lock covers the whole of fn - the limiter runs its complete
// read-evaluate-write sequence inside one WithLock call so that no two
// callers ever compute admission decisions from inconsistent snapshots.
// The lock is released on every exit path, including when fn fails.
func WithLock(ctx context.Context, path string, fn func() error) error {
	lock, err := Acquire(ctx, path)
	if err != nil {
		return err
	}
	defer lock.Release()

	return fn()
}
