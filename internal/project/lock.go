package project

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Lock enforces single-run ownership of a project's status file and
// output tree. A second build against the same project fails fast
// instead of racing the first.
type Lock struct {
	fl *flock.Flock
}

// NewLock constructs a lock for the project without acquiring it.
func NewLock(p *Project) *Lock {
	return &Lock{fl: flock.New(p.LockPath())}
}

// Acquire takes the lock, failing immediately when another run holds it.
func (l *Lock) Acquire() error {
	ok, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("acquire project lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another slidemovie build is already running against this project (lock %s)", l.fl.Path())
	}
	return nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}
