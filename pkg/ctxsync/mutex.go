// Package ctxsync provides synchronization primitives whose blocking calls
// can be abandoned through a [context.Context].
package ctxsync

import (
	"context"
)

// NewMutex creates a new unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{
		sema: make(chan struct{}, 1),
	}
}

// A Mutex is a mutual exclusion lock. Waiting for it can be canceled.
type Mutex struct {
	sema chan struct{}
}

// Lock locks m, waiting as long as needed.
func (m *Mutex) Lock() {
	_ = m.LockWithContext(context.Background())
}

// LockWithContext locks m, or returns the context error if ctx is done
// first. A canceled context never acquires the lock, even if m is free.
func (m *Mutex) LockWithContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.sema <- struct{}{}:
		return nil
	}
}

// TryLock tries to lock m and reports whether it succeeded.
func (m *Mutex) TryLock() bool {
	select {
	case m.sema <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock unlocks m. It panics if m is not locked.
func (m *Mutex) Unlock() {
	select {
	case <-m.sema:
	default:
		panic("ctxsync: unlock of unlocked mutex")
	}
}
