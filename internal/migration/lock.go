package migration

import (
	"context"
	"sync"
)

// Locker serialises migrator runs. Acquire blocks until the lock for key is
// held or ctx is done; the returned function releases it.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// MutexLocker is a process-local Locker. It protects against concurrent
// runs inside one process only.
type MutexLocker struct {
	mu sync.Mutex
	ch map[string]chan struct{}
}

// NewMutexLocker returns a ready MutexLocker.
func NewMutexLocker() *MutexLocker {
	return &MutexLocker{ch: make(map[string]chan struct{})}
}

func (l *MutexLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ch == nil {
		l.ch = make(map[string]chan struct{})
	}
	c, ok := l.ch[key]
	if !ok {
		c = make(chan struct{}, 1)
		l.ch[key] = c
	}
	return c
}

// Acquire waits for the key's slot, honouring ctx cancellation.
func (l *MutexLocker) Acquire(ctx context.Context, key string) (func(), error) {
	c := l.slot(key)
	select {
	case c <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	var once sync.Once
	return func() { once.Do(func() { <-c }) }, nil
}
