package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrLocked is returned when another holder owns the key.
var ErrLocked = errors.New("lock held by another ingester")

// Locker hands out exclusive, non-blocking per-key locks. The returned
// release func must be called exactly once.
type Locker interface {
	TryLock(ctx context.Context, key string) (release func(), err error)
}

type localLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocal returns an in-process Locker.
func NewLocal() Locker {
	return &localLocker{held: make(map[string]struct{})}
}

func (l *localLocker) TryLock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, ErrLocked
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
