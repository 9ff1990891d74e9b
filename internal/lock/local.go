package lock

import (
	"context"
	"sync"
	"time"
)

// Local is an in-process Locker keyed by string. ttl is ignored.
type Local struct {
	mu   sync.Mutex
	keys map[string]chan struct{}
}

// NewLocal returns an empty in-process locker.
func NewLocal() *Local {
	return &Local{keys: map[string]chan struct{}{}}
}

// WithLock runs fn while no other caller holds key.
func (l *Local) WithLock(ctx context.Context, key string, _ time.Duration, fn func(context.Context) error) error {
	if fn == nil {
		return ErrNoCallback
	}
	for {
		l.mu.Lock()
		held, busy := l.keys[key]
		if !busy {
			done := make(chan struct{})
			l.keys[key] = done
			l.mu.Unlock()
			defer func() {
				l.mu.Lock()
				delete(l.keys, key)
				l.mu.Unlock()
				close(done)
			}()
			return fn(ctx)
		}
		l.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-held:
		}
	}
}
