package lock

import (
	"context"
	"sync"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
)

// MemoryLocker is a keyed mutex for a single process. Waiters give up after
// waitTimeout (or when ctx ends) with a Busy error.
type MemoryLocker struct {
	mu          sync.Mutex
	slots       map[string]*slot
	waitTimeout time.Duration
}

// slot is a one-token semaphore shared by everyone waiting on a key
type slot struct {
	token   chan struct{}
	waiters int
}

// NewMemoryLocker creates an in-process locker
func NewMemoryLocker(waitTimeout time.Duration) *MemoryLocker {
	return &MemoryLocker{
		slots:       make(map[string]*slot),
		waitTimeout: waitTimeout,
	}
}

// Lock implements shared.Locker
func (l *MemoryLocker) Lock(ctx context.Context, key string) (shared.Unlock, error) {
	s := l.acquireSlot(key)

	var timeout <-chan time.Time
	if l.waitTimeout > 0 {
		timer := time.NewTimer(l.waitTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case s.token <- struct{}{}:
	case <-timeout:
		l.releaseSlot(key, s)
		return nil, busy(key)
	case <-ctx.Done():
		l.releaseSlot(key, s)
		return nil, busy(key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.token
			l.releaseSlot(key, s)
		})
	}, nil
}

func (l *MemoryLocker) acquireSlot(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{token: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.waiters++
	return s
}

func (l *MemoryLocker) releaseSlot(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.waiters--
	if s.waiters == 0 {
		delete(l.slots, key)
	}
}

// Held reports how many keys currently have holders or waiters
func (l *MemoryLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

func busy(key string) error {
	return shared.ErrBusy.WithDetail("resource", key)
}

var _ shared.Locker = (*MemoryLocker)(nil)
