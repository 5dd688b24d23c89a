package lockout

import (
	"context"
	"sync"
	"time"
)

// MemoryLockout is the in-process fallback used when redis is not
// configured, and in tests.
type MemoryLockout struct {
	mu      sync.Mutex
	policy  Policy
	entries map[string]*entry
	now     func() time.Time
}

type entry struct {
	failures    int
	windowEnd   time.Time
	lockedUntil time.Time
}

func NewMemory(policy Policy) *MemoryLockout {
	if policy.Threshold <= 0 {
		policy = DefaultPolicy()
	}
	return &MemoryLockout{
		policy:  policy,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

func (l *MemoryLockout) Fail(_ context.Context, username string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	e := l.entries[username]
	if e == nil || now.After(e.windowEnd) {
		e = &entry{windowEnd: now.Add(l.policy.Window)}
		l.entries[username] = e
	}
	e.failures++
	if e.failures < l.policy.Threshold {
		return false, nil
	}
	e.lockedUntil = now.Add(l.policy.Duration)
	return true, nil
}

func (l *MemoryLockout) IsLocked(_ context.Context, username string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entries[username]
	return e != nil && l.now().Before(e.lockedUntil), nil
}

func (l *MemoryLockout) Clear(_ context.Context, username string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, username)
	return nil
}
