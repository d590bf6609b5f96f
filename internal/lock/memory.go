package lock

import (
	"context"
	"sync"
	"time"

	"github.com/tamkeenorg/tamkeenpay/pkg/common"
)

type memoryEntry struct {
	token    string
	deadline time.Time
}

// MemoryLocker is an in-process Locker for tests and single-node development
// runs. It honors the same lease and owner-token semantics as the redis
// backend but provides no cross-process exclusion.
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, held := l.entries[key]; held && l.now().Before(e.deadline) {
		return "", false, nil
	}
	token := common.UUID()
	l.entries[key] = memoryEntry{token: token, deadline: l.now().Add(ttl)}
	return token, true, nil
}

func (l *MemoryLocker) Release(_ context.Context, key, token string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, held := l.entries[key]
	if !held || e.token != token {
		return 0, nil
	}
	delete(l.entries, key)
	return 1, nil
}

// SetClock overrides the time source, used by lease-expiry tests.
func (l *MemoryLocker) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
