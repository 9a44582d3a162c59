// Package locks provides named, timeout-bounded mutual exclusion. The
// backing store has no multi-document transactions, so every
// read-check-write sequence in the reservation core runs inside a lock
// scope keyed by the resource it protects ("table:5", "reservation:abc").
package locks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrResourceBusy is returned when a lock cannot be acquired within the
// timeout. It is a transient condition; callers should retry.
var ErrResourceBusy = errors.New("resource is busy")

// DefaultTimeout bounds acquisition when the caller passes zero.
const DefaultTimeout = 5 * time.Second

// entry is a channel-based mutex with a waiter count. The count covers
// both the holder and anyone blocked in Acquire, so an entry is only
// evicted once nobody references it.
type entry struct {
	sem  chan struct{}
	refs int
}

// Manager hands out per-key exclusive locks. Keys are independent: holding
// "table:5" never blocks "table:6". The registry itself is guarded by a
// single mutex that is only held for the brief get-or-create moment.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry
	logger  *zerolog.Logger
}

func NewManager(logger *zerolog.Logger) *Manager {
	return &Manager{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// Acquire takes the lock for key, waiting up to timeout. It reports whether
// the lock was obtained. A false return leaves no residual state: the
// waiter's reference is dropped and an idle entry is evicted.
func (m *Manager) Acquire(ctx context.Context, key string, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		return true
	case <-timer.C:
	case <-ctx.Done():
	}

	m.release(key, e, false)
	if m.logger != nil {
		m.logger.Warn().Str("resource", key).Dur("timeout", timeout).Msg("lock acquisition timed out")
	}
	return false
}

// Release frees the lock for key. Releasing a key that is not held is a
// no-op, which also makes the admin force-release path safe.
func (m *Manager) Release(key string) {
	m.mu.Lock()
	e, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		return
	}
	m.release(key, e, true)
}

func (m *Manager) release(key string, e *entry, held bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if held {
		select {
		case <-e.sem:
		default:
			// Not actually held; only drop the reference.
		}
	}
	e.refs--
	if e.refs <= 0 && len(e.sem) == 0 {
		delete(m.entries, key)
	}
}

// Do runs fn while holding the lock for key. On acquisition timeout it
// returns ErrResourceBusy without invoking fn. The lock is released on
// every exit path, including panics inside fn.
func (m *Manager) Do(ctx context.Context, key string, timeout time.Duration, fn func() error) error {
	if !m.Acquire(ctx, key, timeout) {
		return ErrResourceBusy
	}
	defer m.Release(key)
	return fn()
}

// Held returns the number of registered lock entries. Exposed for the
// admin lock-status endpoint and tests.
func (m *Manager) Held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Keys returns the currently registered resource keys, held or awaited.
func (m *Manager) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}
