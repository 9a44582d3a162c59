package repository

import (
	"context"
	"sync"
	"time"
)

type memoryCode struct {
	code      string
	attempts  int
	expiresAt time.Time
}

// MemoryOTPStore is the in-process fallback used when Redis is unreachable.
// Codes do not survive a restart, which is acceptable for a degraded mode.
type MemoryOTPStore struct {
	mu        sync.Mutex
	codes     map[string]*memoryCode
	cooldowns map[string]time.Time
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{
		codes:     make(map[string]*memoryCode),
		cooldowns: make(map[string]time.Time),
	}
}

func (m *MemoryOTPStore) SaveCode(_ context.Context, phone, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[phone] = &memoryCode{code: code, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *MemoryOTPStore) GetCode(_ context.Context, phone string) (string, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.codes[phone]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(m.codes, phone)
		return "", 0, ErrCodeNotFound
	}
	return entry.code, entry.attempts, nil
}

func (m *MemoryOTPStore) IncrAttempts(_ context.Context, phone string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.codes[phone]
	if !ok {
		return 0, ErrCodeNotFound
	}
	entry.attempts++
	return entry.attempts, nil
}

func (m *MemoryOTPStore) DeleteCode(_ context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, phone)
	return nil
}

func (m *MemoryOTPStore) CheckCooldown(_ context.Context, phone string, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if until, ok := m.cooldowns[phone]; ok && now.Before(until) {
		return false, nil
	}
	m.cooldowns[phone] = now.Add(window)
	return true, nil
}
