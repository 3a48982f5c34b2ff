package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value   []byte
	expires time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// MemCache is an in-process Cache used by tests and by single-process
// deployments that have no Redis available: the in-memory counterpart
// to a remote-backed cache, behind the same interface.
type MemCache struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

// NewMemCache returns an empty MemCache using wall-clock time.
func NewMemCache() *MemCache {
	return &MemCache{data: make(map[string]entry), now: time.Now}
}

func (m *MemCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(m.now()) {
		delete(m.data, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *MemCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = m.newEntry(value, ttl)
	return nil
}

func (m *MemCache) SetIfAbsent(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.data[key]; ok && !e.expired(m.now()) {
		return false, nil
	}
	m.data[key] = m.newEntry(value, ttl)
	return true, nil
}

func (m *MemCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemCache) newEntry(value []byte, ttl time.Duration) entry {
	if ttl <= 0 {
		return entry{value: value}
	}
	return entry{value: value, expires: m.now().Add(ttl)}
}
