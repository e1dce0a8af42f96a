package cache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCacher is a process-local Cacher for deployments without Redis.
// Expired entries are dropped lazily on access.
type MemoryCacher struct {
	mtx     sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCacher() *MemoryCacher {
	return &MemoryCacher{
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryCacher) Start() error {
	return nil
}

func (m *MemoryCacher) Stop() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.entries = make(map[string]memoryEntry)
	return nil
}

func (m *MemoryCacher) Get(key string) ([]byte, error) {
	m.mtx.RLock()
	entry, ok := m.entries[key]
	m.mtx.RUnlock()
	if !ok {
		return nil, nil
	}

	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.mtx.Lock()
		delete(m.entries, key)
		m.mtx.Unlock()
		return nil, nil
	}

	return entry.value, nil
}

func (m *MemoryCacher) Set(key string, value []byte) error {
	return m.SetEx(key, value, 0)
}

func (m *MemoryCacher) SetEx(key string, value []byte, expiration time.Duration) error {
	entry := memoryEntry{value: value}
	if expiration > 0 {
		entry.expiresAt = time.Now().Add(expiration)
	}

	m.mtx.Lock()
	m.entries[key] = entry
	m.mtx.Unlock()
	return nil
}

func (m *MemoryCacher) Has(key string) (bool, error) {
	val, err := m.Get(key)
	if err != nil {
		return false, err
	}

	return val != nil, nil
}

func (m *MemoryCacher) Del(key string) error {
	m.mtx.Lock()
	delete(m.entries, key)
	m.mtx.Unlock()
	return nil
}
