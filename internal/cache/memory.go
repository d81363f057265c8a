package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/kantoor/internal/service"
)

type memoryEntry struct {
	expiry time.Time
	value  []byte
}

// Memory is a process-local cache with per-entry expiry.
type Memory struct {
	entries map[string]memoryEntry
	stopCh  chan struct{}
	now     func() time.Time
	mu      sync.RWMutex
	once    sync.Once
}

// NewMemory creates an in-memory cache and starts its cleanup goroutine.
func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}

	go m.cleanup()

	return m
}

// Get returns the cached value if present and unexpired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.entries[key]
	if !exists || m.now().After(entry.expiry) {
		return nil, false, nil
	}

	return entry.value, true, nil
}

// Set stores value under key for ttl.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{
		value:  append([]byte(nil), value...),
		expiry: m.now().Add(ttl),
	}
	return nil
}

// InvalidatePrefix removes all keys starting with prefix.
func (m *Memory) InvalidatePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

// Clear removes all entries from the cache.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
	return nil
}

// Stats counts live and expired entries.
func (m *Memory) Stats(_ context.Context) (service.CacheStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := service.CacheStats{Backend: BackendMemory}
	now := m.now()
	for _, entry := range m.entries {
		if now.After(entry.expiry) {
			stats.Expired++
		} else {
			stats.Entries++
		}
	}
	return stats, nil
}

// Close stops the cleanup goroutine.
func (m *Memory) Close() error {
	m.once.Do(func() { close(m.stopCh) })
	return nil
}

// cleanup periodically removes expired entries.
func (m *Memory) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.mu.Lock()
			now := m.now()
			for key, entry := range m.entries {
				if now.After(entry.expiry) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		}
	}
}
