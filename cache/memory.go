package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/hybrec/core"
)

// DefaultTTL 是结果缓存的默认有效期。
const DefaultTTL = 300 * time.Second

type memoryEntry struct {
	items     []*core.Item
	expiresAt time.Time
}

// Memory 是进程内的 TTL 缓存实现。
// 读多写少、临界区极小，单把读写锁足够。
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory 创建内存缓存，ttl <= 0 时使用 DefaultTTL。
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get 读取缓存，过期条目在读取时惰性删除。
func (m *Memory) Get(_ context.Context, key string) ([]*core.Item, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		// 双检，避免删掉并发写入的新条目
		if cur, ok := m.entries[key]; ok && m.now().After(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, core.ErrStoreNotFound
	}
	return entry.items, nil
}

func (m *Memory) Set(_ context.Context, key string, items []*core.Item) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{items: items, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

// CleanupExpired 主动清理过期条目并返回清理数量，用于限制内存增长。
func (m *Memory) CleanupExpired() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Len 返回当前条目数（含未被惰性清理的过期条目）。
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
