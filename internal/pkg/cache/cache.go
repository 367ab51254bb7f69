// Package cache provides the read-through cache injected into repository
// decorators. Each entity type owns a Namespace, so invalidation never
// reaches across entity boundaries.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Store is the backing key/value store.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
	DeletePrefix(prefix string)
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Memory is an in-process Store with a fixed TTL per entry.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (m *Memory) Get(key string) (any, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if m.ttl > 0 && m.now().After(e.expiresAt) {
		m.Delete(key)
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, expiresAt: m.now().Add(m.ttl)}
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *Memory) DeletePrefix(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
}

// Namespace scopes keys of one entity type, e.g. "salary_config".
type Namespace struct {
	prefix string
	store  Store
}

func NewNamespace(store Store, name string) Namespace {
	return Namespace{prefix: name + ":", store: store}
}

func (n Namespace) Get(id string) (any, bool) {
	return n.store.Get(n.prefix + id)
}

func (n Namespace) Set(id string, value any) {
	n.store.Set(n.prefix+id, value)
}

// Invalidate drops a single entity.
func (n Namespace) Invalidate(id string) {
	n.store.Delete(n.prefix + id)
}

// InvalidateAll drops every entry of this entity type.
func (n Namespace) InvalidateAll() {
	n.store.DeletePrefix(n.prefix)
}
