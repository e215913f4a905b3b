package worker

import (
	"context"
	"sort"
	"sync"
)

// MemoryStorage keeps partitions in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	caches map[string]map[string]*Entry
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{caches: make(map[string]map[string]*Entry)}
}

func (m *MemoryStorage) Open(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.caches[name]; !ok {
		m.caches[name] = make(map[string]*Entry)
	}
	return nil
}

func (m *MemoryStorage) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.caches))
	for name := range m.caches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStorage) Delete(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.caches[name]
	delete(m.caches, name)
	return ok, nil
}

func (m *MemoryStorage) Match(_ context.Context, name, url string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.caches[name][url]
	if !ok {
		return nil, ErrCacheMiss
	}
	return e.clone(), nil
}

func (m *MemoryStorage) Put(_ context.Context, name string, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.caches[name]
	if !ok {
		c = make(map[string]*Entry)
		m.caches[name] = c
	}
	c[e.URL] = e.clone()
	return nil
}

func (m *MemoryStorage) URLs(_ context.Context, name string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	urls := make([]string, 0, len(m.caches[name]))
	for u := range m.caches[name] {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls, nil
}

func (m *MemoryStorage) Remove(_ context.Context, name, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.caches[name], url)
	return nil
}
