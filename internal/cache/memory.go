// Package cache holds the in-process key-value backend used for the cart when
// no redis address is configured.
package cache

import (
	"context"
	"sync"
)

// Memory is a map-backed key-value cache. It lives as long as the process.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty memory cache
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns the value stored under key; found is false when the key is absent.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set overwrites the value stored under key.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}
