// Package localcache is the narrow client-side key/value cache. Its only job is to remember
// the active portfolio identifier between reloads; it is never authoritative over the
// remote service.
package localcache

import (
	"context"
	"sync"

	"github.com/bug-createdme/2share/internal/apperror"
)

// Cache stores string values by key. Get returns an error wrapping apperror.ErrNotFound
// for a missing key.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context, key string) error
}

// ActivePortfolioKey is the cache key holding the active portfolio id for user. An empty
// user means an anonymous session.
func ActivePortfolioKey(user string) string {
	if user == "" {
		user = "anonymous"
	}
	return "2share:" + user + ":active_portfolio"
}

// Memory is an in-process Cache.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ Cache = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", apperror.NotFound("cache key", key)
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
