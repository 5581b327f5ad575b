// Package cache is the on-device key/value store that keeps the last known
// catalog when the remote store is unreachable.
package cache

import (
	"fmt"
	"sync"
)

// Local is a string key/value store.
type Local interface {
	// Get reports false when key has never been set.
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Open returns the backend named by driver: sqlite, redis or memory.
func Open(driver string, opts Options) (Local, func() error, error) {
	switch driver {
	case "", "sqlite":
		c, err := OpenSQLite(opts.Path)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	case "redis":
		c, err := NewRedis(opts.RedisAddress, opts.RedisPassword, opts.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	case "memory":
		return NewMemory(), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown cache driver %q", driver)
}

// Options configures Open.
type Options struct {
	Path          string
	RedisAddress  string
	RedisPassword string
	RedisDB       int
}

type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
