package store

import (
	"context"
	"sync"
)

// Memory keeps documents and blobs in process. Subscribers are notified
// synchronously on the writer's goroutine, outside the store's lock.
type Memory struct {
	mu     sync.Mutex
	docs   map[string][]byte
	blobs  map[string][]byte
	subs   map[string]map[int]func([]byte)
	nextID int
}

func NewMemory() *Memory {
	return &Memory{
		docs:  make(map[string][]byte),
		blobs: make(map[string][]byte),
		subs:  make(map[string]map[int]func([]byte)),
	}
}

func (m *Memory) Subscribe(ctx context.Context, path string, onChange func([]byte)) (func(), error) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	if m.subs[path] == nil {
		m.subs[path] = make(map[int]func([]byte))
	}
	m.subs[path][id] = onChange
	current := clone(m.docs[path])
	m.mu.Unlock()

	onChange(current)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs[path], id)
	}, nil
}

func (m *Memory) Write(ctx context.Context, path string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	if value == nil {
		delete(m.docs, path)
	} else {
		m.docs[path] = clone(value)
	}
	listeners := make([]func([]byte), 0, len(m.subs[path]))
	for _, fn := range m.subs[path] {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(clone(value))
	}
	return nil
}

func (m *Memory) ReadOnce(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.docs[path]), nil
}

func (m *Memory) PutBlob(ctx context.Context, id string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[id] = clone(data)
	return nil
}

func (m *Memory) GetBlob(ctx context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[id]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return clone(data), nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
