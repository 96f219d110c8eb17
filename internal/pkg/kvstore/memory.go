package kvstore

import (
	"context"
	"sync"
)

// MemoryStore keeps documents in process memory. It backs tests and the
// "memory" storage backend.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     map[string]Document
	watchers map[chan Change]struct{}
	closed   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string]Document),
		watchers: make(map[chan Change]struct{}),
	}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Document{}, ErrClosed
	}
	doc, ok := m.docs[key]
	if !ok {
		return Document{}, ErrNotFound
	}
	doc.Data = append([]byte(nil), doc.Data...)
	return doc, nil
}

func (m *MemoryStore) Put(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}
	current := m.docs[key].Version
	if current != expectedVersion {
		return 0, ErrVersionConflict
	}
	next := current + 1
	m.docs[key] = Document{Key: key, Data: append([]byte(nil), data...), Version: next}
	m.notify(Change{Key: key})
	return next, nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if _, ok := m.docs[key]; !ok {
		return nil
	}
	delete(m.docs, key)
	m.notify(Change{Key: key, Deleted: true})
	return nil
}

func (m *MemoryStore) Watch(ctx context.Context) (<-chan Change, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	ch := make(chan Change, 64)
	m.watchers[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.watchers[ch]; ok {
			delete(m.watchers, ch)
			close(ch)
		}
	}()
	return ch, nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	for ch := range m.watchers {
		delete(m.watchers, ch)
		close(ch)
	}
	return nil
}

// notify must be called with m.mu held.
func (m *MemoryStore) notify(c Change) {
	for ch := range m.watchers {
		select {
		case ch <- c:
		default:
			// Slow watcher; it resyncs on its next reload.
		}
	}
}
