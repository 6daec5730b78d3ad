package mocks

import (
	"context"
	"sync"

	"github.com/folio-labs/bindery-core/internal/core/domain"
	"github.com/folio-labs/bindery-core/internal/core/ports/driven"
)

// MockBlobStore is a mock implementation of BlobStore for testing
type MockBlobStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string

	// PutErr is returned by Put when set
	PutErr error

	// RemovedKeys records compensating deletions
	RemovedKeys []string
}

// NewMockBlobStore creates a new MockBlobStore
func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *MockBlobStore) url(key string) string {
	return "https://blobs.test/" + key
}

func (m *MockBlobStore) Head(ctx context.Context, key string) (*driven.BlobInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &driven.BlobInfo{
		Key:         key,
		SizeBytes:   int64(len(data)),
		ContentType: m.types[key],
		URL:         m.url(key),
	}, nil
}

func (m *MockBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return "", m.PutErr
	}
	m.objects[key] = append([]byte{}, data...)
	m.types[key] = contentType
	return m.url(key), nil
}

func (m *MockBlobStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.types, key)
	m.RemovedKeys = append(m.RemovedKeys, key)
	return nil
}

func (m *MockBlobStore) Ping(ctx context.Context) error {
	return nil
}

// Has reports whether an object exists
func (m *MockBlobStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}

// Reset clears all state
func (m *MockBlobStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects = make(map[string][]byte)
	m.types = make(map[string]string)
	m.PutErr = nil
	m.RemovedKeys = nil
}
