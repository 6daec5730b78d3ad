package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/folio-labs/bindery-core/internal/core/domain"
)

// MockCatalogStore is a mock implementation of CatalogStore for testing
type MockCatalogStore struct {
	mu    sync.RWMutex
	books map[int64]*domain.Book

	// SearchErr is returned by every search call when set
	SearchErr error

	// SearchCalls counts search invocations (both fields)
	SearchCalls int

	// AttachErr is returned by AttachFile when set
	AttachErr error
}

// NewMockCatalogStore creates a new MockCatalogStore
func NewMockCatalogStore() *MockCatalogStore {
	return &MockCatalogStore{
		books: make(map[int64]*domain.Book),
	}
}

// AddBook seeds a catalog entry
func (m *MockCatalogStore) AddBook(book domain.Book) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := book
	m.books[book.ID] = &b
}

func (m *MockCatalogStore) SearchByTitle(ctx context.Context, word string, limit int) ([]domain.Book, error) {
	return m.search(word, limit, func(b *domain.Book) string { return b.Title })
}

func (m *MockCatalogStore) SearchByAuthor(ctx context.Context, word string, limit int) ([]domain.Book, error) {
	return m.search(word, limit, func(b *domain.Book) string { return b.Author })
}

func (m *MockCatalogStore) search(word string, limit int, field func(*domain.Book) string) ([]domain.Book, error) {
	m.mu.Lock()
	m.SearchCalls++
	err := m.SearchErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Book
	lower := strings.ToLower(word)
	for _, b := range m.books {
		if strings.Contains(strings.ToLower(field(b)), lower) {
			out = append(out, *b)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockCatalogStore) Get(ctx context.Context, id int64) (*domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := *b
	return &copy, nil
}

func (m *MockCatalogStore) AttachFile(ctx context.Context, bookID int64, att domain.FileAttachment) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AttachErr != nil {
		return false, m.AttachErr
	}
	b, ok := m.books[bookID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if b.FileURL != "" {
		return false, nil
	}
	b.FileURL = att.URL
	b.FileSizeBytes = att.SizeBytes
	b.FileFormat = att.Format
	b.SourceFileID = att.SourceFileID
	return true, nil
}

func (m *MockCatalogStore) Ping(ctx context.Context) error {
	return nil
}

// Reset clears all state
func (m *MockCatalogStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books = make(map[int64]*domain.Book)
	m.SearchErr = nil
	m.SearchCalls = 0
	m.AttachErr = nil
}
