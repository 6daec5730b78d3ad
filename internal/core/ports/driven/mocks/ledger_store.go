package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/folio-labs/bindery-core/internal/core/domain"
)

// MockLedgerStore is a mock implementation of LedgerStore for testing
type MockLedgerStore struct {
	mu      sync.RWMutex
	byMsg   map[string]*domain.LedgerRecord
	byBook  map[int64]*domain.LedgerRecord
	BindErr error
}

// NewMockLedgerStore creates a new MockLedgerStore
func NewMockLedgerStore() *MockLedgerStore {
	return &MockLedgerStore{
		byMsg:  make(map[string]*domain.LedgerRecord),
		byBook: make(map[int64]*domain.LedgerRecord),
	}
}

func msgKey(channel string, messageID int64) string {
	return fmt.Sprintf("%s:%d", channel, messageID)
}

func (m *MockLedgerStore) GetByMessage(ctx context.Context, channel string, messageID int64) (*domain.LedgerRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byMsg[msgKey(channel, messageID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := *rec
	return &copy, nil
}

func (m *MockLedgerStore) GetByBook(ctx context.Context, bookID int64) (*domain.LedgerRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byBook[bookID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := *rec
	return &copy, nil
}

func (m *MockLedgerStore) Record(ctx context.Context, rec *domain.LedgerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := msgKey(rec.Channel, rec.MessageID)
	if _, ok := m.byMsg[key]; ok {
		return nil
	}
	copy := *rec
	m.byMsg[key] = &copy
	if copy.BookID != nil {
		m.byBook[*copy.BookID] = &copy
	}
	return nil
}

func (m *MockLedgerStore) BindFile(ctx context.Context, bookID int64, sourceFileID, fileURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BindErr != nil {
		return false, m.BindErr
	}
	rec, ok := m.byBook[bookID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if rec.SourceFileID != "" {
		return false, nil
	}
	rec.SourceFileID = sourceFileID
	rec.FileURL = fileURL
	rec.ProcessedAt = time.Now()
	return true, nil
}

func (m *MockLedgerStore) Ping(ctx context.Context) error {
	return nil
}

// Reset clears all state
func (m *MockLedgerStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byMsg = make(map[string]*domain.LedgerRecord)
	m.byBook = make(map[int64]*domain.LedgerRecord)
	m.BindErr = nil
}
