package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/folio-labs/bindery-core/internal/core/domain"
)

// MockMessageSource is a mock implementation of MessageSource for testing
type MockMessageSource struct {
	mu       sync.RWMutex
	messages map[string][]domain.RawFile // channel ref -> files
	payloads map[string][]byte           // "ref:id" -> payload

	// ListErr is returned by ListChannelMessages when set
	ListErr error

	// DownloadErr is returned by Download when set
	DownloadErr error

	// DownloadFailures makes the first N downloads fail transiently
	DownloadFailures int

	// DownloadCalls counts Download invocations
	DownloadCalls int
}

// NewMockMessageSource creates a new MockMessageSource
func NewMockMessageSource() *MockMessageSource {
	return &MockMessageSource{
		messages: make(map[string][]domain.RawFile),
		payloads: make(map[string][]byte),
	}
}

// AddMessage seeds a file-bearing message with its payload
func (m *MockMessageSource) AddMessage(ref string, file domain.RawFile, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[ref] = append(m.messages[ref], file)
	m.payloads[fmt.Sprintf("%s:%d", ref, file.MessageID)] = payload
}

func (m *MockMessageSource) ListChannelMessages(ctx context.Context, channel *domain.Channel, limit int, beforeID int64) ([]domain.RawFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	files := append([]domain.RawFile{}, m.messages[channel.Ref]...)
	sort.Slice(files, func(i, j int) bool { return files[i].MessageID > files[j].MessageID })

	var out []domain.RawFile
	for _, f := range files {
		if beforeID > 0 && f.MessageID >= beforeID {
			continue
		}
		out = append(out, f)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockMessageSource) Download(ctx context.Context, channel *domain.Channel, messageID int64) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DownloadCalls++
	if m.DownloadErr != nil {
		return nil, m.DownloadErr
	}
	if m.DownloadFailures > 0 {
		m.DownloadFailures--
		return nil, fmt.Errorf("transient download failure")
	}
	payload, ok := m.payloads[fmt.Sprintf("%s:%d", channel.Ref, messageID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return payload, nil
}

func (m *MockMessageSource) Ping(ctx context.Context) error {
	return nil
}

// Reset clears all state
func (m *MockMessageSource) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = make(map[string][]domain.RawFile)
	m.payloads = make(map[string][]byte)
	m.ListErr = nil
	m.DownloadErr = nil
	m.DownloadFailures = 0
	m.DownloadCalls = 0
}
