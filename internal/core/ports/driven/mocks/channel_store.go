package mocks

import (
	"context"
	"sync"

	"github.com/folio-labs/bindery-core/internal/core/domain"
)

// MockChannelStore is a mock implementation of ChannelStore for testing
type MockChannelStore struct {
	mu       sync.RWMutex
	channels map[string]*domain.Channel
}

// NewMockChannelStore creates a new MockChannelStore
func NewMockChannelStore() *MockChannelStore {
	return &MockChannelStore{
		channels: make(map[string]*domain.Channel),
	}
}

func (m *MockChannelStore) Save(ctx context.Context, channel *domain.Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *channel
	m.channels[channel.ID] = &copy
	return nil
}

func (m *MockChannelStore) Get(ctx context.Context, id string) (*domain.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := *ch
	return &copy, nil
}

func (m *MockChannelStore) List(ctx context.Context) ([]*domain.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Channel, 0, len(m.channels))
	for _, ch := range m.channels {
		copy := *ch
		out = append(out, &copy)
	}
	return out, nil
}

func (m *MockChannelStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.channels[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.channels, id)
	return nil
}

func (m *MockChannelStore) UpdateCursor(ctx context.Context, id string, cursor int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[id]
	if !ok {
		return domain.ErrNotFound
	}
	ch.Cursor = cursor
	return nil
}

// Reset clears all state
func (m *MockChannelStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels = make(map[string]*domain.Channel)
}

// MockRunStore is a mock implementation of RunStore for testing
type MockRunStore struct {
	mu     sync.RWMutex
	states map[string]*domain.RunState
}

// NewMockRunStore creates a new MockRunStore
func NewMockRunStore() *MockRunStore {
	return &MockRunStore{
		states: make(map[string]*domain.RunState),
	}
}

func (m *MockRunStore) Save(ctx context.Context, state *domain.RunState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *state
	m.states[state.ChannelID] = &copy
	return nil
}

func (m *MockRunStore) Get(ctx context.Context, channelID string) (*domain.RunState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[channelID]
	if !ok {
		return &domain.RunState{
			ChannelID: channelID,
			Status:    domain.RunStatusIdle,
		}, nil
	}
	copy := *state
	return &copy, nil
}

func (m *MockRunStore) List(ctx context.Context) ([]*domain.RunState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.RunState, 0, len(m.states))
	for _, state := range m.states {
		copy := *state
		out = append(out, &copy)
	}
	return out, nil
}

func (m *MockRunStore) UpdateStatus(ctx context.Context, channelID string, status domain.RunStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[channelID]
	if !ok {
		state = &domain.RunState{ChannelID: channelID}
		m.states[channelID] = state
	}
	state.Status = status
	return nil
}

// Reset clears all state
func (m *MockRunStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = make(map[string]*domain.RunState)
}
