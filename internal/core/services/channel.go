package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/folio-labs/bindery-core/internal/core/domain"
	"github.com/folio-labs/bindery-core/internal/core/ports/driven"
	"github.com/folio-labs/bindery-core/internal/core/ports/driving"
)

// Verify interface compliance
var _ driving.ChannelService = (*ChannelManager)(nil)

// ChannelManager manages channel configuration.
type ChannelManager struct {
	store  driven.ChannelStore
	logger *slog.Logger
}

// NewChannelManager creates a new ChannelManager.
func NewChannelManager(store driven.ChannelStore, logger *slog.Logger) *ChannelManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChannelManager{store: store, logger: logger}
}

// Create registers a new channel.
func (m *ChannelManager) Create(ctx context.Context, name, ref string, creds domain.ChannelCredentials) (*domain.Channel, error) {
	name = strings.TrimSpace(name)
	ref = strings.TrimSpace(ref)
	if name == "" || ref == "" {
		return nil, fmt.Errorf("%w: name and ref are required", domain.ErrInvalidInput)
	}

	channel := domain.NewChannel(name, ref, creds)
	if err := m.store.Save(ctx, channel); err != nil {
		return nil, fmt.Errorf("failed to save channel: %w", err)
	}

	m.logger.Info("channel created", "channel_id", channel.ID, "ref", channel.Ref)
	return channel, nil
}

// Get retrieves a channel by ID.
func (m *ChannelManager) Get(ctx context.Context, id string) (*domain.Channel, error) {
	return m.store.Get(ctx, id)
}

// List retrieves all channels.
func (m *ChannelManager) List(ctx context.Context) ([]*domain.Channel, error) {
	return m.store.List(ctx)
}

// Delete removes a channel.
func (m *ChannelManager) Delete(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.logger.Info("channel deleted", "channel_id", id)
	return nil
}

// SetEnabled toggles a channel's participation in scheduled passes.
func (m *ChannelManager) SetEnabled(ctx context.Context, id string, enabled bool) (*domain.Channel, error) {
	channel, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	channel.Enabled = enabled
	channel.UpdatedAt = time.Now()
	if err := m.store.Save(ctx, channel); err != nil {
		return nil, fmt.Errorf("failed to save channel: %w", err)
	}
	return channel, nil
}
