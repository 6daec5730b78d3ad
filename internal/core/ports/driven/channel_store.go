package driven

import (
	"context"

	"github.com/folio-labs/bindery-core/internal/core/domain"
)

// ChannelStore persists channel configuration. Credentials are encrypted
// at rest by the implementation.
type ChannelStore interface {
	// Save creates or updates a channel
	Save(ctx context.Context, channel *domain.Channel) error

	// Get retrieves a channel by ID
	Get(ctx context.Context, id string) (*domain.Channel, error)

	// List retrieves all channels
	List(ctx context.Context) ([]*domain.Channel, error)

	// Delete removes a channel
	Delete(ctx context.Context, id string) error

	// UpdateCursor records the smallest message id seen for a channel
	UpdateCursor(ctx context.Context, id string, cursor int64) error
}

// RunStore persists per-channel reconciliation state.
type RunStore interface {
	// Save creates or updates run state
	Save(ctx context.Context, state *domain.RunState) error

	// Get retrieves run state for a channel; a channel never run before
	// yields a default idle state, not an error
	Get(ctx context.Context, channelID string) (*domain.RunState, error)

	// List retrieves run state for all channels
	List(ctx context.Context) ([]*domain.RunState, error)

	// UpdateStatus updates only the status field
	UpdateStatus(ctx context.Context, channelID string, status domain.RunStatus) error
}
