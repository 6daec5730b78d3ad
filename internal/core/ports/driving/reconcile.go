package driving

import (
	"context"

	"github.com/folio-labs/bindery-core/internal/core/domain"
)

// ReconcileService is the driving interface for reconciliation passes.
type ReconcileService interface {
	// ReconcileChannel runs one pass over a channel synchronously and
	// returns its aggregate stats
	ReconcileChannel(ctx context.Context, channelID string) (*domain.RunStats, error)

	// ReconcileAll runs one pass over every enabled channel
	ReconcileAll(ctx context.Context) (map[string]*domain.RunStats, error)

	// TriggerChannel enqueues an asynchronous pass for a channel and
	// returns the task id
	TriggerChannel(ctx context.Context, channelID string) (string, error)

	// TriggerAll enqueues an asynchronous pass over all enabled channels
	TriggerAll(ctx context.Context) (string, error)

	// GetRunState returns the latest pass state for a channel
	GetRunState(ctx context.Context, channelID string) (*domain.RunState, error)

	// ListRunStates returns pass state for every known channel
	ListRunStates(ctx context.Context) ([]*domain.RunState, error)
}

// ChannelService manages channel configuration.
type ChannelService interface {
	Create(ctx context.Context, name, ref string, creds domain.ChannelCredentials) (*domain.Channel, error)
	Get(ctx context.Context, id string) (*domain.Channel, error)
	List(ctx context.Context) ([]*domain.Channel, error)
	Delete(ctx context.Context, id string) error
	SetEnabled(ctx context.Context, id string, enabled bool) (*domain.Channel, error)
}
