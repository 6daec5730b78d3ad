package driven

import (
	"context"

	"github.com/folio-labs/bindery-core/internal/core/domain"
)

// MessageSource is the engine's boundary to the channel gateway. Paging is
// by monotonically decreasing message id; callers must tolerate pages
// shorter than requested (end of channel) and transient rate-limit errors.
type MessageSource interface {
	// ListChannelMessages returns up to limit file-bearing messages with
	// ids strictly below beforeID (0 = start from the newest).
	ListChannelMessages(ctx context.Context, channel *domain.Channel, limit int, beforeID int64) ([]domain.RawFile, error)

	// Download fetches the media payload of one message
	Download(ctx context.Context, channel *domain.Channel, messageID int64) ([]byte, error)

	// Ping checks if the gateway is reachable
	Ping(ctx context.Context) error
}
