package domain

import "time"

// Channel is one configured message channel to reconcile against the catalog.
type Channel struct {
	// ID is the unique identifier for this channel
	ID string `json:"id"`

	// Name is a human-readable label
	Name string `json:"name"`

	// Ref is the gateway-side channel reference (handle or numeric id)
	Ref string `json:"ref"`

	// Credentials authenticate against the channel gateway.
	// Encrypted at rest; never serialized to API responses.
	Credentials ChannelCredentials `json:"-"`

	// Enabled indicates whether scheduled passes include this channel
	Enabled bool `json:"enabled"`

	// BatchSize is how many messages one pass reads (0 = default)
	BatchSize int `json:"batch_size"`

	// Cursor is the smallest message id seen so far; paging walks
	// downward from here
	Cursor int64 `json:"cursor"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChannelCredentials is the secret material for the channel gateway.
type ChannelCredentials struct {
	Token string `json:"token"`
}

// NewChannel creates a channel with defaults applied.
func NewChannel(name, ref string, creds ChannelCredentials) *Channel {
	now := time.Now()
	return &Channel{
		ID:          GenerateID(),
		Name:        name,
		Ref:         ref,
		Credentials: creds,
		Enabled:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
