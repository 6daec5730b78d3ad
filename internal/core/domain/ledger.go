package domain

import "time"

// LedgerRecord is one row of the reconciliation ledger: which source messages
// have been seen, which catalog entry each was bound to, and whether a file
// was attached. One row per (channel, message).
type LedgerRecord struct {
	// MessageID is the source message identifier
	MessageID int64 `json:"message_id"`

	// Channel is the channel the message was read from
	Channel string `json:"channel"`

	// BookID is the catalog entry this message was bound to (nil when none)
	BookID *int64 `json:"book_id,omitempty"`

	// SourceFileID is the blob key of the attached file ("" until attached)
	SourceFileID string `json:"source_file_id,omitempty"`

	// FileURL is the blob-store URL of the attached file
	FileURL string `json:"file_url,omitempty"`

	// ProcessedAt is when this message was last processed
	ProcessedAt time.Time `json:"processed_at"`
}

// Attached reports whether this record already carries an attached file.
func (r *LedgerRecord) Attached() bool {
	return r.SourceFileID != ""
}
