package driven

import (
	"context"

	"github.com/folio-labs/bindery-core/internal/core/domain"
)

// LedgerStore persists the reconciliation ledger: one record per source
// message, binding it to a catalog entry and, once attached, to a file.
type LedgerStore interface {
	// GetByMessage retrieves the record for a (channel, message) pair.
	// Returns domain.ErrNotFound when the message was never seen.
	GetByMessage(ctx context.Context, channel string, messageID int64) (*domain.LedgerRecord, error)

	// GetByBook retrieves the record binding a catalog entry to an
	// ingested message. Returns domain.ErrNotFound when no record
	// references the entry.
	GetByBook(ctx context.Context, bookID int64) (*domain.LedgerRecord, error)

	// Record inserts the record if absent; an existing row is left
	// untouched.
	Record(ctx context.Context, rec *domain.LedgerRecord) error

	// BindFile sets the file binding on the record referencing a catalog
	// entry, only if it is currently unset. Returns false when another
	// writer claimed the record first. This is the write that enforces
	// at most one attached file per entry.
	BindFile(ctx context.Context, bookID int64, sourceFileID, fileURL string) (bool, error)

	// Ping checks if the ledger backend is healthy
	Ping(ctx context.Context) error
}
