package driven

import (
	"context"

	"github.com/folio-labs/bindery-core/internal/core/domain"
)

// CatalogStore is the engine's boundary to the relational book catalog.
// Search operations are recall-maximizing substring matches; the scorer is
// responsible for filtering the false positives they return.
type CatalogStore interface {
	// SearchByTitle returns entries whose title contains the word
	SearchByTitle(ctx context.Context, word string, limit int) ([]domain.Book, error)

	// SearchByAuthor returns entries whose author contains the word
	SearchByAuthor(ctx context.Context, word string, limit int) ([]domain.Book, error)

	// Get retrieves a single entry by id
	Get(ctx context.Context, id int64) (*domain.Book, error)

	// AttachFile sets the entry's file fields only if they are currently
	// unset. Returns false when another writer claimed the entry first.
	AttachFile(ctx context.Context, bookID int64, att domain.FileAttachment) (bool, error)

	// Ping checks if the catalog backend is healthy
	Ping(ctx context.Context) error
}
