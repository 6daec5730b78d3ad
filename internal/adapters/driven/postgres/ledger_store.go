package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/folio-labs/bindery-core/internal/core/domain"
	"github.com/folio-labs/bindery-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.LedgerStore = (*LedgerStore)(nil)

// LedgerStore implements driven.LedgerStore using PostgreSQL
type LedgerStore struct {
	db *DB
}

// NewLedgerStore creates a new LedgerStore
func NewLedgerStore(db *DB) *LedgerStore {
	return &LedgerStore{db: db}
}

const ledgerColumns = `message_id, channel, book_id, source_file_id, file_url, processed_at`

// GetByMessage retrieves the record for a (channel, message) pair
func (s *LedgerStore) GetByMessage(ctx context.Context, channel string, messageID int64) (*domain.LedgerRecord, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger WHERE channel = $1 AND message_id = $2`
	return s.getOne(ctx, query, channel, messageID)
}

// GetByBook retrieves the record binding a catalog entry to an ingested message
func (s *LedgerStore) GetByBook(ctx context.Context, bookID int64) (*domain.LedgerRecord, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger WHERE book_id = $1`
	return s.getOne(ctx, query, bookID)
}

func (s *LedgerStore) getOne(ctx context.Context, query string, args ...any) (*domain.LedgerRecord, error) {
	var rec domain.LedgerRecord
	var bookID sql.NullInt64
	var sourceFileID, fileURL sql.NullString

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&rec.MessageID,
		&rec.Channel,
		&bookID,
		&sourceFileID,
		&fileURL,
		&rec.ProcessedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if bookID.Valid {
		rec.BookID = &bookID.Int64
	}
	rec.SourceFileID = sourceFileID.String
	rec.FileURL = fileURL.String

	return &rec, nil
}

// Record inserts the record if absent; an existing row is left untouched
func (s *LedgerStore) Record(ctx context.Context, rec *domain.LedgerRecord) error {
	processedAt := rec.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now()
	}

	query := `
		INSERT INTO ledger (message_id, channel, book_id, source_file_id, file_url, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (channel, message_id) DO NOTHING
	`

	var bookID sql.NullInt64
	if rec.BookID != nil {
		bookID = sql.NullInt64{Int64: *rec.BookID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.MessageID,
		rec.Channel,
		bookID,
		sql.NullString{String: rec.SourceFileID, Valid: rec.SourceFileID != ""},
		sql.NullString{String: rec.FileURL, Valid: rec.FileURL != ""},
		processedAt,
	)
	return err
}

// BindFile sets the file binding on the record referencing a catalog entry,
// only if it is currently unset. The conditional WHERE clause is what
// guarantees at most one attached file per entry.
func (s *LedgerStore) BindFile(ctx context.Context, bookID int64, sourceFileID, fileURL string) (bool, error) {
	query := `
		UPDATE ledger
		SET source_file_id = $1, file_url = $2, processed_at = $3
		WHERE book_id = $4 AND (source_file_id IS NULL OR source_file_id = '')
	`

	result, err := s.db.ExecContext(ctx, query, sourceFileID, fileURL, time.Now(), bookID)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows >= 1, nil
}

// Ping checks if the database is reachable
func (s *LedgerStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
