package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/folio-labs/bindery-core/internal/core/domain"
	"github.com/folio-labs/bindery-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.CatalogStore = (*CatalogStore)(nil)

// CatalogStore implements driven.CatalogStore using PostgreSQL
type CatalogStore struct {
	db *DB
}

// NewCatalogStore creates a new CatalogStore
func NewCatalogStore(db *DB) *CatalogStore {
	return &CatalogStore{db: db}
}

const bookColumns = `id, title, author, publication_year, file_url, file_size_bytes, file_format, source_file_id, created_at, updated_at`

// SearchByTitle returns entries whose title contains the word, case-insensitively.
func (s *CatalogStore) SearchByTitle(ctx context.Context, word string, limit int) ([]domain.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE title ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT $2
	`
	return s.queryBooks(ctx, query, word, limit)
}

// SearchByAuthor returns entries whose author contains the word, case-insensitively.
func (s *CatalogStore) SearchByAuthor(ctx context.Context, word string, limit int) ([]domain.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE author ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT $2
	`
	return s.queryBooks(ctx, query, word, limit)
}

// Get retrieves a catalog entry by ID
func (s *CatalogStore) Get(ctx context.Context, id int64) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := scanBook(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

// AttachFile sets the entry's file fields only if no file is attached yet.
// The WHERE clause makes the write conditional, so two concurrent passes
// cannot both claim the same entry.
func (s *CatalogStore) AttachFile(ctx context.Context, bookID int64, att domain.FileAttachment) (bool, error) {
	query := `
		UPDATE books
		SET file_url = $1, file_size_bytes = $2, file_format = $3, source_file_id = $4, updated_at = $5
		WHERE id = $6 AND (file_url IS NULL OR file_url = '')
	`

	result, err := s.db.ExecContext(ctx, query,
		att.URL,
		att.SizeBytes,
		att.Format,
		att.SourceFileID,
		time.Now(),
		bookID,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// Ping checks if the database is reachable
func (s *CatalogStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*domain.Book, error) {
	var book domain.Book
	var year sql.NullInt64
	var fileURL, fileFormat, sourceFileID sql.NullString
	var fileSize sql.NullInt64

	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&year,
		&fileURL,
		&fileSize,
		&fileFormat,
		&sourceFileID,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if year.Valid {
		y := int(year.Int64)
		book.PublicationYear = &y
	}
	book.FileURL = fileURL.String
	book.FileSizeBytes = fileSize.Int64
	book.FileFormat = fileFormat.String
	book.SourceFileID = sourceFileID.String

	return &book, nil
}

func (s *CatalogStore) queryBooks(ctx context.Context, query string, args ...any) ([]domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *book)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return books, nil
}
