package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/folio-labs/bindery-core/internal/core/domain"
	"github.com/folio-labs/bindery-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChannelStore = (*ChannelStore)(nil)

// ChannelStore implements driven.ChannelStore using PostgreSQL.
// Channel credentials are encrypted at rest with AES-256-GCM.
type ChannelStore struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewChannelStore creates a new ChannelStore
func NewChannelStore(db *DB, encryptor *SecretEncryptor) *ChannelStore {
	return &ChannelStore{db: db, encryptor: encryptor}
}

// Save creates or updates a channel
func (s *ChannelStore) Save(ctx context.Context, channel *domain.Channel) error {
	credBlob, err := s.encryptor.Encrypt(channel.Credentials)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO channels (id, name, ref, credentials, enabled, batch_size, cursor, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			ref = EXCLUDED.ref,
			credentials = EXCLUDED.credentials,
			enabled = EXCLUDED.enabled,
			batch_size = EXCLUDED.batch_size,
			cursor = EXCLUDED.cursor,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		channel.ID,
		channel.Name,
		channel.Ref,
		credBlob,
		channel.Enabled,
		channel.BatchSize,
		channel.Cursor,
		channel.CreatedAt,
		channel.UpdatedAt,
	)
	return err
}

// Get retrieves a channel by ID
func (s *ChannelStore) Get(ctx context.Context, id string) (*domain.Channel, error) {
	query := `
		SELECT id, name, ref, credentials, enabled, batch_size, cursor, created_at, updated_at
		FROM channels
		WHERE id = $1
	`

	channel, err := s.scanChannel(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return channel, nil
}

// List retrieves all channels
func (s *ChannelStore) List(ctx context.Context) ([]*domain.Channel, error) {
	query := `
		SELECT id, name, ref, credentials, enabled, batch_size, cursor, created_at, updated_at
		FROM channels
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []*domain.Channel
	for rows.Next() {
		channel, err := s.scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return channels, nil
}

// Delete removes a channel
func (s *ChannelStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM channels WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// UpdateCursor records the smallest message id seen for a channel
func (s *ChannelStore) UpdateCursor(ctx context.Context, id string, cursor int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE channels SET cursor = $1, updated_at = $2 WHERE id = $3`,
		cursor, time.Now(), id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (s *ChannelStore) scanChannel(row rowScanner) (*domain.Channel, error) {
	var channel domain.Channel
	var credBlob []byte

	err := row.Scan(
		&channel.ID,
		&channel.Name,
		&channel.Ref,
		&credBlob,
		&channel.Enabled,
		&channel.BatchSize,
		&channel.Cursor,
		&channel.CreatedAt,
		&channel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(credBlob) > 0 {
		if err := s.encryptor.Decrypt(credBlob, &channel.Credentials); err != nil {
			return nil, err
		}
	}

	return &channel, nil
}
