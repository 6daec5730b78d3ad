package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/folio-labs/bindery-core/internal/core/domain"
	"github.com/folio-labs/bindery-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RunStore = (*RunStore)(nil)

// RunStore implements driven.RunStore using PostgreSQL
type RunStore struct {
	db *DB
}

// NewRunStore creates a new RunStore
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// Save creates or updates run state
func (s *RunStore) Save(ctx context.Context, state *domain.RunState) error {
	statsJSON, err := json.Marshal(state.Stats)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO run_states (channel_id, status, last_run_at, next_run_at, cursor, stats, error, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (channel_id) DO UPDATE SET
			status = EXCLUDED.status,
			last_run_at = EXCLUDED.last_run_at,
			next_run_at = EXCLUDED.next_run_at,
			cursor = EXCLUDED.cursor,
			stats = EXCLUDED.stats,
			error = EXCLUDED.error,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at
	`

	_, err = s.db.ExecContext(ctx, query,
		state.ChannelID,
		string(state.Status),
		NullTime(state.LastRunAt),
		NullTime(state.NextRunAt),
		state.Cursor,
		statsJSON,
		state.Error,
		NullTime(state.StartedAt),
		NullTime(state.CompletedAt),
	)
	return err
}

// Get retrieves run state for a channel
func (s *RunStore) Get(ctx context.Context, channelID string) (*domain.RunState, error) {
	query := `
		SELECT channel_id, status, last_run_at, next_run_at, cursor, stats, error, started_at, completed_at
		FROM run_states
		WHERE channel_id = $1
	`

	state, err := scanRunState(s.db.QueryRowContext(ctx, query, channelID))
	if err == sql.ErrNoRows {
		// Return default state for a channel never run before
		return &domain.RunState{
			ChannelID: channelID,
			Status:    domain.RunStatusIdle,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

// List retrieves run states for all channels
func (s *RunStore) List(ctx context.Context) ([]*domain.RunState, error) {
	query := `
		SELECT channel_id, status, last_run_at, next_run_at, cursor, stats, error, started_at, completed_at
		FROM run_states
		ORDER BY last_run_at DESC NULLS LAST
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []*domain.RunState
	for rows.Next() {
		state, err := scanRunState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return states, nil
}

// UpdateStatus updates only the status field
func (s *RunStore) UpdateStatus(ctx context.Context, channelID string, status domain.RunStatus) error {
	query := `
		INSERT INTO run_states (channel_id, status)
		VALUES ($1, $2)
		ON CONFLICT (channel_id) DO UPDATE SET
			status = EXCLUDED.status
	`
	_, err := s.db.ExecContext(ctx, query, channelID, string(status))
	return err
}

func scanRunState(row rowScanner) (*domain.RunState, error) {
	var state domain.RunState
	var lastRunAt, nextRunAt, startedAt, completedAt sql.NullTime
	var errStr sql.NullString
	var statsJSON []byte

	err := row.Scan(
		&state.ChannelID,
		&state.Status,
		&lastRunAt,
		&nextRunAt,
		&state.Cursor,
		&statsJSON,
		&errStr,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	state.LastRunAt = TimePtr(lastRunAt)
	state.NextRunAt = TimePtr(nextRunAt)
	state.Error = errStr.String
	state.StartedAt = TimePtr(startedAt)
	state.CompletedAt = TimePtr(completedAt)

	if len(statsJSON) > 0 {
		if err := json.Unmarshal(statsJSON, &state.Stats); err != nil {
			return nil, err
		}
	}

	return &state, nil
}
