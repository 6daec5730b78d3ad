package domain

import "time"

// OutcomeStatus is the terminal state of one file in a pass.
type OutcomeStatus string

const (
	OutcomeAttached OutcomeStatus = "attached"
	OutcomeSkipped  OutcomeStatus = "skipped"
	OutcomeFailed   OutcomeStatus = "failed"
)

// SkipReason is the machine-readable code attached to every skipped file.
type SkipReason string

const (
	// SkipTechnicalFile - filename matches an auxiliary-asset pattern
	SkipTechnicalFile SkipReason = "technical_file"
	// SkipUnsupportedFormat - extension is neither .fb2 nor .zip
	SkipUnsupportedFormat SkipReason = "unsupported_format"
	// SkipNoMetadata - extraction yielded no usable search words
	SkipNoMetadata SkipReason = "no_metadata"
	// SkipNoMatch - no candidate cleared the acceptance threshold
	SkipNoMatch SkipReason = "no_match"
	// SkipNotImported - matched entry is not yet known to the ledger
	SkipNotImported SkipReason = "not_imported"
	// SkipAlreadyAttached - ledger already binds a file to this message or entry
	SkipAlreadyAttached SkipReason = "already_attached"
	// SkipBookHasFile - catalog entry's file fields are already populated
	SkipBookHasFile SkipReason = "book_has_file"
)

// Outcome is the per-file result of a reconciliation pass.
type Outcome struct {
	MessageID int64         `json:"message_id"`
	FileName  string        `json:"file_name"`
	Status    OutcomeStatus `json:"status"`
	Reason    SkipReason    `json:"reason,omitempty"`
	BookID    *int64        `json:"book_id,omitempty"`
	Score     int           `json:"score,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// RunStats aggregates outcomes over one pass.
type RunStats struct {
	Processed int                `json:"processed"`
	Attached  int                `json:"attached"`
	Skipped   int                `json:"skipped"`
	Failed    int                `json:"failed"`
	ByReason  map[SkipReason]int `json:"by_reason,omitempty"`
}

// Record folds one outcome into the aggregate.
func (s *RunStats) Record(o Outcome) {
	s.Processed++
	switch o.Status {
	case OutcomeAttached:
		s.Attached++
	case OutcomeSkipped:
		s.Skipped++
		if s.ByReason == nil {
			s.ByReason = make(map[SkipReason]int)
		}
		s.ByReason[o.Reason]++
	case OutcomeFailed:
		s.Failed++
	}
}

// RunStatus is the lifecycle state of a channel's reconciliation.
type RunStatus string

const (
	RunStatusIdle      RunStatus = "idle"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunState tracks the latest reconciliation pass per channel.
type RunState struct {
	ChannelID   string     `json:"channel_id"`
	Status      RunStatus  `json:"status"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	NextRunAt   *time.Time `json:"next_run_at,omitempty"`
	Cursor      int64      `json:"cursor"`
	Stats       RunStats   `json:"stats"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
