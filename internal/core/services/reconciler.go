package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/folio-labs/bindery-core/internal/core/domain"
	"github.com/folio-labs/bindery-core/internal/core/ports/driven"
	"github.com/folio-labs/bindery-core/internal/core/ports/driving"
	"github.com/folio-labs/bindery-core/internal/matching"
)

// Verify interface compliance
var _ driving.ReconcileService = (*Reconciler)(nil)

const reconcileLockPrefix = "reconcile:"

// Reconciler coordinates the per-channel reconciliation pipeline:
//  1. Get channel config
//  2. Acquire the channel's distributed lock
//  3. Page file-bearing messages from the source
//  4. Run each file through the matching state machine
//  5. Commit attachments with conditional writes
//  6. Update run state and cursor
type Reconciler struct {
	channels driven.ChannelStore
	catalog  driven.CatalogStore
	ledger   driven.LedgerStore
	blobs    driven.BlobStore
	source   driven.MessageSource
	runs     driven.RunStore
	queue    driven.TaskQueue
	lock     driven.DistributedLock
	match    matching.Config

	batchSize       int
	pageSize        int
	searchLimit     int
	downloadTimeout time.Duration
	downloadRetries int
	downloadBackoff time.Duration
	lockTTL         time.Duration
	logger          *slog.Logger
}

// ReconcilerConfig holds dependencies for Reconciler.
type ReconcilerConfig struct {
	Channels driven.ChannelStore
	Catalog  driven.CatalogStore
	Ledger   driven.LedgerStore
	Blobs    driven.BlobStore
	Source   driven.MessageSource
	Runs     driven.RunStore
	Queue    driven.TaskQueue
	Lock     driven.DistributedLock
	Match    matching.Config

	// BatchSize bounds how many files one pass processes (default 200)
	BatchSize int

	// PageSize is messages per gateway call (default 50)
	PageSize int

	// SearchLimit bounds each candidate sub-query (default 50)
	SearchLimit int

	// DownloadTimeout is the per-attempt media download deadline
	// (default 2 minutes)
	DownloadTimeout time.Duration

	// DownloadRetries is the number of download attempts (default 3)
	DownloadRetries int

	// DownloadBackoff is the linear backoff base between attempts
	// (default 1 second)
	DownloadBackoff time.Duration

	// LockTTL is the distributed lock expiry (default 10 minutes)
	LockTTL time.Duration

	Logger *slog.Logger
}

// NewReconciler creates a new reconciler.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 50
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 2 * time.Minute
	}
	if cfg.DownloadRetries <= 0 {
		cfg.DownloadRetries = 3
	}
	if cfg.DownloadBackoff <= 0 {
		cfg.DownloadBackoff = time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}

	return &Reconciler{
		channels:        cfg.Channels,
		catalog:         cfg.Catalog,
		ledger:          cfg.Ledger,
		blobs:           cfg.Blobs,
		source:          cfg.Source,
		runs:            cfg.Runs,
		queue:           cfg.Queue,
		lock:            cfg.Lock,
		match:           cfg.Match,
		batchSize:       cfg.BatchSize,
		pageSize:        cfg.PageSize,
		searchLimit:     cfg.SearchLimit,
		downloadTimeout: cfg.DownloadTimeout,
		downloadRetries: cfg.DownloadRetries,
		downloadBackoff: cfg.DownloadBackoff,
		lockTTL:         cfg.LockTTL,
		logger:          logger,
	}
}

// ReconcileChannel runs one pass over a channel. Files are processed
// sequentially: two files must never race to claim the same catalog entry.
func (r *Reconciler) ReconcileChannel(ctx context.Context, channelID string) (*domain.RunStats, error) {
	startTime := time.Now()

	r.logger.Info("starting reconciliation", "channel_id", channelID)

	channel, err := r.channels.Get(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	if !channel.Enabled {
		return nil, domain.ErrChannelDisabled
	}

	lockName := reconcileLockPrefix + channelID
	acquired, err := r.lock.Acquire(ctx, lockName, r.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return nil, domain.ErrRunInProgress
	}
	defer func() {
		if err := r.lock.Release(context.WithoutCancel(ctx), lockName); err != nil {
			r.logger.Warn("failed to release lock", "channel_id", channelID, "error", err)
		}
	}()

	state, err := r.runs.Get(ctx, channelID)
	if err != nil {
		state = &domain.RunState{ChannelID: channelID, Status: domain.RunStatusIdle}
	}
	now := time.Now()
	state.Status = domain.RunStatusRunning
	state.StartedAt = &now
	state.Error = ""
	if err := r.runs.Save(ctx, state); err != nil {
		r.logger.Warn("failed to update run state to running", "error", err)
	}

	stats := domain.RunStats{}
	var beforeID int64
	minSeen := int64(0)

	for stats.Processed < r.batchSize {
		select {
		case <-ctx.Done():
			return r.failRun(ctx, state, startTime, ctx.Err())
		default:
		}

		limit := r.pageSize
		if remaining := r.batchSize - stats.Processed; remaining < limit {
			limit = remaining
		}

		files, err := r.source.ListChannelMessages(ctx, channel, limit, beforeID)
		if err != nil {
			return r.failRun(ctx, state, startTime, fmt.Errorf("failed to list messages: %w", err))
		}
		if len(files) == 0 {
			break
		}

		for _, file := range files {
			outcome := r.processFile(ctx, channel, file)
			stats.Record(outcome)
			r.logOutcome(channel, outcome)

			if minSeen == 0 || file.MessageID < minSeen {
				minSeen = file.MessageID
			}
		}

		beforeID = files[len(files)-1].MessageID
		if len(files) < limit {
			break
		}
	}

	if minSeen > 0 {
		if err := r.channels.UpdateCursor(ctx, channelID, minSeen); err != nil {
			r.logger.Warn("failed to update cursor", "channel_id", channelID, "error", err)
		}
	}

	completedAt := time.Now()
	state.Status = domain.RunStatusCompleted
	state.LastRunAt = &completedAt
	state.CompletedAt = &completedAt
	state.Cursor = minSeen
	state.Stats = stats
	state.Error = ""
	if err := r.runs.Save(ctx, state); err != nil {
		r.logger.Warn("failed to update run state", "error", err)
	}

	r.logger.Info("reconciliation completed",
		"channel_id", channelID,
		"duration_seconds", time.Since(startTime).Seconds(),
		"processed", stats.Processed,
		"attached", stats.Attached,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)

	return &stats, nil
}

// ReconcileAll runs one pass over every enabled channel.
func (r *Reconciler) ReconcileAll(ctx context.Context) (map[string]*domain.RunStats, error) {
	channels, err := r.channels.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	results := make(map[string]*domain.RunStats)
	for _, channel := range channels {
		if !channel.Enabled {
			continue
		}
		stats, err := r.ReconcileChannel(ctx, channel.ID)
		if err != nil {
			r.logger.Error("reconciliation failed", "channel_id", channel.ID, "error", err)
			continue
		}
		results[channel.ID] = stats
	}
	return results, nil
}

// TriggerChannel enqueues an asynchronous pass for one channel.
func (r *Reconciler) TriggerChannel(ctx context.Context, channelID string) (string, error) {
	channel, err := r.channels.Get(ctx, channelID)
	if err != nil {
		return "", fmt.Errorf("failed to get channel: %w", err)
	}
	if !channel.Enabled {
		return "", domain.ErrChannelDisabled
	}

	task := domain.NewReconcileChannelTask(channelID)
	if err := r.queue.Enqueue(ctx, task); err != nil {
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}
	return task.ID, nil
}

// TriggerAll enqueues an asynchronous pass over all enabled channels.
func (r *Reconciler) TriggerAll(ctx context.Context) (string, error) {
	task := domain.NewReconcileAllTask()
	if err := r.queue.Enqueue(ctx, task); err != nil {
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}
	return task.ID, nil
}

// GetRunState returns the latest pass state for a channel.
func (r *Reconciler) GetRunState(ctx context.Context, channelID string) (*domain.RunState, error) {
	return r.runs.Get(ctx, channelID)
}

// ListRunStates returns pass state for every known channel.
func (r *Reconciler) ListRunStates(ctx context.Context) ([]*domain.RunState, error) {
	return r.runs.List(ctx)
}

// processFile walks one file through the matching state machine. Every
// terminal state carries a reason code; errors never abort the pass.
func (r *Reconciler) processFile(ctx context.Context, channel *domain.Channel, file domain.RawFile) domain.Outcome {
	out := domain.Outcome{MessageID: file.MessageID, FileName: file.FileName}

	if domain.IsTechnicalName(file.FileName) {
		return skip(out, domain.SkipTechnicalFile)
	}

	format, ok := domain.FormatFor(file.FileName)
	if !ok {
		return skip(out, domain.SkipUnsupportedFormat)
	}

	meta := r.match.ExtractMeta(file.FileName)
	terms := r.match.SearchWords(file.FileName)
	if len(terms) == 0 {
		return skip(out, domain.SkipNoMetadata)
	}

	query := matching.Query{FileName: file.FileName, Meta: meta, SearchTerms: terms}
	candidates := r.findCandidates(ctx, terms)

	results := make([]matching.Result, 0, len(candidates))
	for _, book := range candidates {
		results = append(results, r.match.Score(query, book))
	}
	best, ok := matching.SelectMatch(results, r.match.Threshold)
	if !ok {
		return skip(out, domain.SkipNoMatch)
	}

	book := best.Book
	out.BookID = &book.ID
	out.Score = best.Score

	// Idempotency guard: ledger by message, ledger by entry, catalog
	// occupancy, then blob existence below.
	if rec, err := r.ledger.GetByMessage(ctx, channel.Ref, file.MessageID); err == nil {
		if rec.Attached() {
			return skip(out, domain.SkipAlreadyAttached)
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fail(out, fmt.Errorf("ledger lookup by message: %w", err))
	}

	bookRec, err := r.ledger.GetByBook(ctx, book.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return skip(out, domain.SkipNotImported)
	}
	if err != nil {
		return fail(out, fmt.Errorf("ledger lookup by book: %w", err))
	}
	if bookRec.Attached() {
		return skip(out, domain.SkipAlreadyAttached)
	}

	fresh, err := r.catalog.Get(ctx, book.ID)
	if err != nil {
		return fail(out, fmt.Errorf("catalog lookup: %w", err))
	}
	if fresh.HasFile() {
		return skip(out, domain.SkipBookHasFile)
	}

	key := domain.BlobKey(file.MessageID, format)
	url, size, uploaded, err := r.ensureBlob(ctx, channel, file, key, format)
	if err != nil {
		return fail(out, err)
	}

	return r.commit(ctx, out, book.ID, key, url, size, format, uploaded)
}

// ensureBlob returns the stored object for the file, downloading and
// uploading it when absent. The existence check is what makes re-runs skip
// duplicate downloads.
func (r *Reconciler) ensureBlob(ctx context.Context, channel *domain.Channel, file domain.RawFile, key string, format domain.FileFormat) (url string, size int64, uploaded bool, err error) {
	info, err := r.blobs.Head(ctx, key)
	if err == nil {
		return info.URL, info.SizeBytes, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", 0, false, fmt.Errorf("blob head: %w", err)
	}

	data, err := r.download(ctx, channel, file.MessageID)
	if err != nil {
		return "", 0, false, err
	}

	url, err = r.blobs.Put(ctx, key, data, format.MimeType())
	if err != nil {
		return "", 0, false, fmt.Errorf("blob put: %w", err)
	}
	return url, int64(len(data)), true, nil
}

// download fetches media with a per-attempt deadline and bounded linear
// backoff between attempts.
func (r *Reconciler) download(ctx context.Context, channel *domain.Channel, messageID int64) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= r.downloadRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, r.downloadTimeout)
		data, err := r.source.Download(attemptCtx, channel, messageID)
		cancel()
		if err == nil {
			return data, nil
		}
		lastErr = err
		r.logger.Warn("download attempt failed",
			"message_id", messageID,
			"attempt", attempt,
			"error", err,
		)
		if ctx.Err() != nil {
			break
		}
		if attempt < r.downloadRetries {
			select {
			case <-time.After(time.Duration(attempt) * r.downloadBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("download failed after %d attempts: %w", r.downloadRetries, lastErr)
}

// commit performs the two conditional writes. A lost claim is a skip, not an
// error; a write failure after upload triggers compensating blob cleanup and
// is surfaced because storage may now be inconsistent.
func (r *Reconciler) commit(ctx context.Context, out domain.Outcome, bookID int64, key, url string, size int64, format domain.FileFormat, uploaded bool) domain.Outcome {
	claimed, err := r.catalog.AttachFile(ctx, bookID, domain.FileAttachment{
		URL:          url,
		SizeBytes:    size,
		Format:       string(format),
		SourceFileID: key,
	})
	if err != nil {
		r.compensate(ctx, key, uploaded)
		return fail(out, fmt.Errorf("catalog attach: %w", err))
	}
	if !claimed {
		return skip(out, domain.SkipBookHasFile)
	}

	bound, err := r.ledger.BindFile(ctx, bookID, key, url)
	if err != nil {
		r.compensate(ctx, key, uploaded)
		return fail(out, fmt.Errorf("ledger bind: %w", err))
	}
	if !bound {
		return skip(out, domain.SkipAlreadyAttached)
	}

	out.Status = domain.OutcomeAttached
	return out
}

func (r *Reconciler) compensate(ctx context.Context, key string, uploaded bool) {
	if !uploaded {
		return
	}
	if err := r.blobs.Remove(context.WithoutCancel(ctx), key); err != nil {
		r.logger.Warn("compensating blob removal failed", "key", key, "error", err)
	}
}

// findCandidates fans out one catalog sub-query per search word per field
// and merges the branches in dispatch order, deduplicated by entry id. A
// failed branch is logged and contributes an empty set.
func (r *Reconciler) findCandidates(ctx context.Context, terms []string) []domain.Book {
	type branch func(context.Context, string, int) ([]domain.Book, error)
	branches := []branch{r.catalog.SearchByTitle, r.catalog.SearchByAuthor}

	slots := make([][]domain.Book, len(terms)*len(branches))
	var wg sync.WaitGroup
	for i, term := range terms {
		for j, search := range branches {
			wg.Add(1)
			go func(slot int, search branch, term string) {
				defer wg.Done()
				books, err := search(ctx, term, r.searchLimit)
				if err != nil {
					r.logger.Warn("candidate sub-query failed", "term", term, "error", err)
					return
				}
				slots[slot] = books
			}(i*len(branches)+j, search, term)
		}
	}
	wg.Wait()

	seen := make(map[int64]struct{})
	var out []domain.Book
	for _, books := range slots {
		for _, b := range books {
			if _, ok := seen[b.ID]; ok {
				continue
			}
			seen[b.ID] = struct{}{}
			out = append(out, b)
		}
	}
	return out
}

func (r *Reconciler) logOutcome(channel *domain.Channel, out domain.Outcome) {
	switch out.Status {
	case domain.OutcomeAttached:
		r.logger.Info("file attached",
			"channel", channel.Ref,
			"message_id", out.MessageID,
			"book_id", *out.BookID,
			"score", out.Score,
		)
	case domain.OutcomeSkipped:
		r.logger.Debug("file skipped",
			"channel", channel.Ref,
			"message_id", out.MessageID,
			"reason", out.Reason,
		)
	case domain.OutcomeFailed:
		r.logger.Error("file failed",
			"channel", channel.Ref,
			"message_id", out.MessageID,
			"error", out.Error,
		)
	}
}

// failRun marks the run as failed and returns the error.
func (r *Reconciler) failRun(ctx context.Context, state *domain.RunState, startTime time.Time, err error) (*domain.RunStats, error) {
	r.logger.Error("reconciliation failed",
		"channel_id", state.ChannelID,
		"duration_seconds", time.Since(startTime).Seconds(),
		"error", err,
	)

	now := time.Now()
	state.Status = domain.RunStatusFailed
	state.CompletedAt = &now
	state.Error = err.Error()
	if saveErr := r.runs.Save(context.WithoutCancel(ctx), state); saveErr != nil {
		r.logger.Warn("failed to update run state", "error", saveErr)
	}
	return nil, err
}

func skip(out domain.Outcome, reason domain.SkipReason) domain.Outcome {
	out.Status = domain.OutcomeSkipped
	out.Reason = reason
	return out
}

func fail(out domain.Outcome, err error) domain.Outcome {
	out.Status = domain.OutcomeFailed
	out.Error = err.Error()
	return out
}
