package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/folio-labs/bindery-core/internal/core/domain"
	"github.com/folio-labs/bindery-core/internal/core/ports/driven/mocks"
	"github.com/folio-labs/bindery-core/internal/matching"
)

type reconcilerDeps struct {
	channels *mocks.MockChannelStore
	catalog  *mocks.MockCatalogStore
	ledger   *mocks.MockLedgerStore
	blobs    *mocks.MockBlobStore
	source   *mocks.MockMessageSource
	runs     *mocks.MockRunStore
	queue    *mocks.MockTaskQueue
	lock     *mocks.MockDistributedLock
}

func createTestReconciler(t *testing.T) (*Reconciler, *reconcilerDeps) {
	t.Helper()

	deps := &reconcilerDeps{
		channels: mocks.NewMockChannelStore(),
		catalog:  mocks.NewMockCatalogStore(),
		ledger:   mocks.NewMockLedgerStore(),
		blobs:    mocks.NewMockBlobStore(),
		source:   mocks.NewMockMessageSource(),
		runs:     mocks.NewMockRunStore(),
		queue:    mocks.NewMockTaskQueue(),
		lock:     mocks.NewMockDistributedLock(),
	}

	match := matching.DefaultConfig()
	match.KnownAuthors = append(match.KnownAuthors, "Иванов Иван")

	r := NewReconciler(ReconcilerConfig{
		Channels:        deps.channels,
		Catalog:         deps.catalog,
		Ledger:          deps.ledger,
		Blobs:           deps.blobs,
		Source:          deps.source,
		Runs:            deps.runs,
		Queue:           deps.queue,
		Lock:            deps.lock,
		Match:           match,
		DownloadBackoff: time.Millisecond,
	})
	return r, deps
}

func seedChannel(t *testing.T, deps *reconcilerDeps, enabled bool) *domain.Channel {
	t.Helper()
	channel := domain.NewChannel("books", "books", domain.ChannelCredentials{Token: "tok"})
	channel.ID = "ch-1"
	channel.Enabled = enabled
	if err := deps.channels.Save(context.Background(), channel); err != nil {
		t.Fatalf("seed channel: %v", err)
	}
	return channel
}

// seedImportedBook creates a catalog entry plus the ledger record that marks
// it as imported.
func seedImportedBook(t *testing.T, deps *reconcilerDeps, book domain.Book) {
	t.Helper()
	deps.catalog.AddBook(book)
	id := book.ID
	err := deps.ledger.Record(context.Background(), &domain.LedgerRecord{
		MessageID:   900 + id,
		Channel:     "books",
		BookID:      &id,
		ProcessedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
}

func TestReconcileChannel_AttachesMatch(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, true)
	seedImportedBook(t, deps, domain.Book{ID: 1, Title: "цикл Хроники севера", Author: "Иванов Иван"})
	deps.source.AddMessage("books", domain.RawFile{MessageID: 1001, FileName: "Иванов_Иван_Хроники_севера.zip"}, []byte("zip-bytes"))

	stats, err := r.ReconcileChannel(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Attached != 1 {
		t.Fatalf("attached = %d, want 1 (stats %+v)", stats.Attached, stats)
	}

	book, err := deps.catalog.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if !book.HasFile() {
		t.Error("expected file attached to catalog entry")
	}
	if book.SourceFileID != "1001.zip" {
		t.Errorf("source file id = %q, want 1001.zip", book.SourceFileID)
	}

	rec, err := deps.ledger.GetByBook(context.Background(), 1)
	if err != nil {
		t.Fatalf("get ledger: %v", err)
	}
	if !rec.Attached() {
		t.Error("expected ledger record bound to file")
	}
	if !deps.blobs.Has("1001.zip") {
		t.Error("expected blob stored under deterministic key")
	}
}

func TestReconcileChannel_TechnicalFileSkipsWithoutCatalogQuery(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, true)
	deps.source.AddMessage("books", domain.RawFile{MessageID: 1002, FileName: "random_thumb.jpg"}, nil)

	stats, err := r.ReconcileChannel(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Skipped != 1 || stats.ByReason[domain.SkipTechnicalFile] != 1 {
		t.Errorf("expected one technical_file skip, got %+v", stats)
	}
	if deps.catalog.SearchCalls != 0 {
		t.Errorf("catalog queried %d times for a technical file, want 0", deps.catalog.SearchCalls)
	}
}

func TestReconcileChannel_UnsupportedFormat(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, true)
	deps.source.AddMessage("books", domain.RawFile{MessageID: 1003, FileName: "Иванов - Хроники.pdf"}, nil)

	stats, err := r.ReconcileChannel(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ByReason[domain.SkipUnsupportedFormat] != 1 {
		t.Errorf("expected unsupported_format skip, got %+v", stats)
	}
}

func TestReconcileChannel_NoMatch(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, true)
	seedImportedBook(t, deps, domain.Book{ID: 1, Title: "цикл Хроники севера", Author: "Иванов Иван"})
	deps.source.AddMessage("books", domain.RawFile{MessageID: 1004, FileName: "совершенно_другое_произведение.zip"}, nil)

	stats, err := r.ReconcileChannel(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ByReason[domain.SkipNoMatch] != 1 {
		t.Errorf("expected no_match skip, got %+v", stats)
	}
}

func TestReconcileChannel_NotImported(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, true)
	// Catalog entry exists but no ledger record references it
	deps.catalog.AddBook(domain.Book{ID: 2, Title: "цикл Хроники севера", Author: "Иванов Иван"})
	deps.source.AddMessage("books", domain.RawFile{MessageID: 1005, FileName: "Иванов_Иван_Хроники_севера.zip"}, []byte("x"))

	stats, err := r.ReconcileChannel(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ByReason[domain.SkipNotImported] != 1 {
		t.Errorf("expected not_imported skip, got %+v", stats)
	}
}

func TestReconcileChannel_BookAlreadyHasFile(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, true)
	seedImportedBook(t, deps, domain.Book{
		ID: 3, Title: "цикл Хроники севера", Author: "Иванов Иван",
		FileURL: "https://blobs.test/old.zip",
	})
	deps.source.AddMessage("books", domain.RawFile{MessageID: 1006, FileName: "Иванов_Иван_Хроники_севера.zip"}, []byte("x"))

	stats, err := r.ReconcileChannel(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ByReason[domain.SkipBookHasFile] != 1 {
		t.Errorf("expected book_has_file skip, got %+v", stats)
	}
	if deps.source.DownloadCalls != 0 {
		t.Error("must not download when the entry already has a file")
	}
}

func TestReconcileChannel_AtMostOneAttachmentAcrossRuns(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, true)
	seedImportedBook(t, deps, domain.Book{ID: 4, Title: "цикл Хроники севера", Author: "Иванов Иван"})
	deps.source.AddMessage("books", domain.RawFile{MessageID: 1007, FileName: "Иванов_Иван_Хроники_севера.zip"}, []byte("x"))

	first, err := r.ReconcileChannel(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Attached != 1 {
		t.Fatalf("first run attached = %d, want 1", first.Attached)
	}

	second, err := r.ReconcileChannel(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Attached != 0 {
		t.Errorf("second run attached = %d, want 0", second.Attached)
	}
	if second.ByReason[domain.SkipAlreadyAttached] != 1 {
		t.Errorf("expected already_attached skip on second run, got %+v", second)
	}

	// Re-running over unchanged input keeps aggregate counts identical
	third, err := r.ReconcileChannel(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third.Processed != second.Processed || third.Attached != second.Attached ||
		third.Skipped != second.Skipped || third.Failed != second.Failed {
		t.Errorf("aggregate counts drifted between unchanged runs: %+v vs %+v", second, third)
	}

	rec, err := deps.ledger.GetByBook(context.Background(), 4)
	if err != nil {
		t.Fatalf("get ledger: %v", err)
	}
	if rec.SourceFileID != "1007.zip" {
		t.Errorf("ledger bound to %q, want 1007.zip", rec.SourceFileID)
	}
}

func TestReconcileChannel_ExistingBlobSkipsDownload(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, true)
	seedImportedBook(t, deps, domain.Book{ID: 5, Title: "цикл Хроники севера", Author: "Иванов Иван"})
	deps.source.AddMessage("books", domain.RawFile{MessageID: 1008, FileName: "Иванов_Иван_Хроники_севера.zip"}, []byte("x"))

	if _, err := deps.blobs.Put(context.Background(), "1008.zip", []byte("already-there"), "application/zip"); err != nil {
		t.Fatalf("seed blob: %v", err)
	}

	stats, err := r.ReconcileChannel(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Attached != 1 {
		t.Fatalf("attached = %d, want 1", stats.Attached)
	}
	if deps.source.DownloadCalls != 0 {
		t.Errorf("download called %d times despite existing blob", deps.source.DownloadCalls)
	}
}

func TestReconcileChannel_DownloadRetriesTransientFailures(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, true)
	seedImportedBook(t, deps, domain.Book{ID: 6, Title: "цикл Хроники севера", Author: "Иванов Иван"})
	deps.source.AddMessage("books", domain.RawFile{MessageID: 1009, FileName: "Иванов_Иван_Хроники_севера.zip"}, []byte("x"))
	deps.source.DownloadFailures = 2

	stats, err := r.ReconcileChannel(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Attached != 1 {
		t.Fatalf("attached = %d, want 1 after retries", stats.Attached)
	}
	if deps.source.DownloadCalls != 3 {
		t.Errorf("download calls = %d, want 3", deps.source.DownloadCalls)
	}
}

func TestReconcileChannel_DownloadExhaustionFailsFileOnly(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, true)
	seedImportedBook(t, deps, domain.Book{ID: 7, Title: "цикл Хроники севера", Author: "Иванов Иван"})
	deps.source.AddMessage("books", domain.RawFile{MessageID: 1010, FileName: "Иванов_Иван_Хроники_севера.zip"}, []byte("x"))
	deps.source.AddMessage("books", domain.RawFile{MessageID: 1011, FileName: "random_thumb.jpg"}, nil)
	deps.source.DownloadErr = errors.New("gateway unreachable")

	stats, err := r.ReconcileChannel(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("pass must not abort on a single file failure: %v", err)
	}
	if stats.Failed != 1 {
		t.Errorf("failed = %d, want 1", stats.Failed)
	}
	if stats.Processed != 2 {
		t.Errorf("processed = %d, want 2 (batch continues)", stats.Processed)
	}
}

func TestReconcileChannel_CommitFailureCompensatesUpload(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, true)
	seedImportedBook(t, deps, domain.Book{ID: 8, Title: "цикл Хроники севера", Author: "Иванов Иван"})
	deps.source.AddMessage("books", domain.RawFile{MessageID: 1012, FileName: "Иванов_Иван_Хроники_севера.zip"}, []byte("x"))
	deps.ledger.BindErr = errors.New("ledger unavailable")

	stats, err := r.ReconcileChannel(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Failed != 1 {
		t.Fatalf("failed = %d, want 1", stats.Failed)
	}
	if len(deps.blobs.RemovedKeys) != 1 || deps.blobs.RemovedKeys[0] != "1012.zip" {
		t.Errorf("expected compensating removal of 1012.zip, got %v", deps.blobs.RemovedKeys)
	}
}

func TestReconcileChannel_FailedSearchBranchYieldsNoMatch(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, true)
	deps.catalog.SearchErr = fmt.Errorf("catalog timeout")
	deps.source.AddMessage("books", domain.RawFile{MessageID: 1013, FileName: "Иванов_Иван_Хроники_севера.zip"}, []byte("x"))

	stats, err := r.ReconcileChannel(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("retrieval failures must not fail the pass: %v", err)
	}
	if stats.ByReason[domain.SkipNoMatch] != 1 {
		t.Errorf("expected no_match skip from empty branches, got %+v", stats)
	}
	if stats.Failed != 0 {
		t.Errorf("failed = %d, want 0", stats.Failed)
	}
}

func TestReconcileChannel_Disabled(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, false)

	if _, err := r.ReconcileChannel(context.Background(), "ch-1"); !errors.Is(err, domain.ErrChannelDisabled) {
		t.Errorf("error = %v, want ErrChannelDisabled", err)
	}
}

func TestReconcileChannel_LockHeld(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, true)

	acquired, err := deps.lock.Acquire(context.Background(), "reconcile:ch-1", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("pre-acquire lock: %v %v", acquired, err)
	}

	if _, err := r.ReconcileChannel(context.Background(), "ch-1"); !errors.Is(err, domain.ErrRunInProgress) {
		t.Errorf("error = %v, want ErrRunInProgress", err)
	}
}

func TestReconcileChannel_UpdatesRunState(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, true)
	deps.source.AddMessage("books", domain.RawFile{MessageID: 1014, FileName: "random_thumb.jpg"}, nil)

	if _, err := r.ReconcileChannel(context.Background(), "ch-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state, err := deps.runs.Get(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("get run state: %v", err)
	}
	if state.Status != domain.RunStatusCompleted {
		t.Errorf("status = %q, want completed", state.Status)
	}
	if state.Stats.Processed != 1 {
		t.Errorf("persisted stats processed = %d, want 1", state.Stats.Processed)
	}
}

func TestReconcileAll_SkipsDisabledChannels(t *testing.T) {
	r, deps := createTestReconciler(t)
	enabled := seedChannel(t, deps, true)

	disabled := domain.NewChannel("off", "off", domain.ChannelCredentials{})
	disabled.ID = "ch-2"
	disabled.Enabled = false
	if err := deps.channels.Save(context.Background(), disabled); err != nil {
		t.Fatalf("seed channel: %v", err)
	}

	results, err := r.ReconcileAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := results[enabled.ID]; !ok {
		t.Error("enabled channel missing from results")
	}
	if _, ok := results[disabled.ID]; ok {
		t.Error("disabled channel must not be reconciled")
	}
}

func TestTriggerChannel_Enqueues(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, true)

	taskID, err := r.TriggerChannel(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	task, err := deps.queue.GetTask(context.Background(), taskID)
	if err != nil {
		t.Fatalf("task not enqueued: %v", err)
	}
	if task.Type != domain.TaskTypeReconcileChannel || task.ChannelID() != "ch-1" {
		t.Errorf("unexpected task %+v", task)
	}
}

func TestTriggerChannel_DisabledChannel(t *testing.T) {
	r, deps := createTestReconciler(t)
	seedChannel(t, deps, false)

	if _, err := r.TriggerChannel(context.Background(), "ch-1"); !errors.Is(err, domain.ErrChannelDisabled) {
		t.Errorf("error = %v, want ErrChannelDisabled", err)
	}
}
