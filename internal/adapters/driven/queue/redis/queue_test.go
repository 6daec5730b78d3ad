package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/folio-labs/bindery-core/internal/core/domain"
	"github.com/folio-labs/bindery-core/internal/core/ports/driven"
)

func setupTestQueue(t *testing.T) (*Queue, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	q, err := NewQueue(client, "test-worker")
	if err != nil {
		t.Fatalf("failed to create queue: %v", err)
	}

	return q, func() {
		client.Close()
		mr.Close()
	}
}

func TestQueue_EnqueueDequeue(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := domain.NewReconcileChannelTask("ch-1")
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	got, err := q.DequeueWithTimeout(ctx, 1)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if got == nil {
		t.Fatal("expected a task")
	}
	if got.ID != task.ID {
		t.Errorf("task ID = %s, want %s", got.ID, task.ID)
	}
	if got.Status != domain.TaskStatusProcessing {
		t.Errorf("status = %s, want processing", got.Status)
	}
	if got.ChannelID() != "ch-1" {
		t.Errorf("channel_id = %s, want ch-1", got.ChannelID())
	}
}

func TestQueue_Ack(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := domain.NewReconcileAllTask()
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	got, err := q.DequeueWithTimeout(ctx, 1)
	if err != nil || got == nil {
		t.Fatalf("dequeue: %v %v", got, err)
	}

	if err := q.Ack(ctx, got.ID); err != nil {
		t.Fatalf("ack: %v", err)
	}

	stored, err := q.GetTask(ctx, got.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Status != domain.TaskStatusCompleted {
		t.Errorf("status = %s, want completed", stored.Status)
	}
}

func TestQueue_Nack_ExhaustedMarksFailed(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := domain.NewReconcileChannelTask("ch-1")
	task.MaxAttempts = 1
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	got, err := q.DequeueWithTimeout(ctx, 1)
	if err != nil || got == nil {
		t.Fatalf("dequeue: %v %v", got, err)
	}

	if err := q.Nack(ctx, got.ID, "gateway unreachable"); err != nil {
		t.Fatalf("nack: %v", err)
	}

	stored, err := q.GetTask(ctx, got.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Status != domain.TaskStatusFailed {
		t.Errorf("status = %s, want failed", stored.Status)
	}
	if stored.Error != "gateway unreachable" {
		t.Errorf("error = %q", stored.Error)
	}
}

func TestQueue_Nack_RetrySchedules(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := domain.NewReconcileChannelTask("ch-1")
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	got, err := q.DequeueWithTimeout(ctx, 1)
	if err != nil || got == nil {
		t.Fatalf("dequeue: %v %v", got, err)
	}

	if err := q.Nack(ctx, got.ID, "transient"); err != nil {
		t.Fatalf("nack: %v", err)
	}

	stored, err := q.GetTask(ctx, got.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Status != domain.TaskStatusPending {
		t.Errorf("status = %s, want pending", stored.Status)
	}
}

func TestQueue_GetTask_NotFound(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()

	if _, err := q.GetTask(context.Background(), "absent"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestQueue_ListTasks_FilterByType(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	if err := q.Enqueue(ctx, domain.NewReconcileChannelTask("ch-1")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, domain.NewReconcileAllTask()); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	tasks, err := q.ListTasks(ctx, driven.TaskFilter{Type: domain.TaskTypeReconcileAll})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	if tasks[0].Type != domain.TaskTypeReconcileAll {
		t.Errorf("type = %s", tasks[0].Type)
	}
}

func TestQueue_Stats(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	if err := q.Enqueue(ctx, domain.NewReconcileChannelTask("ch-1")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	stats, err := q.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.PendingCount != 1 {
		t.Errorf("pending = %d, want 1", stats.PendingCount)
	}
}
