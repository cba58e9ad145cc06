package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"rowlly_listings/config"
	"rowlly_listings/models"
	"rowlly_listings/storage"
)

type countingReloader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingReloader) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.err
}

func (r *countingReloader) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type recordingWorker struct {
	all        int
	properties []string
}

func (w *recordingWorker) Trigger()                  { w.all++ }
func (w *recordingWorker) TriggerProperty(id string) { w.properties = append(w.properties, id) }

func newQueue(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestProcessCommands(t *testing.T) {
	queue := newQueue(t)
	reloader := &countingReloader{}
	worker := &recordingWorker{}

	s := New(config.SchedulerConfig{}, reloader, queue)
	s.SetWorkers(worker)

	enqueue := func(cmd models.CommandType, params *models.CommandParams) {
		if _, err := queue.EnqueueCommand(cmd, params); err != nil {
			t.Fatalf("enqueue %s: %v", cmd, err)
		}
	}
	enqueue(models.CmdReloadCatalog, nil)
	enqueue(models.CmdCheckImages, &models.CommandParams{PropertyID: "3"})
	enqueue(models.CmdCheckImages, nil)
	enqueue("rescrape", nil)

	s.processCommands(context.Background())

	if reloader.count() != 1 {
		t.Fatalf("expected 1 reload, got %d", reloader.count())
	}
	if worker.all != 1 || len(worker.properties) != 1 || worker.properties[0] != "3" {
		t.Fatalf("unexpected triggers: all=%d properties=%v", worker.all, worker.properties)
	}

	// unknown and failing commands are still marked processed
	pending, err := queue.GetPendingCommands()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty queue, got %d commands", len(pending))
	}
}

func TestFailedReloadIsConsumed(t *testing.T) {
	queue := newQueue(t)
	reloader := &countingReloader{err: errors.New("bucket unreachable")}
	s := New(config.SchedulerConfig{}, reloader, queue)

	queue.EnqueueCommand(models.CmdReloadCatalog, nil)
	s.processCommands(context.Background())
	s.processCommands(context.Background())

	if reloader.count() != 1 {
		t.Fatalf("expected the command to run once, got %d", reloader.count())
	}
}

func TestIntervalReload(t *testing.T) {
	reloader := &countingReloader{}
	s := New(config.SchedulerConfig{Interval: 10 * time.Millisecond}, reloader, newQueue(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for reloader.count() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected periodic reloads, got %d", reloader.count())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestInvalidCron(t *testing.T) {
	s := New(config.SchedulerConfig{Cron: "every tuesday"}, &countingReloader{}, newQueue(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err == nil {
		t.Fatalf("expected invalid cron error")
	}
}

func TestResetDataCommand(t *testing.T) {
	queue := newQueue(t)
	s := New(config.SchedulerConfig{}, &countingReloader{}, queue)
	ctx := context.Background()

	if err := queue.Set(ctx, "selection:u:favorites", `["1"]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	err := queue.SaveImageChecks([]models.ImageCheck{{PropertyID: "1", URL: "https://cdn.example/1.jpg", StatusCode: 404, CheckedAt: time.Now()}})
	if err != nil {
		t.Fatalf("save checks: %v", err)
	}
	queue.EnqueueCommand(models.CmdResetData, nil)

	s.processCommands(ctx)

	if _, found, _ := queue.Get(ctx, "selection:u:favorites"); found {
		t.Fatalf("selection survived reset")
	}
	broken, err := queue.GetBrokenImages()
	if err != nil || len(broken) != 0 {
		t.Fatalf("image checks survived reset: %v %v", broken, err)
	}
	pending, _ := queue.GetPendingCommands()
	if len(pending) != 0 {
		t.Fatalf("expected empty queue, got %d", len(pending))
	}
}
