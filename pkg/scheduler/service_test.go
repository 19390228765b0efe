package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/scriptkit/launchercore/pkg/dbworker"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	w, err := dbworker.Open(filepath.Join(t.TempDir(), "scheduler.sqlite"), Migrations, zerolog.Nop())
	if err != nil {
		t.Fatalf("dbworker.Open: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return NewStore(w)
}

func TestNextCronRunAdvancesByOneMinute(t *testing.T) {
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC).UnixMilli()
	next := NextCronRun("*/1 * * * *", base)
	if next == nil {
		t.Fatal("expected a next run time")
	}
	gotTime := time.UnixMilli(*next).UTC()
	want := time.Date(2026, 1, 1, 9, 1, 0, 0, time.UTC)
	if !gotTime.Equal(want) {
		t.Fatalf("next = %v, want %v", gotTime, want)
	}
}

func TestNextCronRunInvalidExprReturnsNil(t *testing.T) {
	if got := NextCronRun("not a cron expr", 0); got != nil {
		t.Fatalf("expected nil for invalid cron expr, got %v", *got)
	}
}

// TestCronFireCoalescing covers a */1 cron job whose due time has long
// since passed: it fires exactly once per due-job sweep, not once per
// missed minute.
func TestCronFireCoalescing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var fireCount atomic.Int32
	clock := int64(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC).UnixMilli())
	var mu sync.Mutex

	svc := NewService(store, Deps{
		NowMs: func() int64 {
			mu.Lock()
			defer mu.Unlock()
			return clock
		},
		Log: zerolog.Nop(),
		Run: func(job Job, triggerArg string) error {
			fireCount.Add(1)
			return nil
		},
	})

	job := Job{ID: "j1", ScriptPath: "/scripts/tick.ts", Kind: TriggerCron, CronExpr: "*/1 * * * *", Enabled: true}
	if err := store.Upsert(ctx, job); err != nil {
		t.Fatal(err)
	}
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer svc.Stop()

	// Simulate the process having slept through 3 missed minutes, then
	// a single due-job sweep on wake.
	mu.Lock()
	clock += int64(3 * time.Minute / time.Millisecond)
	mu.Unlock()

	svc.onTimer()

	if fireCount.Load() != 1 {
		t.Fatalf("fireCount = %d, want exactly 1 (coalesced)", fireCount.Load())
	}
}

func TestRunJobDropsConcurrentFireByDefault(t *testing.T) {
	store := newTestStore(t)
	var running sync.WaitGroup
	running.Add(1)
	release := make(chan struct{})
	var fireCount atomic.Int32

	svc := NewService(store, Deps{
		Log: zerolog.Nop(),
		Run: func(job Job, triggerArg string) error {
			fireCount.Add(1)
			running.Done()
			<-release
			return nil
		},
	})

	j := &Job{ID: "j1", ScriptPath: "/scripts/slow.ts", Kind: TriggerCron, Enabled: true}
	svc.jobs["j1"] = j

	go svc.runJob(j, "")
	running.Wait() // first run is now inside Run, blocked on release

	// A concurrent fire while running should be dropped (Background=false).
	svc.runJob(j, "")
	close(release)
	time.Sleep(50 * time.Millisecond)

	if fireCount.Load() != 1 {
		t.Fatalf("fireCount = %d, want 1 (concurrent fire should be dropped)", fireCount.Load())
	}
}

func TestRunJobQueuesConcurrentFireWhenBackground(t *testing.T) {
	store := newTestStore(t)
	var fireCount atomic.Int32
	started := make(chan struct{}, 2)
	release := make(chan struct{})

	svc := NewService(store, Deps{
		Log: zerolog.Nop(),
		Run: func(job Job, triggerArg string) error {
			fireCount.Add(1)
			started <- struct{}{}
			<-release
			return nil
		},
	})

	j := &Job{ID: "j1", ScriptPath: "/scripts/bg.ts", Kind: TriggerCron, Enabled: true, Background: true}
	svc.jobs["j1"] = j

	go svc.runJob(j, "")
	<-started // first run in progress

	go svc.runJob(j, "") // queued as Pending
	time.Sleep(20 * time.Millisecond)

	close(release) // let first run finish; queued run should start and block again
	<-started
	close(started)

	if fireCount.Load() < 2 {
		t.Fatalf("fireCount = %d, want >= 2 (pending fire should run after current finishes)", fireCount.Load())
	}
}
