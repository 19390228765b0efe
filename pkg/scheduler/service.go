package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Deps wires the scheduler to the rest of the process.
type Deps struct {
	NowMs func() int64
	Log   zerolog.Logger
	Run   Runner
}

// Service is the cron/watch scheduler actor: one timer rearmed to the
// next due job, a due-job sweep on wake, and a dbworker-backed Store
// for persistence across restarts.
type Service struct {
	store *Store
	deps  Deps

	mu      sync.Mutex
	jobs    map[string]*Job
	timer   *time.Timer
	running bool

	watcher *WatchRegistry
}

func NewService(store *Store, deps Deps) *Service {
	if deps.NowMs == nil {
		deps.NowMs = func() int64 { return time.Now().UnixMilli() }
	}
	return &Service{store: store, deps: deps, jobs: make(map[string]*Job)}
}

// Start loads persisted jobs, recomputes cron next-run times, registers
// filesystem watches, and arms the due-job timer.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	now := s.deps.NowMs()
	s.watcher = NewWatchRegistry(s.fireWatch, s.deps.Log)

	for i := range loaded {
		j := loaded[i]
		if j.Kind == TriggerCron && j.Enabled {
			j.NextRunAtMs = NextCronRun(j.CronExpr, now)
		}
		s.jobs[j.ID] = &j
		if j.Kind == TriggerWatch && j.Enabled {
			if err := s.watcher.Add(j.ID, j.WatchGlob); err != nil {
				s.deps.Log.Warn().Err(err).Str("job", j.ID).Msg("scheduler: failed to register watch trigger")
			}
		}
	}
	s.armTimerLocked()
	return nil
}

func (s *Service) Stop() {
	s.mu.Lock()
	s.stopTimerLocked()
	s.mu.Unlock()
	if s.watcher != nil {
		s.watcher.Close()
	}
}

// Add registers a new job and persists it.
func (s *Service) Add(ctx context.Context, j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j.Enabled = true
	if j.Kind == TriggerCron {
		j.NextRunAtMs = NextCronRun(j.CronExpr, s.deps.NowMs())
	}
	if err := s.store.Upsert(ctx, j); err != nil {
		return err
	}
	jobCopy := j
	s.jobs[j.ID] = &jobCopy
	if j.Kind == TriggerWatch {
		if err := s.watcher.Add(j.ID, j.WatchGlob); err != nil {
			return err
		}
	}
	s.armTimerLocked()
	return nil
}

func (s *Service) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	s.watcher.Remove(id)
	return s.store.Remove(ctx, id)
}

func (s *Service) List() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	return out
}

// onTimer is the due-job loop: compute which cron jobs are due "now" and
// fire each exactly once, even if multiple ticks were missed while the
// process slept ("cron fire coalescing": `*/1 * * * *` with a
// 3-minute sleep produces exactly one fire on wake, not three).
func (s *Service) onTimer() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	now := s.deps.NowMs()
	var due []*Job
	for _, j := range s.jobs {
		if j.Kind != TriggerCron || !j.Enabled || j.NextRunAtMs == nil {
			continue
		}
		if now >= *j.NextRunAtMs {
			due = append(due, j)
		}
	}
	s.mu.Unlock()

	for _, j := range due {
		s.fireCron(j)
	}

	s.mu.Lock()
	s.running = false
	s.armTimerLocked()
	s.mu.Unlock()
}

func (s *Service) fireCron(j *Job) {
	s.runJob(j, "")
	s.mu.Lock()
	next := NextCronRun(j.CronExpr, s.deps.NowMs())
	j.NextRunAtMs = next
	s.mu.Unlock()
	_ = s.store.UpdateNextRun(context.Background(), j.ID, next)
}

func (s *Service) fireWatch(jobID, path string) {
	s.mu.Lock()
	j, ok := s.jobs[jobID]
	s.mu.Unlock()
	if !ok || !j.Enabled {
		return
	}
	s.runJob(j, path)
}

// runJob implements the "already running" policy: a non-background job
// drops a concurrent fire; a background job records one pending re-fire
// and runs it immediately after the current run finishes.
func (s *Service) runJob(j *Job, triggerArg string) {
	s.mu.Lock()
	if j.RunningAtMs != nil {
		if j.Background {
			j.Pending = true
		}
		s.mu.Unlock()
		return
	}
	now := s.deps.NowMs()
	j.RunningAtMs = &now
	s.mu.Unlock()

	s.execute(j, triggerArg)

	s.mu.Lock()
	j.RunningAtMs = nil
	rerun := j.Pending
	j.Pending = false
	s.mu.Unlock()

	if rerun {
		s.runJob(j, triggerArg)
	}
}

func (s *Service) execute(j *Job, triggerArg string) {
	if s.deps.Run == nil {
		return
	}
	if err := s.deps.Run(*j, triggerArg); err != nil {
		s.deps.Log.Warn().Err(err).Str("job", j.ID).Str("script", j.ScriptPath).Msg("scheduler: job run failed")
	}
}

func (s *Service) armTimerLocked() {
	s.stopTimerLocked()
	var next *int64
	for _, j := range s.jobs {
		if j.Kind != TriggerCron || !j.Enabled || j.NextRunAtMs == nil {
			continue
		}
		if next == nil || *j.NextRunAtMs < *next {
			next = j.NextRunAtMs
		}
	}
	if next == nil {
		return
	}
	delayMs := *next - s.deps.NowMs()
	if delayMs < 0 {
		delayMs = 0
	}
	s.timer = time.AfterFunc(time.Duration(delayMs)*time.Millisecond, s.onTimer)
}

func (s *Service) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
