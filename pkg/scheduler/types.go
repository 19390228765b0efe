// Package scheduler drives cron- and filesystem-watch-triggered scripts.
// It runs a timer-rearm/due-job-loop actor over two trigger kinds, and
// persists triggers through pkg/dbworker — the same single-writer-per-
// database rule the clipboard/notes/chats stores follow.
package scheduler

// TriggerKind selects how a job is armed.
type TriggerKind string

const (
	TriggerCron  TriggerKind = "cron"
	TriggerWatch TriggerKind = "watch"
)

// Job is one registered scheduler entry, sourced from a script's comment
// metadata (`// Cron: ...` / `// Watch: ...` / `// Background: true`,
// ).
type Job struct {
	ID         string
	ScriptPath string
	Kind       TriggerKind
	CronExpr   string // set when Kind == TriggerCron
	WatchGlob  string // set when Kind == TriggerWatch
	Background bool   // : concurrent fires are queued, not dropped
	Enabled    bool

	NextRunAtMs *int64 // cron jobs only
	RunningAtMs *int64
	Pending     bool // a fire arrived while running and Background is true
}

// Runner executes a job headless (no UI attached) and reports success.
// triggerArg carries the triggering path for watch jobs and is empty for
// cron jobs.
type Runner func(job Job, triggerArg string) error
