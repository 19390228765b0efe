package scheduler

import (
	"strings"
	"time"

	cronlib "github.com/robfig/cron/v3"
)

var cronParser = cronlib.NewParser(cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor)

// NextCronRun parses expr (standard 5-field cron, same dialect as
// `// Cron: 0 9 * * *` comment metadata) and returns the next fire time
// after nowMs, or nil if expr is invalid.
func NextCronRun(expr string, nowMs int64) *int64 {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil
	}
	next := sched.Next(time.UnixMilli(nowMs).UTC())
	if next.IsZero() {
		return nil
	}
	ms := next.UnixMilli()
	return &ms
}
