package scheduler

import (
	"context"
	"database/sql"

	"github.com/scriptkit/launchercore/pkg/dbworker"
)

var Migrations = []dbworker.Migration{
	{Name: "001_create_triggers", Apply: func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS triggers (
				id TEXT PRIMARY KEY,
				script_path TEXT NOT NULL,
				kind TEXT NOT NULL,
				cron_expr TEXT NOT NULL DEFAULT '',
				watch_glob TEXT NOT NULL DEFAULT '',
				background INTEGER NOT NULL DEFAULT 0,
				enabled INTEGER NOT NULL DEFAULT 1,
				next_run_at_ms INTEGER
			)
		`)
		return err
	}},
}

// Store persists Job definitions. Only the static definition is
// persisted; runtime fields (RunningAtMs, Pending) live in memory only
// and reset on restart: in-memory run state, persisted schedule.
type Store struct {
	w *dbworker.Worker
}

func NewStore(w *dbworker.Worker) *Store {
	return &Store{w: w}
}

func (s *Store) Upsert(ctx context.Context, j Job) error {
	return s.w.Do(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO triggers (id, script_path, kind, cron_expr, watch_glob, background, enabled, next_run_at_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				script_path = excluded.script_path, kind = excluded.kind, cron_expr = excluded.cron_expr,
				watch_glob = excluded.watch_glob, background = excluded.background, enabled = excluded.enabled,
				next_run_at_ms = excluded.next_run_at_ms`,
			j.ID, j.ScriptPath, string(j.Kind), j.CronExpr, j.WatchGlob, j.Background, j.Enabled, j.NextRunAtMs)
		return err
	})
}

func (s *Store) Remove(ctx context.Context, id string) error {
	return s.w.Do(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `DELETE FROM triggers WHERE id = ?`, id)
		return err
	})
}

func (s *Store) UpdateNextRun(ctx context.Context, id string, nextRunAtMs *int64) error {
	return s.w.Do(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `UPDATE triggers SET next_run_at_ms = ? WHERE id = ?`, nextRunAtMs, id)
		return err
	})
}

func (s *Store) List(ctx context.Context) ([]Job, error) {
	var out []Job
	err := s.w.Do(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `SELECT id, script_path, kind, cron_expr, watch_glob, background, enabled, next_run_at_ms FROM triggers`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var j Job
			var kind string
			if err := rows.Scan(&j.ID, &j.ScriptPath, &kind, &j.CronExpr, &j.WatchGlob, &j.Background, &j.Enabled, &j.NextRunAtMs); err != nil {
				return err
			}
			j.Kind = TriggerKind(kind)
			out = append(out, j)
		}
		return rows.Err()
	})
	return out, err
}
