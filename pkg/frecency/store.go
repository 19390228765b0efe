package frecency

import (
	"context"
	"database/sql"

	"github.com/scriptkit/launchercore/pkg/dbworker"
)

// Migrations creates the frecency table. Frecency shares whichever
// database its caller wires it into (the menu-cache db, by default,
// since frecency is process-wide bookkeeping rather than its own
// subsystem) — callers append Migrations to their own migration list.
var Migrations = []dbworker.Migration{
	{Name: "001_create_frecency", Apply: func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS frecency (
				command_id TEXT PRIMARY KEY,
				score REAL NOT NULL,
				last_used_ms INTEGER NOT NULL
			)
		`)
		return err
	}},
}

// Store persists Records through a dbworker.Worker. Reads and writes go through the same worker so
// a Touch and a concurrent ScoreAt for the same command never race.
type Store struct {
	w            *dbworker.Worker
	halfLifeDays float64
	nowMs        func() int64
}

func NewStore(w *dbworker.Worker, halfLifeDays float64, nowMs func() int64) *Store {
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultHalfLifeDays
	}
	return &Store{w: w, halfLifeDays: halfLifeDays, nowMs: nowMs}
}

func (s *Store) load(ctx context.Context, db *sql.DB, id string) (Record, error) {
	var rec Record
	row := db.QueryRowContext(ctx, `SELECT score, last_used_ms FROM frecency WHERE command_id = ?`, id)
	err := row.Scan(&rec.Score, &rec.LastUsedMs)
	if err == sql.ErrNoRows {
		return Record{}, nil
	}
	return rec, err
}

// Touch records a successful execution of id: decays the stored score to
// now and adds 1.0 for the use being recorded.
func (s *Store) Touch(ctx context.Context, id string) error {
	now := s.nowMs()
	return s.w.Do(ctx, func(db *sql.DB) error {
		rec, err := s.load(ctx, db, id)
		if err != nil {
			return err
		}
		next := Touch(rec, now, s.halfLifeDays)
		_, err = db.ExecContext(ctx, `
			INSERT INTO frecency (command_id, score, last_used_ms) VALUES (?, ?, ?)
			ON CONFLICT(command_id) DO UPDATE SET score = excluded.score, last_used_ms = excluded.last_used_ms`,
			id, next.Score, next.LastUsedMs)
		return err
	})
}

// Score returns id's current score, decayed to now, without recording a
// use. Unknown ids score 0.
func (s *Store) Score(ctx context.Context, id string) (float64, error) {
	var out float64
	now := s.nowMs()
	err := s.w.Do(ctx, func(db *sql.DB) error {
		rec, err := s.load(ctx, db, id)
		if err != nil {
			return err
		}
		out = ScoreAt(rec, now, s.halfLifeDays)
		return nil
	})
	return out, err
}

// Lookup builds a fuzzysearch.FrecencyLookup-shaped closure over this
// store, logging (not failing) lookup errors since frecency is a
// tie-breaker, never required for a search to return results.
func (s *Store) Lookup(ctx context.Context) func(id string) float64 {
	return func(id string) float64 {
		score, err := s.Score(ctx, id)
		if err != nil {
			return 0
		}
		return score
	}
}
