// Package dbworker implements the single-writer actor pattern used by
// every SQLite-backed store in this module (clipboard history, notes,
// chats, the menu cache, scheduler triggers): one goroutine owns the
// *sql.DB handle and all writes funnel through it over a channel. SQLite allows
// only one writer at a time regardless; making that explicit in Go avoids
// SQLITE_BUSY retries turning into silent latency spikes under the
// opportunistic-lock-vs-exclusive-queue tension a desktop launcher lives
// under.
package dbworker

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Migration is one idempotent schema step. Apply must be safe to run
// against a database that already has it applied.
type Migration struct {
	Name  string
	Apply func(ctx context.Context, db *sql.DB) error
}

type job struct {
	fn   func(db *sql.DB) error
	done chan error
}

// Worker owns one *sql.DB and processes all work against it on a single
// goroutine.
type Worker struct {
	path string
	db   *sql.DB
	jobs chan job

	closed    atomic.Bool
	closeOnce sync.Once
	wg        sync.WaitGroup

	log zerolog.Logger
}

// Open opens (creating if needed) a SQLite database at path with WAL
// journaling, a 5s busy timeout, and incremental auto-vacuum, then applies
// migrations in order. Each migration name is recorded in a
// schema_migrations table so Open is idempotent across restarts even if
// a Migration.Apply function is not itself naturally idempotent.
func Open(path string, migrations []Migration, log zerolog.Logger) (*Worker, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_auto_vacuum=incremental&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("dbworker: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // one physical connection: this IS the single writer

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("dbworker: ping %s: %w", path, err)
	}

	w := &Worker{path: path, db: db, jobs: make(chan job, 64), log: log}

	if err := w.applyMigrations(migrations); err != nil {
		db.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Worker) applyMigrations(migrations []Migration) error {
	if _, err := w.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (name TEXT PRIMARY KEY, applied_at INTEGER NOT NULL DEFAULT (strftime('%s','now')))`); err != nil {
		return fmt.Errorf("dbworker: create schema_migrations: %w", err)
	}
	for _, m := range migrations {
		var exists int
		err := w.db.QueryRow(`SELECT 1 FROM schema_migrations WHERE name = ?`, m.Name).Scan(&exists)
		if err == nil {
			continue // already applied
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("dbworker: check migration %s: %w", m.Name, err)
		}
		if err := m.Apply(context.Background(), w.db); err != nil {
			return fmt.Errorf("dbworker: apply migration %s: %w", m.Name, err)
		}
		if _, err := w.db.Exec(`INSERT INTO schema_migrations (name) VALUES (?)`, m.Name); err != nil {
			return fmt.Errorf("dbworker: record migration %s: %w", m.Name, err)
		}
		w.log.Info().Str("migration", m.Name).Str("db", w.path).Msg("dbworker: migration applied")
	}
	return nil
}

func (w *Worker) run() {
	defer w.wg.Done()
	for j := range w.jobs {
		j.done <- j.fn(w.db)
	}
}

// Do runs fn on the single writer goroutine and blocks until it
// completes or ctx is cancelled. fn must not retain db past its call.
func (w *Worker) Do(ctx context.Context, fn func(db *sql.DB) error) error {
	if w.closed.Load() {
		return fmt.Errorf("dbworker: %s is closed", w.path)
	}
	done := make(chan error, 1)
	select {
	case w.jobs <- job{fn: fn, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ColumnExists probes pragma_table_info for an idempotent
// "ALTER TABLE ... ADD COLUMN" style migration, 's
// "migrations are additive and idempotent" requirement.
func ColumnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// AddColumnIfMissing runs an ALTER TABLE ADD COLUMN only if the column is
// not already present, so repeated calls across versions never error.
func AddColumnIfMissing(ctx context.Context, db *sql.DB, table, column, ddlType string) error {
	exists, err := ColumnExists(db, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, ddlType))
	return err
}

// Close stops accepting new work, drains in-flight jobs, and closes the
// database. Idempotent.
func (w *Worker) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.closed.Store(true)
		close(w.jobs)
		w.wg.Wait()
		err = w.db.Close()
	})
	return err
}

// Path returns the database file path this worker owns.
func (w *Worker) Path() string {
	return w.path
}
