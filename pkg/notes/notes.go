// Package notes is the SQLite-backed notes store: a single-writer
// dbworker.Worker plus an FTS5 mirror on (title, content), kept in sync
// by triggers that fire only when those indexed columns change — not
// on metadata-only updates such as toggling is_pinned.
package notes

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/scriptkit/launchercore/pkg/dbworker"
	"github.com/scriptkit/launchercore/pkg/launcherrors"
)

type Note struct {
	ID        string
	Title     string
	Content   string
	CreatedAt int64
	UpdatedAt int64
	DeletedAt *int64
	IsPinned  bool
	SortOrder int64
}

var Migrations = []dbworker.Migration{
	{Name: "001_create_notes", Apply: func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS notes (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL DEFAULT '',
				content TEXT NOT NULL DEFAULT '',
				created_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL,
				deleted_at INTEGER,
				is_pinned INTEGER NOT NULL DEFAULT 0,
				sort_order INTEGER NOT NULL DEFAULT 0
			);
			CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
				title, content, content='notes', content_rowid='rowid'
			);
			CREATE TRIGGER IF NOT EXISTS notes_ai AFTER INSERT ON notes BEGIN
				INSERT INTO notes_fts(rowid, title, content) VALUES (new.rowid, new.title, new.content);
			END;
			CREATE TRIGGER IF NOT EXISTS notes_ad AFTER DELETE ON notes BEGIN
				INSERT INTO notes_fts(notes_fts, rowid, title, content) VALUES ('delete', old.rowid, old.title, old.content);
			END;
			CREATE TRIGGER IF NOT EXISTS notes_au AFTER UPDATE OF title, content ON notes BEGIN
				INSERT INTO notes_fts(notes_fts, rowid, title, content) VALUES ('delete', old.rowid, old.title, old.content);
				INSERT INTO notes_fts(rowid, title, content) VALUES (new.rowid, new.title, new.content);
			END;
		`)
		return err
	}},
}

type Store struct {
	w *dbworker.Worker
}

func NewStore(w *dbworker.Worker) *Store {
	return &Store{w: w}
}

func (s *Store) Create(ctx context.Context, title, content string) (*Note, error) {
	now := time.Now().UnixMilli()
	n := &Note{ID: uuid.NewString(), Title: title, Content: content, CreatedAt: now, UpdatedAt: now}
	err := s.w.Do(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `INSERT INTO notes (id, title, content, created_at, updated_at, is_pinned, sort_order) VALUES (?, ?, ?, ?, ?, 0, 0)`,
			n.ID, n.Title, n.Content, n.CreatedAt, n.UpdatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Update touches title/content (which re-fires the FTS trigger) and
// bumps updated_at.
func (s *Store) Update(ctx context.Context, id, title, content string) error {
	return s.w.Do(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
			title, content, time.Now().UnixMilli(), id)
		return err
	})
}

// SetPinned flips is_pinned only — a metadata-only column the FTS
// triggers deliberately ignore.
func (s *Store) SetPinned(ctx context.Context, id string, pinned bool) error {
	return s.w.Do(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `UPDATE notes SET is_pinned = ? WHERE id = ?`, pinned, id)
		return err
	})
}

func (s *Store) SoftDelete(ctx context.Context, id string) error {
	return s.w.Do(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `UPDATE notes SET deleted_at = ? WHERE id = ?`, time.Now().UnixMilli(), id)
		return err
	})
}

func (s *Store) Get(ctx context.Context, id string) (*Note, error) {
	var n Note
	err := s.w.Do(ctx, func(db *sql.DB) error {
		row := db.QueryRowContext(ctx, `SELECT id, title, content, created_at, updated_at, deleted_at, is_pinned, sort_order FROM notes WHERE id = ?`, id)
		if err := row.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt, &n.DeletedAt, &n.IsPinned, &n.SortOrder); err != nil {
			if err == sql.ErrNoRows {
				return launcherrors.New(launcherrors.NotFound, "notes", "no such note: "+id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Search runs an FTS5 MATCH query over title/content, excluding
// soft-deleted rows.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Note, error) {
	var out []Note
	err := s.w.Do(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT n.id, n.title, n.content, n.created_at, n.updated_at, n.deleted_at, n.is_pinned, n.sort_order
			FROM notes n JOIN notes_fts f ON n.rowid = f.rowid
			WHERE notes_fts MATCH ? AND n.deleted_at IS NULL
			ORDER BY n.is_pinned DESC, n.updated_at DESC LIMIT ?`, query, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var n Note
			if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt, &n.DeletedAt, &n.IsPinned, &n.SortOrder); err != nil {
				return err
			}
			out = append(out, n)
		}
		return rows.Err()
	})
	return out, err
}
