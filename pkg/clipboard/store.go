package clipboard

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scriptkit/launchercore/pkg/dbworker"
	"github.com/scriptkit/launchercore/pkg/launcherrors"
)

// Store is the SQLite-backed half of the clipboard engine, owned by a
// single dbworker.Worker.
type Store struct {
	w         *dbworker.Worker
	blobs     *BlobStore
	retention time.Duration
}

var Migrations = []dbworker.Migration{
	{Name: "001_create_history", Apply: func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS history (
				id TEXT PRIMARY KEY,
				content TEXT NOT NULL,
				content_type TEXT NOT NULL,
				content_hash TEXT NOT NULL,
				timestamp INTEGER NOT NULL,
				pinned INTEGER NOT NULL DEFAULT 0,
				ocr_text TEXT,
				text_preview TEXT,
				image_w INTEGER,
				image_h INTEGER,
				byte_size INTEGER NOT NULL DEFAULT 0
			);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_history_dedup ON history(content_type, content_hash);
			CREATE INDEX IF NOT EXISTS idx_history_pinned_ts ON history(pinned DESC, timestamp DESC);
		`)
		return err
	}},
}

func NewStore(w *dbworker.Worker, blobs *BlobStore, retentionDays int) *Store {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &Store{w: w, blobs: blobs, retention: time.Duration(retentionDays) * 24 * time.Hour}
}

// AddOrTouch implements the history table's dedup insert: ON
// CONFLICT(content_type, content_hash) bumps timestamp rather than
// inserting a second row. Id is stable across touches.
func (s *Store) AddOrTouch(ctx context.Context, clip RawClip, nowMs int64) (*Entry, error) {
	var e Entry
	err := s.w.Do(ctx, func(db *sql.DB) error {
		var hash, content, preview string
		var contentType ContentType
		var byteSize int64
		var imageW, imageH *int

		if clip.Text != "" {
			text := truncateText(clip.Text)
			contentType = ContentText
			hash = Hash([]byte(text))
			content = text
			p := textPreview(text)
			preview = p
			byteSize = int64(len(text))
		} else {
			h, ref, err := s.blobs.Put(clip.ImageData)
			if err != nil {
				return launcherrors.Wrap(launcherrors.IO, "clipboard", "failed to store image blob", err)
			}
			contentType = ContentImage
			hash = h
			content = ref
			byteSize = int64(len(clip.ImageData))
			w, h2 := clip.ImageW, clip.ImageH
			imageW, imageH = &w, &h2
		}

		id := uuid.NewString()
		_, err := db.ExecContext(ctx, `
			INSERT INTO history (id, content, content_type, content_hash, timestamp, pinned, text_preview, image_w, image_h, byte_size)
			VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?, ?)
			ON CONFLICT(content_type, content_hash) DO UPDATE SET timestamp = excluded.timestamp
		`, id, content, string(contentType), hash, nowMs, nullableString(preview), imageW, imageH, byteSize)
		if err != nil {
			return fmt.Errorf("clipboard: add_or_touch: %w", err)
		}

		row := db.QueryRowContext(ctx, `SELECT id, content, content_type, content_hash, timestamp, pinned, ocr_text, text_preview, image_w, image_h, byte_size FROM history WHERE content_type = ? AND content_hash = ?`, string(contentType), hash)
		return scanEntry(row, &e)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func scanEntry(row *sql.Row, e *Entry) error {
	var contentType string
	if err := row.Scan(&e.ID, &e.Content, &contentType, &e.ContentHash, &e.Timestamp, &e.Pinned, &e.OCRText, &e.TextPreview, &e.ImageW, &e.ImageH, &e.ByteSize); err != nil {
		return err
	}
	e.ContentType = ContentType(contentType)
	return nil
}

// GetEntry fetches one row by id.
func (s *Store) GetEntry(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	err := s.w.Do(ctx, func(db *sql.DB) error {
		var contentType string
		row := db.QueryRowContext(ctx, `SELECT id, content, content_type, content_hash, timestamp, pinned, ocr_text, text_preview, image_w, image_h, byte_size FROM history WHERE id = ?`, id)
		if err := row.Scan(&e.ID, &e.Content, &contentType, &e.ContentHash, &e.Timestamp, &e.Pinned, &e.OCRText, &e.TextPreview, &e.ImageW, &e.ImageH, &e.ByteSize); err != nil {
			if err == sql.ErrNoRows {
				return launcherrors.New(launcherrors.NotFound, "clipboard", "no such clipboard entry: "+id)
			}
			return err
		}
		e.ContentType = ContentType(contentType)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetContent resolves the full payload for an entry: inline text as-is,
// or the blob bytes behind a "blob:<hash>" reference.
func (s *Store) GetContent(ctx context.Context, id string) ([]byte, error) {
	e, err := s.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.ContentType == ContentText {
		return []byte(e.Content), nil
	}
	return s.blobs.Get(e.ContentHash)
}

// GetPage returns up to limit rows ordered pinned-first, newest-first,
// for the history list view.
func (s *Store) GetPage(ctx context.Context, limit, offset int) ([]Entry, error) {
	var out []Entry
	err := s.w.Do(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT id, content, content_type, content_hash, timestamp, pinned, ocr_text, text_preview, image_w, image_h, byte_size
			FROM history ORDER BY pinned DESC, timestamp DESC LIMIT ? OFFSET ?`, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var e Entry
			var contentType string
			if err := rows.Scan(&e.ID, &e.Content, &contentType, &e.ContentHash, &e.Timestamp, &e.Pinned, &e.OCRText, &e.TextPreview, &e.ImageW, &e.ImageH, &e.ByteSize); err != nil {
				return err
			}
			e.ContentType = ContentType(contentType)
			out = append(out, e)
		}
		return rows.Err()
	})
	return out, err
}

func (s *Store) Pin(ctx context.Context, id string) error {
	return s.w.Do(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `UPDATE history SET pinned = 1 WHERE id = ?`, id)
		return err
	})
}

func (s *Store) Unpin(ctx context.Context, id string) error {
	return s.w.Do(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `UPDATE history SET pinned = 0 WHERE id = ?`, id)
		return err
	})
}

// Remove deletes one row. The referenced blob, if any, is intentionally
// left in place — it is reclaimed by the hourly GC pass.
func (s *Store) Remove(ctx context.Context, id string) error {
	return s.w.Do(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
		return err
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.w.Do(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `DELETE FROM history WHERE pinned = 0`)
		return err
	})
}

// Prune deletes unpinned rows with timestamp < cutoffMs. Pinned rows
// always survive regardless of timestamp.
func (s *Store) Prune(ctx context.Context, cutoffMs int64) (int64, error) {
	var n int64
	err := s.w.Do(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `DELETE FROM history WHERE pinned = 0 AND timestamp < ?`, cutoffMs)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

// TrimOversized deletes unpinned text rows whose byte_size exceeds the
// current configured cap ((b) — retention reacting to config
// changes after the fact).
func (s *Store) TrimOversized(ctx context.Context, maxBytes int64) (int64, error) {
	var n int64
	err := s.w.Do(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `DELETE FROM history WHERE pinned = 0 AND content_type = ? AND byte_size > ?`, string(ContentText), maxBytes)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

// Vacuum runs the incremental-vacuum and passive WAL checkpoint pragmas
// (c) calls for on every maintenance tick.
func (s *Store) Vacuum(ctx context.Context) error {
	return s.w.Do(ctx, func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, `PRAGMA incremental_vacuum(100)`); err != nil {
			return err
		}
		_, err := db.ExecContext(ctx, `PRAGMA wal_checkpoint(PASSIVE)`)
		return err
	})
}

func (s *Store) UpdateOCR(ctx context.Context, id, ocrText string) error {
	return s.w.Do(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `UPDATE history SET ocr_text = ? WHERE id = ?`, ocrText, id)
		return err
	})
}

// LiveHashes returns every content_hash currently referenced by an image
// row, for the hourly blob-GC pass (BlobStore orphans aren't deleted
// eagerly on Remove — ).
func (s *Store) LiveHashes(ctx context.Context) (map[string]bool, error) {
	out := make(map[string]bool)
	err := s.w.Do(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `SELECT content_hash FROM history WHERE content_type = ?`, string(ContentImage))
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var h string
			if err := rows.Scan(&h); err != nil {
				return err
			}
			out[h] = true
		}
		return rows.Err()
	})
	return out, err
}
