// Package chats is the SQLite-backed ai-chats store: chats and their
// messages, each with an FTS5 mirror.
package chats

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/scriptkit/launchercore/pkg/dbworker"
	"github.com/scriptkit/launchercore/pkg/launcherrors"
)

type Chat struct {
	ID        string
	Title     string
	ModelID   string
	Provider  string
	CreatedAt int64
	UpdatedAt int64
	DeletedAt *int64
}

type Message struct {
	ID         string
	ChatID     string
	Role       string
	Content    string
	CreatedAt  int64
	TokensUsed int64
}

var Migrations = []dbworker.Migration{
	{Name: "001_create_chats_messages", Apply: func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS chats (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL DEFAULT '',
				model_id TEXT NOT NULL DEFAULT '',
				provider TEXT NOT NULL DEFAULT '',
				created_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL,
				deleted_at INTEGER
			);
			CREATE VIRTUAL TABLE IF NOT EXISTS chats_fts USING fts5(
				title, content='chats', content_rowid='rowid'
			);
			CREATE TRIGGER IF NOT EXISTS chats_ai AFTER INSERT ON chats BEGIN
				INSERT INTO chats_fts(rowid, title) VALUES (new.rowid, new.title);
			END;
			CREATE TRIGGER IF NOT EXISTS chats_ad AFTER DELETE ON chats BEGIN
				INSERT INTO chats_fts(chats_fts, rowid, title) VALUES ('delete', old.rowid, old.title);
			END;
			CREATE TRIGGER IF NOT EXISTS chats_au AFTER UPDATE OF title ON chats BEGIN
				INSERT INTO chats_fts(chats_fts, rowid, title) VALUES ('delete', old.rowid, old.title);
				INSERT INTO chats_fts(rowid, title) VALUES (new.rowid, new.title);
			END;

			CREATE TABLE IF NOT EXISTS messages (
				id TEXT PRIMARY KEY,
				chat_id TEXT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
				role TEXT NOT NULL,
				content TEXT NOT NULL DEFAULT '',
				created_at INTEGER NOT NULL,
				tokens_used INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, created_at);
			CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
				content, content='messages', content_rowid='rowid'
			);
			CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
				INSERT INTO messages_fts(rowid, content) VALUES (new.rowid, new.content);
			END;
			CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
				INSERT INTO messages_fts(messages_fts, rowid, content) VALUES ('delete', old.rowid, old.content);
			END;
			CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE OF content ON messages BEGIN
				INSERT INTO messages_fts(messages_fts, rowid, content) VALUES ('delete', old.rowid, old.content);
				INSERT INTO messages_fts(rowid, content) VALUES (new.rowid, new.content);
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

func (s *Store) CreateChat(ctx context.Context, title, modelID, provider string) (*Chat, error) {
	now := time.Now().UnixMilli()
	c := &Chat{ID: uuid.NewString(), Title: title, ModelID: modelID, Provider: provider, CreatedAt: now, UpdatedAt: now}
	err := s.w.Do(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `INSERT INTO chats (id, title, model_id, provider, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Title, c.ModelID, c.Provider, c.CreatedAt, c.UpdatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) GetChat(ctx context.Context, id string) (*Chat, error) {
	var c Chat
	err := s.w.Do(ctx, func(db *sql.DB) error {
		row := db.QueryRowContext(ctx, `SELECT id, title, model_id, provider, created_at, updated_at, deleted_at FROM chats WHERE id = ?`, id)
		if err := row.Scan(&c.ID, &c.Title, &c.ModelID, &c.Provider, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
			if err == sql.ErrNoRows {
				return launcherrors.New(launcherrors.NotFound, "chats", "no such chat: "+id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) RenameChat(ctx context.Context, id, title string) error {
	return s.w.Do(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `UPDATE chats SET title = ?, updated_at = ? WHERE id = ?`, title, time.Now().UnixMilli(), id)
		return err
	})
}

func (s *Store) AppendMessage(ctx context.Context, chatID, role, content string, tokensUsed int64) (*Message, error) {
	m := &Message{ID: uuid.NewString(), ChatID: chatID, Role: role, Content: content, CreatedAt: time.Now().UnixMilli(), TokensUsed: tokensUsed}
	err := s.w.Do(ctx, func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, `INSERT INTO messages (id, chat_id, role, content, created_at, tokens_used) VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, m.ChatID, m.Role, m.Content, m.CreatedAt, m.TokensUsed); err != nil {
			return err
		}
		_, err := db.ExecContext(ctx, `UPDATE chats SET updated_at = ? WHERE id = ?`, m.CreatedAt, chatID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) Messages(ctx context.Context, chatID string) ([]Message, error) {
	var out []Message
	err := s.w.Do(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `SELECT id, chat_id, role, content, created_at, tokens_used FROM messages WHERE chat_id = ? ORDER BY created_at ASC`, chatID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var m Message
			if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.CreatedAt, &m.TokensUsed); err != nil {
				return err
			}
			out = append(out, m)
		}
		return rows.Err()
	})
	return out, err
}

// SearchMessages runs an FTS5 MATCH over message content.
func (s *Store) SearchMessages(ctx context.Context, query string, limit int) ([]Message, error) {
	var out []Message
	err := s.w.Do(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT m.id, m.chat_id, m.role, m.content, m.created_at, m.tokens_used
			FROM messages m JOIN messages_fts f ON m.rowid = f.rowid
			WHERE messages_fts MATCH ? ORDER BY m.created_at DESC LIMIT ?`, query, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var m Message
			if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.CreatedAt, &m.TokensUsed); err != nil {
				return err
			}
			out = append(out, m)
		}
		return rows.Err()
	})
	return out, err
}
