package chats

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/scriptkit/launchercore/pkg/dbworker"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	w, err := dbworker.Open(filepath.Join(t.TempDir(), "chats.sqlite"), Migrations, zerolog.Nop())
	if err != nil {
		t.Fatalf("dbworker.Open: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return NewStore(w)
}

func TestCreateChatAndAppendMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chat, err := s.CreateChat(ctx, "Debugging session", "gpt-5", "openai")
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if _, err := s.AppendMessage(ctx, chat.ID, "user", "why is this crashing", 12); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if _, err := s.AppendMessage(ctx, chat.ID, "assistant", "check the stderr tail", 30); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	msgs, err := s.Messages(ctx, chat.ID)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Fatalf("expected messages in insertion order, got %+v", msgs)
	}
}

func TestSearchMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chat, err := s.CreateChat(ctx, "Chat", "m", "p")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AppendMessage(ctx, chat.ID, "user", "tell me about the stderr ring buffer", 0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AppendMessage(ctx, chat.ID, "assistant", "unrelated reply about scheduling", 0); err != nil {
		t.Fatal(err)
	}

	results, err := s.SearchMessages(ctx, "stderr", 10)
	if err != nil {
		t.Fatalf("SearchMessages: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly one matching message, got %d", len(results))
	}
}
