package notes

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/scriptkit/launchercore/pkg/dbworker"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	w, err := dbworker.Open(filepath.Join(t.TempDir(), "notes.sqlite"), Migrations, zerolog.Nop())
	if err != nil {
		t.Fatalf("dbworker.Open: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return NewStore(w)
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.Create(ctx, "Grocery list", "milk, eggs, bread")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := s.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Grocery list" {
		t.Fatalf("Title = %q, want %q", got.Title, "Grocery list")
	}
}

func TestSearchMatchesTitleAndContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, "Launch plan", "ship the clipboard engine"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, "Unrelated", "something else entirely"); err != nil {
		t.Fatal(err)
	}

	results, err := s.Search(ctx, "clipboard", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Launch plan" {
		t.Fatalf("expected exactly the matching note, got %+v", results)
	}
}

func TestSetPinnedDoesNotBreakSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.Create(ctx, "Pin me", "pinned content")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetPinned(ctx, n.ID, true); err != nil {
		t.Fatalf("SetPinned: %v", err)
	}
	results, err := s.Search(ctx, "pinned", 10)
	if err != nil {
		t.Fatalf("Search after pin toggle: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected the note to remain searchable after a metadata-only update, got %+v", results)
	}
	if !results[0].IsPinned {
		t.Fatal("expected is_pinned to be set")
	}
}

func TestSoftDeleteExcludesFromSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.Create(ctx, "Gone soon", "temporary content")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SoftDelete(ctx, n.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	results, err := s.Search(ctx, "temporary", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected soft-deleted note to be excluded from search, got %+v", results)
	}
}
