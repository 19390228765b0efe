package menucache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/scriptkit/launchercore/pkg/dbworker"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	w, err := dbworker.Open(filepath.Join(t.TempDir(), "menucache.sqlite"), Migrations, zerolog.Nop())
	if err != nil {
		t.Fatalf("dbworker.Open: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return NewStore(w)
}

func TestStoreAndLookupSameVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	menu := map[string]any{"File": []string{"New", "Open"}}
	if err := s.Store(ctx, "com.example.app", menu, "1.2.3"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	e, ok, err := s.Lookup(ctx, "com.example.app", "1.2.3")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit for matching app version")
	}
	if e.BundleID != "com.example.app" {
		t.Fatalf("unexpected bundle id: %s", e.BundleID)
	}
}

func TestLookupMissesOnVersionBump(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Store(ctx, "com.example.app", map[string]any{"a": 1}, "1.0.0"); err != nil {
		t.Fatal(err)
	}
	_, ok, err := s.Lookup(ctx, "com.example.app", "2.0.0")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok {
		t.Fatal("expected cache miss after an app_version bump")
	}
}

func TestInvalidate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Store(ctx, "com.example.app", map[string]any{"a": 1}, "1.0.0"); err != nil {
		t.Fatal(err)
	}
	if err := s.Invalidate(ctx, "com.example.app"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	_, ok, err := s.Lookup(ctx, "com.example.app", "1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected cache miss after invalidation")
	}
}
