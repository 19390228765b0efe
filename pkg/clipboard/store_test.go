package clipboard

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/scriptkit/launchercore/pkg/dbworker"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	w, err := dbworker.Open(filepath.Join(dir, "clipboard.sqlite"), Migrations, zerolog.Nop())
	if err != nil {
		t.Fatalf("dbworker.Open: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	blobs, err := NewBlobStore(filepath.Join(dir, "blobs"))
	if err != nil {
		t.Fatalf("NewBlobStore: %v", err)
	}
	return NewStore(w, blobs, 30)
}

func TestAddOrTouchDedupIdempotence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	clip := RawClip{Text: "hello world"}
	e1, err := s.AddOrTouch(ctx, clip, 1000)
	if err != nil {
		t.Fatalf("first AddOrTouch: %v", err)
	}
	e2, err := s.AddOrTouch(ctx, clip, 2000)
	if err != nil {
		t.Fatalf("second AddOrTouch: %v", err)
	}
	if e1.ID != e2.ID {
		t.Fatalf("id not stable across touches: %s != %s", e1.ID, e2.ID)
	}
	if e2.Timestamp != 2000 {
		t.Fatalf("timestamp = %d, want 2000", e2.Timestamp)
	}

	page, err := s.GetPage(ctx, 10, 0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("expected exactly one row after dedup, got %d", len(page))
	}
}

func TestAddOrTouchImageBlobAddressing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	img := []byte("fake-png-bytes-representing-a-100x100-image")
	clip := RawClip{ImageData: img, ImageW: 100, ImageH: 100}

	e1, err := s.AddOrTouch(ctx, clip, 1000)
	if err != nil {
		t.Fatalf("AddOrTouch: %v", err)
	}
	if e1.Content != "blob:"+Hash(img) {
		t.Fatalf("content = %q, want blob: reference", e1.Content)
	}
	hashes, err := s.blobs.ListHashes()
	if err != nil {
		t.Fatalf("ListHashes: %v", err)
	}
	if len(hashes) != 1 {
		t.Fatalf("expected exactly one blob file, got %d", len(hashes))
	}

	// Second identical copy: content-addressed no-op, one file remains.
	if _, err := s.AddOrTouch(ctx, clip, 2000); err != nil {
		t.Fatalf("second AddOrTouch: %v", err)
	}
	hashes, _ = s.blobs.ListHashes()
	if len(hashes) != 1 {
		t.Fatalf("expected still exactly one blob file, got %d", len(hashes))
	}
}

func TestPinnedSurvivesPrune(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old, err := s.AddOrTouch(ctx, RawClip{Text: "ancient"}, 100)
	if err != nil {
		t.Fatal(err)
	}
	pinnedOld, err := s.AddOrTouch(ctx, RawClip{Text: "ancient-but-pinned"}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Pin(ctx, pinnedOld.ID); err != nil {
		t.Fatal(err)
	}
	recent, err := s.AddOrTouch(ctx, RawClip{Text: "recent"}, 100000)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Prune(ctx, 50000); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	if _, err := s.GetEntry(ctx, old.ID); err == nil {
		t.Fatal("expected unpinned old entry to be pruned")
	}
	if _, err := s.GetEntry(ctx, pinnedOld.ID); err != nil {
		t.Fatalf("expected pinned old entry to survive prune: %v", err)
	}
	if _, err := s.GetEntry(ctx, recent.ID); err != nil {
		t.Fatalf("expected recent entry to survive prune: %v", err)
	}
}

func TestRemoveLeavesBlobForGC(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	img := []byte("image-bytes")
	e, err := s.AddOrTouch(ctx, RawClip{ImageData: img, ImageW: 10, ImageH: 10}, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(ctx, e.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !s.blobs.Exists(Hash(img)) {
		t.Fatal("expected blob to remain on disk after row removal; GC reclaims it later")
	}

	live, err := s.LiveHashes(ctx)
	if err != nil {
		t.Fatalf("LiveHashes: %v", err)
	}
	if len(live) != 0 {
		t.Fatalf("expected no live hashes after removal, got %v", live)
	}
}

func TestUpdateOCR(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e, err := s.AddOrTouch(ctx, RawClip{ImageData: []byte("img"), ImageW: 1, ImageH: 1}, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateOCR(ctx, e.ID, "recognized text"); err != nil {
		t.Fatalf("UpdateOCR: %v", err)
	}
	got, err := s.GetEntry(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.OCRText == nil || *got.OCRText != "recognized text" {
		t.Fatalf("OCRText = %v, want 'recognized text'", got.OCRText)
	}
}
