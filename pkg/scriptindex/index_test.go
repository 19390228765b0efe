package scriptindex

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestIndexSetLoaderRunsImmediately(t *testing.T) {
	idx := New(zerolog.Nop())
	defer idx.Close()

	calls := 0
	err := idx.SetLoader(KindBuiltin, func() ([]Item, error) {
		calls++
		return []Item{{ID: "1", Kind: KindBuiltin, Name: "Clipboard History"}}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if got := idx.ByKind(KindBuiltin); len(got) != 1 {
		t.Fatalf("ByKind = %v", got)
	}
}

func TestIndexAllConcatenatesKinds(t *testing.T) {
	idx := New(zerolog.Nop())
	defer idx.Close()
	idx.SetItems(KindScript, []Item{{ID: "s1", Kind: KindScript, Name: "A"}})
	idx.SetItems(KindApp, []Item{{ID: "a1", Kind: KindApp, Name: "B"}})

	all := idx.All()
	if len(all) != 2 {
		t.Fatalf("All() = %v", all)
	}
}

func TestIndexWatchDirDebouncesReload(t *testing.T) {
	dir := t.TempDir()
	idx := New(zerolog.Nop())
	defer idx.Close()

	var calls int
	if err := idx.SetLoader(KindScript, func() ([]Item, error) {
		calls++
		return nil, nil
	}); err != nil {
		t.Fatal(err)
	}
	calls = 0 // reset after the initial load triggered by SetLoader

	if err := idx.WatchDir(dir, KindScript); err != nil {
		t.Skipf("fsnotify unavailable in this environment: %v", err)
	}

	// Write several times in quick succession; debounced reload should
	// collapse this into a single refresh.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(dir, "script.ts"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(250 * time.Millisecond)
	if calls == 0 {
		t.Fatal("expected at least one debounced reload")
	}
}
