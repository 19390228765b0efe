package scriptindex

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const watchDebounce = 100 * time.Millisecond

// Loader produces the current set of items for one ItemKind. Scripts
// and scriptlets reload on filesystem change (debounced); agents,
// builtins, apps and windows are loaded eagerly and refreshed only on
// demand.
type Loader func() ([]Item, error)

// Index holds one slice per ItemKind and serves the unified
// view the fuzzy scorer ranks over. Each slice keeps the order its
// loader or SetItems supplied; the index does not sort it. Each kind's slice is replaced
// wholesale on refresh — items are never mutated in place (// "Ownership": scripts/scriptlets/agents are reference-counted
// immutable records).
type Index struct {
	mu      sync.RWMutex
	items   map[ItemKind][]Item
	loaders map[ItemKind]Loader
	log     zerolog.Logger

	watcher   *fsnotify.Watcher
	watchKind map[string]ItemKind // watched dir -> kind to reload on change
	timers    map[string]*time.Timer
	timersMu  sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

func New(log zerolog.Logger) *Index {
	return &Index{
		items:     make(map[ItemKind][]Item),
		loaders:   make(map[ItemKind]Loader),
		watchKind: make(map[string]ItemKind),
		timers:    make(map[string]*time.Timer),
		log:       log,
		done:      make(chan struct{}),
	}
}

// SetLoader registers (or replaces) the loader for a kind and runs it
// once immediately.
func (idx *Index) SetLoader(kind ItemKind, loader Loader) error {
	idx.mu.Lock()
	idx.loaders[kind] = loader
	idx.mu.Unlock()
	return idx.Refresh(kind)
}

// SetItems directly installs a kind's items without a loader — used
// for apps/windows, which are refreshed on demand by the caller rather
// than via the filesystem-watch path.
func (idx *Index) SetItems(kind ItemKind, items []Item) {
	idx.mu.Lock()
	idx.items[kind] = items
	idx.mu.Unlock()
}

// Refresh re-runs the registered loader for a kind, if any.
func (idx *Index) Refresh(kind ItemKind) error {
	idx.mu.RLock()
	loader, ok := idx.loaders[kind]
	idx.mu.RUnlock()
	if !ok {
		return nil
	}
	items, err := loader()
	if err != nil {
		return err
	}
	idx.mu.Lock()
	idx.items[kind] = items
	idx.mu.Unlock()
	return nil
}

// All returns every item across every kind, the input to the fuzzy
// scorer and the grouping builder.
func (idx *Index) All() []Item {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var out []Item
	for _, kind := range []ItemKind{KindScript, KindScriptlet, KindAgent, KindBuiltin, KindApp, KindWindow} {
		out = append(out, idx.items[kind]...)
	}
	return out
}

func (idx *Index) ByKind(kind ItemKind) []Item {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	items := idx.items[kind]
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// WatchDir registers a directory whose changes should trigger a
// debounced reload of the given kind. The watcher
// is created lazily on first call.
func (idx *Index) WatchDir(dir string, kind ItemKind) error {
	idx.mu.Lock()
	if idx.watcher == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			idx.mu.Unlock()
			return err
		}
		idx.watcher = w
		go idx.watchLoop()
	}
	idx.watchKind[dir] = kind
	watcher := idx.watcher
	idx.mu.Unlock()
	return watcher.Add(dir)
}

func (idx *Index) watchLoop() {
	for {
		select {
		case <-idx.done:
			return
		case ev, ok := <-idx.watcher.Events:
			if !ok {
				return
			}
			idx.handleEvent(ev)
		case err, ok := <-idx.watcher.Errors:
			if !ok {
				return
			}
			idx.log.Warn().Err(err).Msg("scriptindex: filesystem watcher error")
		}
	}
}

func (idx *Index) handleEvent(ev fsnotify.Event) {
	idx.mu.RLock()
	var kind ItemKind
	var matched bool
	for dir, k := range idx.watchKind {
		if isWithinDir(ev.Name, dir) {
			kind, matched = k, true
			break
		}
	}
	idx.mu.RUnlock()
	if !matched {
		return
	}

	idx.timersMu.Lock()
	defer idx.timersMu.Unlock()
	key := string(kind) + "|" + ev.Name
	if t, exists := idx.timers[key]; exists {
		t.Stop()
	}
	idx.timers[key] = time.AfterFunc(watchDebounce, func() {
		if err := idx.Refresh(kind); err != nil {
			idx.log.Warn().Err(err).Str("kind", string(kind)).Msg("scriptindex: refresh after fs event failed")
		}
		idx.timersMu.Lock()
		delete(idx.timers, key)
		idx.timersMu.Unlock()
	})
}

func isWithinDir(path, dir string) bool {
	if len(path) < len(dir) {
		return false
	}
	return path[:len(dir)] == dir
}

func (idx *Index) Close() {
	idx.closeOnce.Do(func() {
		close(idx.done)
		idx.mu.Lock()
		w := idx.watcher
		idx.mu.Unlock()
		if w != nil {
			w.Close()
		}
		idx.timersMu.Lock()
		for _, t := range idx.timers {
			t.Stop()
		}
		idx.timersMu.Unlock()
	})
}
