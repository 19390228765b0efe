package scheduler

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const watchDebounce = 100 * time.Millisecond

type watchEntry struct {
	jobID string
	glob  string
	dir   string
}

// WatchRegistry registers filesystem-watch triggers:
// each matching fsnotify event is debounced 100ms per path before firing,
// coalescing a burst of writes to the same file into one fire.
type WatchRegistry struct {
	watcher *fsnotify.Watcher
	fire    func(jobID, path string)
	log     zerolog.Logger

	mu      sync.Mutex
	entries map[string]watchEntry // jobID -> entry
	timers  map[string]*time.Timer // debounce key (jobID+path) -> pending timer

	closeOnce sync.Once
	done      chan struct{}
}

func NewWatchRegistry(fire func(jobID, path string), log zerolog.Logger) *WatchRegistry {
	w, err := fsnotify.NewWatcher()
	r := &WatchRegistry{
		fire:    fire,
		log:     log,
		entries: make(map[string]watchEntry),
		timers:  make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}
	if err != nil {
		log.Warn().Err(err).Msg("scheduler: failed to create filesystem watcher; watch triggers disabled")
		return r
	}
	r.watcher = w
	go r.loop()
	return r
}

func (r *WatchRegistry) Add(jobID, glob string) error {
	if r.watcher == nil {
		return nil
	}
	dir := filepath.Dir(glob)
	if err := r.watcher.Add(dir); err != nil {
		return err
	}
	r.mu.Lock()
	r.entries[jobID] = watchEntry{jobID: jobID, glob: glob, dir: dir}
	r.mu.Unlock()
	return nil
}

func (r *WatchRegistry) Remove(jobID string) {
	r.mu.Lock()
	delete(r.entries, jobID)
	r.mu.Unlock()
}

func (r *WatchRegistry) loop() {
	for {
		select {
		case <-r.done:
			return
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			r.handle(ev)
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.log.Warn().Err(err).Msg("scheduler: filesystem watcher error")
		}
	}
}

func (r *WatchRegistry) handle(ev fsnotify.Event) {
	r.mu.Lock()
	var matches []watchEntry
	for _, e := range r.entries {
		if ok, _ := filepath.Match(e.glob, ev.Name); ok {
			matches = append(matches, e)
		}
	}
	for _, e := range matches {
		key := e.jobID + "|" + ev.Name
		if t, exists := r.timers[key]; exists {
			t.Stop()
		}
		jobID, path := e.jobID, ev.Name
		r.timers[key] = time.AfterFunc(watchDebounce, func() {
			r.fire(jobID, path)
			r.mu.Lock()
			delete(r.timers, key)
			r.mu.Unlock()
		})
	}
	r.mu.Unlock()
}

func (r *WatchRegistry) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
		if r.watcher != nil {
			r.watcher.Close()
		}
		r.mu.Lock()
		for _, t := range r.timers {
			t.Stop()
		}
		r.mu.Unlock()
	})
}
