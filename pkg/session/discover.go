package session

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/scriptkit/launchercore/pkg/launcherrors"
)

// searchDirs lists the fixed path list executable discovery probes, in
// order: user toolchain bin dirs, Homebrew, /usr/local, /usr/bin.
func searchDirs() []string {
	home, _ := os.UserHomeDir()
	dirs := []string{
		filepath.Join(home, ".bun", "bin"),
		filepath.Join(home, ".local", "bin"),
		filepath.Join(home, ".volta", "bin"),
		filepath.Join(home, ".nvm", "current", "bin"),
		"/opt/homebrew/bin",
		"/usr/local/bin",
		"/usr/bin",
		"/bin",
	}
	return dirs
}

// Discoverer resolves and caches executable paths: init-once + lookup,
// no teardown required.
type Discoverer struct {
	mu    sync.Mutex
	cache map[string]string
	miss  map[string]bool
}

func NewDiscoverer() *Discoverer {
	return &Discoverer{cache: make(map[string]string), miss: make(map[string]bool)}
}

// Resolve finds the absolute path of name (e.g. "bun", "node", "mdflow",
// "kit"). A prior miss is not retried unless force is true, matching the
// original's "resolve once or fail fast" behavior (SPEC_FULL.md).
func (d *Discoverer) Resolve(name string, force bool) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !force {
		if path, ok := d.cache[name]; ok {
			return path, nil
		}
		if d.miss[name] {
			return "", (&launcherrors.ExecutableNotFound{Name: name}).AsLauncherError()
		}
	}

	for _, dir := range searchDirs() {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() && isExecutable(info.Mode()) {
			d.cache[name] = candidate
			delete(d.miss, name)
			return candidate, nil
		}
	}
	if path, err := lookPath(name); err == nil {
		d.cache[name] = path
		delete(d.miss, name)
		return path, nil
	}

	d.miss[name] = true
	return "", (&launcherrors.ExecutableNotFound{Name: name}).AsLauncherError()
}

func isExecutable(mode os.FileMode) bool {
	return mode&0o111 != 0
}
