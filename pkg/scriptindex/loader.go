package scriptindex

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scriptkit/launchercore/pkg/kitfs"
)

// scriptExtensions are the file suffixes the loader treats as scripts
// under <kit>/scripts.
var scriptExtensions = []string{".ts", ".js"}

// LoadScripts globs every kit's scripts directory and returns one Item
// per matching file, metadata-extracted via ExtractMetadata. A file
// that fails to read is skipped rather than aborting the whole load,
// since one broken script must not blank out the rest of the index.
func LoadScripts(layout kitfs.Layout) ([]Item, error) {
	kits, err := layout.Kits()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	var items []Item
	for _, kit := range kits {
		dir := layout.ScriptsDir(kit)
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !hasScriptExt(e.Name()) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			src, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			meta := ExtractMetadata(src)
			name := meta.Name
			if name == "" {
				name = strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
			}
			items = append(items, Item{
				ID:           uuid.NewString(),
				Kind:         KindScript,
				Name:         name,
				Description:  meta.Description,
				Path:         path,
				Icon:         meta.Icon,
				Alias:        meta.Alias,
				Shortcut:     meta.Shortcut,
				Group:        kit,
				Metadata:     meta,
				DiscoveredAt: now,
			})
		}
	}
	return items, nil
}

func hasScriptExt(name string) bool {
	ext := filepath.Ext(name)
	for _, want := range scriptExtensions {
		if ext == want {
			return true
		}
	}
	return false
}
