package scriptindex

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scriptkit/launchercore/pkg/kitfs"
	"github.com/scriptkit/launchercore/pkg/scriptletmd"
)

// LoadScriptlets globs every kit's scriptlets directory, parses each
// markdown bundle with scriptletmd, and flattens the result into Items.
// A single malformed bundle only drops that bundle's scriptlets; it
// never fails the whole load.
func LoadScriptlets(layout kitfs.Layout) ([]Item, error) {
	kits, err := layout.Kits()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	var items []Item
	for _, kit := range kits {
		dir := layout.ScriptletsDir(kit)
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
				continue
			}
			path := filepath.Join(dir, e.Name())
			src, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			scriptlets, err := scriptletmd.ParseFile(path, src)
			if err != nil {
				continue
			}
			for _, s := range scriptlets {
				group := s.Group
				if group == "" {
					group = kit
				}
				items = append(items, Item{
					ID:           uuid.NewString(),
					Kind:         KindScriptlet,
					Name:         s.Name,
					Description:  s.Description,
					Path:         path,
					Alias:        s.Alias,
					Shortcut:     s.Shortcut,
					Group:        group,
					SourceRef:    s.SourcePath,
					DiscoveredAt: now,
				})
			}
		}
	}
	return items, nil
}

// LoadAgents globs every kit's agents directory and parses each markdown
// file's frontmatter via scriptletmd.ParseAgentFile.
func LoadAgents(layout kitfs.Layout) ([]Item, error) {
	kits, err := layout.Kits()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	var items []Item
	for _, kit := range kits {
		dir := layout.AgentsDir(kit)
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
				continue
			}
			path := filepath.Join(dir, e.Name())
			src, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			agent, err := scriptletmd.ParseAgentFile(path, src)
			if err != nil {
				continue
			}
			items = append(items, Item{
				ID:               uuid.NewString(),
				Kind:             KindAgent,
				Name:             agent.Name,
				Description:      agent.Description,
				Path:             path,
				Group:            kit,
				AgentBackend:     agent.Backend,
				AgentInteractive: agent.Interactive,
				DiscoveredAt:     now,
			})
		}
	}
	return items, nil
}
