// Package scriptindex unifies scripts, scriptlets, agents, builtins,
// apps, and windows into the one ranked list the launcher searches
// over. Each item family is discovered by its own loader
// and normalized into a single flat ItemKind-tagged Item so the fuzzy
// scorer and the grouping rules never need to know the source.
package scriptindex

import "time"

// ItemKind discriminates the family an Item was discovered from.
type ItemKind string

const (
	KindScript    ItemKind = "script"
	KindScriptlet ItemKind = "scriptlet"
	KindAgent     ItemKind = "agent"
	KindBuiltin   ItemKind = "builtin"
	KindApp       ItemKind = "app"
	KindWindow    ItemKind = "window"
)

// Item is the unified, read-only, reference-counted-in-spirit record
// every loader produces. Scripts/scriptlets/agents are never mutated
// in place after discovery; a refresh
// replaces the whole per-kind slice rather than editing entries.
type Item struct {
	ID          string
	Kind        ItemKind
	Name        string
	Description string
	Path        string // absolute file path, empty for builtins/apps/windows
	Icon        string
	Alias       string
	Shortcut    string
	Group       string // containing H1 heading or kit name, for scriptlets
	SourceRef   string // "file.md#slug" for scriptlets

	Metadata ScriptMetadata // populated for KindScript only

	// Agent-specific fields.
	AgentBackend     string // "claude" | "gemini" | "codex"
	AgentInteractive bool

	DiscoveredAt time.Time
}

// ScriptMetadata is the merged result of the two-pass extraction:
// line-comment metadata first, then the typed literal object, with
// typed fields overriding line-comment fields on conflict.
type ScriptMetadata struct {
	Name        string
	Description string
	Alias       string
	Shortcut    string
	Icon        string
	CronExpr    string
	WatchGlob   string
	Background  bool
	Schema      map[string]any
	Extra       map[string]any
}

func (m ScriptMetadata) merge(typed ScriptMetadata) ScriptMetadata {
	out := m
	if typed.Name != "" {
		out.Name = typed.Name
	}
	if typed.Description != "" {
		out.Description = typed.Description
	}
	if typed.Alias != "" {
		out.Alias = typed.Alias
	}
	if typed.Shortcut != "" {
		out.Shortcut = typed.Shortcut
	}
	if typed.Icon != "" {
		out.Icon = typed.Icon
	}
	if typed.CronExpr != "" {
		out.CronExpr = typed.CronExpr
	}
	if typed.WatchGlob != "" {
		out.WatchGlob = typed.WatchGlob
	}
	if typed.Background {
		out.Background = true
	}
	if typed.Schema != nil {
		out.Schema = typed.Schema
	}
	if typed.Extra != nil {
		if out.Extra == nil {
			out.Extra = make(map[string]any, len(typed.Extra))
		}
		for k, v := range typed.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
