// Package kitfs resolves the on-disk layout fixes: the
// ~/.scriptkit/ config/db/blob tree and the ~/.sk/kit/<kit>/ script
// tree. Path-escape guarding is adapted from pkg/textfs's NormalizePath
// (same clean-then-reject-dotdot idiom), generalized from a single
// virtual root to the several real roots this module reads from.
package kitfs

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Layout resolves every well-known path under the two root directories.
type Layout struct {
	ScriptKitHome string // ~/.scriptkit
	KitsHome      string // ~/.sk/kit
}

func DefaultLayout() (Layout, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Layout{}, err
	}
	return Layout{
		ScriptKitHome: filepath.Join(home, ".scriptkit"),
		KitsHome:      filepath.Join(home, ".sk", "kit"),
	}, nil
}

func (l Layout) ConfigPath() string     { return filepath.Join(l.ScriptKitHome, "config.ts") }
func (l Layout) ShortcutsPath() string  { return filepath.Join(l.ScriptKitHome, "shortcuts.json") }
func (l Layout) DBDir() string          { return filepath.Join(l.ScriptKitHome, "db") }
func (l Layout) BlobsDir() string       { return filepath.Join(l.ScriptKitHome, "clipboard", "blobs") }
func (l Layout) LogsDir() string        { return filepath.Join(l.ScriptKitHome, "logs") }

func (l Layout) DBPath(name string) string {
	return filepath.Join(l.DBDir(), name+".sqlite")
}

func (l Layout) ClipboardHistoryDB() string { return l.DBPath("clipboard-history") }
func (l Layout) NotesDB() string            { return l.DBPath("notes") }
func (l Layout) ChatsDB() string            { return l.DBPath("ai-chats") }
func (l Layout) MenuCacheDB() string        { return l.DBPath("menu-cache") }

// Kits lists the named directories under KitsHome (the glossary's "Kit":
// a named directory grouping scripts/scriptlets/agents).
func (l Layout) Kits() ([]string, error) {
	entries, err := os.ReadDir(l.KitsHome)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var kits []string
	for _, e := range entries {
		if e.IsDir() {
			kits = append(kits, e.Name())
		}
	}
	return kits, nil
}

func (l Layout) ScriptsDir(kit string) string    { return filepath.Join(l.KitsHome, kit, "scripts") }
func (l Layout) ScriptletsDir(kit string) string { return filepath.Join(l.KitsHome, kit, "scriptlets") }
func (l Layout) AgentsDir(kit string) string     { return filepath.Join(l.KitsHome, kit, "agents") }
func (l Layout) SDKPath(kit string) string       { return filepath.Join(l.KitsHome, kit, "lib", "kit-sdk.ts") }

// EnsureDirs creates every directory this module writes to, idempotently.
func (l Layout) EnsureDirs() error {
	for _, dir := range []string{l.ScriptKitHome, l.DBDir(), l.BlobsDir(), l.LogsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeRelPath cleans a path relative to a root and rejects any
// attempt to escape it via "..", mirroring pkg/textfs.NormalizePath.
func NormalizeRelPath(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("kitfs: path is required")
	}
	cleaned := strings.ReplaceAll(trimmed, "\\", "/")
	cleaned = strings.TrimPrefix(cleaned, "file://")
	cleaned = strings.TrimLeft(cleaned, "/")
	cleaned = strings.TrimPrefix(cleaned, "./")
	cleaned = path.Clean(cleaned)
	if cleaned == "." || cleaned == "" {
		return "", errors.New("kitfs: path is required")
	}
	if strings.HasPrefix(cleaned, "..") || strings.Contains(cleaned, "/..") {
		return "", errors.New("kitfs: path escapes root")
	}
	return strings.TrimSuffix(cleaned, "/"), nil
}
