// Package shortcut implements chord parsing/normalization, the
// context-stack dispatch model, and the binding registry with user
// overrides.
package shortcut

import (
	"fmt"
	"strings"
)

// Modifiers is a bitmask of held modifier keys, canonicalised so that
// platform vernacular ("cmd", "meta", "super", "⌘") all fold to one bit.
type Modifiers uint8

const (
	ModCmd Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModShift
)

func (m Modifiers) Has(flag Modifiers) bool { return m&flag != 0 }

// Shortcut is a canonicalised (Modifiers, key) chord.
type Shortcut struct {
	Mods Modifiers
	Key  string
}

func (s Shortcut) String() string {
	var parts []string
	if s.Mods.Has(ModCmd) {
		parts = append(parts, "cmd")
	}
	if s.Mods.Has(ModCtrl) {
		parts = append(parts, "ctrl")
	}
	if s.Mods.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	if s.Mods.Has(ModShift) {
		parts = append(parts, "shift")
	}
	parts = append(parts, s.Key)
	return strings.Join(parts, "+")
}

// modifierAliases folds every platform/user vernacular spelling of a
// modifier to its canonical token.
var modifierAliases = map[string]Modifiers{
	"cmd": ModCmd, "command": ModCmd, "meta": ModCmd, "super": ModCmd, "win": ModCmd, "⌘": ModCmd,
	"ctrl": ModCtrl, "control": ModCtrl, "^": ModCtrl,
	"alt": ModAlt, "opt": ModAlt, "option": ModAlt, "⌥": ModAlt,
	"shift": ModShift, "⇧": ModShift,
}

// keyAliases canonicalises common key-name vernacular (// "arrowup|uparrow fold to up").
var keyAliases = map[string]string{
	"arrowup": "up", "uparrow": "up",
	"arrowdown": "down", "downarrow": "down",
	"arrowleft": "left", "leftarrow": "left",
	"arrowright": "right", "rightarrow": "right",
	"esc": "escape",
	"forwardslash": "slash", "return": "enter",
	"spacebar": "space",
}

// Parse normalizes a free-form chord string into a canonical Shortcut.
// Tokens split on "+" or whitespace, are case-folded, and modifiers are
// aliased to their canonical token. An empty chord, a chord with no key
// token, and a chord with more than one non-modifier token are parse
// errors. Any other non-modifier token becomes the key (after key-alias
// folding); key names are not checked against a list of known keys.
func Parse(raw string) (Shortcut, error) {
	fields := splitChord(raw)
	if len(fields) == 0 {
		return Shortcut{}, fmt.Errorf("shortcut: empty chord")
	}

	var mods Modifiers
	var key string
	for _, tok := range fields {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if mod, ok := modifierAliases[tok]; ok {
			mods |= mod
			continue
		}
		if key != "" {
			return Shortcut{}, fmt.Errorf("shortcut: multiple non-modifier tokens in %q", raw)
		}
		if alias, ok := keyAliases[tok]; ok {
			key = alias
		} else {
			key = tok
		}
	}
	if key == "" {
		return Shortcut{}, fmt.Errorf("shortcut: no key token in %q", raw)
	}
	return Shortcut{Mods: mods, Key: key}, nil
}

func splitChord(raw string) []string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "+") {
		return strings.Split(raw, "+")
	}
	return strings.Fields(raw)
}
