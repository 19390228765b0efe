package shortcut

import (
	"os"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// rawOverrides mirrors ~/.scriptkit/shortcuts.json's shape exactly:
// {id: "cmd+shift+k" | null}. A *string lets json5 distinguish a missing
// key (not present in the map at all) from an explicit null (present,
// pointer nil) from a chord string (pointer non-nil).
type rawOverrides map[string]*string

// LoadOverrides reads and json5-decodes path (tolerating trailing commas
// and comments from hand edits, / SPEC_FULL's Config
// section) and applies each entry to reg. A missing file is not an
// error — it simply means no overrides are applied. A malformed chord
// string for one id is skipped (logged by the caller) rather than
// aborting the whole load.
func LoadOverrides(path string, reg *Registry) ([]error, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var overrides rawOverrides
	if err := json5.Unmarshal(raw, &overrides); err != nil {
		return nil, err
	}

	var parseErrs []error
	for id, chordRaw := range overrides {
		if chordRaw == nil {
			reg.ApplyOverride(id, OverrideDisabled, Shortcut{})
			continue
		}
		chord, err := Parse(*chordRaw)
		if err != nil {
			parseErrs = append(parseErrs, err)
			continue
		}
		reg.ApplyOverride(id, OverrideRemap, chord)
	}
	return parseErrs, nil
}
