package shortcut

// Scope classifies how broadly a Binding applies.
type Scope string

const (
	ScopeGlobal Scope = "Global"
	ScopeView   Scope = "View"
	ScopePrompt Scope = "Prompt"
)

// Category groups bindings for the recorder UI.
type Category string

const (
	CategoryNavigation Category = "Navigation"
	CategoryEditing    Category = "Editing"
	CategoryPower      Category = "Power"
)

// OverrideState distinguishes the three states a user override can be
// in: absent (use the default), Disabled (user set it to null — the
// binding fires nowhere), or Remap (user supplied a different chord).
type OverrideState int

const (
	OverrideNone OverrideState = iota
	OverrideDisabled
	OverrideRemap
)

// Binding is one registered shortcut-able action.
type Binding struct {
	ID          string
	Description string
	Default     Shortcut
	Scope       Scope
	Category    Category
	Context     Context // which context-stack entry this binding lives in

	OverrideState OverrideState
	OverrideChord Shortcut // meaningful only when OverrideState == OverrideRemap
}

// Effective returns the chord actually bound for b: the override if one
// is set, else the default. ok is false when the binding is disabled.
func (b Binding) Effective() (Shortcut, bool) {
	switch b.OverrideState {
	case OverrideDisabled:
		return Shortcut{}, false
	case OverrideRemap:
		return b.OverrideChord, true
	default:
		return b.Default, true
	}
}

// Registry holds every known Binding, keyed by id, and answers
// context-stack lookups.
type Registry struct {
	bindings map[string]Binding
}

func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]Binding)}
}

func (r *Registry) Register(b Binding) { r.bindings[b.ID] = b }

func (r *Registry) Get(id string) (Binding, bool) {
	b, ok := r.bindings[id]
	return b, ok
}

func (r *Registry) All() []Binding {
	out := make([]Binding, 0, len(r.bindings))
	for _, b := range r.bindings {
		out = append(out, b)
	}
	return out
}

// ApplyOverride records a user override for id. state must be
// OverrideDisabled or OverrideRemap; chord is ignored unless state is
// OverrideRemap.
func (r *Registry) ApplyOverride(id string, state OverrideState, chord Shortcut) bool {
	b, ok := r.bindings[id]
	if !ok {
		return false
	}
	b.OverrideState = state
	b.OverrideChord = chord
	r.bindings[id] = b
	return true
}

// Lookup implements the function shape ContextStack.Dispatch needs: the
// first enabled binding in ctx whose effective chord equals chord.
func (r *Registry) Lookup(ctx Context, chord Shortcut) (string, bool) {
	for _, b := range r.bindings {
		if b.Context != ctx {
			continue
		}
		eff, ok := b.Effective()
		if ok && eff == chord {
			return b.ID, true
		}
	}
	return "", false
}

// PotentialConflict describes two bindings that resolve to the same
// chord.
type PotentialConflict struct {
	BindingA, BindingB string
	SameScope          bool
	Shadows            bool // true when A is Global and B is a narrower scope binding the same chord
}

// Conflicts scans every pair of registered bindings sharing an effective
// chord and reports them, marking Shadows when one binding is Global and
// the other is a narrower (View/Prompt) scope — the narrower binding
// takes precedence via the context stack, so the Global one is flagged
// as the shadowed side (example: "targeting the global
// binding").
func (r *Registry) Conflicts() []PotentialConflict {
	all := r.All()
	var out []PotentialConflict
	for i := 0; i < len(all); i++ {
		ci, oki := all[i].Effective()
		if !oki {
			continue
		}
		for j := i + 1; j < len(all); j++ {
			cj, okj := all[j].Effective()
			if !okj || ci != cj {
				continue
			}
			a, b := all[i], all[j]
			conflict := PotentialConflict{
				BindingA:  a.ID,
				BindingB:  b.ID,
				SameScope: a.Scope == b.Scope,
			}
			if a.Scope == ScopeGlobal && b.Scope != ScopeGlobal {
				conflict.Shadows = true
			} else if b.Scope == ScopeGlobal && a.Scope != ScopeGlobal {
				conflict.BindingA, conflict.BindingB = b.ID, a.ID
				conflict.Shadows = true
			}
			out = append(out, conflict)
		}
	}
	return out
}
