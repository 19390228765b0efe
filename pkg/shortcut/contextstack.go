package shortcut

// Context names one input-handling scope. The zero value is never a
// valid context; use the named constants.
type Context string

const (
	ContextActionsDialog Context = "ActionsDialog"
	ContextArgPrompt     Context = "ArgPrompt"
	ContextEditorPrompt  Context = "EditorPrompt"
	ContextTermPrompt    Context = "TermPrompt"
	ContextPathPrompt    Context = "PathPrompt"
	ContextMainView      Context = "View<main>"
	ContextGlobal        Context = "Global"
)

// DefaultStack is the most-specific-first context order names.
// A pressed chord is tried against each context in this order; the first
// context with a matching binding consumes the event (test 6).
var DefaultStack = []Context{
	ContextActionsDialog,
	ContextArgPrompt,
	ContextEditorPrompt,
	ContextTermPrompt,
	ContextPathPrompt,
	ContextMainView,
	ContextGlobal,
}

// ContextStack is the live, possibly-narrowed subset of DefaultStack
// currently active — e.g. while no prompt is open, only [MainView,
// Global] are relevant.
type ContextStack []Context

// Dispatch runs chord against lookup in cs's order and returns the id of
// the first binding that matches, plus the context it matched in.
// Exactly one binding consumes the event — callers must stop routing the
// chord to anything else once Dispatch returns ok=true (test 6:
// "an Editor-focused press consumes exactly one binding ... and Global
// sees no event").
func (cs ContextStack) Dispatch(chord Shortcut, lookup func(ctx Context, chord Shortcut) (bindingID string, ok bool)) (Context, string, bool) {
	for _, ctx := range cs {
		if id, ok := lookup(ctx, chord); ok {
			return ctx, id, true
		}
	}
	return "", "", false
}
