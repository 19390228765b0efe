// Package actions assembles the per-context actions menu a prompt
// attaches and ranks it with the same frecency tie-break pkg/fuzzysearch
// applies to the main result list.
package actions

import (
	"sort"

	"github.com/scriptkit/launchercore/pkg/prompt"
)

// Menu is an ordered, de-conflicted actions list for one prompt.
type Menu struct {
	Actions []prompt.Action
}

// Build de-duplicates shortcut collisions (first-wins: the first action
// bound to a chord keeps it, later ones fall back to no shortcut) and
// orders the remaining actions by frecency, ties broken by the original
// (author-supplied) order.
func Build(raw []prompt.Action, frecency func(actionID string) float64) Menu {
	if frecency == nil {
		frecency = func(string) float64 { return 0 }
	}

	seenShortcuts := make(map[string]bool)
	kept := make([]prompt.Action, 0, len(raw))
	for _, a := range raw {
		if a.Shortcut != "" {
			if seenShortcuts[a.Shortcut] {
				a.Shortcut = "" // later duplicate loses the shortcut, not the action
			} else {
				seenShortcuts[a.Shortcut] = true
			}
		}
		kept = append(kept, a)
	}

	type scored struct {
		action prompt.Action
		order  int
		score  float64
	}
	withScore := make([]scored, len(kept))
	for i, a := range kept {
		withScore[i] = scored{action: a, order: i, score: frecency(a.ID)}
	}
	sort.SliceStable(withScore, func(i, j int) bool {
		if withScore[i].score != withScore[j].score {
			return withScore[i].score > withScore[j].score
		}
		return withScore[i].order < withScore[j].order
	})

	out := make([]prompt.Action, len(withScore))
	for i, s := range withScore {
		out[i] = s.action
	}
	return Menu{Actions: out}
}

// Trigger resolves how an action fires, an action with
// HasAction set emits actionTriggered{id}; otherwise it emits a
// synthetic submit{value}.
func Trigger(a prompt.Action, promptID string) *prompt.Message {
	if a.HasAction {
		return &prompt.Message{Type: prompt.TypeActionTriggered, ID: promptID, ActionID: a.ID}
	}
	return &prompt.Message{Type: prompt.TypeSubmit, ID: promptID, Value: a.Value}
}
