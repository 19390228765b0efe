package prompt

import (
	"sync"

	"github.com/rs/zerolog"
)

// State names the view model's position in the state machine described in
// spec §4.2: Idle, a current prompt, or an Actions overlay of that prompt.
type State int

const (
	StateIdle State = iota
	StatePrompt
	StateActions
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePrompt:
		return "prompt"
	case StateActions:
		return "actions"
	default:
		return "unknown"
	}
}

// Sink receives window-control and state-query-response side effects; the
// out-of-scope GPU UI toolkit implements it. Prompt-bearing messages never
// go through Sink — they become ViewModel.Current().
type Sink interface {
	OnWindowControl(msg *Message)
	OnStateQueryReply(msg *Message)
}

// ViewModel owns at most one current prompt plus an optional actions
// overlay. It is single-threaded by
// convention (driven from the UI thread) but guards its fields with a
// mutex so session goroutines may safely call OnMessage directly.
type ViewModel struct {
	mu        sync.Mutex
	state     State
	current   *Message
	actionsOf Type
	sink      Sink
	log       zerolog.Logger

	strays int // count of dropped/stray messages, exposed for tests and metrics
}

func NewViewModel(sink Sink, log zerolog.Logger) *ViewModel {
	return &ViewModel{state: StateIdle, sink: sink, log: log}
}

func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

func (vm *ViewModel) Current() *Message {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.current
}

func (vm *ViewModel) StrayCount() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.strays
}

// OnMessage applies a script->app message to the state machine. It
// returns true if the message changed view-model state needing a
// re-render, false if it was routed to Sink or dropped as a stray.
func (vm *ViewModel) OnMessage(msg *Message) bool {
	if msg == nil {
		return false
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()

	switch {
	case isWindowControl(msg.Type):
		if vm.sink != nil {
			vm.sink.OnWindowControl(msg)
		}
		return false
	case isStateQueryReply(msg.Type):
		if vm.sink != nil {
			vm.sink.OnStateQueryReply(msg)
		}
		return false
	case PromptVariants[msg.Type]:
		return vm.applyPrompt(msg)
	default:
		// Stray or out-of-band message (e.g. a reply whose id we no longer
		// track, or a variant with no handler). Log and drop; never kill
		// the session over an unrouted message.
		vm.strays++
		vm.log.Warn().Str("type", string(msg.Type)).Msg("prompt: dropped stray message")
		return false
	}
}

// applyPrompt implements the Idle -> prompt and tie-break transitions.
// Must be called with vm.mu held.
func (vm *ViewModel) applyPrompt(msg *Message) bool {
	switch vm.state {
	case StateIdle:
		vm.current = msg
		vm.state = StatePrompt
		return true
	case StatePrompt:
		// A new prompt message while one is already current: replace it.
		// (id mismatch handling "Tie-breaks" — since this IS
		// a prompt variant, it always wins over the stale prompt.)
		vm.current = msg
		return true
	case StateActions:
		// A new prompt supersedes an open actions dialog for the old one.
		vm.current = msg
		vm.actionsOf = ""
		vm.state = StatePrompt
		return true
	}
	return false
}

// Submit, Cancel, and Exit close the current prompt (prompt -> Idle). The
// caller (session runtime) is responsible for writing the corresponding
// reply to the child; ViewModel only tracks UI state.
func (vm *ViewModel) Submit(id string, value Value) {
	vm.closeIfMatches(id)
}

func (vm *ViewModel) Cancel(id string) {
	vm.closeIfMatches(id)
}

func (vm *ViewModel) ExitSession() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.current = nil
	vm.actionsOf = ""
	vm.state = StateIdle
}

func (vm *ViewModel) closeIfMatches(id string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.current == nil {
		return
	}
	if id != "" && vm.current.ID != "" && id != vm.current.ID {
		// Stray submit/cancel for an id that isn't current; ignore.
		vm.strays++
		return
	}
	vm.current = nil
	vm.actionsOf = ""
	vm.state = StateIdle
}

// ToggleActions implements Cmd+K / setActions({open:true}):
// prompt <-> Actions(prompt).
func (vm *ViewModel) ToggleActions() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	switch vm.state {
	case StatePrompt:
		if vm.current == nil {
			return
		}
		vm.actionsOf = vm.current.Type
		vm.state = StateActions
	case StateActions:
		vm.state = StatePrompt
		vm.actionsOf = ""
	}
}

// Escape implements the ESC behavior : close Actions if
// open, else close the prompt if it is dismissable. Returns true if
// something was closed.
func (vm *ViewModel) Escape() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.state == StateActions {
		vm.state = StatePrompt
		vm.actionsOf = ""
		return true
	}
	if vm.state == StatePrompt && vm.current != nil && vm.current.Dismissable {
		vm.current = nil
		vm.state = StateIdle
		return true
	}
	return false
}

func isWindowControl(t Type) bool {
	switch t {
	case TypeShow, TypeHide, TypeSetPosition, TypeSetSize, TypeSetAlwaysOnTop,
		TypeSetPanel, TypeSetPrompt, TypeSetActions:
		return true
	}
	return false
}

func isStateQueryReply(t Type) bool {
	switch t {
	case TypeStateResult, TypeSelectedText, TypeScreenshotResult, TypeWindowBounds,
		TypeClipboardHistoryResult, TypeScriptletList, TypeScriptletResult:
		return true
	}
	return false
}
