package prompt

import (
	"testing"

	"github.com/rs/zerolog"
)

type fakeSink struct {
	windowControls int
	stateReplies   int
}

func (f *fakeSink) OnWindowControl(msg *Message)  { f.windowControls++ }
func (f *fakeSink) OnStateQueryReply(msg *Message) { f.stateReplies++ }

func newTestVM() (*ViewModel, *fakeSink) {
	sink := &fakeSink{}
	return NewViewModel(sink, zerolog.Nop()), sink
}

func TestIdleToPromptTransition(t *testing.T) {
	vm, _ := newTestVM()
	if vm.State() != StateIdle {
		t.Fatalf("expected initial Idle state")
	}
	vm.OnMessage(&Message{Type: TypeArg, ID: "a1"})
	if vm.State() != StatePrompt {
		t.Fatalf("expected Prompt state, got %v", vm.State())
	}
	if vm.Current() == nil || vm.Current().ID != "a1" {
		t.Fatalf("expected current prompt a1")
	}
}

func TestSubmitReturnsToIdle(t *testing.T) {
	vm, _ := newTestVM()
	vm.OnMessage(&Message{Type: TypeArg, ID: "a1"})
	vm.Submit("a1", String("Red"))
	if vm.State() != StateIdle {
		t.Fatalf("expected Idle after submit, got %v", vm.State())
	}
}

func TestActionsToggle(t *testing.T) {
	vm, _ := newTestVM()
	vm.OnMessage(&Message{Type: TypeArg, ID: "a1"})
	vm.ToggleActions()
	if vm.State() != StateActions {
		t.Fatalf("expected Actions state")
	}
	vm.ToggleActions()
	if vm.State() != StatePrompt {
		t.Fatalf("expected back to Prompt state")
	}
}

func TestEscapeClosesActionsFirst(t *testing.T) {
	vm, _ := newTestVM()
	vm.OnMessage(&Message{Type: TypeArg, ID: "a1", Dismissable: true})
	vm.ToggleActions()
	if !vm.Escape() {
		t.Fatalf("expected escape to close actions")
	}
	if vm.State() != StatePrompt {
		t.Fatalf("expected Prompt state after closing actions")
	}
	if !vm.Escape() {
		t.Fatalf("expected escape to close dismissable prompt")
	}
	if vm.State() != StateIdle {
		t.Fatalf("expected Idle state after closing prompt")
	}
}

func TestEscapeNoopOnNonDismissable(t *testing.T) {
	vm, _ := newTestVM()
	vm.OnMessage(&Message{Type: TypeArg, ID: "a1", Dismissable: false})
	if vm.Escape() {
		t.Fatalf("expected escape to be a no-op on non-dismissable prompt")
	}
	if vm.State() != StatePrompt {
		t.Fatalf("expected to remain in Prompt state")
	}
}

func TestWindowControlRoutedToSink(t *testing.T) {
	vm, sink := newTestVM()
	vm.OnMessage(&Message{Type: TypeShow})
	if sink.windowControls != 1 {
		t.Fatalf("expected window control routed to sink")
	}
	if vm.State() != StateIdle {
		t.Fatalf("window control must not change prompt state")
	}
}

func TestStrayMessageDropped(t *testing.T) {
	vm, _ := newTestVM()
	vm.OnMessage(&Message{Type: TypeActionTriggered, ActionID: "x"})
	if vm.StrayCount() != 1 {
		t.Fatalf("expected stray message to be counted")
	}
}

func TestTieBreakNewPromptWinsMidPrompt(t *testing.T) {
	vm, _ := newTestVM()
	vm.OnMessage(&Message{Type: TypeArg, ID: "a1"})
	vm.OnMessage(&Message{Type: TypeEditor, ID: "unexpected-id"})
	if vm.Current().Type != TypeEditor {
		t.Fatalf("expected new prompt variant to replace stale prompt")
	}
}
