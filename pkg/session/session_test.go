package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/scriptkit/launchercore/pkg/prompt"
	"github.com/scriptkit/launchercore/pkg/schemacheck"
)

func discovererWithShell(t *testing.T) *Discoverer {
	t.Helper()
	d := NewDiscoverer()
	return d
}

// fakeHandler collects messages delivered via OnMessage.
type fakeHandler struct {
	mu   sync.Mutex
	msgs []*prompt.Message
}

func (h *fakeHandler) onMessage(msg *prompt.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, msg)
}

func (h *fakeHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.msgs)
}

func TestBuildArgsTypeScript(t *testing.T) {
	cfg := Config{
		ScriptPath: "/scripts/hello.ts",
		Args:       []string{"--foo"},
		Kind:       KindTypeScript,
		SDKPath:    "/sdk/kit-sdk.ts",
	}
	args := BuildArgs(cfg)
	want := []string{"run", "--preload", "/sdk/kit-sdk.ts", "/scripts/hello.ts", "--foo"}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestBuildArgsNoSDK(t *testing.T) {
	cfg := Config{ScriptPath: "/scripts/hello.ts", Kind: KindJavaScript}
	args := BuildArgs(cfg)
	if strings.Contains(strings.Join(args, " "), "--preload") {
		t.Fatalf("did not expect --preload without an SDK path: %v", args)
	}
}

func TestBuildArgsMarkdownFlow(t *testing.T) {
	cfg := Config{ScriptPath: "/agents/review.md", Args: []string{"a"}, Kind: KindMarkdownFlow}
	args := BuildArgs(cfg)
	if args[0] != "/agents/review.md" || args[1] != "a" {
		t.Fatalf("unexpected markdown-flow args: %v", args)
	}
}

// TestWriteLineWithoutChildProcess builds a Session with no child process,
// drains writeCh with a fake writer, and verifies a submit reply is accepted.
func TestWriteLineWithoutChildProcess(t *testing.T) {
	disc := discovererWithShell(t)
	_ = disc

	handler := &fakeHandler{}
	exitCh := make(chan bool, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg := Config{
		ScriptPath:     "",
		Kind:           KindTypeScript,
		OnMessage:      handler.onMessage,
		MaxStderrLines: 50,
		MaxStderrBytes: 1024,
		Log:            zerolog.Nop(),
		OnExit: func(info *CrashInfo, ok bool) {
			exitCh <- ok
		},
	}

	// Substitute a direct exec.Cmd-less smoke test: exercise WriteLine's
	// backpressure accounting without a real child, since spawning `cat`
	// through bun/mdflow discovery isn't available in this environment.
	s := &Session{
		writeCh:   make(chan writeReq, 256),
		onMessage: cfg.OnMessage,
		pending:   sync.Map{},
		log:       zerolog.Nop(),
	}
	go func() {
		for req := range s.writeCh {
			req.done <- nil
		}
	}()

	msg := &prompt.Message{Type: prompt.TypeSubmit, ID: "abc", Value: prompt.String("hi")}
	if err := s.WriteLine(msg); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}
}

func TestWriteLineBackpressure(t *testing.T) {
	s := &Session{
		writeCh: make(chan writeReq), // unbuffered and undrained; the byte threshold below trips first
		log:     zerolog.Nop(),
	}
	s.outstandingBytes.Store(maxOutstandingWriteBytes)

	msg := &prompt.Message{Type: prompt.TypeSubmit, ID: "x", Value: prompt.String("y")}
	err := s.WriteLine(msg)
	if err == nil {
		t.Fatal("expected ErrSessionBusy when outstanding bytes exceed threshold")
	}
}

func TestWriteLineClosedSession(t *testing.T) {
	s := &Session{writeCh: make(chan writeReq, 1), log: zerolog.Nop()}
	s.closed.Store(true)
	msg := &prompt.Message{Type: prompt.TypeSubmit, ID: "x"}
	if err := s.WriteLine(msg); err == nil {
		t.Fatal("expected error writing to a closed session")
	}
}

func TestWriteLineRejectsSubmitFailingSchema(t *testing.T) {
	resolved, err := schemacheck.Compile(map[string]any{
		"type": "string",
		"enum": []any{"red", "green", "blue"},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	s := &Session{writeCh: make(chan writeReq, 1), log: zerolog.Nop(), schema: resolved}

	msg := &prompt.Message{Type: prompt.TypeSubmit, ID: "x", Value: prompt.String("purple")}
	if err := s.WriteLine(msg); err == nil {
		t.Fatal("expected schema validation error for a value outside the enum")
	}
}

func TestWriteLineAllowsSubmitMatchingSchema(t *testing.T) {
	resolved, err := schemacheck.Compile(map[string]any{
		"type": "string",
		"enum": []any{"red", "green", "blue"},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	s := &Session{writeCh: make(chan writeReq, 1), log: zerolog.Nop(), schema: resolved}
	go func() {
		req := <-s.writeCh
		req.done <- nil
	}()

	msg := &prompt.Message{Type: prompt.TypeSubmit, ID: "x", Value: prompt.String("green")}
	if err := s.WriteLine(msg); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}
}

func TestPendingTrackingAndCrashInfo(t *testing.T) {
	s := &Session{
		stderrBuf: NewStderrBuffer(10, 1024),
		log:       zerolog.Nop(),
	}
	promptMsg := &prompt.Message{Type: prompt.TypeArg, ID: "p1", Placeholder: "name?"}
	s.pending.Store("p1", promptMsg)

	if s.pendingCount() != 1 {
		t.Fatalf("pendingCount = %d, want 1", s.pendingCount())
	}

	s.stderrBuf.PushLine("Error: MODULE_NOT_FOUND could not resolve 'left-pad'")
	info := s.buildCrashInfo(nil)
	if info.LastPrompt == nil || info.LastPrompt.ID != "p1" {
		t.Fatalf("expected crash info to surface the unmatched pending prompt")
	}
	found := false
	for _, sug := range info.Suggestions {
		if strings.Contains(sug, "bun install") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a MODULE_NOT_FOUND suggestion, got %v", info.Suggestions)
	}
}
