// Package session implements the script execution runtime: spawning a
// chosen entry as a child process, demultiplexing its stdout JSONL stream,
// writing stdin replies, buffering stderr, and classifying how the
// process ended.
package session

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/rs/zerolog"

	"github.com/scriptkit/launchercore/pkg/launcherrors"
	"github.com/scriptkit/launchercore/pkg/prompt"
	"github.com/scriptkit/launchercore/pkg/schemacheck"
)

// ScriptKind selects the argv shape used to launch a script.
type ScriptKind int

const (
	KindTypeScript ScriptKind = iota
	KindJavaScript
	KindMarkdownFlow // mdflow-driven agents
)

// Config describes one script launch.
type Config struct {
	ScriptPath string
	Args       []string
	Kind       ScriptKind
	SDKPath    string // path to kit-sdk.ts, preloaded for TS/JS kinds
	Env        []string

	// Schema is the script's optional typed Schema literal. When
	// set, WriteLine validates a submit reply's value against it before
	// the line reaches the child's stdin.
	Schema map[string]any

	OnMessage func(msg *prompt.Message)
	OnExit    func(info *CrashInfo, ok bool)

	MaxStderrLines int
	MaxStderrBytes int

	Log zerolog.Logger
}

const maxOutstandingWriteBytes = 1 << 20 // 1 MiB backpressure threshold

// ErrSessionBusy is returned by WriteLine when the outstanding write queue
// exceeds the backpressure threshold.
var ErrSessionBusy = launcherrors.New(launcherrors.Busy, "session", "outstanding stdin writes exceed backpressure threshold")

type writeReq struct {
	data []byte
	done chan error
}

// Session is a live child-process handle. Four goroutines run per
// session: stdin writer, stdout reader, stderr reader, wait-for-exit.
type Session struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	stderrBuf *StderrBuffer

	writeCh          chan writeReq
	outstandingBytes atomic.Int64

	pending sync.Map // id (string) -> *prompt.Message, the last unreplied prompt

	onMessage func(msg *prompt.Message)
	onExit    func(info *CrashInfo, ok bool)

	closed    atomic.Bool
	closeOnce sync.Once
	killOnce  sync.Once

	waitOnce sync.Once
	waitDone chan struct{}
	waitErr  error

	log    zerolog.Logger
	schema *jsonschema.Resolved
}

// BuildArgs constructs the argv for a script launch. TS/JS scripts run
// via `bun run --preload <sdk> <script> <args...>`.
func BuildArgs(cfg Config) []string {
	switch cfg.Kind {
	case KindTypeScript, KindJavaScript:
		args := []string{"run"}
		if cfg.SDKPath != "" {
			args = append(args, "--preload", cfg.SDKPath)
		}
		args = append(args, cfg.ScriptPath)
		args = append(args, cfg.Args...)
		return args
	case KindMarkdownFlow:
		args := append([]string{cfg.ScriptPath}, cfg.Args...)
		return args
	default:
		return append([]string{cfg.ScriptPath}, cfg.Args...)
	}
}

// executableFor picks which discovered binary runs this kind of script.
func executableFor(kind ScriptKind) string {
	switch kind {
	case KindMarkdownFlow:
		return "mdflow"
	default:
		return "bun"
	}
}

// Start resolves the executable, spawns the child in its own process
// group, and begins the reader/writer goroutines. Spawn failure and
// executable-not-found are fatal to this launch and reported synchronously.
func Start(ctx context.Context, disc *Discoverer, cfg Config) (*Session, error) {
	exeName := executableFor(cfg.Kind)
	exePath, err := disc.Resolve(exeName, false)
	if err != nil {
		return nil, err
	}

	schema, err := schemacheck.Compile(cfg.Schema)
	if err != nil {
		return nil, err
	}

	args := BuildArgs(cfg)
	cmd := exec.CommandContext(ctx, exePath, args...)
	cmd.Env = cfg.Env
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, launcherrors.Wrap(launcherrors.IO, "session", "failed to open stdin pipe", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, launcherrors.Wrap(launcherrors.IO, "session", "failed to open stdout pipe", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, launcherrors.Wrap(launcherrors.IO, "session", "failed to open stderr pipe", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, launcherrors.Wrap(launcherrors.IO, "session", "failed to start child process", err)
	}

	s := &Session{
		cmd:       cmd,
		stdin:     stdin,
		stdout:    stdout,
		stderr:    stderr,
		stderrBuf: NewStderrBuffer(cfg.MaxStderrLines, cfg.MaxStderrBytes),
		writeCh:   make(chan writeReq, 256),
		onMessage: cfg.OnMessage,
		onExit:    cfg.OnExit,
		waitDone:  make(chan struct{}),
		log:       cfg.Log,
		schema:    schema,
	}

	go s.writeLoop()
	go s.readLoop()
	go s.drainStderr()
	go s.awaitExit()

	return s, nil
}

// readLoop scans stdout as JSONL. Parse errors never terminate the
// session — they are logged and skipped. A well-formed partial final
// line (no trailing newline) at EOF is still parsed.
func (s *Session) readLoop() {
	sc := bufio.NewScanner(s.stdout)
	buf := make([]byte, 0, 64*1024)
	sc.Buffer(buf, 8*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		msg, err := prompt.Parse(line)
		if err != nil {
			s.log.Warn().Err(err).Msg("session: dropped malformed stdout line")
			continue
		}
		if msg.ID != "" && prompt.PromptVariants[msg.Type] {
			s.pending.Store(msg.ID, msg)
		}
		if s.onMessage != nil {
			s.onMessage(msg)
		}
	}
}

func (s *Session) drainStderr() {
	r := bufio.NewReader(s.stderr)
	for {
		line, err := r.ReadString('\n')
		trimmed := trimNewline(line)
		if trimmed != "" {
			s.stderrBuf.PushLine(trimmed)
			s.log.Info().Str("stream", "stderr").Msg(trimmed)
		}
		if err != nil {
			return
		}
	}
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// WriteLine writes a single reply line (submit/update/cancel) to the
// child's stdin. Returns ErrSessionBusy if the 1 MiB backpressure
// threshold is exceeded.
func (s *Session) WriteLine(msg *prompt.Message) error {
	if s.closed.Load() {
		return launcherrors.New(launcherrors.IO, "session", "session already closed")
	}
	if msg.Type == prompt.TypeSubmit && s.schema != nil {
		if err := schemacheck.Validate(s.schema, msg.Value); err != nil {
			return err
		}
	}
	data, err := prompt.Serialize(msg)
	if err != nil {
		return launcherrors.Wrap(launcherrors.Parse, "session", "failed to serialize reply", err)
	}
	data = append(data, '\n')

	if s.outstandingBytes.Load()+int64(len(data)) > maxOutstandingWriteBytes {
		return ErrSessionBusy
	}

	if msg.Type == prompt.TypeSubmit || msg.Type == prompt.TypeCancel {
		s.pending.Delete(msg.ID)
	}

	s.outstandingBytes.Add(int64(len(data)))
	done := make(chan error, 1)
	select {
	case s.writeCh <- writeReq{data: data, done: done}:
	default:
		s.outstandingBytes.Add(-int64(len(data)))
		return ErrSessionBusy
	}
	err = <-done
	s.outstandingBytes.Add(-int64(len(data)))
	return err
}

func (s *Session) writeLoop() {
	for req := range s.writeCh {
		if s.closed.Load() {
			req.done <- launcherrors.New(launcherrors.IO, "session", "session closed")
			continue
		}
		_, err := s.stdin.Write(req.data)
		req.done <- err
	}
}

func (s *Session) awaitExit() {
	err := s.wait()
	ok := err == nil && s.pendingCount() == 0
	var info *CrashInfo
	if !ok {
		info = s.buildCrashInfo(err)
	}
	if s.onExit != nil {
		s.onExit(info, ok)
	}
	_ = s.Close()
}

func (s *Session) wait() error {
	s.waitOnce.Do(func() {
		s.waitErr = s.cmd.Wait()
		close(s.waitDone)
	})
	<-s.waitDone
	return s.waitErr
}

func (s *Session) pendingCount() int {
	n := 0
	s.pending.Range(func(_, _ any) bool { n++; return true })
	return n
}

func (s *Session) buildCrashInfo(waitErr error) *CrashInfo {
	exitCode := -1
	var signal *string
	if s.cmd != nil && s.cmd.ProcessState != nil {
		exitCode = s.cmd.ProcessState.ExitCode()
	}
	tail := s.stderrBuf.Contents()
	var lastPrompt *prompt.Message
	s.pending.Range(func(_, v any) bool {
		lastPrompt = v.(*prompt.Message)
		return false
	})
	return &CrashInfo{
		ExitCode:    exitCode,
		Signal:      signal,
		LastPrompt:  lastPrompt,
		StderrTail:  tail,
		StackTrace:  ParseStackTrace(tail),
		Suggestions: Suggestions(tail),
	}
}

// Close idempotently tears down the session: SIGTERM to the whole process
// group, SIGKILL after a 200ms grace period.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.closeOnce.Do(func() { close(s.writeCh) })
	s.killProcessGroup()
	_ = s.stdin.Close()
	s.wait()
	return nil
}

func (s *Session) killProcessGroup() {
	s.killOnce.Do(func() {
		if s.cmd.Process == nil {
			return
		}
		pgid, err := syscall.Getpgid(s.cmd.Process.Pid)
		if err != nil {
			_ = s.cmd.Process.Kill()
			return
		}
		_ = syscall.Kill(-pgid, syscall.SIGTERM)
		go func() {
			time.Sleep(200 * time.Millisecond)
			_ = syscall.Kill(-pgid, syscall.SIGKILL)
		}()
	})
}

// StderrTail exposes the buffered stderr for callers that want to inspect
// a running session without waiting for exit.
func (s *Session) StderrTail() string {
	return s.stderrBuf.Contents()
}
