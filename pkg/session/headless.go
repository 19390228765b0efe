package session

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/scriptkit/launchercore/pkg/launcherrors"
	"github.com/scriptkit/launchercore/pkg/prompt"
)

// kindForPath infers a ScriptKind from a script's file extension, used
// by headless (scheduler-fired) runs that don't go through the
// scriptindex.Item that normally carries this information.
func kindForPath(path string) ScriptKind {
	switch filepath.Ext(path) {
	case ".js":
		return KindJavaScript
	default:
		return KindTypeScript
	}
}

// RunHeadless spawns scriptPath with no UI attached (: "Firing
// a script runs it headless") and blocks until it exits. triggerArg, if
// non-empty, is passed as argv[1] (a Watch trigger's changed path).
// Prompt messages from a headless run have no view model to route to,
// so they are logged and dropped rather than handled.
func RunHeadless(ctx context.Context, disc *Discoverer, scriptPath, triggerArg string, log zerolog.Logger) error {
	var args []string
	if triggerArg != "" {
		args = []string{triggerArg}
	}

	done := make(chan error, 1)
	var once sync.Once
	cfg := Config{
		ScriptPath: scriptPath,
		Args:       args,
		Kind:       kindForPath(scriptPath),
		Log:        log,
		OnMessage: func(msg *prompt.Message) {
			log.Warn().Str("type", string(msg.Type)).Msg("session: dropped prompt message from headless run")
		},
		OnExit: func(info *CrashInfo, ok bool) {
			once.Do(func() {
				if ok {
					done <- nil
					return
				}
				done <- launcherrors.Wrap(launcherrors.ChildCrashed, "session",
					fmt.Sprintf("headless run of %s exited non-zero", scriptPath),
					fmt.Errorf("exit code %d", info.ExitCode))
			})
		},
	}

	s, err := Start(ctx, disc, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
