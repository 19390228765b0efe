package session

import (
	"regexp"
	"strings"

	"github.com/scriptkit/launchercore/pkg/prompt"
)

// CrashInfo captures everything the UI needs to render a post-mortem toast
// and "show details" panel.
type CrashInfo struct {
	ExitCode    int
	Signal      *string
	LastPrompt  *prompt.Message
	StderrTail  string
	StackTrace  []StackFrame
	Suggestions []string
}

// StackFrame is one parsed "at file:line:column" entry from a stderr tail.
// Parsing is pure text scanning, never a code path that evaluates script
// source.
type StackFrame struct {
	File   string
	Line   int
	Column int
}

var stackFrameRE = regexp.MustCompile(`(?:at\s+)?([^\s()]+):(\d+):(\d+)`)

// ParseStackTrace pulls file:line:column tuples out of free-form stderr
// text.
func ParseStackTrace(stderrTail string) []StackFrame {
	var frames []StackFrame
	for _, line := range strings.Split(stderrTail, "\n") {
		m := stackFrameRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		frames = append(frames, StackFrame{
			File:   m[1],
			Line:   atoiSafe(m[2]),
			Column: atoiSafe(m[3]),
		})
	}
	return frames
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// suggestionRule is one ordered (substring, advice) pair. Keyword rules
// only — never a full parser.
type suggestionRule struct {
	substr string
	advice string
}

var suggestionRules = []suggestionRule{
	{"MODULE_NOT_FOUND", "run bun install"},
	{"Cannot find module", "the SDK preload path may be stale; re-resolve executables"},
	{"EADDRINUSE", "a previous script instance may still be listening on that port"},
	{"ENOENT", "the script referenced a file that does not exist"},
	{"EACCES", "check file permissions for the script or its dependencies"},
	{"SyntaxError", "the script has a syntax error; check for an unclosed bracket or stray token"},
	{"out of memory", "the script allocated more memory than is available"},
}

// Suggestions scans text (normally the stderr tail) for known failure
// signatures and returns matching advice, preserving rule order.
func Suggestions(text string) []string {
	var out []string
	for _, rule := range suggestionRules {
		if strings.Contains(text, rule.substr) {
			out = append(out, rule.advice)
		}
	}
	return out
}
