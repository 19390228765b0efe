package session

import "os/exec"

// lookPath falls back to the process's PATH, separated out so tests can
// stub discovery without touching the environment.
func lookPath(name string) (string, error) {
	return exec.LookPath(name)
}
