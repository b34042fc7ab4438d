package render

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxErrorArgs      = 20
	maxErrorStderrLen = 2000
)

// ProcessError reports a failed compositor or concat invocation with enough
// context to reproduce it.
type ProcessError struct {
	Command string
	Args    []string
	Stderr  string
	LogPath string
	Err     error
}

// NewProcessError captures the command, its first arguments and the tail of
// its error stream.
func NewProcessError(command string, args []string, stderr []byte, err error) *ProcessError {
	kept := args
	if len(kept) > maxErrorArgs {
		kept = kept[:maxErrorArgs]
	}
	tail := strings.TrimSpace(string(stderr))
	if len(tail) > maxErrorStderrLen {
		start := len(tail) - maxErrorStderrLen
		for start < len(tail) && !utf8.RuneStart(tail[start]) {
			start++
		}
		tail = "…" + tail[start:]
	}
	return &ProcessError{
		Command: command,
		Args:    append([]string(nil), kept...),
		Stderr:  tail,
		Err:     err,
	}
}

func (e *ProcessError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed: %v", e.Command, e.Err)
	if e.LogPath != "" {
		fmt.Fprintf(&b, " (see %s)", e.LogPath)
	}
	fmt.Fprintf(&b, "\ncommand: %s %s", e.Command, strings.Join(e.Args, " "))
	if e.Stderr != "" {
		fmt.Fprintf(&b, "\nstderr: %s", e.Stderr)
	}
	return b.String()
}

func (e *ProcessError) Unwrap() error { return e.Err }
