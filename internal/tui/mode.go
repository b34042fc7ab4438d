package tui

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/mattn/go-isatty"
)

// OutputMode describes how progress output should be rendered.
type OutputMode int

const (
	// ModeTUI uses bubbletea for interactive progress rendering.
	ModeTUI OutputMode = iota
	// ModePlain writes one line per finished clip.
	ModePlain
	// ModeJSON writes structured JSON output.
	ModeJSON
)

// DetectMode determines the appropriate output mode for the given writer.
func DetectMode(out io.Writer, noProgress, jsonOutput bool) OutputMode {
	if jsonOutput {
		return ModeJSON
	}
	if noProgress || !IsTerminal(out) {
		return ModePlain
	}
	if runtime.GOOS != "windows" {
		term := os.Getenv("TERM")
		if term == "" || strings.EqualFold(term, "dumb") {
			return ModePlain
		}
	}
	return ModeTUI
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
