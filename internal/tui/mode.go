package tui

import (
	"io"
	"os"
	"runtime"
	"strings"

	"golang.org/x/term"
)

// OutputMode describes how progress output should be rendered.
type OutputMode int

const (
	// ModeTUI uses bubbletea for interactive rendering.
	ModeTUI OutputMode = iota
	// ModePlain writes static lines as work completes.
	ModePlain
	// ModeJSON writes structured JSON output.
	ModeJSON
)

func (m OutputMode) String() string {
	switch m {
	case ModeTUI:
		return "tui"
	case ModeJSON:
		return "json"
	default:
		return "plain"
	}
}

// DetectMode determines the appropriate output mode for the given writer.
func DetectMode(out io.Writer, noProgress, jsonOutput bool) OutputMode {
	if jsonOutput {
		return ModeJSON
	}
	if noProgress || !IsTerminal(out) {
		return ModePlain
	}
	if runtime.GOOS != "windows" {
		t := os.Getenv("TERM")
		if t == "" || strings.EqualFold(t, "dumb") {
			return ModePlain
		}
	}
	return ModeTUI
}

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v any) bool {
	file, ok := v.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// Interactive reports whether prompts can be shown: both in and out must be
// terminals.
func Interactive(in io.Reader, out io.Writer) bool {
	return IsTerminal(in) && IsTerminal(out)
}
