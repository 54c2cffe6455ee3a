package progress

import (
	"io"
	"strconv"

	"golang.org/x/term"
)

// ANSI fragments used for line-oriented redraw.
const (
	carriageReturn = "\r"
	eraseLine      = "\x1b[2K"
	cursorHide     = "\x1b[?25l"
	cursorShow     = "\x1b[?25h"
)

// fallbackColumns is used when the writer is not a terminal.
const fallbackColumns = 80

type fder interface {
	Fd() uintptr
}

// isTerminal reports whether w is backed by a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(fder)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns a func reporting the current column count of w.
// The size is queried on every call so resizes are picked up.
func terminalWidth(w io.Writer) func() int {
	f, ok := w.(fder)
	if !ok {
		return func() int { return fallbackColumns }
	}
	fd := int(f.Fd())
	return func() int {
		cols, _, err := term.GetSize(fd)
		if err != nil || cols <= 0 {
			return fallbackColumns
		}
		return cols
	}
}

// cursorUp moves the cursor up n lines.
func cursorUp(n int) string {
	if n <= 0 {
		return ""
	}
	return "\x1b[" + strconv.Itoa(n) + "A"
}
