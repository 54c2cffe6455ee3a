package progress

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// display is where a bar's lines end up: its own writer in single mode, a
// coordinator lane in multi mode.
type display interface {
	draw(text string, force bool) error
	clear() error
	print(text, redraw string) error
	prompt(prompt, redraw string) (string, error)
	close(final string, leave bool) error
	row() int
}

// console is the single-mode display. It owns its writer exclusively and
// every call writes synchronously.
type console struct {
	w      io.Writer
	in     io.Reader
	reader *bufio.Reader
	tty    bool
	hidden bool
}

func newConsole(w io.Writer, in io.Reader) *console {
	return &console{w: w, in: in, tty: isTerminal(w)}
}

func (c *console) row() int { return -1 }

func (c *console) draw(text string, _ bool) error {
	prefix := carriageReturn + eraseLine
	if c.tty && !c.hidden {
		prefix = cursorHide + prefix
		c.hidden = true
	}
	_, err := io.WriteString(c.w, prefix+text)
	return err
}

func (c *console) clear() error {
	_, err := io.WriteString(c.w, carriageReturn+eraseLine)
	return err
}

func (c *console) print(text, redraw string) error {
	if err := c.clear(); err != nil {
		return err
	}
	if _, err := io.WriteString(c.w, text+"\n"); err != nil {
		return err
	}
	return c.draw(redraw, true)
}

func (c *console) prompt(prompt, redraw string) (string, error) {
	if err := c.clear(); err != nil {
		return "", err
	}
	if _, err := io.WriteString(c.w, prompt); err != nil {
		return "", err
	}
	if c.reader == nil {
		c.reader = bufio.NewReader(c.in)
	}
	line, readErr := readLine(c.reader)
	if err := c.draw(redraw, true); err != nil {
		return "", err
	}
	return line, readErr
}

func (c *console) close(final string, leave bool) error {
	var err error
	if leave {
		err = c.draw(final, true)
		if err == nil {
			_, err = io.WriteString(c.w, "\n")
		}
	} else {
		err = c.clear()
	}
	if c.hidden {
		if _, showErr := io.WriteString(c.w, cursorShow); err == nil {
			err = showErr
		}
		c.hidden = false
	}
	return err
}

// readLine reads one line without its terminator. A final unterminated
// line is returned as is; an empty exhausted stream is an ErrInput.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("%w: %w", ErrInput, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
