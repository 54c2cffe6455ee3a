package progress

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"
)

// State is the lifecycle stage of a Multi.
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

type msgKind uint8

const (
	msgDraw msgKind = iota
	msgPrint
	msgPrompt
)

// message is one redraw request. Draw messages carry (row, text, force);
// print and prompt messages are applied above the block of rows.
type message struct {
	kind  msgKind
	row   int
	text  string
	force bool
	reply chan<- promptReply
}

type promptReply struct {
	line string
	err  error
}

// Multi is the single writer of a terminal shared by several bars. Bars
// added to it enqueue messages; one consumer goroutine applies them in
// arrival order. Enqueueing never blocks.
//
// Rows are handed out in registration order and kept for the whole
// session, so a finished bar keeps its row.
type Multi struct {
	defaults []Option
	out      *bufio.Writer
	tty      bool
	cols     func() int
	in       *bufio.Reader

	mu      sync.Mutex
	state   State
	queue   []message
	senders int
	rows    int
	err     error

	wake    chan struct{}
	done    chan struct{}
	release sync.Once

	// consumer only
	last   []string
	hidden bool
}

// NewMulti creates a coordinator writing to w. opts are applied to every
// bar added before the bar's own options. Input prompts from any bar read
// from the reader set here with OptionInput; a bar's own OptionInput is
// ignored.
func NewMulti(w io.Writer, opts ...Option) *Multi {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cols := cfg.cols
	if cols == nil {
		cols = terminalWidth(w)
	}
	in := cfg.in
	if in == nil {
		in = os.Stdin
	}
	return &Multi{
		defaults: opts,
		out:      bufio.NewWriter(w),
		tty:      isTerminal(w),
		cols:     cols,
		in:       bufio.NewReader(in),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start launches the consumer. Add calls it implicitly.
func (m *Multi) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startLocked()
}

func (m *Multi) startLocked() {
	if m.state != StateUninitialized {
		return
	}
	m.state = StateActive
	m.senders = 1 // the coordinator's own end, released by Wait
	go m.run()
}

// Add registers a new bar on the next free row.
func (m *Multi) Add(opts ...Option) (*Bar, error) {
	l, err := m.register()
	if err != nil {
		return nil, err
	}
	cfg := defaultConfig()
	for _, opt := range m.defaults {
		opt(&cfg)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.cols = m.cols
	return newBar(cfg, l), nil
}

func (m *Multi) register() (*lane, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startLocked()
	if m.state != StateActive {
		return nil, ErrClosed
	}
	l := &lane{m: m, idx: m.rows}
	m.rows++
	m.senders++
	return l, nil
}

// Rows returns how many rows have been handed out.
func (m *Multi) Rows() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows
}

// State returns the current lifecycle stage.
func (m *Multi) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Writer returns a writer whose output is printed above the bars. It is
// meant for log.New so log lines do not tear bar rows.
func (m *Multi) Writer() io.Writer {
	return logWriter{m: m}
}

// Wait releases the coordinator's own end, waits until every bar has been
// closed and the final pass is written, and returns the first terminal
// write error met by the consumer.
func (m *Multi) Wait() error {
	m.mu.Lock()
	if m.state == StateUninitialized {
		m.state = StateClosed
		close(m.done)
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	m.release.Do(m.releaseSender)
	<-m.done

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// enqueue appends msg for the consumer. It reports false, dropping msg,
// once the coordinator no longer accepts messages.
func (m *Multi) enqueue(msg message) bool {
	m.mu.Lock()
	if m.state != StateActive {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, msg)
	m.mu.Unlock()
	m.signal()
	return true
}

func (m *Multi) releaseSender() {
	m.mu.Lock()
	m.senders--
	if m.senders == 0 && m.state == StateActive {
		m.state = StateDraining
	}
	m.mu.Unlock()
	m.signal()
}

func (m *Multi) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// take hands the consumer everything queued so far and reports whether
// the queue has been drained for good.
func (m *Multi) take() ([]message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := m.queue
	m.queue = nil
	return batch, m.state == StateDraining
}

func (m *Multi) run() {
	defer close(m.done)
	for range m.wake {
		batch, drained := m.take()
		for _, msg := range batch {
			m.apply(msg)
		}
		m.flush()
		if drained {
			m.finish()
			return
		}
	}
}

func (m *Multi) apply(msg message) {
	switch msg.kind {
	case msgDraw:
		for len(m.last) <= msg.row {
			m.last = append(m.last, "")
		}
		if !msg.force && m.last[msg.row] == msg.text {
			return
		}
		m.last[msg.row] = msg.text
		m.drawRow(msg.row, msg.text)
	case msgPrint:
		for _, line := range strings.Split(msg.text, "\n") {
			m.out.WriteString(carriageReturn + eraseLine + line + "\n")
		}
		m.redrawAll()
	case msgPrompt:
		m.out.WriteString(carriageReturn + eraseLine + msg.text)
		m.flush()
		line, err := readLine(m.in)
		m.redrawAll()
		msg.reply <- promptReply{line: line, err: err}
	}
}

// drawRow writes text on row, counted from the top of the block, and
// returns the cursor to the top.
func (m *Multi) drawRow(row int, text string) {
	if m.tty && !m.hidden {
		m.out.WriteString(cursorHide)
		m.hidden = true
	}
	m.out.WriteString(strings.Repeat("\n", row))
	m.out.WriteString(carriageReturn + eraseLine + text)
	m.out.WriteString(cursorUp(row) + carriageReturn)
}

func (m *Multi) redrawAll() {
	for row, text := range m.last {
		m.drawRow(row, text)
	}
}

// finish writes the final pass and leaves the cursor below the last row.
func (m *Multi) finish() {
	m.redrawAll()
	m.out.WriteString(strings.Repeat("\n", len(m.last)))
	if m.hidden {
		m.out.WriteString(cursorShow)
		m.hidden = false
	}
	m.flush()

	m.mu.Lock()
	m.state = StateClosed
	m.mu.Unlock()
}

func (m *Multi) flush() {
	if err := m.out.Flush(); err != nil {
		m.mu.Lock()
		if m.err == nil {
			m.err = err
		}
		m.mu.Unlock()
	}
}

// lane is a bar's send end into a Multi.
type lane struct {
	m        *Multi
	idx      int
	released bool
}

func (l *lane) row() int { return l.idx }

func (l *lane) send(msg message) {
	if l.released {
		return
	}
	l.m.enqueue(msg)
}

func (l *lane) draw(text string, force bool) error {
	l.send(message{kind: msgDraw, row: l.idx, text: text, force: force})
	return nil
}

func (l *lane) clear() error {
	l.send(message{kind: msgDraw, row: l.idx, force: true})
	return nil
}

func (l *lane) print(text, redraw string) error {
	l.send(message{kind: msgPrint, text: text})
	return l.draw(redraw, true)
}

func (l *lane) prompt(prompt, redraw string) (string, error) {
	reply := make(chan promptReply, 1)
	if l.released || !l.m.enqueue(message{kind: msgPrompt, text: prompt, reply: reply}) {
		return "", ErrClosed
	}
	r := <-reply
	_ = l.draw(redraw, true)
	return r.line, r.err
}

func (l *lane) close(final string, leave bool) error {
	if l.released {
		return nil
	}
	if !leave {
		final = ""
	}
	_ = l.draw(final, true)
	l.released = true
	l.m.releaseSender()
	return nil
}

type logWriter struct {
	m *Multi
}

func (w logWriter) Write(p []byte) (int, error) {
	w.m.enqueue(message{kind: msgPrint, text: strings.TrimRight(string(p), "\n")})
	return len(p), nil
}
