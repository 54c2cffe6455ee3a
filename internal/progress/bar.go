package progress

import (
	"io"
	"sync"
	"time"

	sanitize "github.com/mrz1836/go-sanitize"
)

// Bar is one progress indicator. A Bar made by New writes to its own
// writer; a Bar made by Multi.Add sends its lines to the coordinator.
// All methods are safe for concurrent use.
type Bar struct {
	mu     sync.Mutex
	cfg    config
	count  uint64
	timing timing
	thr    *throttle
	disp   display
	closed bool
}

// New creates a single-mode bar that owns its writer (stderr by default).
func New(opts ...Option) *Bar {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cols == nil {
		cfg.cols = terminalWidth(cfg.out)
	}
	return newBar(cfg, newConsole(cfg.out, cfg.in))
}

func newBar(cfg config, disp display) *Bar {
	return &Bar{
		cfg:  cfg,
		thr:  newThrottle(cfg.interval, cfg.minDelta),
		disp: disp,
	}
}

// Update advances the counter by n and redraws unless throttled. It
// reports whether a redraw happened.
func (b *Bar) Update(n uint64) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.advance(b.count+n, b.redraw)
}

// UpdateTo sets the counter to n and redraws unless throttled.
func (b *Bar) UpdateTo(n uint64) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.advance(n, b.redraw)
}

// WriteLineTo writes the rendered line to w instead of the terminal. With
// a non-nil n it behaves exactly like UpdateTo(*n), including throttling,
// and writes only when UpdateTo would have redrawn. With a nil n the
// counters are left alone and the current line is written.
func (b *Bar) WriteLineTo(w io.Writer, n *uint64) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	emit := func(text string) error {
		_, err := io.WriteString(w, text)
		return err
	}
	if n == nil {
		if err := emit(b.render()); err != nil {
			return false, err
		}
		return true, nil
	}
	return b.advance(*n, emit)
}

// advance moves the counter to n, updates timing and hands the new line to
// emit when the throttle lets it through.
func (b *Bar) advance(n uint64, emit func(string) error) (bool, error) {
	now := b.cfg.now()
	var delta uint64
	if n > b.count {
		delta = n - b.count
	}
	b.count = n
	b.timing.tick(now, delta, n, b.cfg.smoothing)

	if !b.thr.allow(now, n) {
		return false, nil
	}
	if err := emit(b.render()); err != nil {
		return false, err
	}
	return true, nil
}

func (b *Bar) redraw(text string) error {
	if b.closed {
		return nil
	}
	return b.disp.draw(text, false)
}

// Reset zeroes the counter and restarts the timer for reuse. A non-nil
// total replaces the current one; everything else is kept.
func (b *Bar) Reset(total *uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count = 0
	b.timing = timing{}
	b.thr.reset()
	if total != nil {
		b.cfg.total = *total
		b.cfg.hasTotal = true
	}
}

// Render returns the current line without side effects.
func (b *Bar) Render() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.render()
}

func (b *Bar) render() string {
	return render(view{
		desc:      b.cfg.desc,
		count:     b.count,
		total:     b.cfg.total,
		hasTotal:  b.cfg.hasTotal,
		elapsed:   b.timing.elapsed,
		rate:      b.timing.rate,
		rateValid: b.timing.rateValid,
		width:     b.cfg.width,
		cols:      b.cfg.cols(),
		ramp:      b.cfg.ramp,
		unit:      b.cfg.unit,
		color:     b.cfg.color,
		barColor:  b.cfg.barColor,
	})
}

// Refresh redraws immediately, ignoring the throttle.
func (b *Bar) Refresh() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.timing.advance(b.cfg.now())
	b.thr.mark(b.count)
	return b.disp.draw(b.render(), true)
}

// Clear erases the bar's line. Counters are untouched.
func (b *Bar) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	return b.disp.clear()
}

// WriteMessage prints text on its own line without corrupting the bar,
// then redraws the bar.
func (b *Bar) WriteMessage(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	return b.disp.print(text, b.render())
}

// Input shows prompt, reads one line and redraws the bar. An exhausted or
// failing input stream yields an error wrapping ErrInput.
func (b *Bar) Input(prompt string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return "", ErrClosed
	}
	return b.disp.prompt(sanitize.SingleLine(prompt), b.render())
}

// Close releases the bar's display. With leave set the final state stays
// visible followed by a newline; otherwise the line is erased. Later calls
// still count but no longer draw.
func (b *Bar) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.timing.advance(b.cfg.now())
	return b.disp.close(b.render(), b.cfg.leave)
}

// SetDescription replaces the text shown before the bar.
func (b *Bar) SetDescription(desc string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	OptionDescription(desc)(&b.cfg)
}

// Description returns the text shown before the bar.
func (b *Bar) Description() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg.desc
}

// Count returns the current position.
func (b *Bar) Count() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Total returns the target count, if any.
func (b *Bar) Total() (uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg.total, b.cfg.hasTotal
}

// Elapsed returns the time since the first update.
func (b *Bar) Elapsed() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timing.elapsed
}

// Rate returns the smoothed rate in units per second. ok is false until
// enough updates have been seen.
func (b *Bar) Rate() (rate float64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timing.rate, b.timing.rateValid
}

// Width returns the configured width, AutoWidth when sized to the terminal.
func (b *Bar) Width() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg.width
}

// Ramp returns the fill glyphs.
func (b *Bar) Ramp() Ramp {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg.ramp
}

// Row returns the terminal row assigned by a Multi, or -1 in single mode.
func (b *Bar) Row() int {
	return b.disp.row()
}
