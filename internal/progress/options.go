package progress

import (
	"io"
	"os"
	"time"

	"github.com/mitchellh/colorstring"
	sanitize "github.com/mrz1836/go-sanitize"
)

// AutoWidth sizes the bar to fill the terminal line.
const AutoWidth = -1

// config holds everything a bar is constructed with. Reset keeps it.
type config struct {
	total    uint64
	hasTotal bool
	desc     string
	width    int
	ramp     Ramp
	unit     string

	interval  time.Duration
	minDelta  uint64
	smoothing float64

	color    bool
	barColor string
	leave    bool

	out io.Writer
	in  io.Reader

	now  func() time.Time
	cols func() int
}

func defaultConfig() config {
	return config{
		width:     AutoWidth,
		ramp:      Blocks,
		unit:      "it",
		interval:  100 * time.Millisecond,
		minDelta:  1,
		smoothing: 0.3,
		leave:     true,
		out:       os.Stderr,
		in:        os.Stdin,
		now:       time.Now,
	}
}

// Option configures a Bar or the bar defaults of a Multi.
type Option func(*config)

// OptionTotal sets the target count. Without it the bar is indefinite.
func OptionTotal(total uint64) Option {
	return func(c *config) {
		c.total = total
		c.hasTotal = true
	}
}

// OptionDescription sets the text shown before the bar. It may contain
// colorstring tags such as "[green]"; line breaks are flattened.
func OptionDescription(desc string) Option {
	return func(c *config) {
		c.desc = sanitize.SingleLine(desc)
	}
}

// OptionWidth fixes the bar to width cells. A negative width selects
// AutoWidth.
func OptionWidth(width int) Option {
	return func(c *config) {
		if width < 0 {
			width = AutoWidth
		}
		c.width = width
	}
}

// OptionRamp selects the fill glyphs. An empty ramp is ignored.
func OptionRamp(r Ramp) Option {
	return func(c *config) {
		if r.Len() > 0 {
			c.ramp = r
		}
	}
}

// OptionUnit sets the unit label used by counters and the rate.
func OptionUnit(unit string) Option {
	return func(c *config) {
		c.unit = unit
	}
}

// OptionThrottle sets the minimum time between two redraws. Zero disables
// the time-based throttle.
func OptionThrottle(interval time.Duration) Option {
	return func(c *config) {
		if interval < 0 {
			interval = 0
		}
		c.interval = interval
	}
}

// OptionMinDelta sets the minimum count change between two redraws.
func OptionMinDelta(n uint64) Option {
	return func(c *config) {
		c.minDelta = n
	}
}

// OptionSmoothing sets the exponential moving average factor of the rate,
// in [0, 1]. Zero reports the plain average rate since start.
func OptionSmoothing(s float64) Option {
	return func(c *config) {
		switch {
		case s < 0:
			s = 0
		case s > 1:
			s = 1
		}
		c.smoothing = s
	}
}

// OptionColor enables ANSI colors. When disabled, color tags are stripped.
func OptionColor(enabled bool) Option {
	return func(c *config) {
		c.color = enabled
	}
}

// OptionBarColor paints the bar with a colorstring color name
// ("green", "light_blue", ...). Unknown names are ignored.
func OptionBarColor(name string) Option {
	return func(c *config) {
		if _, ok := colorstring.DefaultColors[name]; ok {
			c.barColor = name
		}
	}
}

// OptionLeave keeps the final render on screen after Close. When false the
// line is erased instead.
func OptionLeave(leave bool) Option {
	return func(c *config) {
		c.leave = leave
	}
}

// OptionWriter sets the output of a single-mode bar.
func OptionWriter(w io.Writer) Option {
	return func(c *config) {
		c.out = w
	}
}

// OptionInput sets the reader used by Input. It only affects bars created
// with New; bars added to a Multi read from the Multi's own OptionInput.
func OptionInput(r io.Reader) Option {
	return func(c *config) {
		c.in = r
	}
}

// withClock replaces the clock, for tests.
func withClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// withColumns replaces terminal width detection, for tests.
func withColumns(cols func() int) Option {
	return func(c *config) {
		c.cols = cols
	}
}
