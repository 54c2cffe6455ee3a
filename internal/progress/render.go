package progress

import (
	"fmt"
	"math"
	"math/bits"
	"strings"
	"time"

	"github.com/mitchellh/colorstring"
	"github.com/rivo/uniseg"
)

// sweepStep is how long the indefinite segment stays on one cell.
const sweepStep = 100 * time.Millisecond

// view is an immutable snapshot of everything a line is rendered from.
type view struct {
	desc     string
	count    uint64
	total    uint64
	hasTotal bool

	elapsed   time.Duration
	rate      float64
	rateValid bool

	width int // configured cells, AutoWidth to fill cols
	cols  int
	ramp  Ramp
	unit  string

	color    bool
	barColor string
}

// render maps a snapshot to a display line. It has no side effects.
func render(v view) string {
	paint := colorstring.Colorize{Colors: colorstring.DefaultColors, Disable: !v.color, Reset: true}
	strip := colorstring.Colorize{Colors: colorstring.DefaultColors, Disable: true}

	var lead, prefix, suffix string
	if v.desc != "" {
		lead = strip.Color(v.desc) + ": "
	}
	if v.hasTotal {
		prefix = fmt.Sprintf("%3d%%|", percent(v.count, v.total))
		suffix = fmt.Sprintf("| %d/%d [%s<%s, %s]",
			v.count, v.total, formatInterval(v.elapsed), v.eta(), v.rateString())
	} else {
		prefix = "|"
		suffix = fmt.Sprintf("| %d%s [%s, %s]",
			v.count, v.unit, formatInterval(v.elapsed), v.rateString())
	}

	width := v.width
	if width < 0 {
		width = max(v.cols-uniseg.StringWidth(lead+prefix+suffix), 0)
	}

	var bar string
	if v.hasTotal {
		bar = fill(v.ramp, v.count, v.total, width)
	} else {
		bar = sweep(v.ramp, v.elapsed, width)
	}
	if v.barColor != "" && bar != "" {
		bar = paint.Color("[" + v.barColor + "]" + bar)
	}
	if v.desc != "" {
		lead = paint.Color(v.desc) + ": "
	}
	return lead + prefix + bar + suffix
}

// fillUnits returns floor(count/total * width * l), with count clamped to
// total. It is non-decreasing in count.
func fillUnits(count, total uint64, width, l int) uint64 {
	span := uint64(width) * uint64(l)
	if total == 0 || count >= total {
		return span
	}
	hi, lo := bits.Mul64(count, span)
	q, _ := bits.Div64(hi, lo, total)
	return q
}

// fill draws a determinate bar of width cells.
func fill(r Ramp, count, total uint64, width int) string {
	if width <= 0 || r.Len() == 0 {
		return ""
	}
	l := uint64(r.Len())
	units := fillUnits(count, total, width, r.Len())
	full := int(units / l)

	var sb strings.Builder
	sb.WriteString(strings.Repeat(string(r.Full), full))
	if full < width {
		sb.WriteRune(r.Partial[units%l])
		sb.WriteString(strings.Repeat(string(r.Partial[0]), width-full-1))
	}
	return sb.String()
}

// sweep draws the indefinite indicator: a segment bouncing across the bar.
func sweep(r Ramp, elapsed time.Duration, width int) string {
	if width <= 0 || r.Len() == 0 {
		return ""
	}
	seg := max(width/4, 1)
	span := width - seg
	pos := 0
	if span > 0 {
		step := int(elapsed/sweepStep) % (2 * span)
		pos = step
		if step > span {
			pos = 2*span - step
		}
	}
	blank := string(r.Partial[0])
	return strings.Repeat(blank, pos) +
		strings.Repeat(string(r.Full), seg) +
		strings.Repeat(blank, width-pos-seg)
}

func percent(count, total uint64) uint64 {
	if total == 0 || count >= total {
		return 100
	}
	hi, lo := bits.Mul64(count, 100)
	q, _ := bits.Div64(hi, lo, total)
	return q
}

func (v view) rateString() string {
	if v.count == 0 || !v.rateValid || v.rate <= 0 {
		return "?" + v.unit + "/s"
	}
	if v.rate < 1 {
		return fmt.Sprintf("%.2fs/%s", 1/v.rate, v.unit)
	}
	return fmt.Sprintf("%.2f%s/s", v.rate, v.unit)
}

func (v view) eta() string {
	if !v.hasTotal {
		return "?"
	}
	if v.count >= v.total {
		return formatInterval(0)
	}
	if v.count == 0 || !v.rateValid || v.rate <= 0 {
		return "?"
	}
	secs := float64(v.total-v.count) / v.rate
	if secs >= maxIntervalSeconds {
		return "?"
	}
	return formatInterval(time.Duration(secs * float64(time.Second)))
}

// maxIntervalSeconds is the longest ETA a time.Duration can hold.
const maxIntervalSeconds = float64(math.MaxInt64 / int64(time.Second))

// formatInterval renders d as MM:SS, or H:MM:SS past one hour.
func formatInterval(d time.Duration) string {
	s := int64(d / time.Second)
	h, m, sec := s/3600, s/60%60, s%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}
