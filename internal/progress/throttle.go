package progress

import (
	"time"

	"golang.org/x/time/rate"
)

// throttle decides whether a state change is worth a redraw. It never
// blocks: a suppressed redraw is simply skipped.
type throttle struct {
	interval time.Duration
	minDelta uint64

	lim   *rate.Limiter // nil when interval is zero
	lastN uint64        // position at the last redraw
}

func newThrottle(interval time.Duration, minDelta uint64) *throttle {
	t := &throttle{interval: interval, minDelta: minDelta}
	t.reset()
	return t
}

// allow reports whether moving to position n at now triggers a redraw and
// records the redraw when it does.
func (t *throttle) allow(now time.Time, n uint64) bool {
	d := n - t.lastN
	if n < t.lastN {
		d = t.lastN - n
	}
	if d == 0 || d < t.minDelta {
		return false
	}
	if t.lim != nil && !t.lim.AllowN(now, 1) {
		return false
	}
	t.lastN = n
	return true
}

// mark records a forced redraw at position n.
func (t *throttle) mark(n uint64) {
	t.lastN = n
}

func (t *throttle) reset() {
	t.lastN = 0
	t.lim = nil
	if t.interval > 0 {
		t.lim = rate.NewLimiter(rate.Every(t.interval), 1)
	}
}
