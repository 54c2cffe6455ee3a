package progress

import "time"

// timing tracks the start instant, elapsed time and smoothed rate of a bar.
type timing struct {
	started bool
	start   time.Time
	elapsed time.Duration

	rate      float64 // units per second
	rateValid bool

	sampledAt time.Duration // elapsed at the last rate sample
	pending   uint64        // progress not yet folded into rate
}

// tick advances the clock to now and folds delta units of progress into
// the rate estimate. count is the absolute position after the change.
func (t *timing) tick(now time.Time, delta, count uint64, smoothing float64) {
	if !t.started {
		t.started = true
		t.start = now
	}
	t.advance(now)

	if delta == 0 {
		return
	}
	t.pending += delta
	dt := t.elapsed - t.sampledAt
	if dt <= 0 {
		return
	}

	if smoothing <= 0 {
		t.rate = float64(count) / t.elapsed.Seconds()
	} else {
		inst := float64(t.pending) / dt.Seconds()
		if t.rateValid {
			t.rate = smoothing*inst + (1-smoothing)*t.rate
		} else {
			t.rate = inst
		}
	}
	t.rateValid = true
	t.pending = 0
	t.sampledAt = t.elapsed
}

// advance moves elapsed forward to now without touching the rate.
// elapsed never decreases.
func (t *timing) advance(now time.Time) {
	if !t.started {
		return
	}
	if d := now.Sub(t.start); d > t.elapsed {
		t.elapsed = d
	}
}
