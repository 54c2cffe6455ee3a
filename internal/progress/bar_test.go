package progress

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func newTestBar(t *testing.T, out io.Writer, clk *fakeClock, opts ...Option) *Bar {
	t.Helper()
	base := []Option{OptionWriter(out), withClock(clk.Now), withColumns(fixedColumns(80))}
	return New(append(base, opts...)...)
}

func TestUpdateZeroChangesNothing(t *testing.T) {
	clk := newFakeClock()
	var out bytes.Buffer
	b := newTestBar(t, &out, clk, OptionTotal(10))

	if ok, err := b.Update(0); ok || err != nil {
		t.Fatalf("Update(0) on fresh bar = %v, %v", ok, err)
	}
	if b.Count() != 0 {
		t.Fatalf("count = %d after Update(0)", b.Count())
	}

	clk.Advance(time.Second)
	if ok, _ := b.Update(4); !ok {
		t.Fatal("Update(4) should redraw")
	}
	rate, _ := b.Rate()
	elapsed := b.Elapsed()

	clk.Advance(time.Second)
	if ok, err := b.Update(0); ok || err != nil {
		t.Errorf("Update(0) = %v, %v, want false", ok, err)
	}
	if b.Count() != 4 {
		t.Errorf("count = %d, want 4", b.Count())
	}
	if r, _ := b.Rate(); r != rate {
		t.Errorf("rate moved from %v to %v", rate, r)
	}
	if b.Elapsed() < elapsed {
		t.Errorf("elapsed went backwards: %v < %v", b.Elapsed(), elapsed)
	}
}

func TestThrottleInterval(t *testing.T) {
	clk := newFakeClock()
	b := newTestBar(t, io.Discard, clk, OptionThrottle(100*time.Millisecond))

	if ok, _ := b.Update(1); !ok {
		t.Error("first update should redraw")
	}
	if ok, _ := b.Update(1); ok {
		t.Error("update inside the interval should be suppressed")
	}
	clk.Advance(250 * time.Millisecond)
	if ok, _ := b.Update(1); !ok {
		t.Error("update after the interval should redraw")
	}
	if b.Count() != 3 {
		t.Errorf("suppressed update lost: count = %d", b.Count())
	}
}

func TestThrottleMinDelta(t *testing.T) {
	clk := newFakeClock()
	b := newTestBar(t, io.Discard, clk, OptionThrottle(0), OptionMinDelta(10))

	steps := []struct {
		n    uint64
		want bool
	}{
		{5, false},
		{5, true},
		{9, false},
		{1, true},
	}
	for i, s := range steps {
		if got, _ := b.Update(s.n); got != s.want {
			t.Errorf("step %d: Update(%d) = %v, want %v", i, s.n, got, s.want)
		}
	}
}

func TestUpdateToBackwards(t *testing.T) {
	clk := newFakeClock()
	b := newTestBar(t, io.Discard, clk, OptionThrottle(0))

	if ok, _ := b.UpdateTo(10); !ok {
		t.Fatal("UpdateTo(10) should redraw")
	}
	if ok, _ := b.UpdateTo(4); !ok {
		t.Error("moving back should redraw")
	}
	if ok, _ := b.UpdateTo(4); ok {
		t.Error("no change should not redraw")
	}
	if b.Count() != 4 {
		t.Errorf("count = %d, want 4", b.Count())
	}
}

func TestResetKeepsConfiguration(t *testing.T) {
	clk := newFakeClock()
	b := newTestBar(t, io.Discard, clk,
		OptionTotal(50), OptionWidth(12), OptionRamp(ASCII), OptionDescription("job"))

	clk.Advance(time.Second)
	b.Update(20)
	clk.Advance(time.Second)
	b.Update(5)

	total := uint64(80)
	b.Reset(&total)

	if b.Count() != 0 {
		t.Errorf("count = %d after reset", b.Count())
	}
	if b.Elapsed() != 0 {
		t.Errorf("timer not restarted: %v", b.Elapsed())
	}
	if _, ok := b.Rate(); ok {
		t.Error("rate survived reset")
	}
	if n, ok := b.Total(); !ok || n != 80 {
		t.Errorf("total = %d, %v, want 80", n, ok)
	}
	if b.Width() != 12 {
		t.Errorf("width = %d, want 12", b.Width())
	}
	if r := b.Ramp(); r.Full != ASCII.Full || string(r.Partial) != string(ASCII.Partial) {
		t.Errorf("ramp changed: %+v", r)
	}
	if b.Description() != "job" {
		t.Errorf("description = %q", b.Description())
	}

	b.Reset(nil)
	if n, _ := b.Total(); n != 80 {
		t.Errorf("Reset(nil) replaced total: %d", n)
	}
	if ok, _ := b.Update(1); !ok {
		t.Error("first update after reset should redraw")
	}
}

func TestWriteLineToMatchesUpdateTo(t *testing.T) {
	clk := newFakeClock()
	opts := []Option{OptionTotal(100), OptionWidth(10), OptionThrottle(100 * time.Millisecond), OptionMinDelta(3)}
	a := newTestBar(t, io.Discard, clk, opts...)
	b := newTestBar(t, io.Discard, clk, opts...)

	steps := []struct {
		advance time.Duration
		n       uint64
	}{
		{0, 1},
		{0, 2},
		{0, 5},
		{50 * time.Millisecond, 9},
		{60 * time.Millisecond, 12},
		{0, 13},
		{200 * time.Millisecond, 13},
		{200 * time.Millisecond, 40},
		{0, 41},
		{500 * time.Millisecond, 100},
	}
	for i, s := range steps {
		clk.Advance(s.advance)
		n := s.n
		want, err := a.UpdateTo(n)
		if err != nil {
			t.Fatalf("step %d: UpdateTo: %v", i, err)
		}
		var sink bytes.Buffer
		got, err := b.WriteLineTo(&sink, &n)
		if err != nil {
			t.Fatalf("step %d: WriteLineTo: %v", i, err)
		}
		if got != want {
			t.Errorf("step %d: WriteLineTo = %v, UpdateTo = %v", i, got, want)
		}
		switch {
		case got && sink.String() != b.Render():
			t.Errorf("step %d: sink %q, render %q", i, sink.String(), b.Render())
		case !got && sink.Len() != 0:
			t.Errorf("step %d: suppressed write still produced %q", i, sink.String())
		}
	}
}

func TestWriteLineToWithoutCount(t *testing.T) {
	clk := newFakeClock()
	b := newTestBar(t, io.Discard, clk, OptionTotal(10), OptionWidth(5))
	b.Update(3)

	var sink bytes.Buffer
	ok, err := b.WriteLineTo(&sink, nil)
	if !ok || err != nil {
		t.Fatalf("WriteLineTo(nil) = %v, %v", ok, err)
	}
	if sink.String() != b.Render() {
		t.Errorf("sink %q, render %q", sink.String(), b.Render())
	}
	if b.Count() != 3 {
		t.Errorf("count changed to %d", b.Count())
	}

	ok, err = b.WriteLineTo(failWriter{}, nil)
	if ok || !errors.Is(err, errBoom) {
		t.Errorf("failing sink = %v, %v", ok, err)
	}
}

func TestWriteMessageThenRedraw(t *testing.T) {
	clk := newFakeClock()
	var out bytes.Buffer
	b := newTestBar(t, &out, clk, OptionTotal(10), OptionWidth(10))
	b.Update(5)
	out.Reset()

	if err := b.WriteMessage("hello"); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	want := carriageReturn + eraseLine + "hello\n" + carriageReturn + eraseLine + b.Render()
	if out.String() != want {
		t.Errorf("output\n  got  %q\n  want %q", out.String(), want)
	}
}

func TestInput(t *testing.T) {
	clk := newFakeClock()
	var out bytes.Buffer
	b := newTestBar(t, &out, clk, OptionInput(strings.NewReader("yes\r\nno")))

	got, err := b.Input("continue?\n ")
	if err != nil || got != "yes" {
		t.Fatalf("Input = %q, %v", got, err)
	}
	if strings.Contains(out.String(), "continue?\n") {
		t.Errorf("prompt not flattened onto one line: %q", out.String())
	}
	if got, err = b.Input("again? "); err != nil || got != "no" {
		t.Fatalf("unterminated last line: %q, %v", got, err)
	}

	_, err = b.Input("more? ")
	if !errors.Is(err, ErrInput) || !errors.Is(err, io.EOF) {
		t.Errorf("exhausted input = %v, want ErrInput wrapping io.EOF", err)
	}
	if !strings.HasSuffix(out.String(), b.Render()) {
		t.Errorf("bar not redrawn after input: %q", out.String())
	}
}

func TestClearKeepsCounters(t *testing.T) {
	clk := newFakeClock()
	var out bytes.Buffer
	b := newTestBar(t, &out, clk)
	b.Update(3)
	out.Reset()

	if err := b.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if out.String() != carriageReturn+eraseLine {
		t.Errorf("Clear wrote %q", out.String())
	}
	if b.Count() != 3 {
		t.Errorf("count = %d", b.Count())
	}
}

func TestRefreshIgnoresThrottle(t *testing.T) {
	clk := newFakeClock()
	var out bytes.Buffer
	b := newTestBar(t, &out, clk, OptionThrottle(time.Hour))
	b.Update(1)
	if ok, _ := b.Update(1); ok {
		t.Fatal("second update should be throttled")
	}
	out.Reset()

	if err := b.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if out.String() != carriageReturn+eraseLine+b.Render() {
		t.Errorf("Refresh wrote %q", out.String())
	}
}

func TestCloseLeave(t *testing.T) {
	clk := newFakeClock()
	var out bytes.Buffer
	b := newTestBar(t, &out, clk, OptionTotal(10), OptionWidth(10))
	b.UpdateTo(10)
	out.Reset()

	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	want := carriageReturn + eraseLine + b.Render() + "\n"
	if out.String() != want {
		t.Errorf("Close wrote %q, want %q", out.String(), want)
	}

	out.Reset()
	b.Close()
	b.Update(1)
	if out.Len() != 0 {
		t.Errorf("closed bar still draws: %q", out.String())
	}
	if b.Count() != 11 {
		t.Errorf("closed bar stopped counting: %d", b.Count())
	}
}

func TestCloseErase(t *testing.T) {
	clk := newFakeClock()
	var out bytes.Buffer
	b := newTestBar(t, &out, clk, OptionLeave(false))
	b.Update(1)
	out.Reset()

	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if out.String() != carriageReturn+eraseLine {
		t.Errorf("Close wrote %q", out.String())
	}
}

func TestCloseRestoresCursor(t *testing.T) {
	var out bytes.Buffer
	c := newConsole(&out, strings.NewReader(""))
	c.tty = true

	c.draw("x", false)
	c.draw("y", false)
	c.close("z", true)

	got := out.String()
	if strings.Count(got, cursorHide) != 1 {
		t.Errorf("cursor hidden %d times: %q", strings.Count(got, cursorHide), got)
	}
	if !strings.HasSuffix(got, "z\n"+cursorShow) {
		t.Errorf("cursor not restored after final line: %q", got)
	}
}

func TestIOErrorsSurface(t *testing.T) {
	clk := newFakeClock()
	b := newTestBar(t, failWriter{}, clk, OptionThrottle(0))

	if ok, err := b.Update(1); ok || !errors.Is(err, errBoom) {
		t.Errorf("Update = %v, %v", ok, err)
	}
	if b.Count() != 1 {
		t.Errorf("failed redraw dropped the update: count = %d", b.Count())
	}
	if err := b.Refresh(); !errors.Is(err, errBoom) {
		t.Errorf("Refresh = %v", err)
	}
	if err := b.Clear(); !errors.Is(err, errBoom) {
		t.Errorf("Clear = %v", err)
	}
	if err := b.WriteMessage("x"); !errors.Is(err, errBoom) {
		t.Errorf("WriteMessage = %v", err)
	}
	if err := b.Close(); !errors.Is(err, errBoom) {
		t.Errorf("Close = %v", err)
	}
}

func TestRateSmoothing(t *testing.T) {
	clk := newFakeClock()
	b := newTestBar(t, io.Discard, clk, OptionSmoothing(0.5))

	b.Update(10)
	if _, ok := b.Rate(); ok {
		t.Fatal("rate defined without elapsed time")
	}
	clk.Advance(time.Second)
	b.Update(10)
	if r, ok := b.Rate(); !ok || r != 20 {
		t.Fatalf("rate = %v, %v, want 20", r, ok)
	}
	clk.Advance(time.Second)
	b.Update(10)
	if r, _ := b.Rate(); r != 15 {
		t.Errorf("smoothed rate = %v, want 15", r)
	}
}

func TestRateAverageWithoutSmoothing(t *testing.T) {
	clk := newFakeClock()
	b := newTestBar(t, io.Discard, clk, OptionSmoothing(0))

	b.Update(10)
	clk.Advance(2 * time.Second)
	b.Update(10)
	if r, ok := b.Rate(); !ok || r != 10 {
		t.Errorf("average rate = %v, %v, want 10", r, ok)
	}
}

func TestSetDescriptionSingleLine(t *testing.T) {
	clk := newFakeClock()
	b := newTestBar(t, io.Discard, clk)
	b.SetDescription("two\nlines")
	if strings.ContainsAny(b.Description(), "\r\n") {
		t.Errorf("description kept a line break: %q", b.Description())
	}
	if b.Row() != -1 {
		t.Errorf("single-mode bar has row %d", b.Row())
	}
}
