package workload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/sigman78/barline/internal/progress"
)

// indefiniteSteps is how far a task runs when its bar has no total.
const indefiniteSteps = 150

// Config holds all runtime configuration for a workload run.
type Config struct {
	Bars      int
	Total     int64 // negative for indefinite bars
	Threads   int
	Width     int // progress.AutoWidth to fill the terminal
	Style     string
	Color     bool
	Interval  time.Duration // minimum time between redraws
	MinDelta  uint64        // minimum count change between redraws
	StepDelay time.Duration // base pause between two steps of a task
	Leave     bool
	Single    bool
	Journal   string // if set, redraws are mirrored into this file
	Debug     bool
	Out       io.Writer // if nil, os.Stderr is used
}

func (c *Config) validate() error {
	if c.Bars <= 0 {
		return errors.New("bars must be greater than 0")
	}
	if c.Threads <= 0 {
		return errors.New("threads must be greater than 0")
	}
	return nil
}

func (c *Config) steps() int64 {
	if c.Total < 0 {
		return indefiniteSteps
	}
	return c.Total
}

// barOptions translates the configuration into options shared by every bar.
func (c *Config) barOptions() ([]progress.Option, error) {
	ramp, ok := progress.RampByName(c.Style)
	if !ok {
		return nil, fmt.Errorf("unknown style %q", c.Style)
	}
	opts := []progress.Option{
		progress.OptionWidth(c.Width),
		progress.OptionRamp(ramp),
		progress.OptionThrottle(c.Interval),
		progress.OptionMinDelta(c.MinDelta),
		progress.OptionColor(c.Color),
		progress.OptionLeave(c.Leave),
	}
	if c.Total >= 0 {
		opts = append(opts, progress.OptionTotal(uint64(c.Total)))
	}
	if c.Color {
		opts = append(opts, progress.OptionBarColor("green"))
	}
	return opts, nil
}

// Run executes the workload described by cfg and blocks until every task
// has finished and the terminal has been released.
func Run(ctx context.Context, cfg *Config) (err error) {
	if err := cfg.validate(); err != nil {
		return err
	}
	opts, err := cfg.barOptions()
	if err != nil {
		return err
	}
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	var sink io.Writer
	if cfg.Journal != "" {
		j, jerr := OpenJournal(cfg.Journal)
		if jerr != nil {
			return fmt.Errorf("open journal: %w", jerr)
		}
		defer func() {
			if cerr := j.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close journal: %w", cerr)
			}
		}()
		sink = j
	}

	if cfg.Single {
		return runSingle(ctx, cfg, out, opts, sink)
	}
	return runMulti(ctx, cfg, out, opts, sink)
}

func runSingle(ctx context.Context, cfg *Config, out io.Writer, opts []progress.Option, sink io.Writer) error {
	opts = append(opts,
		progress.OptionWriter(out),
		progress.OptionDescription(describe(0, 1)),
	)
	bar := progress.New(opts...)
	err := drive(ctx, bar, cfg.steps(), cfg.StepDelay, sink)
	if cerr := bar.Close(); err == nil {
		err = cerr
	}
	return err
}

// runMulti registers one bar per task up front, so rows follow task order,
// then fans the tasks out over a worker pool.
func runMulti(ctx context.Context, cfg *Config, out io.Writer, opts []progress.Option, sink io.Writer) error {
	m := progress.NewMulti(out, opts...)

	logger := log.New(io.Discard, "", log.Ltime)
	if cfg.Debug {
		logger.SetOutput(m.Writer())
	}

	bars := make([]*progress.Bar, cfg.Bars)
	for i := range bars {
		b, err := m.Add(progress.OptionDescription(describe(i, cfg.Bars)))
		if err != nil {
			return fmt.Errorf("add bar: %w", err)
		}
		bars[i] = b
	}

	pool, err := ants.NewPool(cfg.Threads)
	if err != nil {
		for _, b := range bars {
			_ = b.Close()
		}
		_ = m.Wait()
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	g, ctx := errgroup.WithContext(ctx)
	for i, bar := range bars {
		g.Go(func() error {
			defer bar.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errCh := make(chan error, 1)
			if err := pool.Submit(func() {
				errCh <- runTask(ctx, i, bar, cfg, sink, logger)
			}); err != nil {
				return fmt.Errorf("submit task: %w", err)
			}
			return <-errCh
		})
	}

	err = g.Wait()
	if werr := m.Wait(); err == nil && werr != nil {
		err = fmt.Errorf("terminal: %w", werr)
	}
	return err
}

// runTask steps one bar to completion and announces it above the bars.
func runTask(ctx context.Context, idx int, bar *progress.Bar, cfg *Config, sink io.Writer, logger *log.Logger) error {
	logger.Printf("task %d started", idx+1)
	delay := cfg.StepDelay * time.Duration(1+idx%3)
	if err := drive(ctx, bar, cfg.steps(), delay, sink); err != nil {
		logger.Printf("task %d: %v", idx+1, err)
		return err
	}
	msg := fmt.Sprintf("task %d/%d done in %s", idx+1, cfg.Bars, bar.Elapsed().Round(time.Millisecond))
	if err := bar.WriteMessage(msg); err != nil {
		return err
	}
	return bar.Close()
}

// drive advances bar by one unit per step. Redraws that go through are
// mirrored into sink when one is given.
func drive(ctx context.Context, bar *progress.Bar, steps int64, delay time.Duration, sink io.Writer) error {
	for i := int64(0); i < steps; i++ {
		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		drawn, err := bar.Update(1)
		if err != nil {
			return fmt.Errorf("update: %w", err)
		}
		if drawn && sink != nil {
			if _, err := bar.WriteLineTo(sink, nil); err != nil {
				return fmt.Errorf("journal: %w", err)
			}
		}
	}
	return nil
}

func describe(idx, n int) string {
	return fmt.Sprintf("[cyan]task %d/%d[reset]", idx+1, n)
}
