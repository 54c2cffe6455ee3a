package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sigman78/barline/internal/progress"
	"github.com/sigman78/barline/internal/workload"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: barline [options]

Runs simulated tasks and draws one progress bar per task.

Options:
  -bars int               Number of concurrent bars (default: 3)
  -total int              Steps per task; negative for indefinite bars (default: 200)
  -threads int            Tasks running at once (default: 2)
  -width int              Bar width in cells; -1 fills the terminal (default: -1)
  -style string           Fill glyphs: blocks|ascii (default: blocks)
  -color                  Enable ANSI colors
  -interval duration      Minimum time between redraws (default: 100ms)
  -delta uint             Minimum count change between redraws (default: 1)
  -delay duration         Pause between two steps of a task (default: 10ms)
  -leave                  Keep finished bars on screen (default: true)
  -single                 Run one bar without the coordinator
  -journal string         Mirror every redraw into this file
  -debug                  Log task events above the bars
  -version                Print version and exit
  -h / -help              Show this help and exit
`)
}

func main() {
	// ContinueOnError lets us pick the exit code for parse failures.
	fs := flag.NewFlagSet("barline", flag.ContinueOnError)
	fs.Usage = usage

	var (
		barsFlag    int
		totalFlag   int64
		threadsFlag int
		widthFlag   int
		styleFlag   string
		color       bool
		interval    time.Duration
		delta       uint64
		delay       time.Duration
		leave       bool
		single      bool
		journal     string
		debug       bool
	)

	fs.IntVar(&barsFlag, "bars", 3, "Number of concurrent bars")
	fs.Int64Var(&totalFlag, "total", 200, "Steps per task; negative for indefinite bars")
	fs.IntVar(&threadsFlag, "threads", 2, "Tasks running at once")
	fs.IntVar(&widthFlag, "width", progress.AutoWidth, "Bar width in cells; -1 fills the terminal")
	fs.StringVar(&styleFlag, "style", "blocks", "Fill glyphs: blocks|ascii")
	fs.BoolVar(&color, "color", false, "Enable ANSI colors")
	fs.DurationVar(&interval, "interval", 100*time.Millisecond, "Minimum time between redraws")
	fs.Uint64Var(&delta, "delta", 1, "Minimum count change between redraws")
	fs.DurationVar(&delay, "delay", 10*time.Millisecond, "Pause between two steps of a task")
	fs.BoolVar(&leave, "leave", true, "Keep finished bars on screen")
	fs.BoolVar(&single, "single", false, "Run one bar without the coordinator")
	fs.StringVar(&journal, "journal", "", "Mirror every redraw into this file")
	fs.BoolVar(&debug, "debug", false, "Log task events above the bars")

	// Handle -version / -h / -help before the flag parser so we control the exit code.
	for _, a := range os.Args[1:] {
		if a == "-version" || a == "--version" {
			fmt.Printf("barline %s (commit %s, built %s)\n", version, commit, date)
			os.Exit(0)
		}
		if a == "-h" || a == "-help" || a == "--help" {
			usage()
			os.Exit(0)
		}
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		// Unknown/malformed flag: fs already printed the error message
		os.Exit(2)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "error: unexpected argument %q\n", fs.Arg(0))
		usage()
		os.Exit(2)
	}

	if barsFlag <= 0 {
		fmt.Fprintln(os.Stderr, "error: -bars must be greater than 0")
		os.Exit(1)
	}
	if threadsFlag <= 0 {
		fmt.Fprintln(os.Stderr, "error: -threads must be greater than 0")
		os.Exit(1)
	}
	styleFlag = strings.ToLower(styleFlag)
	if _, ok := progress.RampByName(styleFlag); !ok {
		fmt.Fprintln(os.Stderr, "error: -style must be 'blocks' or 'ascii'")
		os.Exit(1)
	}
	if interval < 0 || delay < 0 {
		fmt.Fprintln(os.Stderr, "error: -interval and -delay must not be negative")
		os.Exit(1)
	}

	cfg := &workload.Config{
		Bars:      barsFlag,
		Total:     totalFlag,
		Threads:   threadsFlag,
		Width:     widthFlag,
		Style:     styleFlag,
		Color:     color,
		Interval:  interval,
		MinDelta:  delta,
		StepDelay: delay,
		Leave:     leave,
		Single:    single,
		Journal:   journal,
		Debug:     debug,
		Out:       os.Stderr,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := workload.Run(ctx, cfg); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
