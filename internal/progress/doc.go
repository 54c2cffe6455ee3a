// Package progress renders terminal progress bars.
//
// A Bar keeps its own counters, timer and smoothed rate and renders them
// into a single text line: fractional fill glyphs, percentage, counters,
// elapsed time, rate and ETA. A Bar created with New owns its writer and
// redraws synchronously. Bars added to a Multi never touch the terminal;
// they enqueue redraw messages that the Multi's single consumer goroutine
// applies, in arrival order, to one terminal row per bar.
package progress
