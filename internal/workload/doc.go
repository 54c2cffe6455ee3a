// Package workload drives progress bars with simulated tasks.
//
// Tasks run on a bounded worker pool, each stepping its own bar. In multi
// mode all bars share one terminal through a progress.Multi; redraws can
// also be mirrored into a Journal file.
package workload
