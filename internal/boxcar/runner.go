package boxcar

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shibaji7/uah/internal/fitacf"
	"github.com/shibaji7/uah/internal/monitoring"
)

// WindowError records a window that could not be filtered, with enough
// context (window index and time range) to reprocess it later. One failed
// window never aborts its siblings.
type WindowError struct {
	Index int // output slot: center scan index minus one
	STime time.Time
	ETime time.Time
	Err   error
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("window %d (%s - %s): %v",
		e.Index, e.STime.Format(time.RFC3339), e.ETime.Format(time.RFC3339), e.Err)
}

func (e *WindowError) Unwrap() error { return e.Err }

// Runner slides the three-sweep window across a scan sequence and filters
// each window on a bounded worker pool. Windows are independent: each task
// reads its own slice of the input and writes one output slot, so no
// synchronization beyond the pool itself is needed and output order is
// fixed by slot index regardless of completion order.
type Runner struct {
	Filter  *Filter
	Workers int // pool size; defaults to GOMAXPROCS worth of cores

	// Legacy selects LegacyFilterWindow instead of the full filter.
	Legacy bool

	// Preprocess runs DiscardRepeatedBeams over every input scan before
	// windowing.
	Preprocess bool

	// LogEvery reports progress through monitoring.Logf every n windows;
	// zero disables progress logging.
	LogEvery int
}

// NewRunner returns a runner over f with one worker per CPU, input
// preprocessing enabled and progress logging every 10 windows.
func NewRunner(f *Filter) *Runner {
	return &Runner{
		Filter:     f,
		Workers:    runtime.NumCPU(),
		Preprocess: true,
		LogEvery:   10,
	}
}

// Run filters every interior window of scans: centers 1 through len-3
// inclusive, producing len-3 output slots. Output slot i holds the filtered
// scan for center i+1, or nil if that window failed; failures are returned
// as WindowErrors alongside the successes. The only hard error is a
// sequence too short to contain a window.
func (r *Runner) Run(ctx context.Context, scans []*fitacf.Scan) ([]*fitacf.Scan, []*WindowError, error) {
	if len(scans) < 3 {
		return nil, nil, fmt.Errorf("%w: %d scans supplied, need at least 3", ErrShortWindow, len(scans))
	}
	if r.Preprocess {
		pre := make([]*fitacf.Scan, len(scans))
		for i, s := range scans {
			pre[i] = DiscardRepeatedBeams(s, false)
		}
		scans = pre
	}

	nWindows := len(scans) - 3
	out := make([]*fitacf.Scan, nWindows)
	errs := make([]*WindowError, nWindows)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workerCount())
	for i := 0; i < nWindows; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			center := i + 1
			window := [3]*fitacf.Scan{scans[center-1], scans[center], scans[center+1]}
			fs, err := r.filterOne(window)
			if err != nil {
				errs[i] = &WindowError{Index: i, STime: windowTime(window, true), ETime: windowTime(window, false), Err: err}
				return nil
			}
			out[i] = fs
			if r.LogEvery > 0 && i%r.LogEvery == 0 {
				monitoring.Logf("boxcar: filtered window %d/%d at %s", i+1, nWindows, fs.STime.Format(time.RFC3339))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var failed []*WindowError
	for _, we := range errs {
		if we != nil {
			failed = append(failed, we)
		}
	}
	return out, failed, nil
}

func (r *Runner) filterOne(window [3]*fitacf.Scan) (*fitacf.Scan, error) {
	if r.Legacy {
		return r.Filter.LegacyFilterWindow(window)
	}
	return r.Filter.FilterWindow(window)
}

func (r *Runner) workerCount() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.NumCPU()
}

// windowTime derives the reported time range of a window from whichever
// scans are available.
func windowTime(window [3]*fitacf.Scan, start bool) time.Time {
	for _, s := range window {
		if s == nil {
			continue
		}
		if start {
			return s.STime
		}
	}
	for i := 2; i >= 0; i-- {
		if window[i] != nil {
			return window[i].ETime
		}
	}
	return time.Time{}
}

// FilterScans is the orchestrator-level convenience entry point: it filters
// a preprocessed copy of scans with the batch default threshold 0.4 and the
// recorded-flag neighborhood, using one worker per core. Sweeps are always
// run through DiscardRepeatedBeams here, even though clean batch input
// makes that a no-op; callers needing raw sweeps build a Runner with
// Preprocess disabled.
func FilterScans(ctx context.Context, scans []*fitacf.Scan) ([]*fitacf.Scan, []*WindowError, error) {
	f := NewFilter()
	f.Thresh = 0.4
	return NewRunner(f).Run(ctx, scans)
}
