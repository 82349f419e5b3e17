package download

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/artcache/internal/metrics"
)

// Progress is a snapshot of how many jobs have finished.
type Progress struct {
	Processed int
	Total     int
}

// Fraction returns Processed/Total, or 1 when there is nothing to do.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Processed) / float64(p.Total)
}

// ProgressFunc observes progress. Calls are serialized.
type ProgressFunc func(Progress)

// Summary counts how a run's jobs ended.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

// RunAll runs every job with at most limit of them active at once and
// returns after all have finished.
//
// A job that returns an error or panics is counted as failed; it never stops
// the others. Jobs that have not started when ctx is done are skipped without
// running. Every job, however it ends, is reported to onProgress exactly
// once, so Processed climbs by one per call and finishes at Total. With no
// jobs onProgress is called once with Progress{0, 0}.
func RunAll[J any](ctx context.Context, jobs []J, limit int, run func(context.Context, J) error, onProgress ProgressFunc) Summary {
	if onProgress == nil {
		onProgress = func(Progress) {}
	}

	total := len(jobs)
	if total == 0 {
		onProgress(Progress{})
		return Summary{}
	}
	if limit < 1 {
		limit = 1
	}

	var (
		mu        sync.Mutex
		processed int
		summary   = Summary{Total: total}
	)
	finish := func(status string) {
		mu.Lock()
		defer mu.Unlock()

		switch status {
		case metrics.StatusSucceeded:
			summary.Succeeded++
		case metrics.StatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
		metrics.RecordJob(status)

		processed++
		onProgress(Progress{Processed: processed, Total: total})
	}

	// A plain group: one job failing must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(limit)

	for _, job := range jobs {
		g.Go(func() error {
			if ctx.Err() != nil {
				finish(metrics.StatusSkipped)
				return nil
			}
			if err := runSafely(ctx, job, run); err != nil {
				finish(metrics.StatusFailed)
				return nil
			}
			finish(metrics.StatusSucceeded)
			return nil
		})
	}

	_ = g.Wait()
	return summary
}

func runSafely[J any](ctx context.Context, job J, run func(context.Context, J) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return run(ctx, job)
}
