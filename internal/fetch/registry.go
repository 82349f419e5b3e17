package fetch

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/handiism/artcache/internal/metrics"
)

// Registry tracks in-flight transfers by cache key.
//
// At most one transfer runs per key at any time. Callers that ask for a key
// while its transfer is running wait for that transfer and receive its
// result instead of starting their own. A key is forgotten as soon as its
// transfer finishes, successfully or not, so a later request after a
// failure tries again.
//
// A Registry is safe for concurrent use and is meant to be shared for the
// lifetime of the process.
type Registry struct {
	group    singleflight.Group
	inFlight atomic.Int64
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Do runs transfer for key, or joins the transfer already running for key.
//
// shared is true when this caller received another caller's result. If ctx
// ends while waiting, Do returns ctx.Err(); the transfer itself keeps
// running for the other callers.
func (r *Registry) Do(ctx context.Context, key string, transfer func() (string, error)) (path string, shared bool, err error) {
	ran := false
	ch := r.group.DoChan(key, func() (val any, err error) {
		ran = true
		r.inFlight.Add(1)
		metrics.InFlightTransfers.Inc()
		defer func() {
			r.inFlight.Add(-1)
			metrics.InFlightTransfers.Dec()
		}()
		// DoChan re-panics on a goroutine of its own where no caller can
		// recover, so a panic becomes the result for every waiter.
		defer func() {
			if rec := recover(); rec != nil {
				val, err = "", fmt.Errorf("transfer panicked: %v", rec)
			}
		}()
		return transfer()
	})

	select {
	case res := <-ch:
		path, _ = res.Val.(string)
		return path, !ran, res.Err
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

// InFlight returns the number of transfers currently running.
func (r *Registry) InFlight() int {
	return int(r.inFlight.Load())
}
