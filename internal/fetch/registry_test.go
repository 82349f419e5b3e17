package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SharesOneRun(t *testing.T) {
	r := NewRegistry()
	release := make(chan struct{})
	var runs atomic.Int64

	transfer := func() (string, error) {
		runs.Add(1)
		<-release
		return "/cache/a.png", nil
	}

	type result struct {
		path   string
		shared bool
		err    error
	}
	results := make(chan result, 3)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, s, err := r.Do(context.Background(), "a.png", transfer)
			results <- result{p, s, err}
		}()
	}

	require.Eventually(t, func() bool { return r.InFlight() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	leaders := 0
	for res := range results {
		require.NoError(t, res.err)
		assert.Equal(t, "/cache/a.png", res.path)
		if !res.shared {
			leaders++
		}
	}
	assert.Equal(t, int64(1), runs.Load())
	assert.Equal(t, 1, leaders)
	assert.Equal(t, 0, r.InFlight())
}

func TestRegistry_ForgetsAfterFailure(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")

	_, _, err := r.Do(context.Background(), "k", func() (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)

	path, shared, err := r.Do(context.Background(), "k", func() (string, error) { return "/p", nil })
	require.NoError(t, err)
	assert.Equal(t, "/p", path)
	assert.False(t, shared)
}

func TestRegistry_DistinctKeysRunIndependently(t *testing.T) {
	r := NewRegistry()
	var runs atomic.Int64
	transfer := func() (string, error) {
		runs.Add(1)
		return "x", nil
	}

	_, _, err := r.Do(context.Background(), "a", transfer)
	require.NoError(t, err)
	_, _, err = r.Do(context.Background(), "b", transfer)
	require.NoError(t, err)

	assert.Equal(t, int64(2), runs.Load())
}

func TestRegistry_AwaiterContextEnds(t *testing.T) {
	r := NewRegistry()
	release := make(chan struct{})
	defer close(release)

	go func() {
		_, _, _ = r.Do(context.Background(), "slow", func() (string, error) {
			<-release
			return "/slow", nil
		})
	}()
	require.Eventually(t, func() bool { return r.InFlight() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err := r.Do(ctx, "slow", func() (string, error) {
		t.Error("awaiter must not start its own transfer")
		return "", nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRegistry_PanicBecomesErrorAndForgetsKey(t *testing.T) {
	r := NewRegistry()

	_, _, err := r.Do(context.Background(), "k", func() (string, error) { panic("decoder exploded") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoder exploded")
	assert.Equal(t, 0, r.InFlight())

	path, _, err := r.Do(context.Background(), "k", func() (string, error) { return "/p", nil })
	require.NoError(t, err)
	assert.Equal(t, "/p", path)
}
