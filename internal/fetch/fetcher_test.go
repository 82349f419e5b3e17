package fetch

import (
	"context"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/artcache/internal/cache"
	"github.com/handiism/artcache/internal/http"
	"github.com/handiism/artcache/internal/logging"
	"github.com/handiism/artcache/internal/model"
)

// imageServer serves a fixed body and counts requests. When gate is non-nil
// every request blocks until it is closed.
type imageServer struct {
	*httptest.Server
	calls atomic.Int64
}

func newImageServer(t *testing.T, status int, contentType string, body []byte, gate <-chan struct{}) *imageServer {
	t.Helper()
	s := &imageServer{}
	s.Server = httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		s.calls.Add(1)
		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

func newTestFetcher(t *testing.T) (*Fetcher, *cache.Store) {
	t.Helper()
	store, err := cache.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	client := http.NewClient(http.Options{Timeout: 5 * time.Second})
	return New(client, store, WithLogger(logging.Discard())), store
}

func TestFetchOrGetCached_DownloadsThenHitsCache(t *testing.T) {
	srv := newImageServer(t, nethttp.StatusOK, "image/png", []byte("png"), nil)
	f, store := newTestFetcher(t)
	ctx := context.Background()

	first, err := f.FetchOrGetCached(ctx, srv.URL+"/hero.png", "Portal 2", model.RoleHero)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDownloaded, first.Outcome)
	assert.Equal(t, store.Dir(), first.Path[:len(store.Dir())])

	data, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	second, err := f.FetchOrGetCached(ctx, srv.URL+"/hero.png", "Portal 2", model.RoleHero)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCached, second.Outcome)
	assert.Equal(t, first.Path, second.Path)
	assert.Equal(t, int64(1), srv.calls.Load())
}

func TestFetchOrGetCached_ConcurrentCallsShareOneTransfer(t *testing.T) {
	gate := make(chan struct{})
	srv := newImageServer(t, nethttp.StatusOK, "image/jpeg", []byte("jpeg"), gate)
	f, _ := newTestFetcher(t)

	const callers = 8
	var (
		wg    sync.WaitGroup
		paths = make([]string, callers)
		errs  = make([]error, callers)
	)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.FetchOrGetCached(context.Background(), srv.URL+"/p.jpg", "Half-Life", model.RolePoster)
			paths[i], errs[i] = res.Path, err
		}()
	}

	require.Eventually(t, func() bool { return srv.calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int64(1), srv.calls.Load())
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, paths[0], paths[i])
	}
	assert.Equal(t, 0, f.Registry().InFlight())
}

func TestFetchOrGetCached_NotFound(t *testing.T) {
	srv := newImageServer(t, nethttp.StatusNotFound, "", nil, nil)
	f, store := newTestFetcher(t)

	_, err := f.FetchOrGetCached(context.Background(), srv.URL+"/gone.png", "Foo", model.RoleHero)
	require.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsExpectedMiss(err))

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetchOrGetCached_NetworkErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"unauthorized", nethttp.StatusUnauthorized},
		{"server error", nethttp.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newImageServer(t, tt.status, "", nil, nil)
			f, _ := newTestFetcher(t)

			_, err := f.FetchOrGetCached(context.Background(), srv.URL+"/x.png", "Foo", model.RolePoster)

			var netErr *NetworkError
			require.ErrorAs(t, err, &netErr)
			assert.Equal(t, srv.URL+"/x.png", netErr.URL)
			assert.False(t, IsExpectedMiss(err))
		})
	}
}

func TestFetchOrGetCached_EmptyBody(t *testing.T) {
	srv := newImageServer(t, nethttp.StatusOK, "image/png", nil, nil)
	f, _ := newTestFetcher(t)

	_, err := f.FetchOrGetCached(context.Background(), srv.URL+"/empty.png", "Foo", model.RolePoster)
	require.ErrorIs(t, err, ErrEmptyContent)
	assert.True(t, IsExpectedMiss(err))
}

func TestFetchOrGetCached_AcceptsNonImageContentType(t *testing.T) {
	srv := newImageServer(t, nethttp.StatusOK, "text/html; charset=utf-8", []byte("<html>"), nil)
	f, _ := newTestFetcher(t)

	res, err := f.FetchOrGetCached(context.Background(), srv.URL+"/odd.png", "Foo", model.RolePoster)
	require.NoError(t, err)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(data))
}

func TestFetchOrGetCached_InvalidInput(t *testing.T) {
	srv := newImageServer(t, nethttp.StatusOK, "image/png", []byte("png"), nil)
	f, _ := newTestFetcher(t)

	tests := []struct {
		name  string
		url   string
		owner string
	}{
		{"empty url", "", "Foo"},
		{"empty owner", srv.URL + "/a.png", ""},
		{"blank owner", srv.URL + "/a.png", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.FetchOrGetCached(context.Background(), tt.url, tt.owner, model.RolePoster)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Equal(t, int64(0), srv.calls.Load())
}

func TestFetchOrGetCached_RetriesAfterFailure(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(nethttp.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/webp")
		_, _ = w.Write([]byte("webp"))
	}))
	defer srv.Close()
	f, _ := newTestFetcher(t)

	_, err := f.FetchOrGetCached(context.Background(), srv.URL+"/h.webp", "Foo", model.RoleHero)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)

	res, err := f.FetchOrGetCached(context.Background(), srv.URL+"/h.webp", "Foo", model.RoleHero)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDownloaded, res.Outcome)
	assert.Equal(t, int64(2), calls.Load())
}

func TestFetchOrGetCached_AwaiterCancellation(t *testing.T) {
	gate := make(chan struct{})
	srv := newImageServer(t, nethttp.StatusOK, "image/png", []byte("png"), gate)
	f, _ := newTestFetcher(t)
	url := srv.URL + "/slow.png"

	leaderDone := make(chan error, 1)
	go func() {
		_, err := f.FetchOrGetCached(context.Background(), url, "Foo", model.RolePoster)
		leaderDone <- err
	}()
	require.Eventually(t, func() bool { return srv.calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	awaiterDone := make(chan error, 1)
	go func() {
		_, err := f.FetchOrGetCached(ctx, url, "Foo", model.RolePoster)
		awaiterDone <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	err := <-awaiterDone
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, errors.Is(err, context.Canceled))

	close(gate)
	require.NoError(t, <-leaderDone)
	assert.Equal(t, int64(1), srv.calls.Load())
}

func TestFetchOrGetCached_LeaderCancellationDoesNotAbortTransfer(t *testing.T) {
	gate := make(chan struct{})
	srv := newImageServer(t, nethttp.StatusOK, "image/png", []byte("png"), gate)
	f, store := newTestFetcher(t)
	url := srv.URL + "/detached.png"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.FetchOrGetCached(ctx, url, "Foo", model.RolePoster)
		done <- err
	}()
	require.Eventually(t, func() bool { return srv.calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	close(gate)

	key, err := cache.Key("Foo", model.RolePoster, url)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		ok, err := store.Exists(context.Background(), key)
		return err == nil && ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "downloaded", OutcomeDownloaded.String())
	assert.Equal(t, "cached", OutcomeCached.String())
	assert.Equal(t, "shared", OutcomeShared.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
