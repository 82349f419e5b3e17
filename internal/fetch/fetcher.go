package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/handiism/artcache/internal/cache"
	"github.com/handiism/artcache/internal/http"
	"github.com/handiism/artcache/internal/logging"
	"github.com/handiism/artcache/internal/metrics"
	"github.com/handiism/artcache/internal/model"
	"github.com/handiism/artcache/internal/tracing"
)

// Source performs the network transfer for one URL.
// *http.Client is the production implementation.
type Source interface {
	Fetch(ctx context.Context, url string) (*http.Payload, error)
}

// Outcome says how a successful FetchOrGetCached obtained its path.
type Outcome int

const (
	// OutcomeDownloaded means this call transferred the image.
	OutcomeDownloaded Outcome = iota

	// OutcomeCached means the image was already in the store.
	OutcomeCached

	// OutcomeShared means another call's transfer for the same key
	// produced the image.
	OutcomeShared
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDownloaded:
		return metrics.OutcomeDownloaded
	case OutcomeCached:
		return metrics.OutcomeCached
	case OutcomeShared:
		return metrics.OutcomeShared
	default:
		return "unknown"
	}
}

// Result is a cached image's local path and how it got there.
type Result struct {
	Path    string
	Outcome Outcome
}

// Fetcher downloads artwork into the cache, at most once per cache key.
//
// Fetcher provides:
//   - Cache-hit short-circuit: no network call if the file already exists
//   - In-flight deduplication through a shared Registry
//   - Content-type sanity check (mismatches are logged, not rejected)
//   - Typed errors separating expected misses from transfer failures
//
// Example usage:
//
//	store, _ := cache.Open(dir)
//	f := fetch.New(http.NewClient(http.DefaultOptions()), store)
//
//	res, err := f.FetchOrGetCached(ctx, game.PosterURL, game.Name, model.RolePoster)
//	if err == nil {
//	    fmt.Println(res.Path)
//	}
type Fetcher struct {
	source   Source
	store    *cache.Store
	registry *Registry
	log      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRegistry shares an existing in-flight registry.
func WithRegistry(r *Registry) Option {
	return func(f *Fetcher) {
		f.registry = r
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.log = l
	}
}

// New creates a Fetcher that downloads from source into store.
func New(source Source, store *cache.Store, opts ...Option) *Fetcher {
	f := &Fetcher{
		source: source,
		store:  store,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.registry == nil {
		f.registry = NewRegistry()
	}
	if f.log == nil {
		f.log = logging.Get()
	}
	return f
}

// Registry returns the in-flight registry used by this Fetcher.
func (f *Fetcher) Registry() *Registry {
	return f.registry
}

// FetchOrGetCached returns the local path of the image at rawURL for the
// given owner and role, downloading it first if it is not cached yet.
//
// It is safe to call concurrently with identical arguments: only one network
// transfer happens and every caller receives the same path.
//
// Errors:
//   - ErrInvalidInput: empty URL or owner, nothing attempted
//   - ErrNotFound, ErrEmptyContent: the provider has no usable image
//   - *NetworkError: the transfer failed
//   - *StorageError: the image could not be cached
func (f *Fetcher) FetchOrGetCached(ctx context.Context, rawURL, owner string, role model.Role) (Result, error) {
	ctx, span := tracing.StartSpan(ctx, "fetch.image", tracing.WithAttributes(
		attribute.String("artcache.url", rawURL),
		attribute.String("artcache.owner", owner),
		attribute.String("artcache.role", role.String()),
	))
	defer span.End()

	res, err := f.fetchOrGetCached(ctx, rawURL, owner, role)
	switch {
	case err == nil:
		metrics.RecordFetch(role.String(), res.Outcome.String())
		tracing.AddSpanAttributes(span, attribute.String("artcache.outcome", res.Outcome.String()))
		tracing.SetSpanOK(span)
		f.log.Debug("image ready", "owner", owner, "role", role, "outcome", res.Outcome, "path", res.Path)
	case IsExpectedMiss(err):
		metrics.RecordFetch(role.String(), metrics.OutcomeMissing)
		f.log.Debug("no image", "owner", owner, "role", role, "url", rawURL, "reason", err)
	default:
		metrics.RecordFetch(role.String(), metrics.OutcomeFailed)
		tracing.RecordError(span, err)
		f.log.Warn("image fetch failed", "owner", owner, "role", role, "url", rawURL, "error", err)
	}

	return res, err
}

func (f *Fetcher) fetchOrGetCached(ctx context.Context, rawURL, owner string, role model.Role) (Result, error) {
	key, err := cache.Key(owner, role, rawURL)
	if err != nil {
		return Result{}, err
	}
	path := f.store.Path(key)

	ok, err := f.store.Exists(ctx, key)
	if err != nil {
		return Result{}, &StorageError{Path: path, Err: err}
	}
	if ok {
		return Result{Path: path, Outcome: OutcomeCached}, nil
	}

	// The transfer is shared with other callers, so one caller giving up
	// must not cancel it. The client timeout still bounds it.
	transferCtx := context.WithoutCancel(ctx)
	hit := false

	dest := path
	path, shared, err := f.registry.Do(ctx, key, func() (string, error) {
		// A transfer for this key may have completed since the check above.
		if ok, err := f.store.Exists(transferCtx, key); err == nil && ok {
			hit = true
			return dest, nil
		}
		return dest, f.transfer(transferCtx, rawURL, key, dest, role)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Result{}, &NetworkError{URL: rawURL, Err: err}
		}
		return Result{}, err
	}

	switch {
	case shared:
		return Result{Path: path, Outcome: OutcomeShared}, nil
	case hit:
		return Result{Path: path, Outcome: OutcomeCached}, nil
	default:
		return Result{Path: path, Outcome: OutcomeDownloaded}, nil
	}
}

func (f *Fetcher) transfer(ctx context.Context, rawURL, key, path string, role model.Role) error {
	start := time.Now()

	payload, err := f.source.Fetch(ctx, rawURL)
	if err != nil {
		if errors.Is(err, http.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, rawURL)
		}
		return &NetworkError{URL: rawURL, Err: err}
	}
	if len(payload.Body) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyContent, rawURL)
	}

	contentType := payload.ContentType
	if contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		// Some providers label images as octet-stream or text; keep the body.
		f.log.Warn("unexpected content type, keeping body", "url", rawURL, "content_type", contentType)
		contentType = ""
	}

	if err := f.store.Write(ctx, key, payload.Body, contentType); err != nil {
		return &StorageError{Path: path, Err: err}
	}

	metrics.RecordTransfer(role.String(), len(payload.Body), start)
	return nil
}
