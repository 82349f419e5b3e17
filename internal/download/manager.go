package download

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/handiism/artcache/internal/cache"
	"github.com/handiism/artcache/internal/config"
	"github.com/handiism/artcache/internal/fetch"
	"github.com/handiism/artcache/internal/http"
	"github.com/handiism/artcache/internal/logging"
	"github.com/handiism/artcache/internal/model"
	"github.com/handiism/artcache/internal/tracing"
)

// Manager coordinates artwork downloads for a list of games.
type Manager struct {
	settings *config.Settings
	store    *cache.Store
	fetcher  *fetch.Fetcher
	log      *slog.Logger
}

type managerOptions struct {
	source   fetch.Source
	registry *fetch.Registry
	log      *slog.Logger
}

// Option configures a Manager.
type Option func(*managerOptions)

// WithSource replaces the HTTP client built from settings.
func WithSource(s fetch.Source) Option {
	return func(o *managerOptions) {
		o.source = s
	}
}

// WithRegistry shares an in-flight registry with other Managers.
func WithRegistry(r *fetch.Registry) Option {
	return func(o *managerOptions) {
		o.registry = r
	}
}

// WithLogger sets the logger for the Manager and its fetcher.
func WithLogger(l *slog.Logger) Option {
	return func(o *managerOptions) {
		o.log = l
	}
}

// NewManager opens the image cache and wires the fetch pipeline.
func NewManager(settings *config.Settings, opts ...Option) (*Manager, error) {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	o := managerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.Get()
	}
	if o.source == nil {
		o.source = http.NewClient(settings.ToHTTPOptions())
	}

	store, err := cache.Open(settings.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("open image cache: %w", err)
	}

	fetchOpts := []fetch.Option{fetch.WithLogger(o.log)}
	if o.registry != nil {
		fetchOpts = append(fetchOpts, fetch.WithRegistry(o.registry))
	}

	return &Manager{
		settings: settings,
		store:    store,
		fetcher:  fetch.New(o.source, store, fetchOpts...),
		log:      o.log,
	}, nil
}

// Store returns the image cache.
func (m *Manager) Store() *cache.Store {
	return m.store
}

// DownloadAll fetches the poster and hero images of every game, at most
// settings.MaxConcurrentDownloads at a time, and records the local paths on
// the games. Individual failures are logged and counted, never returned.
// onProgress may be nil.
func (m *Manager) DownloadAll(ctx context.Context, games []*model.Game, onProgress ProgressFunc) Summary {
	runID := uuid.NewString()
	log := m.log.With("run_id", runID)

	ctx, span := tracing.StartSpan(ctx, "download.run", tracing.WithAttributes(
		attribute.String("artcache.run_id", runID),
		attribute.Int("artcache.games", len(games)),
	))
	defer span.End()

	jobs := BuildJobs(games)
	limit := m.settings.Concurrency()
	log.Info("downloading artwork", "games", len(games), "jobs", len(jobs), "concurrency", limit)

	start := time.Now()
	summary := RunAll(ctx, jobs, limit, m.runJob, onProgress)

	tracing.AddSpanAttributes(span,
		attribute.Int("artcache.jobs", summary.Total),
		attribute.Int("artcache.failed", summary.Failed),
		attribute.Int("artcache.skipped", summary.Skipped),
	)
	if err := ctx.Err(); err != nil && summary.Skipped > 0 {
		tracing.RecordError(span, err)
	} else {
		tracing.SetSpanOK(span)
	}

	log.Info("artwork download finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return summary
}

func (m *Manager) runJob(ctx context.Context, job Job) error {
	res, err := m.fetcher.FetchOrGetCached(ctx, job.URL, job.Game.Name, job.Role)
	if err != nil {
		return err
	}
	Apply(job.Game, job.Role, res.Path)
	return nil
}

// Close releases the image cache.
func (m *Manager) Close() error {
	if m.store == nil {
		return nil
	}
	return m.store.Close()
}
