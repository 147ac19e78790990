// Package service provides the core business service that implements the
// dependencies required by the HTTP API: ingest on one side, calendar
// projection on the other.
package service

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/marquee-live/marquee/internal/adapters/catalog"
	ingestqueue "github.com/marquee-live/marquee/internal/adapters/mq/queue"
	workerpool "github.com/marquee-live/marquee/internal/adapters/mq/worker"
	"github.com/marquee-live/marquee/internal/domain/dedupe"
	"github.com/marquee-live/marquee/internal/domain/model"
	"github.com/marquee-live/marquee/internal/domain/normalize"
	"github.com/marquee-live/marquee/internal/domain/projector"
	"github.com/marquee-live/marquee/internal/domain/types"
	"github.com/marquee-live/marquee/pkg/logger"
	"github.com/marquee-live/marquee/pkg/metrics"
)

// DiagnosticFunc receives per-entity skip diagnostics during projection.
// It is advisory: skips are never surfaced as errors.
type DiagnosticFunc func(projector.Skip)

// Service wires the ingest pipeline and the projection engine together.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog     catalog.Store
	deduper     dedupe.Deduper
	ingestQueue ingestqueue.Queue
	normalizer  normalize.Normalizer
	pool        *workerpool.Pool
	projector   *projector.Projector
	cache       *projectionCache

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	cacheSize     int
	occurrenceCap int
	diagnostics   DiagnosticFunc

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of normalizer workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the ingest queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the submission idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithCacheSize bounds the projection result cache.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.cacheSize = size
		}
	}
}

// WithOccurrenceCap bounds occurrences emitted per entity per projection.
func WithOccurrenceCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.occurrenceCap = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDiagnostics registers a callback for projection skip diagnostics.
func WithDiagnostics(fn DiagnosticFunc) Option {
	return func(s *Service) {
		s.diagnostics = fn
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   100000,
		dedupeSize:  50000,
		cacheSize:   256,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting calendar service...")

	s.catalog = catalog.NewMemoryStore()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.ingestQueue = ingestqueue.NewInMemoryQueue(
		ingestqueue.WithCapacity(s.queueSize),
	)
	s.normalizer = normalize.New()

	var projOpts []projector.Option
	if s.occurrenceCap > 0 {
		projOpts = append(projOpts, projector.WithOccurrenceCap(s.occurrenceCap))
	}
	s.projector = projector.New(projOpts...)
	s.cache = newProjectionCache(s.cacheSize)

	s.pool = workerpool.NewPool(s.workerCount, s.ingestQueue, s.normalizer, s.catalog)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "calendar service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("cacheSize", s.cacheSize),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping calendar service...")

	if q, ok := s.ingestQueue.(*ingestqueue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.pool != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.pool.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "calendar service stopped")
}

// SeenAndRecord atomically checks if a submission id was seen and records
// it if not. Returns true if the submission was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordDuplicate()
	}
	return seen
}

// Unrecord removes a submission ID from the seen set, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a wire record for asynchronous normalization.
// Returns false on backpressure.
func (s *Service) Enqueue(ctx context.Context, sub types.WireEntity) bool {
	metrics.RecordSubmission()
	ok := s.ingestQueue.Enqueue(ctx, sub)
	if !ok {
		s.logger.Warn(ctx, "ingest queue full, submission rejected",
			logger.String("id", sub.ID),
			logger.String("type", sub.Type),
		)
	}
	return ok
}

// Upsert bypasses the queue and writes a normalized entity directly into
// the catalog. Used by the feed refresher and by library callers.
func (s *Service) Upsert(ctx context.Context, e model.Entity) error {
	return s.catalog.Upsert(ctx, e)
}

// Project computes the occurrences of the whole catalog inside the window,
// optionally filtered by entity type. Results are cached per catalog
// version and window.
func (s *Service) Project(ctx context.Context, w model.Window, filter model.EntityType) ([]model.Occurrence, error) {
	if !w.Valid() {
		return nil, ErrInvalidWindow
	}

	version := s.catalog.Version(ctx)
	key := cacheKey(version, w, filter)
	if occ, ok := s.cache.get(key); ok {
		metrics.RecordCacheHit()
		return occ, nil
	}
	metrics.RecordCacheMiss()

	entities := s.catalog.Snapshot(ctx)
	occ := s.ProjectAll(ctx, entities, w, filter)
	s.cache.put(key, occ)
	return occ, nil
}

// ProjectAll projects a caller-supplied entity list over the window:
// filter, project per entity, dedupe per (entity, type, calendar day)
// keeping the first occurrence encountered, then sort ascending by time
// with ties broken by entity type then ID. The output is deterministic
// for identical inputs.
func (s *Service) ProjectAll(ctx context.Context, entities []model.Entity, w model.Window, filter model.EntityType) []model.Occurrence {
	start := time.Now()
	defer func() {
		metrics.RecordProjection()
		metrics.RecordProjectionLatency(float64(time.Since(start).Milliseconds()))
	}()

	merged := make([]model.Occurrence, 0, len(entities))
	seen := make(map[string]struct{})

	for _, e := range entities {
		if filter != "" && e.Type != filter {
			continue
		}
		occ, skip := s.projector.Project(e, w)
		if skip != nil {
			metrics.RecordEntitySkipped(string(skip.Reason))
			s.logger.Debug(ctx, "entity skipped during projection",
				logger.String("entity", string(skip.EntityType)+"/"+skip.EntityID),
				logger.String("reason", string(skip.Reason)),
			)
			if s.diagnostics != nil {
				s.diagnostics(*skip)
			}
		}
		for _, o := range occ {
			key := o.DedupeKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, o)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if !a.At.Equal(b.At) {
			return a.At.Before(b.At)
		}
		if a.EntityType != b.EntityType {
			return a.EntityType < b.EntityType
		}
		return a.EntityID < b.EntityID
	})

	metrics.RecordOccurrences(len(merged))
	return merged
}

// Count returns the number of entities in the catalog.
func (s *Service) Count(ctx context.Context) int {
	return s.catalog.Count(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.ingestQueue.Len(ctx)
		entityCount := s.catalog.Count(ctx)

		stats["queueLength"] = queueLen
		stats["entityCount"] = entityCount
		stats["catalogVersion"] = s.catalog.Version(ctx)
		stats["cacheEntries"] = s.cache.len()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateCatalogEntities(entityCount)
	}

	return stats
}
