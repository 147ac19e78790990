package feed

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/marquee-live/marquee/internal/domain/model"
	"github.com/marquee-live/marquee/internal/domain/types"
	"github.com/marquee-live/marquee/pkg/logger"
)

// defaultFetchTimeout bounds a single refresh cycle.
const defaultFetchTimeout = 30 * time.Second

// Fetcher retrieves the upstream entity list.
type Fetcher interface {
	Fetch(ctx context.Context) ([]types.WireEntity, error)
}

// Normalizer converts wire entities into domain entities.
type Normalizer interface {
	Normalize(ctx context.Context, in types.WireEntity) (model.Entity, error)
}

// Cataloger accepts normalized entities into the catalog.
type Cataloger interface {
	Upsert(ctx context.Context, e model.Entity) error
}

// Refresher periodically pulls the upstream feed and upserts every entity
// it can normalize. Records that fail normalization are logged and skipped;
// a bad record never aborts the rest of the batch.
type Refresher struct {
	fetcher    Fetcher
	normalizer Normalizer
	cataloger  Cataloger
	engine     *cron.Cron
	spec       string
	timeout    time.Duration
	log        logger.Logger
}

// NewRefresher wires a feed refresher with the given cron spec,
// e.g. "*/15 * * * *".
func NewRefresher(f Fetcher, n Normalizer, c Cataloger, spec string, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		fetcher:    f,
		normalizer: n,
		cataloger:  c,
		engine:     cron.New(cron.WithLocation(time.Local)),
		spec:       spec,
		timeout:    defaultFetchTimeout,
		log:        logger.Get().Named("feed"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start registers the cron job and begins the schedule. It runs one refresh
// immediately so the catalog is warm before the first tick.
func (r *Refresher) Start(ctx context.Context) error {
	if _, err := r.engine.AddFunc(r.spec, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.RefreshNow(jobCtx); err != nil {
			r.log.Error(jobCtx, "scheduled feed refresh failed", logger.Error(err))
		}
	}); err != nil {
		return err
	}

	warmCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.RefreshNow(warmCtx); err != nil {
		r.log.Warn(ctx, "initial feed refresh failed", logger.Error(err))
	}

	r.engine.Start()
	r.log.Info(ctx, "feed refresher started", logger.String("schedule", r.spec))
	return nil
}

// Stop halts the schedule and waits for any in-flight job.
func (r *Refresher) Stop() {
	<-r.engine.Stop().Done()
	r.log.Info(context.Background(), "feed refresher stopped")
}

// RefreshNow fetches the feed once and upserts every valid entity.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	start := time.Now()

	records, err := r.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}

	var stored, skipped int
	for _, rec := range records {
		entity, err := r.normalizer.Normalize(ctx, rec)
		if err != nil {
			skipped++
			r.log.Debug(ctx, "feed record skipped",
				logger.String("entity_id", rec.ID),
				logger.Error(err))
			continue
		}
		if err := r.cataloger.Upsert(ctx, entity); err != nil {
			skipped++
			r.log.Warn(ctx, "feed upsert failed",
				logger.String("entity_id", rec.ID),
				logger.Error(err))
			continue
		}
		stored++
	}

	r.log.Info(ctx, "feed refresh complete",
		logger.Int("stored", stored),
		logger.Int("skipped", skipped),
		logger.Duration("took", time.Since(start)))
	return nil
}
