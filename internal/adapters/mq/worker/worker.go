// Package worker defines the normalizer workers that drain the ingest
// queue into the entity catalog.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/marquee-live/marquee/internal/adapters/mq/queue"
	"github.com/marquee-live/marquee/internal/domain/model"
	"github.com/marquee-live/marquee/pkg/logger"
	"github.com/marquee-live/marquee/pkg/metrics"
)

// Cataloger receives normalized entities.
type Cataloger interface {
	Upsert(ctx context.Context, e model.Entity) error
}

// Normalizer validates and maps a raw submission onto the domain model.
type Normalizer interface {
	Normalize(ctx context.Context, s queue.Submission) (model.Entity, error)
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Submission
}

// Worker processes submissions until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// NormalizeWorker implements Worker: dequeue, normalize, upsert.
type NormalizeWorker struct {
	queue      Queue
	normalizer Normalizer
	catalog    Cataloger
	name       string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewNormalizeWorker creates a worker with configuration options.
func NewNormalizeWorker(q Queue, n Normalizer, c Cataloger, opts ...Option) *NormalizeWorker {
	w := &NormalizeWorker{
		queue:      q,
		normalizer: n,
		catalog:    c,
		name:       "normalizer",
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *NormalizeWorker) Run(ctx context.Context) {
	defer close(w.done)

	subCh := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case sub, ok := <-subCh:
			if !ok {
				return
			}
			if err := w.process(ctx, sub); err != nil {
				w.logger.Warn(ctx, "submission dropped", logger.String("id", sub.ID), logger.String("type", sub.Type), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *NormalizeWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process normalizes a single submission and upserts it into the catalog.
// Malformed records are counted and dropped; they never stop the worker.
func (w *NormalizeWorker) process(ctx context.Context, sub queue.Submission) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	entity, err := w.normalizer.Normalize(ctx, sub)
	if err != nil {
		metrics.RecordWorkerError("normalize")
		return err
	}
	if err := w.catalog.Upsert(ctx, entity); err != nil {
		metrics.RecordWorkerError("upsert")
		return err
	}
	metrics.RecordEntityIngested()
	return nil
}

// Pool runs a fixed number of workers over one queue.
type Pool struct {
	workers []*NormalizeWorker
	cancel  context.CancelFunc
}

// NewPool builds count workers sharing the queue, normalizer and catalog.
func NewPool(count int, q Queue, n Normalizer, c Cataloger) *Pool {
	if count < 1 {
		count = 1
	}
	p := &Pool{workers: make([]*NormalizeWorker, count)}
	for i := range p.workers {
		p.workers[i] = NewNormalizeWorker(q, n, c, WithName(fmt.Sprintf("normalizer-%d", i)))
	}
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
}

// Shutdown stops all workers, waiting up to ctx's deadline.
func (p *Pool) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		defer p.cancel()
	}
	var firstErr error
	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	metrics.UpdateWorkerCount(0)
	return firstErr
}

// Count returns the number of workers in the pool.
func (p *Pool) Count() int {
	return len(p.workers)
}
