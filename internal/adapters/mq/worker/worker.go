// Package worker runs snapshot loads taken off the load queue.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/ladder/internal/adapters/mq/queue"
	"github.com/okian/ladder/pkg/logger"
	"github.com/okian/ladder/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Request is what workers read off the queue.
type Request = queue.Request

// Loader performs one snapshot load.
type Loader interface {
	Load(ctx context.Context, r Request) error
}

// Queue defines how workers receive requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Request
}

// Worker processes load requests.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker. A worker runs one load at a time.
type InMemoryWorker struct {
	queue  Queue
	loader Loader
	name   string

	started   atomic.Bool
	processed atomic.Int64
	failed    atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, loader Loader, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		loader:   loader,
		name:     "loader",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("loader"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "loader" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	w.started.Store(true)
	defer close(w.done)

	requests := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case r, ok := <-requests:
			if !ok {
				return
			}
			if err := w.process(ctx, r); err != nil {
				w.logger.Error(ctx, "load failed",
					logger.String("load_id", r.ID),
					logger.Uint64("generation", r.Generation),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
	if !w.started.Load() {
		return nil
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns the number of loads this worker completed.
func (w *InMemoryWorker) Processed() int64 {
	return w.processed.Load()
}

// process runs a single load request.
func (w *InMemoryWorker) process(ctx context.Context, r Request) error {
	start := time.Now()
	err := w.loader.Load(ctx, r)
	ms := float64(time.Since(start).Milliseconds())

	w.processed.Add(1)
	if err != nil {
		w.failed.Add(1)
		metrics.RecordLoad("error", ms)
		metrics.RecordErrorByComponent("loader", "load_error")
		return fmt.Errorf("load %s: %w", r.ID, err)
	}

	metrics.RecordLoad("ok", ms)
	w.logger.Debug(ctx, "load finished",
		logger.String("load_id", r.ID),
		logger.String("reason", r.Reason),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a new worker pool. Fewer than one worker means one.
func NewPool(workerCount int, queue Queue, loader Loader) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("loader-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(queue, loader, WithName("loader-"+strconv.Itoa(i)))
	}

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		w.started.Store(true)
		go w.Run(ctx)
	}
	metrics.UpdateLoaderActiveCount(len(p.workers))
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Stats returns completed and failed load counts across the pool.
func (p *Pool) Stats() (processed, failed int64) {
	for _, w := range p.workers {
		processed += w.processed.Load()
		failed += w.failed.Load()
	}
	return processed, failed
}

// Shutdown closes the queue when it can be closed, then waits for every
// worker to finish its current load.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var firstErr error
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	metrics.UpdateLoaderActiveCount(0)
	return firstErr
}
