// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	loadqueue "github.com/okian/ladder/internal/adapters/mq/queue"
	workerpool "github.com/okian/ladder/internal/adapters/mq/worker"
	"github.com/okian/ladder/internal/adapters/repository"
	"github.com/okian/ladder/internal/adapters/source"
	"github.com/okian/ladder/internal/domain/category"
	"github.com/okian/ladder/internal/domain/model"
	"github.com/okian/ladder/internal/domain/pipeline"
	"github.com/okian/ladder/internal/domain/types"
	"github.com/okian/ladder/pkg/logger"
	"github.com/okian/ladder/pkg/metrics"
)

const (
	// ReasonStartup tags the load enqueued by Start.
	ReasonStartup = "startup"
	// ReasonManual tags loads requested through the API.
	ReasonManual = "manual"

	stopTimeout = 30 * time.Second
)

// Service implements the API dependencies for the leaderboard system.
type Service struct {
	mu sync.RWMutex

	// Core components
	source   source.Source
	store    repository.Store
	queue    loadqueue.Queue
	pool     *workerpool.Pool
	renderer *pipeline.Renderer

	// Configuration
	loaderWorkers int
	queueSize     int
	viewLimit     int
	catalog       category.Catalog

	// State
	started    bool
	generation atomic.Uint64
	pending    atomic.Int64 // loads queued or running
	cancel     context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets where snapshots are loaded from.
func WithSource(src source.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithStore replaces the in-memory snapshot store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLoaderWorkers sets the number of load workers.
func WithLoaderWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.loaderWorkers = count
		}
	}
}

// WithQueueSize sets how many loads may wait in the queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithViewLimit sets the row cap of the default tab.
func WithViewLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.viewLimit = limit
		}
	}
}

// WithCatalog sets the category catalog.
func WithCatalog(c category.Catalog) Option {
	return func(s *Service) {
		s.catalog = c
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

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		loaderWorkers: 1,
		queueSize:     1,
		viewLimit:     pipeline.DefaultLimit,
		catalog:       category.DefaultCatalog(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewSnapshotStore()
	}
	s.renderer = pipeline.NewRenderer(category.New(s.catalog), s.viewLimit)

	return s
}

// Start initializes the loader and enqueues the startup load.
// The workers outlive ctx; Stop ends them.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.source == nil {
		return ErrNoSource
	}

	s.logger.Info(ctx, "starting leaderboard service...",
		logger.String("source", s.source.Kind()),
	)

	s.queue = loadqueue.NewInMemoryQueue(loadqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.loaderWorkers, s.queue, s)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)
	s.started = true

	if _, err := s.enqueue(ctx, ReasonStartup); err != nil {
		s.logger.Error(ctx, "failed to enqueue startup load", logger.Error(err))
	}

	s.logger.Info(ctx, "leaderboard service started",
		logger.Int("loaderWorkers", s.loaderWorkers),
		logger.Int("queueSize", s.queueSize),
		logger.Int("viewLimit", s.viewLimit),
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
	s.logger.Info(ctx, "stopping leaderboard service...")

	shutdownCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	if err := s.pool.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "loader pool did not stop cleanly", logger.Error(err))
	} else {
		// Requests left in the closed queue or the dequeuer never reach Load.
		if dropped := s.pending.Swap(0); dropped > 0 {
			s.logger.Info(ctx, "dropped queued loads", logger.Int64("count", dropped))
		}
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "leaderboard service stopped")
}

// Reload requests a fresh snapshot. It returns ErrReloadPending when the
// queue already holds as many loads as it can.
func (s *Service) Reload(ctx context.Context, reason string) (model.LoadRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return model.LoadRequest{}, ErrNotStarted
	}
	if reason == "" {
		reason = ReasonManual
	}
	return s.enqueue(ctx, reason)
}

// enqueue assigns the next generation and queues a load. Callers hold s.mu.
func (s *Service) enqueue(ctx context.Context, reason string) (model.LoadRequest, error) {
	r := model.LoadRequest{
		ID:          uuid.NewString(),
		Generation:  s.generation.Add(1),
		Reason:      reason,
		RequestedAt: time.Now(),
	}

	s.pending.Add(1)
	if err := s.queue.Enqueue(ctx, r); err != nil {
		s.pending.Add(-1)
		if errors.Is(err, loadqueue.ErrFull) {
			return model.LoadRequest{}, fmt.Errorf("%w: %w", ErrReloadPending, err)
		}
		return model.LoadRequest{}, err
	}

	s.logger.Debug(ctx, "load enqueued",
		logger.String("load_id", r.ID),
		logger.Uint64("generation", r.Generation),
		logger.String("reason", reason),
	)
	return r, nil
}

// Load implements worker.Loader. A failed fetch publishes an empty
// snapshot; a result overtaken by a newer generation is dropped.
func (s *Service) Load(ctx context.Context, r model.LoadRequest) error {
	defer s.pending.Add(-1)

	start := time.Now()
	raws, fetchErr := s.source.Fetch(ctx)
	if fetchErr != nil {
		s.logger.Warn(ctx, "snapshot fetch failed, publishing empty snapshot",
			logger.String("load_id", r.ID),
			logger.String("source", s.source.Kind()),
			logger.Error(fetchErr),
		)
		raws = nil
	}

	snap, rep := pipeline.Prepare(raws)
	metrics.RecordNormalizedFields(rep.Coerced, rep.Defaulted)

	err := s.store.Replace(ctx, repository.Record{
		ID:         r.ID,
		Generation: r.Generation,
		Source:     s.source.Kind(),
		Snapshot:   snap,
		Report:     rep,
		Err:        fetchErr,
	})
	if errors.Is(err, repository.ErrStaleGeneration) {
		s.logger.Info(ctx, "discarding stale snapshot",
			logger.String("load_id", r.ID),
			logger.Uint64("generation", r.Generation),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}

	s.logger.Info(ctx, "snapshot published",
		logger.String("load_id", r.ID),
		logger.Uint64("generation", r.Generation),
		logger.String("date", snap.Date),
		logger.Int("entries", len(snap.Entries)),
		logger.Int("coerced", rep.Coerced),
		logger.Int("defaulted", rep.Defaulted),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// Loading reports whether a load is queued or running, or none has
// completed yet.
func (s *Service) Loading(ctx context.Context) bool {
	return s.pending.Load() > 0 || s.store.Generation(ctx) == 0
}

// current returns the served snapshot, empty before the first load.
func (s *Service) current(ctx context.Context) (repository.Record, bool) {
	rec, err := s.store.Current(ctx)
	if err != nil {
		return repository.Record{}, false
	}
	return rec, true
}

// View renders the served snapshot for sel.
func (s *Service) View(ctx context.Context, sel pipeline.Selection) types.View {
	start := time.Now()
	rec, _ := s.current(ctx)

	view := s.renderer.Render(rec.Snapshot, sel)
	view.Loading = s.Loading(ctx)

	kind := "default"
	if sel.TabSelected() {
		kind = "tab"
	}
	metrics.RecordViewRender(kind, len(view.Rows), float64(time.Since(start).Microseconds())/1000)
	return view
}

// Tabs lists the tabs present in the served snapshot.
func (s *Service) Tabs(ctx context.Context) []types.Tab {
	rec, _ := s.current(ctx)
	return s.renderer.Index().Tabs(rec.Snapshot.Entries)
}

// SubGroups lists the jobs of tab present in the served snapshot.
func (s *Service) SubGroups(ctx context.Context, tab int) []string {
	rec, _ := s.current(ctx)
	return s.renderer.Index().ListSubGroups(rec.Snapshot.Entries, tab)
}

// Health returns the service health. Status is "degraded" when the last
// load failed to fetch.
func (s *Service) Health(ctx context.Context) types.Health {
	h := types.Health{Status: "ok", Loading: s.Loading(ctx)}
	rec, ok := s.current(ctx)
	if !ok {
		return h
	}
	h.Generation = rec.Generation
	h.SnapshotDate = rec.Snapshot.Date
	h.Entries = len(rec.Snapshot.Entries)
	h.LoadedAt = rec.LoadedAt
	if rec.Err != nil {
		h.Status = "degraded"
		h.LastError = rec.Err.Error()
	}
	return h
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"loaderWorkers": s.loaderWorkers,
		"queueSize":     s.queueSize,
		"viewLimit":     s.viewLimit,
		"generation":    s.store.Generation(ctx),
		"pendingLoads":  s.pending.Load(),
	}

	if rec, ok := s.current(ctx); ok {
		stats["snapshotDate"] = rec.Snapshot.Date
		stats["entries"] = len(rec.Snapshot.Entries)
		stats["newlyListed"] = rec.Snapshot.NewlyListed()
		stats["coercedFields"] = rec.Report.Coerced
		stats["defaultedFields"] = rec.Report.Defaulted
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		processed, failed := s.pool.Stats()
		stats["queueLength"] = queueLen
		stats["loadsProcessed"] = processed
		stats["loadsFailed"] = failed

		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}
