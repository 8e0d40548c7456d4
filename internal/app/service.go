// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/valuator/internal/adapters/cache"
	"github.com/okian/valuator/internal/adapters/repository"
	"github.com/okian/valuator/internal/adapters/worker"
	"github.com/okian/valuator/internal/domain/model"
	"github.com/okian/valuator/internal/domain/types"
	"github.com/okian/valuator/internal/domain/valuation"
	"github.com/okian/valuator/pkg/logger"
	"github.com/okian/valuator/pkg/metrics"
)

// maxBatchCatalogs caps the catalogs valued by one EstimateCatalogs call.
const maxBatchCatalogs = 100

// Valuation sources, used as metric labels.
const (
	sourceInline  = "inline"
	sourceCatalog = "catalog"
)

// computed is a cached trace and the moment it was evaluated.
type computed struct {
	trace valuation.Trace
	at    time.Time
}

// Service values catalogs and manages the catalog store.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	results cache.Cache[computed]
	batch   *worker.Pool

	// Configuration
	workers         int
	cacheSize       int
	defaultAdminFee float64
	maxTracks       int
	now             func() time.Time

	// State
	started    bool
	valuations atomic.Int64
	cacheHits  atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the catalog store. Defaults to an empty MemoryStore.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCacheSize bounds the result cache. 0 disables eviction.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.cacheSize = size
		}
	}
}

// WithClock sets the source of "now" used for age and span calculations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDefaultAdminFee sets the fee applied when a request omits one.
func WithDefaultAdminFee(fee float64) Option {
	return func(s *Service) {
		if fee >= 0 && fee <= 100 {
			s.defaultAdminFee = fee
		}
	}
}

// WithMaxTracks caps the tracks accepted per valuation or import. 0 lifts the cap.
func WithMaxTracks(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxTracks = n
		}
	}
}

// WithWorkers sets how many catalogs a batch values at once. 0 sizes the
// pool from the CPU count.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.workers = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cacheSize: 10_000,
		maxTracks: 50_000,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.results = cache.New[computed](cache.WithMaxSize(s.cacheSize))
	s.batch = worker.NewPool(s,
		worker.WithSize(s.workers),
		worker.WithLogger(s.logger.Named("worker-pool")),
	)
	return s
}

// Start marks the service ready and logs its configuration.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.started = true
	catalogs := s.store.Count(ctx)
	metrics.UpdateCatalogsTotal(catalogs)

	s.logger.Info(ctx, "valuation service started",
		logger.Int("catalogs", catalogs),
		logger.Int("cacheSize", s.cacheSize),
		logger.Int("maxTracks", s.maxTracks),
		logger.Int("workers", s.batch.Size()),
		logger.Float64("defaultAdminFee", s.defaultAdminFee),
	)
	return nil
}

// Stop releases the store when it holds resources.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Error(context.Background(), "failed to close catalog store", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "valuation service stopped")
}

// Estimate values a catalog described entirely by the request.
func (s *Service) Estimate(ctx context.Context, req types.ValuationRequest) (types.Report, error) {
	if err := s.validate(req.Genres, len(req.Tracks), req.AdminFee); err != nil {
		metrics.RecordValuation(sourceInline, "error")
		return types.Report{}, err
	}

	tracks := make([]model.Track, 0, len(req.Tracks))
	for _, t := range req.Tracks {
		// Inline tracks without a status are taken as released.
		if t.Status == "" || t.Released() {
			tracks = append(tracks, t)
		}
	}

	in := s.input(req, tracks)
	if req.TotalStreams != nil {
		in.TotalStreams = float64(*req.TotalStreams)
	}
	if req.TopFiveStreams != nil {
		in.TopFiveStreams = float64(*req.TopFiveStreams)
	}
	return s.run(ctx, sourceInline, "", in), nil
}

// EstimateCatalog values a stored catalog. Tracks come from the store, and
// so do stream counts the request leaves out.
func (s *Service) EstimateCatalog(ctx context.Context, catalogID string, req types.ValuationRequest) (types.Report, error) {
	if err := s.validate(req.Genres, 0, req.AdminFee); err != nil {
		metrics.RecordValuation(sourceCatalog, "error")
		return types.Report{}, err
	}

	tracks, err := s.store.ReleasedTracks(ctx, catalogID)
	if err != nil {
		metrics.RecordValuation(sourceCatalog, "error")
		return types.Report{}, s.storeError(ctx, "load tracks", catalogID, err)
	}
	if s.maxTracks > 0 && len(tracks) > s.maxTracks {
		metrics.RecordValuation(sourceCatalog, "error")
		return types.Report{}, fmt.Errorf("%w: catalog %q has %d released tracks, at most %d allowed",
			types.ErrInvalidRequest, catalogID, len(tracks), s.maxTracks)
	}

	in := s.input(req, tracks)
	if req.TotalStreams == nil || req.TopFiveStreams == nil {
		stats, err := s.store.StreamStats(ctx, catalogID)
		if err != nil {
			metrics.RecordValuation(sourceCatalog, "error")
			return types.Report{}, s.storeError(ctx, "load stream stats", catalogID, err)
		}
		in.TotalStreams = float64(stats.Total)
		in.TopFiveStreams = float64(stats.TopFive)
	}
	if req.TotalStreams != nil {
		in.TotalStreams = float64(*req.TotalStreams)
	}
	if req.TopFiveStreams != nil {
		in.TopFiveStreams = float64(*req.TopFiveStreams)
	}
	return s.run(ctx, sourceCatalog, catalogID, in), nil
}

// EstimateCatalogs values several stored catalogs with the same request on
// the worker pool. Results follow the order of catalogIDs; a catalog that
// fails carries its own error and does not fail the batch.
func (s *Service) EstimateCatalogs(ctx context.Context, catalogIDs []string, req types.ValuationRequest) ([]worker.Result, error) {
	switch {
	case len(catalogIDs) == 0:
		return nil, fmt.Errorf("%w: catalog_ids must not be empty", types.ErrInvalidRequest)
	case len(catalogIDs) > maxBatchCatalogs:
		return nil, fmt.Errorf("%w: %d catalogs, at most %d allowed", types.ErrInvalidRequest, len(catalogIDs), maxBatchCatalogs)
	}
	seen := make(map[string]struct{}, len(catalogIDs))
	for _, id := range catalogIDs {
		if id == "" {
			return nil, fmt.Errorf("%w: empty catalog id", types.ErrInvalidRequest)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: catalog %q listed twice", types.ErrInvalidRequest, id)
		}
		seen[id] = struct{}{}
	}
	if err := s.validate(req.Genres, 0, req.AdminFee); err != nil {
		return nil, err
	}
	return s.batch.Run(ctx, catalogIDs, req), nil
}

// Holders lists the rights holders of a stored catalog.
func (s *Service) Holders(ctx context.Context, catalogID string) ([]model.Holder, error) {
	holders, err := s.store.Holders(ctx, catalogID)
	if err != nil {
		return nil, s.storeError(ctx, "load holders", catalogID, err)
	}
	return holders, nil
}

// ImportTracks inserts or replaces tracks of a catalog.
func (s *Service) ImportTracks(ctx context.Context, catalogID string, tracks []model.Track) error {
	if s.maxTracks > 0 && len(tracks) > s.maxTracks {
		return fmt.Errorf("%w: %d tracks, at most %d allowed", types.ErrInvalidRequest, len(tracks), s.maxTracks)
	}
	err := s.store.PutTracks(ctx, catalogID, tracks)
	switch {
	case errors.Is(err, repository.ErrInvalidCatalog), errors.Is(err, repository.ErrInvalidTrack):
		return fmt.Errorf("%w: %w", types.ErrInvalidRequest, err)
	case err != nil:
		return s.storeError(ctx, "import tracks", catalogID, err)
	}

	s.logger.Info(ctx, "imported catalog tracks",
		logger.String("catalog_id", catalogID),
		logger.Int("tracks", len(tracks)),
	)
	return nil
}

// Genres returns the genre catalog.
func (s *Service) Genres() []valuation.Genre {
	return valuation.Genres()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	catalogs := s.store.Count(ctx)
	cached := s.results.Len()

	metrics.UpdateCatalogsTotal(catalogs)
	metrics.UpdateCacheSize(int(cached))

	return map[string]interface{}{
		"started":         s.started,
		"catalogs":        catalogs,
		"valuations":      s.valuations.Load(),
		"cacheHits":       s.cacheHits.Load(),
		"cachedResults":   cached,
		"cacheSize":       s.cacheSize,
		"maxTracks":       s.maxTracks,
		"workers":         s.batch.Size(),
		"defaultAdminFee": s.defaultAdminFee,
	}
}

func (s *Service) validate(genres []string, tracks int, adminFee *float64) error {
	if err := valuation.ValidateGenres(genres); err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidRequest, err)
	}
	if s.maxTracks > 0 && tracks > s.maxTracks {
		return fmt.Errorf("%w: %d tracks, at most %d allowed", types.ErrInvalidRequest, tracks, s.maxTracks)
	}
	if adminFee != nil && (*adminFee < 0 || *adminFee > 100) {
		return fmt.Errorf("%w: admin_fee must be within [0,100], got %v", types.ErrInvalidRequest, *adminFee)
	}
	return nil
}

func (s *Service) input(req types.ValuationRequest, tracks []model.Track) valuation.Input {
	fee := s.defaultAdminFee
	if req.AdminFee != nil {
		fee = *req.AdminFee
	}
	return valuation.Input{
		Genres:           req.Genres,
		Tracks:           tracks,
		OwnerIDs:         req.OwnerIDs,
		ManualOwnership:  req.ManualOwnership,
		Earnings:         req.Earnings,
		AdminFee:         fee,
		ManualMultiplier: req.ManualMultiplier,
	}
}

// run evaluates the pipeline, reusing a cached trace computed for the same
// input on the same day.
func (s *Service) run(ctx context.Context, source, catalogID string, in valuation.Input) types.Report {
	now := s.now()
	s.valuations.Add(1)

	key, err := cache.Fingerprint(source, catalogID, in, now.UTC().Format(time.DateOnly))
	if err != nil {
		s.logger.Warn(ctx, "valuation cache disabled for request", logger.Error(err))
	}
	if err == nil {
		if hit, ok := s.results.Get(ctx, key); ok {
			s.cacheHits.Add(1)
			metrics.RecordValuation(source, "cached")
			return s.report(hit.trace, catalogID, hit.at, len(in.Tracks), true)
		}
	}

	start := time.Now()
	tr := valuation.Estimate(in, now)
	metrics.RecordEstimateLatency(metrics.Milliseconds(time.Since(start)))

	if err == nil {
		s.results.Put(ctx, key, computed{trace: tr, at: now})
	}

	for _, id := range tr.MalformedTracks {
		s.logger.Warn(ctx, "skipping malformed publisher splits",
			logger.String("catalog_id", catalogID),
			logger.String("track_id", id),
		)
	}
	if len(tr.UnknownGenres) > 0 {
		s.logger.Debug(ctx, "unknown genres contribute nothing",
			logger.Strings("genres", tr.UnknownGenres),
		)
	}
	metrics.RecordMalformedSplits(len(tr.MalformedTracks))
	metrics.RecordUnknownGenres(len(tr.UnknownGenres))
	metrics.RecordTracksValued(len(in.Tracks))
	metrics.RecordValuation(source, "computed")

	return s.report(tr, catalogID, now, len(in.Tracks), false)
}

// report wraps a trace; computedAt is when the trace was evaluated, which
// predates serving for cache hits.
func (s *Service) report(tr valuation.Trace, catalogID string, computedAt time.Time, tracks int, cached bool) types.Report {
	r := types.ReportOf(tr)
	r.ID = uuid.NewString()
	r.CatalogID = catalogID
	r.ComputedAt = computedAt.UTC()
	r.Cached = cached
	r.Tracks = tracks
	return r
}

func (s *Service) storeError(ctx context.Context, op, catalogID string, err error) error {
	if !errors.Is(err, repository.ErrCatalogNotFound) {
		s.logger.Error(ctx, "catalog store failure",
			logger.String("op", op),
			logger.String("catalog_id", catalogID),
			logger.Error(err),
		)
	}
	return fmt.Errorf("%s: %w", op, err)
}
