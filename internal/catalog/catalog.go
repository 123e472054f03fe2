package catalog

import (
	"context"
	"errors"
	"time"

	"resto-service/internal/models"
	"resto-service/internal/store"
	"resto-service/internal/util"

	"go.uber.org/zap"
)

// Service is the catalog read/write path. Reads go through a short-lived
// snapshot cache and degrade gracefully; writes always invalidate the cache
// first and propagate failures.
type Service struct {
	repo         store.Repository
	cache        Cache
	uploads      *Uploads
	live         bool
	cacheTTL     time.Duration
	fetchTimeout time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// Options carries construction-time tuning for the catalog service.
type Options struct {
	Live         bool
	CacheTTL     time.Duration
	FetchTimeout time.Duration
	Uploads      *Uploads
}

// New creates a catalog service. Mode is fixed here, never re-checked per
// call.
func New(repo store.Repository, cache Cache, opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 5 * time.Second
	}
	return &Service{
		repo:         repo,
		cache:        cache,
		uploads:      opts.Uploads,
		live:         opts.Live,
		cacheTTL:     opts.CacheTTL,
		fetchTimeout: opts.FetchTimeout,
		logger:       util.GetLogger(),
		now:          time.Now,
	}
}

// Products returns the active catalog for public browsing.
//
// Live mode: a fresh cache entry is served without touching the backend. On
// a miss the read is bounded by the fetch timeout; success refreshes the
// cache, failure falls back to the last cached value even if stale, and to
// an empty list only when nothing was ever cached. Mock mode serves the
// fixture store directly.
func (s *Service) Products(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "Catalog.Products")
	defer span.End()

	if !s.live {
		return s.repo.ListActiveProducts(ctx)
	}

	cached, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Warn("Catalog cache read failed", zap.Error(err))
		cached = nil
	}
	if cached.Fresh(s.cacheTTL, s.now()) {
		util.CatalogCacheHits.Inc()
		return cached.Products, nil
	}
	util.CatalogCacheMisses.Inc()

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	products, err := s.repo.ListActiveProducts(fetchCtx)
	if err != nil {
		s.logFetchFailure(err)
		if cached != nil {
			util.CatalogStaleServes.Inc()
			return cached.Products, nil
		}
		return []models.Product{}, nil
	}

	if err := s.cache.Set(ctx, Entry{Products: products, CachedAt: s.now()}); err != nil {
		s.logger.Warn("Catalog cache write failed", zap.Error(err))
	}
	return products, nil
}

// logFetchFailure keeps the schema-missing case distinct from ordinary
// network trouble.
func (s *Service) logFetchFailure(err error) {
	if errors.Is(err, store.ErrSchemaMissing) {
		s.logger.Warn("Products table missing in backend, serving degraded catalog", zap.Error(err))
		return
	}
	s.logger.Error("Catalog fetch failed", zap.Error(err))
}

// AllProducts returns the full catalog for staff management, bypassing the
// public cache.
func (s *Service) AllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListProducts(ctx)
}

// CreateProduct invalidates the cache and inserts. Live write failures are
// surfaced, never masked as success.
func (s *Service) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "Catalog.CreateProduct")
	defer span.End()

	s.InvalidateCache(ctx)
	return s.repo.CreateProduct(ctx, p)
}

// UpdateProduct invalidates the cache and applies a partial edit.
func (s *Service) UpdateProduct(ctx context.Context, id string, upd store.ProductUpdate) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "Catalog.UpdateProduct")
	defer span.End()

	s.InvalidateCache(ctx)
	return s.repo.UpdateProduct(ctx, id, upd)
}

// DeleteProduct invalidates the cache and deletes.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "Catalog.DeleteProduct")
	defer span.End()

	s.InvalidateCache(ctx)
	return s.repo.DeleteProduct(ctx, id)
}

// UploadImage stores a product image and returns its public URL. Live mode
// only; any storage problem is reported as ErrUploadFailed so the caller can
// show a corrective message instead of crashing.
func (s *Service) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	_, span := util.StartSpan(ctx, "Catalog.UploadImage")
	defer span.End()

	if !s.live || s.uploads == nil {
		util.UploadsFailed.Inc()
		return "", ErrUploadFailed
	}
	url, err := s.uploads.Store(filename, data)
	if err != nil {
		util.UploadsFailed.Inc()
		s.logger.Error("Image upload failed", zap.Error(err))
		return "", ErrUploadFailed
	}
	return url, nil
}

// InvalidateCache removes the catalog snapshot. Called on every product
// write and on staff sign-out so stale catalog data never survives a logout.
func (s *Service) InvalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}
