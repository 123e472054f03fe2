package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"resto-service/internal/models"
	"resto-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepo wraps the fixture store, counting backend reads and failing
// them on demand.
type countingRepo struct {
	*store.Memory
	mu    sync.Mutex
	reads int
	fail  error
}

func (r *countingRepo) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	r.mu.Lock()
	r.reads++
	fail := r.fail
	r.mu.Unlock()

	if fail != nil {
		return nil, fail
	}
	return r.Memory.ListActiveProducts(ctx)
}

func (r *countingRepo) readCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

func (r *countingRepo) setFail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

func newLiveCatalog(t *testing.T) (*Service, *countingRepo) {
	t.Helper()
	repo := &countingRepo{Memory: store.NewMemoryWithFixtures()}
	svc := New(repo, NewMemoryCache(), Options{Live: true})
	return svc, repo
}

func TestProductsServedFromCacheWithinTTL(t *testing.T) {
	svc, repo := newLiveCatalog(t)
	ctx := context.Background()

	first, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 4)
	assert.Equal(t, 1, repo.readCount())

	second, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, second, 4)
	assert.Equal(t, 1, repo.readCount(), "second read within TTL should not touch the backend")
}

func TestProductsRefetchedAfterTTL(t *testing.T) {
	repo := &countingRepo{Memory: store.NewMemoryWithFixtures()}
	svc := New(repo, NewMemoryCache(), Options{Live: true, CacheTTL: time.Minute})

	base := time.Now()
	svc.now = func() time.Time { return base }

	ctx := context.Background()
	_, err := svc.Products(ctx)
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = svc.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.readCount())
}

func TestProductWriteInvalidatesCache(t *testing.T) {
	svc, repo := newLiveCatalog(t)
	ctx := context.Background()

	_, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.readCount())

	_, err = svc.CreateProduct(ctx, &models.Product{Name: "Lemonade", Price: 3.50, Category: "Drinks", Active: true})
	require.NoError(t, err)

	products, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.readCount(), "write should force the next read back to the backend")
	assert.Len(t, products, 5)
}

func TestProductsStaleFallbackOnBackendFailure(t *testing.T) {
	svc, repo := newLiveCatalog(t)
	ctx := context.Background()

	warm, err := svc.Products(ctx)
	require.NoError(t, err)
	require.Len(t, warm, 4)

	// Expire the snapshot and break the backend.
	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	repo.setFail(store.ErrTransient)

	stale, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, stale, 4, "stale cached products beat an error page")
}

func TestProductsEmptyWhenColdAndFailing(t *testing.T) {
	svc, repo := newLiveCatalog(t)
	repo.setFail(store.ErrSchemaMissing)

	products, err := svc.Products(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestInvalidateCacheForcesReload(t *testing.T) {
	svc, repo := newLiveCatalog(t)
	ctx := context.Background()

	_, err := svc.Products(ctx)
	require.NoError(t, err)

	svc.InvalidateCache(ctx)

	_, err = svc.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.readCount())
}

func TestMockModeBypassesCache(t *testing.T) {
	repo := &countingRepo{Memory: store.NewMemoryWithFixtures()}
	svc := New(repo, NewMemoryCache(), Options{Live: false})
	ctx := context.Background()

	_, err := svc.Products(ctx)
	require.NoError(t, err)
	_, err = svc.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.readCount())
}

func TestUploadImageRequiresLiveStorage(t *testing.T) {
	svc, _ := newLiveCatalog(t) // live but no uploads configured

	_, err := svc.UploadImage(context.Background(), "burger.png", []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrUploadFailed)

	mockSvc := New(store.NewMemoryWithFixtures(), NewMemoryCache(), Options{Live: false})
	_, err = mockSvc.UploadImage(context.Background(), "burger.png", []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestUploadsStoreWritesFile(t *testing.T) {
	uploads, err := NewUploads(t.TempDir(), "/media")
	require.NoError(t, err)

	url, err := uploads.Store("Menu Photo.PNG", []byte("fake-image"))
	require.NoError(t, err)
	assert.Contains(t, url, "/media/")
	assert.Contains(t, url, ".png")
}
