package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Source fetches products from upstream. *Client satisfies it.
type Source interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
	FetchProduct(ctx context.Context, id int) (*domain.Product, error)
}

// Cache stores a previously fetched product list. A miss is reported as an
// apperrors.ErrNotFound error.
type Cache interface {
	Products(ctx context.Context) ([]domain.Product, error)
	StoreProducts(ctx context.Context, products []domain.Product) error
	Invalidate(ctx context.Context) error
}

// ErrEmpty is returned by Ready while no products have been loaded, and by
// Load and Refresh when the upstream list holds no products.
var ErrEmpty = errors.New("catalog is empty")

// Catalog is the read-only product collection served to clients. It starts
// empty and is populated by Load. A failed load never clears products that
// are already held.
type Catalog struct {
	source Source
	cache  Cache
	logger *slog.Logger

	mu       sync.RWMutex
	products []domain.Product
	index    map[int]int
	loadedAt time.Time
}

// New creates an empty catalog. cache may be nil.
func New(source Source, cache Cache, logger *slog.Logger) *Catalog {
	return &Catalog{
		source: source,
		cache:  cache,
		logger: logger,
		index:  make(map[int]int),
	}
}

// Load populates the catalog, preferring the cache over the upstream source.
// Cache failures are logged and fall through to the source. A cached list
// that is empty or malformed is dropped from the cache and treated as a miss.
// On error the catalog keeps its previous contents.
func (c *Catalog) Load(ctx context.Context) error {
	if c.cache != nil {
		products, err := c.cache.Products(ctx)
		if err == nil {
			if err = checkCached(products); err != nil {
				c.dropCached(ctx, err)
			}
		}
		switch {
		case err == nil:
			loadsTotal.WithLabelValues("cache", "success").Inc()
			c.replace(products)
			c.logger.InfoContext(ctx, "catalog loaded from cache",
				slog.Int("products", len(products)),
			)
			return nil
		case errors.Is(err, errInvalidCache):
			loadsTotal.WithLabelValues("cache", "invalid").Inc()
		case errors.Is(err, apperrors.ErrNotFound):
			loadsTotal.WithLabelValues("cache", "miss").Inc()
		default:
			loadsTotal.WithLabelValues("cache", "error").Inc()
			c.logger.WarnContext(ctx, "catalog cache read failed",
				slog.String("error", err.Error()),
			)
		}
	}

	return c.fetch(ctx)
}

// Refresh reloads the catalog from the upstream source, bypassing and then
// repopulating the cache.
func (c *Catalog) Refresh(ctx context.Context) error {
	return c.fetch(ctx)
}

func (c *Catalog) fetch(ctx context.Context) error {
	products, err := c.source.FetchProducts(ctx)
	if err != nil {
		loadsTotal.WithLabelValues("upstream", "error").Inc()
		return fmt.Errorf("fetch catalog: %w", err)
	}
	if len(products) == 0 {
		loadsTotal.WithLabelValues("upstream", "empty").Inc()
		return fmt.Errorf("fetch catalog: %w", ErrEmpty)
	}
	loadsTotal.WithLabelValues("upstream", "success").Inc()
	c.replace(products)

	c.logger.InfoContext(ctx, "catalog loaded from upstream",
		slog.Int("products", len(products)),
	)

	if c.cache != nil {
		if err := c.cache.StoreProducts(ctx, products); err != nil {
			c.logger.WarnContext(ctx, "catalog cache write failed",
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

var errInvalidCache = errors.New("invalid cached catalog")

func checkCached(products []domain.Product) error {
	if len(products) == 0 {
		return fmt.Errorf("%w: no products", errInvalidCache)
	}
	if err := validateProducts(products); err != nil {
		return fmt.Errorf("%w: %v", errInvalidCache, err)
	}
	return nil
}

func (c *Catalog) dropCached(ctx context.Context, reason error) {
	c.logger.WarnContext(ctx, "discarding cached catalog",
		slog.String("reason", reason.Error()),
	)
	if err := c.cache.Invalidate(ctx); err != nil {
		c.logger.WarnContext(ctx, "catalog cache invalidate failed",
			slog.String("error", err.Error()),
		)
	}
}

func (c *Catalog) replace(products []domain.Product) {
	index := make(map[int]int, len(products))
	for i, p := range products {
		index[p.ID] = i
	}

	c.mu.Lock()
	c.products = products
	c.index = index
	c.loadedAt = time.Now()
	c.mu.Unlock()

	productsGauge.Set(float64(len(products)))
}

// List returns the products in upstream order. The slice is a copy.
func (c *Catalog) List() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Get returns the product with the given id.
func (c *Catalog) Get(id int) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// Find returns the product with the given id, asking the upstream source
// when the loaded catalog does not hold it. An id the upstream does not know
// yields an apperrors.ErrNotFound error; any other upstream failure is
// reported as apperrors.ErrUnavailable.
func (c *Catalog) Find(ctx context.Context, id int) (domain.Product, error) {
	if p, ok := c.Get(id); ok {
		return p, nil
	}

	p, err := c.source.FetchProduct(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Product{}, err
		}
		c.logger.WarnContext(ctx, "catalog product lookup failed",
			slog.Int("product_id", id),
			slog.String("error", err.Error()),
		)
		return domain.Product{}, apperrors.Unavailable("catalog", "product lookup failed")
	}
	return *p, nil
}

// Len returns the number of products held.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// LoadedAt returns when the catalog was last populated, or the zero time.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// Ready is a health check that fails while the catalog is empty.
func (c *Catalog) Ready(_ context.Context) error {
	if c.Len() == 0 {
		return ErrEmpty
	}
	return nil
}
