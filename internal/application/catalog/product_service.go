package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// ProductListCacheKey is the cache key of the serialized product listing.
// The reconciler drops it after every committed pass.
const ProductListCacheKey = "catalog:products"

// ProductService serves catalog reads from the local mirror, with a short
// TTL cache in front of the listing. Staleness up to the TTL is acceptable
// for display; checkout never reads through this cache.
type ProductService struct {
	products catalog.ProductRepository
	store    cache.Store
	ttl      time.Duration
	logger   *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(products catalog.ProductRepository, store cache.Store, ttl time.Duration, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		products: products,
		store:    store,
		ttl:      ttl,
		logger:   logger,
	}
}

// List returns all mirrored products, served from cache within the TTL.
// A cache failure is logged and falls back to the mirror; it never fails
// the read.
func (s *ProductService) List(ctx context.Context) ([]ProductView, error) {
	if cached, found, err := s.store.Get(ctx, ProductListCacheKey); err != nil {
		s.logger.Warn("Catalog cache read failed", zap.Error(err))
	} else if found {
		var views []ProductView
		if err := json.Unmarshal(cached, &views); err == nil {
			return views, nil
		}
		s.logger.Warn("Dropping undecodable catalog cache entry")
		_ = s.store.Delete(ctx, ProductListCacheKey)
	}

	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, toProductView(&products[i]))
	}

	if encoded, err := json.Marshal(views); err == nil {
		if err := s.store.Set(ctx, ProductListCacheKey, encoded, s.ttl); err != nil {
			s.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}

	return views, nil
}

// Get returns one product by its ERP GUID, straight from the mirror
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := toProductView(product)
	return &view, nil
}

// GetByCode returns one product by its human-readable code
func (s *ProductService) GetByCode(ctx context.Context, code string) (*ProductView, error) {
	product, err := s.products.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	view := toProductView(product)
	return &view, nil
}
