package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/erp"
)

// ProductSource lists the full ERP product snapshot
type ProductSource interface {
	ListProducts(ctx context.Context) ([]erp.ProductRecord, error)
}

// Report summarizes one reconciliation pass
type Report struct {
	Fetched   int           `json:"fetched"`
	Created   int           `json:"created"`
	Updated   int           `json:"updated"`
	Unchanged int           `json:"unchanged"`
	Deleted   int           `json:"deleted"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
}

// Reconciler converges the local product mirror onto the ERP catalog. A pass
// fetches the full snapshot, upserts every valid record by GUID, and removes
// mirror rows the ERP no longer reports, all in one transaction. A snapshot
// fetch failure aborts the pass before any write.
type Reconciler struct {
	source   ProductSource
	products catalog.ProductRepository
	store    cache.Store
	logger   *zap.Logger

	// running serializes passes: at most one reconciliation at a time,
	// whether triggered by the scheduler or by the admin endpoint.
	running gosync.Mutex
}

// NewReconciler creates a new Reconciler
func NewReconciler(source ProductSource, products catalog.ProductRepository, store cache.Store, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		source:   source,
		products: products,
		store:    store,
		logger:   logger,
	}
}

// Reconcile runs one full pass. A second caller while a pass is running gets
// shared.ErrSyncInProgress instead of a queued duplicate pass.
func (r *Reconciler) Reconcile(ctx context.Context) (*Report, error) {
	if !r.running.TryLock() {
		return nil, shared.ErrSyncInProgress
	}
	defer r.running.Unlock()

	started := time.Now()

	records, err := r.source.ListProducts(ctx)
	if err != nil {
		r.logger.Warn("Catalog snapshot fetch failed, mirror left untouched", zap.Error(err))
		return nil, err
	}

	existing, err := r.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	mirror := make(map[uuid.UUID]*catalog.Product, len(existing))
	for i := range existing {
		mirror[existing[i].ID] = &existing[i]
	}

	report := &Report{Fetched: len(records)}
	keep := make(map[uuid.UUID]struct{}, len(records))
	var upserts []*catalog.Product

	for _, record := range records {
		product, err := r.toMirror(record)
		if err != nil {
			report.Skipped++
			r.logger.Warn("Skipping invalid catalog record",
				zap.String("record_id", record.ID),
				zap.Error(err),
			)
			continue
		}

		keep[product.ID] = struct{}{}

		if current, ok := mirror[product.ID]; ok {
			if current.Apply(product.Code, product.Name, product.Description, product.Price) {
				upserts = append(upserts, current)
				report.Updated++
			} else {
				report.Unchanged++
			}
			continue
		}

		upserts = append(upserts, product)
		report.Created++
	}

	deleted, err := r.products.ReplaceAll(ctx, upserts, keep)
	if err != nil {
		return nil, err
	}
	report.Deleted = int(deleted)
	report.Duration = time.Since(started)

	if err := r.store.Delete(ctx, appcatalog.ProductListCacheKey); err != nil {
		r.logger.Warn("Catalog cache invalidation failed", zap.Error(err))
	}

	r.logger.Info("Catalog reconciliation pass committed",
		zap.Int("fetched", report.Fetched),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("deleted", report.Deleted),
		zap.Int("skipped", report.Skipped),
		zap.Duration("duration", report.Duration),
	)

	return report, nil
}

// toMirror validates one snapshot record and converts it to a mirror row.
// Records without a parseable GUID, a name, or a usable price are not
// mirrored; the rest of the snapshot still applies.
func (r *Reconciler) toMirror(record erp.ProductRecord) (*catalog.Product, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Record carries no valid GUID")
	}

	price, err := cleanPrice(record.Price.String())
	if err != nil {
		return nil, err
	}

	return catalog.NewProduct(id, record.ProductID, record.Name, record.Description, price)
}
