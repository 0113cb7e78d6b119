package checkout

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/erp"
)

// StockSource reads a single live product record from the ERP
type StockSource interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*erp.ProductRecord, error)
}

// StockChecker answers "how many can be sold right now". Stock is never
// mirrored locally; every answer comes from a live ERP read, and any
// failure to get one counts as zero so the shop can only under-sell.
type StockChecker struct {
	source StockSource
	logger *zap.Logger
}

// NewStockChecker creates a new StockChecker
func NewStockChecker(source StockSource, logger *zap.Logger) *StockChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockChecker{source: source, logger: logger}
}

// StockOf returns the sellable quantity of a product, zero when unknown
func (c *StockChecker) StockOf(ctx context.Context, productID uuid.UUID) int {
	record, err := c.source.GetProduct(ctx, productID)
	if err != nil {
		c.logger.Warn("Live stock read failed, treating as out of stock",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
		return 0
	}
	if record.Stock == nil || *record.Stock < 0 {
		return 0
	}
	return *record.Stock
}
