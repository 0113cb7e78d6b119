package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for mirror persistence
type ProductRepository interface {
	// FindByID finds a product by its ERP GUID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByCode finds a product by its human-readable code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindAll returns the complete mirror
	FindAll(ctx context.Context) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// ReplaceAll applies a full reconciliation batch atomically: upserts
	// every product in the batch and deletes every mirror row whose GUID
	// is not in keep. Either everything commits or nothing does.
	ReplaceAll(ctx context.Context, upserts []*Product, keep map[uuid.UUID]struct{}) (deleted int64, err error)
}
