package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
)

// Product is the local mirror of an ERP catalog record. The ERP is the
// system of record; mirror rows are created and updated only by the
// reconciler and read by the storefront, the stock checker, and the
// checkout pipeline.
type Product struct {
	// ID is the ERP-issued GUID and the primary key of the mirror.
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Code        string          `gorm:"type:varchar(100);uniqueIndex"` // human-readable ID, e.g. "GRVL1000"
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a mirror row for an ERP catalog record
func NewProduct(id uuid.UUID, code, name, description string, price decimal.Decimal) (*Product, error) {
	if id == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Product GUID is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name is required")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}

	return &Product{
		ID:          id,
		Code:        code,
		Name:        name,
		Description: description,
		Price:       price,
	}, nil
}

// Apply overwrites the mutable fields from a fresh ERP record and reports
// whether anything actually changed. A no-op apply lets the reconciler
// short-circuit the write.
func (p *Product) Apply(code, name, description string, price decimal.Decimal) bool {
	if p.Code == code && p.Name == name && p.Description == description && p.Price.Equal(price) {
		return false
	}
	p.Code = code
	p.Name = name
	p.Description = description
	p.Price = price
	p.UpdatedAt = time.Now()
	return true
}
