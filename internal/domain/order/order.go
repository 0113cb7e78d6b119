package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status of an order as seen by the storefront. The ERP owns the real
// lifecycle; this status only reflects what the bridge knows.
type Status string

const (
	StatusSubmitted Status = "submitted"
)

// Order is a read-only local mirror of an ERP order, kept purely so order
// history can be displayed when the ERP is unreachable. A mirror row must
// never exist for an order the ERP did not confirm.
type Order struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// ERPOrderID is the GUID returned by the ERP on a successful create.
	ERPOrderID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	AccountID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CurrencyCode string          `gorm:"type:varchar(3);not null"`
	Status       Status          `gorm:"type:varchar(50);not null"`
	Items        []Item          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// Item is one line of a mirrored order
type Item struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"` // ERP product GUID
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// NewMirror records a successfully created ERP order locally. Call only
// after the ERP reported success.
func NewMirror(erpOrderID, accountID uuid.UUID, total decimal.Decimal, currency string, items []Item) *Order {
	o := &Order{
		ID:           uuid.New(),
		ERPOrderID:   erpOrderID,
		AccountID:    accountID,
		TotalPrice:   total,
		CurrencyCode: currency,
		Status:       StatusSubmitted,
	}
	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = o.ID
	}
	o.Items = items
	return o
}
