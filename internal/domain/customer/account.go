package customer

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Account is a local storefront account. It carries at most one link to an
// ERP customer record; once the link has been verified against the ERP it
// is treated as authoritative.
type Account struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// ERPCustomerID is the GUID of the linked ERP customer, nil while the
	// account has never been resolved (or after a zombie link was cleared).
	ERPCustomerID *uuid.UUID `gorm:"type:uuid;uniqueIndex"`

	Name        string `gorm:"type:varchar(120);not null"`
	Email       string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Street      string `gorm:"type:varchar(200)"`
	HouseNumber string `gorm:"type:varchar(20)"`
	PostalCode  string `gorm:"type:varchar(20)"`
	City        string `gorm:"type:varchar(120)"`
	CountryCode string `gorm:"type:varchar(2)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a local account
func NewAccount(name, email string) (*Account, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name is required")
	}
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Account email is required")
	}
	return &Account{
		ID:          uuid.New(),
		Name:        name,
		Email:       email,
		CountryCode: "DE",
	}, nil
}

// Linked reports whether the account carries an ERP customer link
func (a *Account) Linked() bool {
	return a.ERPCustomerID != nil
}

// Bind records the ERP customer GUID on the account
func (a *Account) Bind(erpID uuid.UUID) {
	a.ERPCustomerID = &erpID
	a.UpdatedAt = time.Now()
}

// ClearLink drops a link that no longer resolves in the ERP
func (a *Account) ClearLink() {
	a.ERPCustomerID = nil
	a.UpdatedAt = time.Now()
}
