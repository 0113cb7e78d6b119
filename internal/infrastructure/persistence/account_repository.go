package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormAccountRepository implements customer.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Account, error) {
	var account customer.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByEmail finds an account by its email address
func (r *GormAccountRepository) FindByEmail(ctx context.Context, email string) (*customer.Account, error) {
	var account customer.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Save creates or updates an account. Link changes must be persisted through
// here before the resolver returns, so a crash cannot leave a verified link
// unrecorded.
func (r *GormAccountRepository) Save(ctx context.Context, account *customer.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// Ensure GormAccountRepository implements customer.AccountRepository
var _ customer.AccountRepository = (*GormAccountRepository)(nil)
