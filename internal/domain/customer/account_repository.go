package customer

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	// FindByID finds an account by its local ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByEmail finds an account by its unique email
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *Account) error
}
