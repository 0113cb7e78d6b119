package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for the order mirror
type Repository interface {
	// Save persists a mirrored order with its items
	Save(ctx context.Context, order *Order) error

	// FindByAccount returns the mirrored orders of an account, newest first
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]Order, error)
}
