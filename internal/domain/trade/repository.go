package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// Save inserts a new order
	Save(ctx context.Context, order *Order) error

	// UpdateStatus persists the order's current status and update timestamp.
	// Other columns, including TotalPrice, are never rewritten.
	UpdateStatus(ctx context.Context, order *Order) error

	// MarkFailed moves a pending or processing order to failed by id
	// without loading it. It returns shared.ErrNotFound when no such
	// non-terminal order exists.
	MarkFailed(ctx context.Context, id uuid.UUID, at time.Time) error

	// CountPendingBefore counts orders still pending that were created before the cutoff
	CountPendingBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteAll removes every order
	DeleteAll(ctx context.Context) error
}
