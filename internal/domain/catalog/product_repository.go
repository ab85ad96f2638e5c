package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductFilter narrows a product listing.
// Search is taken from the embedded Filter and matched as a
// case-insensitive substring of the product name.
type ProductFilter struct {
	shared.Filter
	Category string           // exact match
	MinPrice *decimal.Decimal // inclusive
	MaxPrice *decimal.Decimal // inclusive
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll finds one page of products matching the filter
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)

	// Count counts products matching the filter, ignoring pagination
	Count(ctx context.Context, filter ProductFilter) (int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// SaveBatch creates or updates multiple products
	SaveBatch(ctx context.Context, products []*Product) error

	// DecrementStock subtracts quantity from the stored stock in a single
	// statement. Returns false if the product does not exist.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)

	// DeleteAll removes every product
	DeleteAll(ctx context.Context) error
}
