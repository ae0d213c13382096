package ports

import (
	"context"
	"time"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/order"
)

// ClaimedItem is one order item atomically claimed for extraction,
// together with the order context the provider needs.
type ClaimedItem struct {
	OrderID    kernel.UUID
	ItemID     kernel.UUID
	ProductID  kernel.UUID
	DataFormat string

	// PolygonWKT is the order perimeter the extract must cover.
	PolygonWKT string
	SRID       int
}

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The order must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByItemID retrieves the order aggregate owning the given item.
	GetByItemID(ctx context.Context, itemID kernel.UUID) (*order.Order, error)

	// GetByValidationToken retrieves the order aggregate holding an item
	// with the given validation token.
	GetByValidationToken(ctx context.Context, token kernel.UUID) (*order.Order, error)

	// GetByDownloadToken retrieves the order aggregate by its public
	// download token.
	GetByDownloadToken(ctx context.Context, token kernel.UUID) (*order.Order, error)

	// Delete removes a draft order and its items from storage.
	Delete(ctx context.Context, id kernel.UUID) error

	// ClaimPendingItemsForProvider atomically claims every pending item of
	// the given provider's products across orders open for extraction and
	// returns them ordered by order. Claimed items move to the in-extract
	// status in the same statement, so two providers polling concurrently
	// never receive the same item.
	ClaimPendingItemsForProvider(ctx context.Context, providerID kernel.UUID) ([]ClaimedItem, error)

	// GetAllProcessedWithoutResult retrieves processed orders whose result
	// archive is missing, for the archive rebuild job.
	GetAllProcessedWithoutResult(ctx context.Context) ([]*order.Order, error)

	// GetAllProcessedBefore retrieves processed orders whose processing
	// time is older than the given cutoff, for the archiving job.
	GetAllProcessedBefore(ctx context.Context, cutoff time.Time) ([]*order.Order, error)
}
