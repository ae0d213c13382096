package ports

import (
	"context"

	"geoshop/internal/core/domain/model/kernel"
)

// OrderConfirmedEvent announces a confirmed order to the back office,
// including whether it parked in the quote flow.
type OrderConfirmedEvent struct {
	OrderID      kernel.UUID
	ClientID     kernel.UUID
	Status       string
	NeedsQuote   bool
	InvalidGeom  bool
	ManualItems  int
	TotalWithVAT string
}

// ItemValidationRequestedEvent carries the approval token for an item that
// needs a one-time manual validation.
type ItemValidationRequestedEvent struct {
	OrderID   kernel.UUID
	ItemID    kernel.UUID
	ProductID kernel.UUID
	Token     kernel.UUID
}

// OrderGeometryInvalidEvent alerts the back office that a saved order
// carries a topologically flawed polygon. The order is kept; an operator
// follows up with the client.
type OrderGeometryInvalidEvent struct {
	OrderID  kernel.UUID
	ClientID kernel.UUID
}

// OrderProcessedEvent announces that every item of an order reached a
// terminal state and the result is ready for download.
type OrderProcessedEvent struct {
	OrderID       kernel.UUID
	ClientID      kernel.UUID
	DownloadToken kernel.UUID
}

// Notifier publishes order lifecycle events to the back office. Delivery
// failures must not fail the triggering operation; callers log and move on.
type Notifier interface {
	NotifyOrderConfirmed(ctx context.Context, event OrderConfirmedEvent) error
	NotifyOrderGeometryInvalid(ctx context.Context, event OrderGeometryInvalidEvent) error
	NotifyItemValidationRequested(ctx context.Context, event ItemValidationRequestedEvent) error
	NotifyOrderProcessed(ctx context.Context, event OrderProcessedEvent) error
}
