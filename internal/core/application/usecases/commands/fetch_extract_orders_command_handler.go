package commands

import (
	"context"

	"geoshop/internal/core/ports"
)

// FetchExtractOrdersCommandHandler claims every pending item of the
// provider's products across orders open for extraction and returns them.
// The claim happens atomically in the repository, so an item is handed to
// exactly one poll even under concurrent providers.
type FetchExtractOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewFetchExtractOrdersCommandHandler creates a handler for extract polling.
func NewFetchExtractOrdersCommandHandler(uowFactory OrderUoWFactory) FetchExtractOrdersCommandHandler {
	return FetchExtractOrdersCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle claims and returns the provider's pending items, ordered by order.
// An empty result means there is nothing to extract right now.
func (h *FetchExtractOrdersCommandHandler) Handle(
	ctx context.Context,
	cmd FetchExtractOrdersCommand,
) ([]ports.ClaimedItem, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	claimed, err := uow.OrderRepository().ClaimPendingItemsForProvider(ctx, cmd.ProviderID())
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return claimed, nil
}
