package commands

import (
	"context"

	"geoshop/internal/core/domain/model/order"
	"geoshop/internal/core/domain/services"
	"geoshop/internal/pkg/errs"
)

// DeleteOrderItemCommandHandler removes one item from an order the client
// may still trim (draft or pending). When every remaining price is settled
// the order totals are recomputed right away; otherwise the quote flow
// settles them later.
type DeleteOrderItemCommandHandler struct {
	uowFactory OrderUoWFactory
	pricing    services.PricingEngine
}

// NewDeleteOrderItemCommandHandler creates a handler for item removal.
func NewDeleteOrderItemCommandHandler(
	uowFactory OrderUoWFactory,
	pricing services.PricingEngine,
) DeleteOrderItemCommandHandler {
	return DeleteOrderItemCommandHandler{
		uowFactory: uowFactory,
		pricing:    pricing,
	}
}

// Handle processes the item removal command.
func (h *DeleteOrderItemCommandHandler) Handle(ctx context.Context, cmd DeleteOrderItemCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if !aggregate.ClientID().IsEqual(cmd.ClientID()) {
		return errs.NewOperationForbiddenError("delete order item", "order belongs to another client")
	}

	if err = aggregate.RemoveItem(cmd.ItemID()); err != nil {
		return err
	}
	if err = h.recomputeTotals(aggregate); err != nil {
		return err
	}
	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// recomputeTotals refreshes the order totals after a removal. Drafts are
// totalled at confirmation; a pending order with a still unquoted item
// keeps its totals open for the operator.
func (h *DeleteOrderItemCommandHandler) recomputeTotals(aggregate *order.Order) error {
	if aggregate.Status() == order.Draft || len(aggregate.Items()) == 0 {
		return nil
	}
	if !aggregate.AllPricesCalculated() {
		return nil
	}

	totals, err := h.pricing.ComputeTotals(aggregate.Items())
	if err != nil {
		return err
	}
	return aggregate.SetTotals(totals.ProcessingFee, totals.TotalWithoutVAT,
		totals.VATPart, totals.TotalWithVAT)
}
