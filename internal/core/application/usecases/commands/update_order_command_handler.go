package commands

import (
	"context"

	"go.uber.org/zap"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/order"
	"geoshop/internal/core/domain/services"
	"geoshop/internal/core/ports"
	"geoshop/internal/pkg/errs"
)

// UpdateOrderCommandHandler reworks a draft order from a full client
// submission. Items are reconciled by product: an item whose product stays
// in the submitted list keeps its identity (its format may change), items
// for removed products are dropped and new products get fresh items. The
// reworked area goes through the same ownership gate as a new order.
type UpdateOrderCommandHandler struct {
	uowFactory UoWFactory
	identity   ports.IdentityService
	notifier   ports.Notifier
	resolver   services.OwnershipResolver
	logger     *zap.Logger
}

// NewUpdateOrderCommandHandler creates a handler for draft order updates.
func NewUpdateOrderCommandHandler(
	uowFactory UoWFactory,
	identity ports.IdentityService,
	notifier ports.Notifier,
	resolver services.OwnershipResolver,
	logger *zap.Logger,
) UpdateOrderCommandHandler {
	return UpdateOrderCommandHandler{
		uowFactory: uowFactory,
		identity:   identity,
		notifier:   notifier,
		resolver:   resolver,
		logger:     logger,
	}
}

// Handle processes the order update command.
func (h *UpdateOrderCommandHandler) Handle(ctx context.Context, cmd UpdateOrderCommand) error {
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
		return errs.NewOperationForbiddenError("update order", "order belongs to another client")
	}

	if err = aggregate.UpdateDetails(cmd.Title(), cmd.Description()); err != nil {
		return err
	}
	if cmd.PolygonWKT() != "" {
		polygon, geomErr := kernel.GeometryFromWKT(cmd.PolygonWKT(), cmd.SRID())
		if geomErr != nil {
			return geomErr
		}
		if err = aggregate.ChangePolygon(polygon); err != nil {
			return err
		}
	}
	if err = h.reconcileItems(aggregate, cmd.Items()); err != nil {
		return err
	}
	if err = aggregate.SetInvoice(cmd.InvoiceContactID(), cmd.InvoiceReference()); err != nil {
		return err
	}

	if _, err = checkOrderArea(ctx, uow, h.identity, h.resolver,
		cmd.ClientID(), aggregate.Polygon(), aggregate.Items()); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	notifyGeometryFlaw(ctx, h.notifier, h.logger, aggregate)
	return nil
}

// reconcileItems matches the submitted lines against the current items by
// product and replaces the item list.
func (h *UpdateOrderCommandHandler) reconcileItems(aggregate *order.Order, specs []OrderItemSpec) error {
	existing := make(map[kernel.UUID]*order.OrderItem, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		existing[item.ProductID()] = item
	}

	items := make([]*order.OrderItem, 0, len(specs))
	for _, spec := range specs {
		if current, ok := existing[spec.ProductID]; ok {
			if spec.DataFormat != "" && spec.DataFormat != current.DataFormat() {
				if err := aggregate.SetItemDataFormat(current.ID(), spec.DataFormat); err != nil {
					return err
				}
			}
			items = append(items, current)
			continue
		}

		item, err := order.NewOrderItem(kernel.NewUUID(), spec.ProductID, spec.DataFormat)
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	return aggregate.ReplaceItems(items)
}
