package commands

import (
	"context"

	"go.uber.org/zap"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/order"
	"geoshop/internal/core/domain/services"
	"geoshop/internal/core/ports"
)

// CreateOrderCommandHandler handles the business logic for opening a draft
// order. The requested area is checked against the client's ownership
// grants right away, so an oversized draft is refused before it is stored.
// The polygon is parsed structurally; topological validity is only checked
// at confirmation, so a client can save a draft with a flawed polygon and
// fix it later. The back office is alerted about the flaw either way.
type CreateOrderCommandHandler struct {
	uowFactory UoWFactory
	identity   ports.IdentityService
	notifier   ports.Notifier
	resolver   services.OwnershipResolver
	logger     *zap.Logger
}

// NewCreateOrderCommandHandler creates a handler for order creation.
func NewCreateOrderCommandHandler(
	uowFactory UoWFactory,
	identity ports.IdentityService,
	notifier ports.Notifier,
	resolver services.OwnershipResolver,
	logger *zap.Logger,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		identity:   identity,
		notifier:   notifier,
		resolver:   resolver,
		logger:     logger,
	}
}

// Handle processes the order creation command.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	polygon, err := kernel.GeometryFromWKT(cmd.PolygonWKT(), cmd.SRID())
	if err != nil {
		return err
	}

	newOrder, err := order.NewOrder(cmd.OrderID(), cmd.ClientID(), cmd.Title(), polygon)
	if err != nil {
		return err
	}
	if cmd.Description() != "" {
		if err = newOrder.UpdateDetails(cmd.Title(), cmd.Description()); err != nil {
			return err
		}
	}
	if cmd.InvoiceContactID() != nil || cmd.InvoiceReference() != "" {
		if err = newOrder.SetInvoice(cmd.InvoiceContactID(), cmd.InvoiceReference()); err != nil {
			return err
		}
	}
	for _, spec := range cmd.Items() {
		item, itemErr := order.NewOrderItem(kernel.NewUUID(), spec.ProductID, spec.DataFormat)
		if itemErr != nil {
			return itemErr
		}
		if err = newOrder.AddItem(item); err != nil {
			return err
		}
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if _, err = checkOrderArea(ctx, uow, h.identity, h.resolver,
		cmd.ClientID(), newOrder.Polygon(), newOrder.Items()); err != nil {
		return err
	}

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	notifyGeometryFlaw(ctx, h.notifier, h.logger, newOrder)
	return nil
}

// checkOrderArea verifies the polygon against the grants the client's
// groups hold for the ordered products and returns the billable area.
func checkOrderArea(
	ctx context.Context,
	uow UoW,
	identity ports.IdentityService,
	resolver services.OwnershipResolver,
	clientID kernel.UUID,
	polygon kernel.Geometry,
	items []*order.OrderItem,
) (float64, error) {
	groups, err := identity.GetClientGroups(ctx, clientID)
	if err != nil {
		return 0, err
	}

	productIDs := make([]kernel.UUID, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID())
	}

	ownerships, err := uow.OwnershipRepository().GetForProductsAndGroups(ctx, productIDs, groups)
	if err != nil {
		return 0, err
	}

	return resolver.CheckOrderArea(polygon, ownerships)
}

// notifyGeometryFlaw alerts the back office about a saved order whose
// polygon is topologically invalid. Called after the commit; failures are
// logged, never surfaced.
func notifyGeometryFlaw(ctx context.Context, notifier ports.Notifier, logger *zap.Logger, aggregate *order.Order) {
	if aggregate.Polygon().CheckTopology() == nil {
		return
	}
	err := notifier.NotifyOrderGeometryInvalid(ctx, ports.OrderGeometryInvalidEvent{
		OrderID:  aggregate.ID(),
		ClientID: aggregate.ClientID(),
	})
	if err != nil {
		logger.Warn("invalid geometry notification failed",
			zap.String("order_id", aggregate.ID().String()),
			zap.Error(err))
	}
}
