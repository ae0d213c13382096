package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/order"
	"geoshop/internal/core/domain/model/product"
	"geoshop/internal/core/domain/services"
	"geoshop/internal/core/ports"
	"geoshop/internal/pkg/errs"
)

// ConfirmOrderCommandHandler handles order confirmation, the central
// operation of the ordering flow.
//
// On a first confirmation of a draft it expands group products into their
// intersecting published leaves, checks the polygon against the client's
// ownership grants, prices every item and moves the order to Ready or, when
// a manual quote is needed, to Pending. Confirming a quoted order only
// re-runs the status transition.
//
// Items of products flagged for validation are parked behind a one-time
// approval once the order is open; the back office is notified with the
// approval tokens. Notification failures are logged, never surfaced.
type ConfirmOrderCommandHandler struct {
	uowFactory UoWFactory
	identity   ports.IdentityService
	notifier   ports.Notifier
	resolver   services.OwnershipResolver
	pricing    services.PricingEngine
	logger     *zap.Logger
}

// NewConfirmOrderCommandHandler creates a handler for order confirmation.
func NewConfirmOrderCommandHandler(
	uowFactory UoWFactory,
	identity ports.IdentityService,
	notifier ports.Notifier,
	resolver services.OwnershipResolver,
	pricing services.PricingEngine,
	logger *zap.Logger,
) ConfirmOrderCommandHandler {
	return ConfirmOrderCommandHandler{
		uowFactory: uowFactory,
		identity:   identity,
		notifier:   notifier,
		resolver:   resolver,
		pricing:    pricing,
		logger:     logger,
	}
}

// Handle processes the order confirmation command.
func (h *ConfirmOrderCommandHandler) Handle(ctx context.Context, cmd ConfirmOrderCommand) error {
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
		return errs.NewOperationForbiddenError("confirm order", "order belongs to another client")
	}
	if err = aggregate.Status().ValidateConfirm(); err != nil {
		return err
	}

	catalog, err := uow.ProductRepository().GetCatalog(ctx)
	if err != nil {
		return err
	}

	firstConfirmation := aggregate.Status() == order.Draft
	if firstConfirmation {
		if err = h.expandGroups(aggregate, catalog); err != nil {
			return err
		}
		billableArea, areaErr := checkOrderArea(ctx, uow, h.identity, h.resolver,
			cmd.ClientID(), aggregate.Polygon(), aggregate.Items())
		if areaErr != nil {
			return areaErr
		}
		if err = h.priceOrder(aggregate, catalog, billableArea); err != nil {
			return err
		}
	}

	invalidGeom := aggregate.Polygon().CheckTopology() != nil

	if err = aggregate.Confirm(time.Now()); err != nil {
		return err
	}

	var validationEvents []ports.ItemValidationRequestedEvent
	if aggregate.Status() == order.Ready {
		validationEvents, err = h.requireValidations(aggregate, catalog)
		if err != nil {
			return err
		}
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.notify(ctx, aggregate, invalidGeom, validationEvents)
	return nil
}

// expandGroups replaces each group item with one item per intersecting
// published leaf, inheriting the requested format. A leaf already ordered
// directly is not duplicated; a group without matching leaves disappears.
func (h *ConfirmOrderCommandHandler) expandGroups(aggregate *order.Order, catalog *product.Catalog) error {
	ordered := make(map[kernel.UUID]bool, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		ordered[item.ProductID()] = true
	}

	items := make([]*order.OrderItem, 0, len(aggregate.Items()))
	changed := false
	for _, item := range aggregate.Items() {
		if !catalog.IsGroup(item.ProductID()) {
			items = append(items, item)
			continue
		}
		changed = true

		leaves, err := catalog.ExpandGroup(item.ProductID(), aggregate.Polygon())
		if err != nil {
			return err
		}
		for _, leaf := range leaves {
			if ordered[leaf.ID()] {
				continue
			}
			ordered[leaf.ID()] = true

			leafItem, err := order.NewOrderItem(kernel.NewUUID(), leaf.ID(), item.DataFormat())
			if err != nil {
				return err
			}
			items = append(items, leafItem)
		}
	}

	if !changed {
		return nil
	}
	return aggregate.ReplaceItems(items)
}

func (h *ConfirmOrderCommandHandler) priceOrder(
	aggregate *order.Order,
	catalog *product.Catalog,
	billableArea float64,
) error {
	products := make(map[kernel.UUID]*product.Product, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		p, err := catalog.Get(item.ProductID())
		if err != nil {
			return err
		}
		products[item.ProductID()] = p
	}
	return h.pricing.PriceOrder(aggregate, products, billableArea)
}

// requireValidations parks items of validation-flagged products behind
// their one-time approval and collects the notification events.
func (h *ConfirmOrderCommandHandler) requireValidations(
	aggregate *order.Order,
	catalog *product.Catalog,
) ([]ports.ItemValidationRequestedEvent, error) {
	var events []ports.ItemValidationRequestedEvent
	for _, item := range aggregate.Items() {
		p, err := catalog.Get(item.ProductID())
		if err != nil {
			return nil, err
		}
		if !p.ValidationNeeded() {
			continue
		}

		token, err := aggregate.RequireItemValidation(item.ID())
		if err != nil {
			return nil, err
		}
		events = append(events, ports.ItemValidationRequestedEvent{
			OrderID:   aggregate.ID(),
			ItemID:    item.ID(),
			ProductID: item.ProductID(),
			Token:     token,
		})
	}
	return events, nil
}

func (h *ConfirmOrderCommandHandler) notify(
	ctx context.Context,
	aggregate *order.Order,
	invalidGeom bool,
	validationEvents []ports.ItemValidationRequestedEvent,
) {
	manualItems := 0
	for _, item := range aggregate.Items() {
		if item.PriceStatus() == order.PricePending {
			manualItems++
		}
	}

	err := h.notifier.NotifyOrderConfirmed(ctx, ports.OrderConfirmedEvent{
		OrderID:      aggregate.ID(),
		ClientID:     aggregate.ClientID(),
		Status:       aggregate.Status().String(),
		NeedsQuote:   aggregate.Status() == order.Pending,
		InvalidGeom:  invalidGeom,
		ManualItems:  manualItems,
		TotalWithVAT: aggregate.TotalWithVAT().String(),
	})
	if err != nil {
		h.logger.Warn("order confirmed notification failed",
			zap.String("order_id", aggregate.ID().String()),
			zap.Error(err))
	}

	for _, event := range validationEvents {
		if err = h.notifier.NotifyItemValidationRequested(ctx, event); err != nil {
			h.logger.Warn("item validation notification failed",
				zap.String("order_id", event.OrderID.String()),
				zap.String("item_id", event.ItemID.String()),
				zap.Error(err))
		}
	}
}
