package commands

import (
	"context"

	"go.uber.org/zap"

	"geoshop/internal/core/ports"
	"geoshop/internal/pkg/errs"
)

// DeleteOrderCommandHandler handles order deletion. A draft is removed from
// storage together with its stored files; an order in the quote flow is
// soft-deleted by rejecting it. File removal happens after the commit and
// never fails the deletion.
type DeleteOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	fileStore  ports.FileStore
	logger     *zap.Logger
}

// NewDeleteOrderCommandHandler creates a handler for order deletion.
func NewDeleteOrderCommandHandler(
	uowFactory OrderUoWFactory,
	fileStore ports.FileStore,
	logger *zap.Logger,
) DeleteOrderCommandHandler {
	return DeleteOrderCommandHandler{
		uowFactory: uowFactory,
		fileStore:  fileStore,
		logger:     logger,
	}
}

// Handle processes the order deletion command.
func (h *DeleteOrderCommandHandler) Handle(ctx context.Context, cmd DeleteOrderCommand) error {
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
		return errs.NewOperationForbiddenError("delete order", "order belongs to another client")
	}

	hardDelete := aggregate.CanBeHardDeleted()
	if hardDelete {
		if err = orderRepo.Delete(ctx, aggregate.ID()); err != nil {
			return err
		}
	} else {
		if err = aggregate.RejectQuote(); err != nil {
			return err
		}
		if err = orderRepo.Update(ctx, aggregate); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if hardDelete {
		if err = h.fileStore.RemoveOrderFiles(ctx, aggregate.ID()); err != nil {
			h.logger.Warn("failed to remove files of deleted order",
				zap.String("order_id", aggregate.ID().String()),
				zap.Error(err))
		}
	}
	return nil
}
