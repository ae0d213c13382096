package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"geoshop/internal/core/domain/model/order"
	"geoshop/internal/core/ports"
)

// ValidateOrderItemCommandHandler applies the out-of-band decision on a
// parked item. Approval releases the item for extraction; refusal rejects
// it, which may complete the order when everything else is terminal.
type ValidateOrderItemCommandHandler struct {
	uowFactory OrderUoWFactory
	fileStore  ports.FileStore
	notifier   ports.Notifier
	logger     *zap.Logger
}

// NewValidateOrderItemCommandHandler creates a handler for item validation decisions.
func NewValidateOrderItemCommandHandler(
	uowFactory OrderUoWFactory,
	fileStore ports.FileStore,
	notifier ports.Notifier,
	logger *zap.Logger,
) ValidateOrderItemCommandHandler {
	return ValidateOrderItemCommandHandler{
		uowFactory: uowFactory,
		fileStore:  fileStore,
		notifier:   notifier,
		logger:     logger,
	}
}

// Handle processes the validation decision command.
func (h *ValidateOrderItemCommandHandler) Handle(ctx context.Context, cmd ValidateOrderItemCommand) error {
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
	aggregate, err := orderRepo.GetByValidationToken(ctx, cmd.Token())
	if err != nil {
		return err
	}

	now := time.Now()
	if cmd.Approved() {
		err = aggregate.ApproveItemValidation(cmd.Token(), now)
	} else {
		err = aggregate.RejectItemValidation(cmd.Token(), cmd.Comment(), now)
	}
	if err != nil {
		return err
	}

	if aggregate.Status() == order.Processed {
		buildOrderArchive(ctx, h.fileStore, aggregate, h.logger)
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if aggregate.Status() == order.Processed {
		if err = h.notifier.NotifyOrderProcessed(ctx, ports.OrderProcessedEvent{
			OrderID:       aggregate.ID(),
			ClientID:      aggregate.ClientID(),
			DownloadToken: aggregate.DownloadToken(),
		}); err != nil {
			h.logger.Warn("order processed notification failed",
				zap.String("order_id", aggregate.ID().String()),
				zap.Error(err))
		}
	}
	return nil
}
