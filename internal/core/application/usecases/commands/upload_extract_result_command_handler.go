package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"geoshop/internal/core/domain/model/order"
	"geoshop/internal/core/ports"
	"geoshop/internal/pkg/errs"
)

// UploadExtractResultCommandHandler handles an extraction outcome from a
// provider. A result file replaces any earlier upload for the same item and
// moves it to Processed; a rejection moves it to Rejected. Either way the
// order status is reevaluated. The combined result archive is built once
// every item is terminal and refreshed whenever a new file lands on a
// partially delivered order; the client is notified when the order closes.
//
// A failed archive build does not fail the upload; the order stays
// Processed without a result and the rebuild job retries later.
type UploadExtractResultCommandHandler struct {
	uowFactory OrderProductUoWFactory
	fileStore  ports.FileStore
	notifier   ports.Notifier
	logger     *zap.Logger
}

// NewUploadExtractResultCommandHandler creates a handler for extraction outcomes.
func NewUploadExtractResultCommandHandler(
	uowFactory OrderProductUoWFactory,
	fileStore ports.FileStore,
	notifier ports.Notifier,
	logger *zap.Logger,
) UploadExtractResultCommandHandler {
	return UploadExtractResultCommandHandler{
		uowFactory: uowFactory,
		fileStore:  fileStore,
		notifier:   notifier,
		logger:     logger,
	}
}

// Handle processes the extraction outcome command.
func (h *UploadExtractResultCommandHandler) Handle(ctx context.Context, cmd UploadExtractResultCommand) error {
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
	aggregate, err := orderRepo.GetByItemID(ctx, cmd.ItemID())
	if err != nil {
		return err
	}
	item, err := aggregate.Item(cmd.ItemID())
	if err != nil {
		return err
	}

	itemProduct, err := uow.ProductRepository().Get(ctx, item.ProductID())
	if err != nil {
		return err
	}
	if !itemProduct.ProviderID().IsEqual(cmd.ProviderID()) {
		return errs.NewOperationForbiddenError("upload extract result",
			"item belongs to another provider")
	}

	now := time.Now()
	if cmd.Rejected() {
		if err = aggregate.RejectItem(cmd.ItemID(), cmd.Comment(), now); err != nil {
			return err
		}
	} else {
		path, saveErr := h.fileStore.SaveItemResult(ctx, aggregate.ID(), cmd.ItemID(),
			cmd.FileName(), cmd.Content())
		if saveErr != nil {
			return saveErr
		}
		if err = aggregate.CompleteItem(cmd.ItemID(), path, now); err != nil {
			return err
		}
	}

	if aggregate.Status() == order.Processed ||
		(aggregate.Status() == order.PartiallyDelivered && !cmd.Rejected()) {
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

// buildOrderArchive combines the processed item results of the order into
// one archive and records its location. Failures are logged only; the
// rebuild job picks up processed orders without a result.
func buildOrderArchive(ctx context.Context, fileStore ports.FileStore, aggregate *order.Order, logger *zap.Logger) {
	var itemPaths []string
	for _, item := range aggregate.Items() {
		if item.Status() == order.ItemProcessed {
			itemPaths = append(itemPaths, item.ResultPath())
		}
	}

	archivePath, err := fileStore.BuildOrderArchive(ctx, aggregate.ID(), itemPaths)
	if err != nil {
		logger.Warn("order archive build failed",
			zap.String("order_id", aggregate.ID().String()),
			zap.Error(err))
		return
	}
	if err = aggregate.SetResultPath(archivePath); err != nil {
		logger.Warn("failed to record order archive",
			zap.String("order_id", aggregate.ID().String()),
			zap.Error(err))
	}
}
