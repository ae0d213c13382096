package commands

import (
	"context"

	"go.uber.org/zap"

	"geoshop/internal/core/ports"
)

// ArchiveOrdersCommandHandler archives processed orders whose result
// retention expired. The orders are kept for bookkeeping; their stored
// files are removed after the commit.
type ArchiveOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
	fileStore  ports.FileStore
	logger     *zap.Logger
}

// NewArchiveOrdersCommandHandler creates a handler for order archiving.
func NewArchiveOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	fileStore ports.FileStore,
	logger *zap.Logger,
) ArchiveOrdersCommandHandler {
	return ArchiveOrdersCommandHandler{
		uowFactory: uowFactory,
		fileStore:  fileStore,
		logger:     logger,
	}
}

// Handle archives every processed order older than the cutoff and returns
// the number of archived orders.
func (h *ArchiveOrdersCommandHandler) Handle(ctx context.Context, cmd ArchiveOrdersCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	aged, err := orderRepo.GetAllProcessedBefore(ctx, cmd.Cutoff())
	if err != nil {
		return 0, err
	}

	for _, aggregate := range aged {
		if err = aggregate.Archive(); err != nil {
			return 0, err
		}
		if err = orderRepo.Update(ctx, aggregate); err != nil {
			return 0, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	for _, aggregate := range aged {
		if err = h.fileStore.RemoveOrderFiles(ctx, aggregate.ID()); err != nil {
			h.logger.Warn("failed to remove files of archived order",
				zap.String("order_id", aggregate.ID().String()),
				zap.Error(err))
		}
	}
	return len(aged), nil
}
