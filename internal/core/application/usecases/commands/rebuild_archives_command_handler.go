package commands

import (
	"context"

	"go.uber.org/zap"

	"geoshop/internal/core/ports"
)

// RebuildArchivesCommandHandler retries the result archive of processed
// orders that have none, typically after a failed build during upload. It
// takes no command: the work set is whatever the repository reports.
type RebuildArchivesCommandHandler struct {
	uowFactory OrderUoWFactory
	fileStore  ports.FileStore
	logger     *zap.Logger
}

// NewRebuildArchivesCommandHandler creates a handler for archive rebuilds.
func NewRebuildArchivesCommandHandler(
	uowFactory OrderUoWFactory,
	fileStore ports.FileStore,
	logger *zap.Logger,
) RebuildArchivesCommandHandler {
	return RebuildArchivesCommandHandler{
		uowFactory: uowFactory,
		fileStore:  fileStore,
		logger:     logger,
	}
}

// Handle rebuilds missing archives and returns how many were recovered.
func (h *RebuildArchivesCommandHandler) Handle(ctx context.Context) (int, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	missing, err := orderRepo.GetAllProcessedWithoutResult(ctx)
	if err != nil {
		return 0, err
	}

	rebuilt := 0
	for _, aggregate := range missing {
		buildOrderArchive(ctx, h.fileStore, aggregate, h.logger)
		if aggregate.ResultPath() == "" {
			continue
		}
		if err = orderRepo.Update(ctx, aggregate); err != nil {
			return 0, err
		}
		rebuilt++
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}
	return rebuilt, nil
}
