package commands

import (
	"context"
	"time"

	"geoshop/internal/pkg/errs"
)

// DownloadResultCommandHandler resolves a public download link to the stored
// result archive and stamps the download time on the order and its delivered
// items.
type DownloadResultCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewDownloadResultCommandHandler creates a handler for result downloads.
func NewDownloadResultCommandHandler(uowFactory OrderUoWFactory) DownloadResultCommandHandler {
	return DownloadResultCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the download command and returns the archive location.
func (h *DownloadResultCommandHandler) Handle(ctx context.Context, cmd DownloadResultCommand) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	aggregate, err := orderRepo.GetByDownloadToken(ctx, cmd.Token())
	if err != nil {
		return "", err
	}
	if aggregate.ResultPath() == "" {
		return "", errs.NewObjectNotFoundError("order result", aggregate.ID().String())
	}

	if err = aggregate.MarkDownloaded(time.Now()); err != nil {
		return "", err
	}
	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return "", err
	}
	if err = uow.Commit(ctx); err != nil {
		return "", err
	}

	return aggregate.ResultPath(), nil
}
