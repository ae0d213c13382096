package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"geoshop/internal/core/application/usecases/commands"
	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/errs"
)

func TestDownloadResultCommandHandler_Handle_ReturnsArchiveAndStampsDownload(t *testing.T) {
	ctx := t.Context()
	aggregate := processedOrderWith(t, kernel.NewUUID(), kernel.NewUUID())
	require.NoError(t, aggregate.SetResultPath("/media/orders/result.zip"))

	repo := new(MockOrderRepository)
	_, factory := orderUoW(repo)
	repo.On("GetByDownloadToken", mock.Anything, aggregate.DownloadToken()).Return(aggregate, nil).Once()
	repo.On("Update", mock.Anything, aggregate).Return(nil).Once()

	h := commands.NewDownloadResultCommandHandler(factory)
	cmd, err := commands.NewDownloadResultCommand(aggregate.DownloadToken())
	require.NoError(t, err)

	path, err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, "/media/orders/result.zip", path)
	assert.NotNil(t, aggregate.DownloadedAt())
	assert.NotNil(t, aggregate.Items()[0].LastDownloadAt())
	repo.AssertExpectations(t)
}

func TestDownloadResultCommandHandler_Handle_MissingArchive(t *testing.T) {
	ctx := t.Context()
	aggregate := processedOrderWith(t, kernel.NewUUID(), kernel.NewUUID())

	repo := new(MockOrderRepository)
	_, factory := orderUoW(repo)
	repo.On("GetByDownloadToken", mock.Anything, aggregate.DownloadToken()).Return(aggregate, nil).Once()

	h := commands.NewDownloadResultCommandHandler(factory)
	cmd, err := commands.NewDownloadResultCommand(aggregate.DownloadToken())
	require.NoError(t, err)

	_, err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	assert.Nil(t, aggregate.DownloadedAt())
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
