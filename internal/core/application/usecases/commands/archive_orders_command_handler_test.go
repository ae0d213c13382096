package commands_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"geoshop/internal/core/application/usecases/commands"
	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/order"
)

func processedOrderWith(t *testing.T, clientID kernel.UUID, productIDs ...kernel.UUID) *order.Order {
	t.Helper()
	aggregate := readyOrderWith(t, clientID, productIDs...)
	now := time.Now()
	for _, item := range aggregate.Items() {
		require.NoError(t, aggregate.ClaimItem(item.ID()))
		require.NoError(t, aggregate.CompleteItem(item.ID(), "/media/orders/"+item.ID().String()+".gpkg", now))
	}
	require.Equal(t, order.Processed, aggregate.Status())
	return aggregate
}

func TestArchiveOrdersCommandHandler_Handle_ArchivesAgedOrders(t *testing.T) {
	ctx := t.Context()
	first := processedOrderWith(t, kernel.NewUUID(), kernel.NewUUID())
	second := processedOrderWith(t, kernel.NewUUID(), kernel.NewUUID())
	cutoff := time.Now().AddDate(0, -3, 0)

	repo := new(MockOrderRepository)
	_, factory := orderUoW(repo)
	repo.On("GetAllProcessedBefore", mock.Anything, cutoff).
		Return([]*order.Order{first, second}, nil).Once()
	repo.On("Update", mock.Anything, first).Return(nil).Once()
	repo.On("Update", mock.Anything, second).Return(nil).Once()

	fileStore := new(MockFileStore)
	fileStore.On("RemoveOrderFiles", mock.Anything, first.ID()).Return(nil).Once()
	fileStore.On("RemoveOrderFiles", mock.Anything, second.ID()).Return(nil).Once()

	h := commands.NewArchiveOrdersCommandHandler(factory, fileStore, zap.NewNop())
	cmd, err := commands.NewArchiveOrdersCommand(cutoff)
	require.NoError(t, err)

	archived, err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, 2, archived)
	assert.Equal(t, order.Archived, first.Status())
	assert.Equal(t, order.Archived, second.Status())
	assert.Empty(t, first.ResultPath())
	repo.AssertExpectations(t)
	fileStore.AssertExpectations(t)
}

func TestArchiveOrdersCommandHandler_Handle_FileRemovalFailureIsTolerated(t *testing.T) {
	ctx := t.Context()
	aggregate := processedOrderWith(t, kernel.NewUUID(), kernel.NewUUID())
	cutoff := time.Now()

	repo := new(MockOrderRepository)
	_, factory := orderUoW(repo)
	repo.On("GetAllProcessedBefore", mock.Anything, cutoff).
		Return([]*order.Order{aggregate}, nil).Once()
	repo.On("Update", mock.Anything, aggregate).Return(nil).Once()

	fileStore := new(MockFileStore)
	fileStore.On("RemoveOrderFiles", mock.Anything, aggregate.ID()).
		Return(errors.New("media volume unavailable")).Once()

	h := commands.NewArchiveOrdersCommandHandler(factory, fileStore, zap.NewNop())
	cmd, err := commands.NewArchiveOrdersCommand(cutoff)
	require.NoError(t, err)

	archived, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, 1, archived)
	assert.Equal(t, order.Archived, aggregate.Status())
}

func TestArchiveOrdersCommandHandler_Handle_NothingAged(t *testing.T) {
	ctx := t.Context()
	cutoff := time.Now()

	repo := new(MockOrderRepository)
	_, factory := orderUoW(repo)
	repo.On("GetAllProcessedBefore", mock.Anything, cutoff).
		Return([]*order.Order{}, nil).Once()

	h := commands.NewArchiveOrdersCommandHandler(factory, new(MockFileStore), zap.NewNop())
	cmd, err := commands.NewArchiveOrdersCommand(cutoff)
	require.NoError(t, err)

	archived, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Zero(t, archived)
}

func TestNewArchiveOrdersCommand_RequiresCutoff(t *testing.T) {
	_, err := commands.NewArchiveOrdersCommand(time.Time{})
	require.ErrorIs(t, err, commands.ErrCutoffIsRequired)
}
