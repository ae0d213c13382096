package commands_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"geoshop/internal/core/application/usecases/commands"
	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/order"
	"geoshop/internal/core/ports"
	"geoshop/internal/pkg/errs"
)

func parkedOrder(t *testing.T, clientID kernel.UUID) (*order.Order, kernel.UUID) {
	t.Helper()
	aggregate := readyOrderWith(t, clientID, kernel.NewUUID())
	token, err := aggregate.RequireItemValidation(aggregate.Items()[0].ID())
	require.NoError(t, err)
	return aggregate, token
}

func TestValidateOrderItemCommandHandler_Handle_ApprovalReleasesItem(t *testing.T) {
	ctx := t.Context()
	aggregate, token := parkedOrder(t, kernel.NewUUID())

	repo := new(MockOrderRepository)
	_, factory := orderUoW(repo)
	repo.On("GetByValidationToken", mock.Anything, token).Return(aggregate, nil).Once()
	repo.On("Update", mock.Anything, aggregate).Return(nil).Once()

	fileStore := new(MockFileStore)
	notifier := new(MockNotifier)

	h := commands.NewValidateOrderItemCommandHandler(factory, fileStore, notifier, zap.NewNop())
	cmd, err := commands.NewValidateOrderItemCommand(token, true, "")
	require.NoError(t, err)

	require.NoError(t, h.Handle(ctx, cmd))

	item := aggregate.Items()[0]
	assert.Equal(t, order.ItemPending, item.Status())
	assert.Nil(t, item.ValidationToken())
	assert.Equal(t, order.Ready, aggregate.Status())
	notifier.AssertNotCalled(t, "NotifyOrderProcessed", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestValidateOrderItemCommandHandler_Handle_RefusalCompletesOrder(t *testing.T) {
	ctx := t.Context()
	clientID := kernel.NewUUID()
	aggregate, token := parkedOrder(t, clientID)

	repo := new(MockOrderRepository)
	_, factory := orderUoW(repo)
	repo.On("GetByValidationToken", mock.Anything, token).Return(aggregate, nil).Once()
	repo.On("Update", mock.Anything, aggregate).Return(nil).Once()

	fileStore := new(MockFileStore)
	fileStore.On("BuildOrderArchive", mock.Anything, aggregate.ID(), mock.Anything).
		Return("/media/orders/result.zip", nil).Once()

	var event ports.OrderProcessedEvent
	notifier := new(MockNotifier)
	notifier.On("NotifyOrderProcessed", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			event = args.Get(1).(ports.OrderProcessedEvent)
		}).
		Return(nil).Once()

	h := commands.NewValidateOrderItemCommandHandler(factory, fileStore, notifier, zap.NewNop())
	cmd, err := commands.NewValidateOrderItemCommand(token, false, "outside licensed perimeter")
	require.NoError(t, err)

	require.NoError(t, h.Handle(ctx, cmd))

	item := aggregate.Items()[0]
	assert.Equal(t, order.ItemRejected, item.Status())
	assert.Equal(t, "outside licensed perimeter", item.Comment())
	assert.Equal(t, order.Processed, aggregate.Status())
	assert.Equal(t, "/media/orders/result.zip", aggregate.ResultPath())
	assert.Equal(t, aggregate.ID(), event.OrderID)
	assert.Equal(t, clientID, event.ClientID)
	assert.Equal(t, aggregate.DownloadToken(), event.DownloadToken)
	fileStore.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestValidateOrderItemCommandHandler_Handle_UnknownToken(t *testing.T) {
	ctx := t.Context()
	token := kernel.NewUUID()

	repo := new(MockOrderRepository)
	uow, factory := orderUoW(repo)
	repo.On("GetByValidationToken", mock.Anything, token).
		Return(nil, errs.NewObjectNotFoundError("token", token.String())).Once()

	h := commands.NewValidateOrderItemCommandHandler(factory, new(MockFileStore), new(MockNotifier), zap.NewNop())
	cmd, err := commands.NewValidateOrderItemCommand(token, true, "")
	require.NoError(t, err)

	err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestValidateOrderItemCommandHandler_Handle_RefusesUnparkedItem(t *testing.T) {
	ctx := t.Context()
	aggregate, token := parkedOrder(t, kernel.NewUUID())
	require.NoError(t, aggregate.ApproveItemValidation(token, time.Now()))

	repo := new(MockOrderRepository)
	_, factory := orderUoW(repo)
	repo.On("GetByValidationToken", mock.Anything, token).Return(aggregate, nil).Once()

	h := commands.NewValidateOrderItemCommandHandler(factory, new(MockFileStore), new(MockNotifier), zap.NewNop())
	cmd, err := commands.NewValidateOrderItemCommand(token, true, "")
	require.NoError(t, err)

	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
