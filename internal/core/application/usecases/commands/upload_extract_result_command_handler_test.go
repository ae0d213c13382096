package commands_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"geoshop/internal/core/application/usecases/commands"
	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/order"
	"geoshop/internal/core/domain/model/product"
)

func orderProductUoW(repo *MockOrderRepository, productRepo *MockProductRepository) (*MockOrderProductUoW, *MockOrderProductUoWFactory) {
	uow := new(MockOrderProductUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)
	uow.On("OrderRepository").Return(repo)
	uow.On("ProductRepository").Return(productRepo)

	factory := new(MockOrderProductUoWFactory)
	factory.On("Create").Return(uow)
	return uow, factory
}

func TestUploadExtractResultCommandHandler_Handle_LastResultProcessesOrder(t *testing.T) {
	ctx := t.Context()
	providerID := kernel.NewUUID()
	leaf := leafProduct(t, providerID, product.PricingSingle, false)
	aggregate := readyOrderWith(t, kernel.NewUUID(), leaf.ID())
	item := aggregate.Items()[0]
	require.NoError(t, aggregate.ClaimItem(item.ID()))

	repo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	_, factory := orderProductUoW(repo, productRepo)

	repo.On("GetByItemID", mock.Anything, item.ID()).Return(aggregate, nil).Once()
	productRepo.On("Get", mock.Anything, leaf.ID()).Return(leaf, nil).Once()
	repo.On("Update", mock.Anything, aggregate).Return(nil).Once()

	fileStore := new(MockFileStore)
	fileStore.On("SaveItemResult", mock.Anything, aggregate.ID(), item.ID(), "result.gpkg", mock.Anything).
		Return("extract/result.gpkg", nil).Once()
	fileStore.On("BuildOrderArchive", mock.Anything, aggregate.ID(), []string{"extract/result.gpkg"}).
		Return("orders/result.zip", nil).Once()

	notifier := new(MockNotifier)
	notifier.On("NotifyOrderProcessed", mock.Anything, mock.Anything).Return(nil).Once()

	h := commands.NewUploadExtractResultCommandHandler(factory, fileStore, notifier, zap.NewNop())
	cmd, err := commands.NewUploadExtractResultCommand(item.ID(), providerID,
		"result.gpkg", strings.NewReader("data"), false, "")
	require.NoError(t, err)

	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.ItemProcessed, item.Status())
	assert.Equal(t, "extract/result.gpkg", item.ResultPath())
	assert.Equal(t, order.Processed, aggregate.Status())
	assert.Equal(t, "orders/result.zip", aggregate.ResultPath())
	fileStore.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestUploadExtractResultCommandHandler_Handle_ArchiveFailureDoesNotFailUpload(t *testing.T) {
	ctx := t.Context()
	providerID := kernel.NewUUID()
	leaf := leafProduct(t, providerID, product.PricingSingle, false)
	aggregate := readyOrderWith(t, kernel.NewUUID(), leaf.ID())
	item := aggregate.Items()[0]
	require.NoError(t, aggregate.ClaimItem(item.ID()))

	repo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	_, factory := orderProductUoW(repo, productRepo)

	repo.On("GetByItemID", mock.Anything, item.ID()).Return(aggregate, nil).Once()
	productRepo.On("Get", mock.Anything, leaf.ID()).Return(leaf, nil).Once()
	repo.On("Update", mock.Anything, aggregate).Return(nil).Once()

	fileStore := new(MockFileStore)
	fileStore.On("SaveItemResult", mock.Anything, aggregate.ID(), item.ID(), "result.gpkg", mock.Anything).
		Return("extract/result.gpkg", nil).Once()
	fileStore.On("BuildOrderArchive", mock.Anything, aggregate.ID(), mock.Anything).
		Return("", errors.New("disk full")).Once()

	notifier := new(MockNotifier)
	notifier.On("NotifyOrderProcessed", mock.Anything, mock.Anything).Return(nil).Once()

	h := commands.NewUploadExtractResultCommandHandler(factory, fileStore, notifier, zap.NewNop())
	cmd, err := commands.NewUploadExtractResultCommand(item.ID(), providerID,
		"result.gpkg", strings.NewReader("data"), false, "")
	require.NoError(t, err)

	require.NoError(t, h.Handle(ctx, cmd))

	// The item keeps its terminal status; only the combined archive is
	// missing, which the rebuild job recovers.
	assert.Equal(t, order.Processed, aggregate.Status())
	assert.Empty(t, aggregate.ResultPath())
}

func TestUploadExtractResultCommandHandler_Handle_PartialDeliveryRefreshesArchive(t *testing.T) {
	ctx := t.Context()
	providerID := kernel.NewUUID()
	leafA := leafProduct(t, providerID, product.PricingSingle, false)
	leafB := leafProduct(t, providerID, product.PricingSingle, false)
	leafC := leafProduct(t, providerID, product.PricingSingle, false)
	aggregate := readyOrderWith(t, kernel.NewUUID(), leafA.ID(), leafB.ID(), leafC.ID())
	item := aggregate.Items()[0]
	rejected := aggregate.Items()[1]
	require.NoError(t, aggregate.ClaimItem(rejected.ID()))
	require.NoError(t, aggregate.RejectItem(rejected.ID(), "outside coverage", time.Now()))
	require.NoError(t, aggregate.ClaimItem(item.ID()))
	require.Equal(t, order.PartiallyDelivered, aggregate.Status())

	repo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	_, factory := orderProductUoW(repo, productRepo)

	repo.On("GetByItemID", mock.Anything, item.ID()).Return(aggregate, nil).Once()
	productRepo.On("Get", mock.Anything, leafA.ID()).Return(leafA, nil).Once()
	repo.On("Update", mock.Anything, aggregate).Return(nil).Once()

	fileStore := new(MockFileStore)
	fileStore.On("SaveItemResult", mock.Anything, aggregate.ID(), item.ID(), "a.gpkg", mock.Anything).
		Return("extract/a.gpkg", nil).Once()
	fileStore.On("BuildOrderArchive", mock.Anything, aggregate.ID(), []string{"extract/a.gpkg"}).
		Return("orders/partial.zip", nil).Once()

	notifier := new(MockNotifier)

	h := commands.NewUploadExtractResultCommandHandler(factory, fileStore, notifier, zap.NewNop())
	cmd, err := commands.NewUploadExtractResultCommand(item.ID(), providerID,
		"a.gpkg", strings.NewReader("data"), false, "")
	require.NoError(t, err)

	require.NoError(t, h.Handle(ctx, cmd))

	// One item is still out for extraction, yet the delivered file is
	// already downloadable through a refreshed archive.
	assert.Equal(t, order.PartiallyDelivered, aggregate.Status())
	assert.Equal(t, "orders/partial.zip", aggregate.ResultPath())
	fileStore.AssertExpectations(t)
	notifier.AssertNotCalled(t, "NotifyOrderProcessed", mock.Anything, mock.Anything)
}

func TestUploadExtractResultCommandHandler_Handle_Rejection(t *testing.T) {
	ctx := t.Context()
	providerID := kernel.NewUUID()
	leafA := leafProduct(t, providerID, product.PricingSingle, false)
	leafB := leafProduct(t, providerID, product.PricingSingle, false)
	aggregate := readyOrderWith(t, kernel.NewUUID(), leafA.ID(), leafB.ID())
	item := aggregate.Items()[0]
	require.NoError(t, aggregate.ClaimItem(item.ID()))

	repo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	_, factory := orderProductUoW(repo, productRepo)

	repo.On("GetByItemID", mock.Anything, item.ID()).Return(aggregate, nil).Once()
	productRepo.On("Get", mock.Anything, leafA.ID()).Return(leafA, nil).Once()
	repo.On("Update", mock.Anything, aggregate).Return(nil).Once()

	fileStore := new(MockFileStore)
	notifier := new(MockNotifier)

	h := commands.NewUploadExtractResultCommandHandler(factory, fileStore, notifier, zap.NewNop())
	cmd, err := commands.NewUploadExtractResultCommand(item.ID(), providerID, "", nil, true, "outside coverage")
	require.NoError(t, err)

	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.ItemRejected, item.Status())
	assert.Equal(t, order.PartiallyDelivered, aggregate.Status())
	fileStore.AssertNotCalled(t, "SaveItemResult",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyOrderProcessed", mock.Anything, mock.Anything)
}

func TestUploadExtractResultCommandHandler_Handle_ForbiddenForOtherProvider(t *testing.T) {
	ctx := t.Context()
	leaf := leafProduct(t, kernel.NewUUID(), product.PricingSingle, false)
	aggregate := readyOrderWith(t, kernel.NewUUID(), leaf.ID())
	item := aggregate.Items()[0]
	require.NoError(t, aggregate.ClaimItem(item.ID()))

	repo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	_, factory := orderProductUoW(repo, productRepo)

	repo.On("GetByItemID", mock.Anything, item.ID()).Return(aggregate, nil).Once()
	productRepo.On("Get", mock.Anything, leaf.ID()).Return(leaf, nil).Once()

	h := commands.NewUploadExtractResultCommandHandler(factory, new(MockFileStore), new(MockNotifier), zap.NewNop())
	cmd, err := commands.NewUploadExtractResultCommand(item.ID(), kernel.NewUUID(),
		"result.gpkg", strings.NewReader("data"), false, "")
	require.NoError(t, err)

	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.Equal(t, order.ItemInExtract, item.Status())
}

func TestNewUploadExtractResultCommand_RequiresFileUnlessRejected(t *testing.T) {
	_, err := commands.NewUploadExtractResultCommand(kernel.NewUUID(), kernel.NewUUID(), "", nil, false, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrResultFileIsRequired)
}
