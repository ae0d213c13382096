package commands_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"geoshop/internal/core/application/usecases/commands"
	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/order"
	"geoshop/internal/core/domain/model/product"
	"geoshop/internal/core/ports"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByItemID(ctx context.Context, itemID kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByValidationToken(ctx context.Context, token kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByDownloadToken(ctx context.Context, token kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) ClaimPendingItemsForProvider(ctx context.Context, providerID kernel.UUID) ([]ports.ClaimedItem, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.ClaimedItem), args.Error(1)
}

func (m *MockOrderRepository) GetAllProcessedWithoutResult(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllProcessedBefore(ctx context.Context, cutoff time.Time) ([]*order.Order, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockProductRepository struct{ mock.Mock }

func (m *MockProductRepository) Get(ctx context.Context, id kernel.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []kernel.UUID) ([]*product.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductRepository) GetCatalog(ctx context.Context) (*product.Catalog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Catalog), args.Error(1)
}

type MockOwnershipRepository struct{ mock.Mock }

func (m *MockOwnershipRepository) GetForProductsAndGroups(ctx context.Context, productIDs, groupIDs []kernel.UUID) ([]*product.Ownership, error) {
	args := m.Called(ctx, productIDs, groupIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Ownership), args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockOrderProductUoW struct{ MockOrderUoW }

func (m *MockOrderProductUoW) ProductRepository() ports.ProductRepository {
	args := m.Called()
	return args.Get(0).(ports.ProductRepository)
}

type MockOrderProductUoWFactory struct{ mock.Mock }

func (m *MockOrderProductUoWFactory) Create() commands.OrderProductUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderProductUoW)
}

type MockUoW struct{ MockOrderProductUoW }

func (m *MockUoW) OwnershipRepository() ports.OwnershipRepository {
	args := m.Called()
	return args.Get(0).(ports.OwnershipRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockFileStore struct{ mock.Mock }

func (m *MockFileStore) SaveItemResult(ctx context.Context, orderID, itemID kernel.UUID, fileName string, content io.Reader) (string, error) {
	args := m.Called(ctx, orderID, itemID, fileName, content)
	return args.String(0), args.Error(1)
}

func (m *MockFileStore) BuildOrderArchive(ctx context.Context, orderID kernel.UUID, itemPaths []string) (string, error) {
	args := m.Called(ctx, orderID, itemPaths)
	return args.String(0), args.Error(1)
}

func (m *MockFileStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockFileStore) Remove(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockFileStore) RemoveOrderFiles(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) NotifyOrderConfirmed(ctx context.Context, event ports.OrderConfirmedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotifier) NotifyOrderGeometryInvalid(ctx context.Context, event ports.OrderGeometryInvalidEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotifier) NotifyItemValidationRequested(ctx context.Context, event ports.ItemValidationRequestedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotifier) NotifyOrderProcessed(ctx context.Context, event ports.OrderProcessedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockIdentityService struct{ mock.Mock }

func (m *MockIdentityService) GetClientGroups(ctx context.Context, clientID kernel.UUID) ([]kernel.UUID, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}
