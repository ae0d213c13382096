package commands_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/order"
	"geoshop/internal/core/domain/model/product"
)

const squareWKT = "POLYGON((0 0, 10 0, 10 10, 0 10, 0 0))"

func polygon(t *testing.T, wkt string) kernel.Geometry {
	t.Helper()
	g, err := kernel.GeometryFromWKT(wkt, kernel.DefaultSRID)
	require.NoError(t, err)
	return g
}

func chf(t *testing.T, s string) kernel.Money {
	t.Helper()
	amount, err := decimal.NewFromString(s)
	require.NoError(t, err)
	m, err := kernel.NewMoney(amount, kernel.DefaultCurrency)
	require.NoError(t, err)
	return m
}

func leafProduct(t *testing.T, providerID kernel.UUID, kind product.PricingKind, validationNeeded bool) *product.Product {
	t.Helper()
	p, err := product.NewProduct(
		kernel.NewUUID(),
		providerID,
		nil,
		"cadastre",
		product.StatusPublished,
		kind,
		chf(t, "50"),
		chf(t, "150"),
		polygon(t, squareWKT),
		validationNeeded,
	)
	require.NoError(t, err)
	return p
}

func draftOrderWith(t *testing.T, clientID kernel.UUID, productIDs ...kernel.UUID) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), clientID, "parcel data", polygon(t, squareWKT))
	require.NoError(t, err)
	for _, productID := range productIDs {
		item, itemErr := order.NewOrderItem(kernel.NewUUID(), productID, "geopackage")
		require.NoError(t, itemErr)
		require.NoError(t, o.AddItem(item))
	}
	return o
}

func readyOrderWith(t *testing.T, clientID kernel.UUID, productIDs ...kernel.UUID) *order.Order {
	t.Helper()
	o := draftOrderWith(t, clientID, productIDs...)
	for _, item := range o.Items() {
		require.NoError(t, o.PriceItem(item.ID(), chf(t, "50"), chf(t, "150")))
	}
	require.NoError(t, o.Confirm(time.Now()))
	require.Equal(t, order.Ready, o.Status())
	return o
}

func catalogOf(t *testing.T, products ...*product.Product) *product.Catalog {
	t.Helper()
	c, err := product.NewCatalog(products)
	require.NoError(t, err)
	return c
}

func fullUoW(repo *MockOrderRepository, productRepo *MockProductRepository, ownershipRepo *MockOwnershipRepository) (*MockUoW, *MockUoWFactory) {
	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)
	uow.On("OrderRepository").Return(repo)
	if productRepo != nil {
		uow.On("ProductRepository").Return(productRepo)
	}
	if ownershipRepo != nil {
		uow.On("OwnershipRepository").Return(ownershipRepo)
	}

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow)
	return uow, factory
}
