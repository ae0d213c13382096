package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"geoshop/internal/core/application/usecases/commands"
	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/order"
	"geoshop/internal/core/domain/model/product"
	"geoshop/internal/core/domain/services"
	"geoshop/internal/core/ports"
)

func confirmHandler(t *testing.T, factory *MockUoWFactory, identity *MockIdentityService, notifier *MockNotifier, maxArea float64) commands.ConfirmOrderCommandHandler {
	t.Helper()
	resolver, err := services.NewOwnershipResolver(maxArea)
	require.NoError(t, err)
	pricing, err := services.NewPricingEngine(services.DefaultVATRate)
	require.NoError(t, err)
	return commands.NewConfirmOrderCommandHandler(factory, identity, notifier, resolver, pricing, zap.NewNop())
}

func grantFor(t *testing.T, productID, groupID kernel.UUID) *product.Ownership {
	t.Helper()
	o, err := product.NewOwnership(productID, groupID, polygon(t, squareWKT))
	require.NoError(t, err)
	return o
}

func TestConfirmOrderCommandHandler_Handle_ReadyWhenFullyPriced(t *testing.T) {
	ctx := t.Context()
	clientID := kernel.NewUUID()
	groupID := kernel.NewUUID()
	leaf := leafProduct(t, kernel.NewUUID(), product.PricingSingle, false)
	aggregate := draftOrderWith(t, clientID, leaf.ID())

	repo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	ownershipRepo := new(MockOwnershipRepository)
	uow, factory := fullUoW(repo, productRepo, ownershipRepo)

	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()
	productRepo.On("GetCatalog", mock.Anything).Return(catalogOf(t, leaf), nil).Once()
	ownershipRepo.On("GetForProductsAndGroups", mock.Anything, mock.Anything, mock.Anything).
		Return([]*product.Ownership{grantFor(t, leaf.ID(), groupID)}, nil).Once()
	repo.On("Update", mock.Anything, aggregate).Return(nil).Once()

	identity := new(MockIdentityService)
	identity.On("GetClientGroups", mock.Anything, clientID).Return([]kernel.UUID{groupID}, nil).Once()

	notifier := new(MockNotifier)
	notifier.On("NotifyOrderConfirmed", mock.Anything, mock.Anything).Return(nil).Once()

	h := confirmHandler(t, factory, identity, notifier, 25)
	cmd, err := commands.NewConfirmOrderCommand(aggregate.ID(), clientID)
	require.NoError(t, err)

	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.Ready, aggregate.Status())
	assert.True(t, aggregate.TotalsComputed())
	assert.NotNil(t, aggregate.OrderedAt())
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestConfirmOrderCommandHandler_Handle_PendingWhenManualQuote(t *testing.T) {
	ctx := t.Context()
	clientID := kernel.NewUUID()
	groupID := kernel.NewUUID()
	leaf := leafProduct(t, kernel.NewUUID(), product.PricingManual, false)
	aggregate := draftOrderWith(t, clientID, leaf.ID())

	repo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	ownershipRepo := new(MockOwnershipRepository)
	_, factory := fullUoW(repo, productRepo, ownershipRepo)

	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()
	productRepo.On("GetCatalog", mock.Anything).Return(catalogOf(t, leaf), nil).Once()
	ownershipRepo.On("GetForProductsAndGroups", mock.Anything, mock.Anything, mock.Anything).
		Return([]*product.Ownership{grantFor(t, leaf.ID(), groupID)}, nil).Once()
	repo.On("Update", mock.Anything, aggregate).Return(nil).Once()

	identity := new(MockIdentityService)
	identity.On("GetClientGroups", mock.Anything, clientID).Return([]kernel.UUID{groupID}, nil).Once()

	notifier := new(MockNotifier)
	var confirmed ports.OrderConfirmedEvent
	notifier.On("NotifyOrderConfirmed", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { confirmed = args.Get(1).(ports.OrderConfirmedEvent) }).
		Return(nil).Once()

	h := confirmHandler(t, factory, identity, notifier, 25)
	cmd, err := commands.NewConfirmOrderCommand(aggregate.ID(), clientID)
	require.NoError(t, err)

	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.Pending, aggregate.Status())
	assert.False(t, aggregate.TotalsComputed())
	assert.True(t, confirmed.NeedsQuote)
	assert.Equal(t, 1, confirmed.ManualItems)
}

func TestConfirmOrderCommandHandler_Handle_AreaLimitExceeded(t *testing.T) {
	ctx := t.Context()
	clientID := kernel.NewUUID()
	leaf := leafProduct(t, kernel.NewUUID(), product.PricingSingle, false)
	aggregate := draftOrderWith(t, clientID, leaf.ID())

	repo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	ownershipRepo := new(MockOwnershipRepository)
	_, factory := fullUoW(repo, productRepo, ownershipRepo)

	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()
	productRepo.On("GetCatalog", mock.Anything).Return(catalogOf(t, leaf), nil).Once()
	// No grants at all: the whole polygon is outside owned perimeters.
	ownershipRepo.On("GetForProductsAndGroups", mock.Anything, mock.Anything, mock.Anything).
		Return([]*product.Ownership{}, nil).Once()

	identity := new(MockIdentityService)
	identity.On("GetClientGroups", mock.Anything, clientID).Return([]kernel.UUID{kernel.NewUUID()}, nil).Once()

	h := confirmHandler(t, factory, identity, new(MockNotifier), 25)
	cmd, err := commands.NewConfirmOrderCommand(aggregate.ID(), clientID)
	require.NoError(t, err)

	err = h.Handle(ctx, cmd)

	require.Error(t, err)
	limitErr := services.AsAreaLimitExceeded(err)
	require.NotNil(t, limitErr)
	assert.InDelta(t, 100.0, limitErr.ExcludedArea, 1e-6)
	assert.Equal(t, order.Draft, aggregate.Status())
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestConfirmOrderCommandHandler_Handle_ExpandsGroups(t *testing.T) {
	ctx := t.Context()
	clientID := kernel.NewUUID()
	groupID := kernel.NewUUID()

	groupProduct, err := product.NewProduct(kernel.NewUUID(), kernel.NewUUID(), nil, "base maps",
		product.StatusPublished, product.PricingFree,
		kernel.ZeroMoney(kernel.DefaultCurrency), kernel.ZeroMoney(kernel.DefaultCurrency),
		kernel.NewEmptyGeometry(kernel.DefaultSRID), false)
	require.NoError(t, err)
	parentID := groupProduct.ID()

	leafA, err := product.NewProduct(kernel.NewUUID(), kernel.NewUUID(), &parentID, "roads",
		product.StatusPublished, product.PricingSingle,
		chf(t, "50"), chf(t, "150"), polygon(t, squareWKT), false)
	require.NoError(t, err)
	leafB, err := product.NewProduct(kernel.NewUUID(), kernel.NewUUID(), &parentID, "buildings",
		product.StatusPublishedOnlyInGroup, product.PricingSingle,
		chf(t, "50"), chf(t, "150"), polygon(t, squareWKT), false)
	require.NoError(t, err)

	aggregate := draftOrderWith(t, clientID, groupProduct.ID())

	repo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	ownershipRepo := new(MockOwnershipRepository)
	_, factory := fullUoW(repo, productRepo, ownershipRepo)

	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()
	productRepo.On("GetCatalog", mock.Anything).Return(catalogOf(t, groupProduct, leafA, leafB), nil).Once()
	ownershipRepo.On("GetForProductsAndGroups", mock.Anything, mock.Anything, mock.Anything).
		Return([]*product.Ownership{
			grantFor(t, leafA.ID(), groupID),
			grantFor(t, leafB.ID(), groupID),
		}, nil).Once()
	repo.On("Update", mock.Anything, aggregate).Return(nil).Once()

	identity := new(MockIdentityService)
	identity.On("GetClientGroups", mock.Anything, clientID).Return([]kernel.UUID{groupID}, nil).Once()

	notifier := new(MockNotifier)
	notifier.On("NotifyOrderConfirmed", mock.Anything, mock.Anything).Return(nil).Once()

	h := confirmHandler(t, factory, identity, notifier, 25)
	cmd, err := commands.NewConfirmOrderCommand(aggregate.ID(), clientID)
	require.NoError(t, err)

	require.NoError(t, h.Handle(ctx, cmd))

	// The group line was replaced by one item per intersecting leaf,
	// inheriting the requested format.
	require.Len(t, aggregate.Items(), 2)
	for _, item := range aggregate.Items() {
		assert.Equal(t, "geopackage", item.DataFormat())
		assert.NotEqual(t, groupProduct.ID(), item.ProductID())
	}
	assert.Equal(t, order.Ready, aggregate.Status())
}

func TestConfirmOrderCommandHandler_Handle_RequiresItemValidation(t *testing.T) {
	ctx := t.Context()
	clientID := kernel.NewUUID()
	groupID := kernel.NewUUID()
	leaf := leafProduct(t, kernel.NewUUID(), product.PricingSingle, true)
	aggregate := draftOrderWith(t, clientID, leaf.ID())

	repo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	ownershipRepo := new(MockOwnershipRepository)
	_, factory := fullUoW(repo, productRepo, ownershipRepo)

	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()
	productRepo.On("GetCatalog", mock.Anything).Return(catalogOf(t, leaf), nil).Once()
	ownershipRepo.On("GetForProductsAndGroups", mock.Anything, mock.Anything, mock.Anything).
		Return([]*product.Ownership{grantFor(t, leaf.ID(), groupID)}, nil).Once()
	repo.On("Update", mock.Anything, aggregate).Return(nil).Once()

	identity := new(MockIdentityService)
	identity.On("GetClientGroups", mock.Anything, clientID).Return([]kernel.UUID{groupID}, nil).Once()

	notifier := new(MockNotifier)
	notifier.On("NotifyOrderConfirmed", mock.Anything, mock.Anything).Return(nil).Once()
	var validation ports.ItemValidationRequestedEvent
	notifier.On("NotifyItemValidationRequested", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { validation = args.Get(1).(ports.ItemValidationRequestedEvent) }).
		Return(nil).Once()

	h := confirmHandler(t, factory, identity, notifier, 25)
	cmd, err := commands.NewConfirmOrderCommand(aggregate.ID(), clientID)
	require.NoError(t, err)

	require.NoError(t, h.Handle(ctx, cmd))

	item := aggregate.Items()[0]
	assert.Equal(t, order.ItemValidationPending, item.Status())
	require.NotNil(t, item.ValidationToken())
	assert.True(t, validation.Token.IsEqual(*item.ValidationToken()))
	notifier.AssertExpectations(t)
}

func TestConfirmOrderCommandHandler_Handle_ForbiddenForOtherClient(t *testing.T) {
	ctx := t.Context()
	leaf := leafProduct(t, kernel.NewUUID(), product.PricingSingle, false)
	aggregate := draftOrderWith(t, kernel.NewUUID(), leaf.ID())

	repo := new(MockOrderRepository)
	_, factory := fullUoW(repo, nil, nil)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()

	h := confirmHandler(t, factory, new(MockIdentityService), new(MockNotifier), 25)
	cmd, err := commands.NewConfirmOrderCommand(aggregate.ID(), kernel.NewUUID())
	require.NoError(t, err)

	err = h.Handle(ctx, cmd)
	require.Error(t, err)
}
