package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/order"
	"geoshop/internal/core/domain/model/product"
	"geoshop/internal/core/domain/services"
)

func newProduct(t *testing.T, kind product.PricingKind, baseFee, unitPrice string) *product.Product {
	t.Helper()
	p, err := product.NewProduct(
		kernel.NewUUID(),
		kernel.NewUUID(),
		nil,
		"cadastre",
		product.StatusPublished,
		kind,
		chf(t, baseFee),
		chf(t, unitPrice),
		polygon(t, squareWKT),
		false,
	)
	require.NoError(t, err)
	return p
}

func pricedItem(t *testing.T, baseFee, price string) *order.OrderItem {
	t.Helper()
	item, err := order.NewOrderItem(kernel.NewUUID(), kernel.NewUUID(), "geopackage")
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), "parcel data", polygon(t, squareWKT))
	require.NoError(t, err)
	require.NoError(t, o.AddItem(item))
	require.NoError(t, o.PriceItem(item.ID(), chf(t, baseFee), chf(t, price)))
	return item
}

func TestPricingEngine_PriceItem(t *testing.T) {
	engine, err := services.NewPricingEngine(services.DefaultVATRate)
	require.NoError(t, err)

	t.Run("free products cost nothing", func(t *testing.T) {
		price, err := engine.PriceItem(newProduct(t, product.PricingFree, "0", "0"), 1_000_000)

		require.NoError(t, err)
		assert.True(t, price.Calculated)
		assert.True(t, price.Price.IsZero())
		assert.True(t, price.BaseFee.IsZero())
	})

	t.Run("single products cost the unit price", func(t *testing.T) {
		price, err := engine.PriceItem(newProduct(t, product.PricingSingle, "50", "150"), 1_000_000)

		require.NoError(t, err)
		assert.True(t, price.Calculated)
		assert.True(t, price.Price.IsEqual(chf(t, "150")))
		assert.True(t, price.BaseFee.IsEqual(chf(t, "50")))
	})

	t.Run("area products cost the unit price per square kilometre", func(t *testing.T) {
		// 2.5 km2 at 100 per km2.
		price, err := engine.PriceItem(newProduct(t, product.PricingByArea, "50", "100"), 2_500_000)

		require.NoError(t, err)
		assert.True(t, price.Calculated)
		assert.True(t, price.Price.IsEqual(chf(t, "250")))
	})

	t.Run("manual products stay unpriced", func(t *testing.T) {
		price, err := engine.PriceItem(newProduct(t, product.PricingManual, "0", "0"), 1_000_000)

		require.NoError(t, err)
		assert.False(t, price.Calculated)
	})

	t.Run("a negative area is refused", func(t *testing.T) {
		_, err := engine.PriceItem(newProduct(t, product.PricingSingle, "50", "150"), -1)
		assert.Error(t, err)
	})
}

func TestPricingEngine_ComputeTotals(t *testing.T) {
	engine, err := services.NewPricingEngine(services.DefaultVATRate)
	require.NoError(t, err)

	t.Run("should derive fee, VAT and rounded totals", func(t *testing.T) {
		// Given two priced items with base fees 50 and 150.
		items := []*order.OrderItem{
			pricedItem(t, "50", "100"),
			pricedItem(t, "150", "200"),
		}

		// When
		totals, err := engine.ComputeTotals(items)

		// Then the fee is the maximum base fee, not their sum.
		require.NoError(t, err)
		assert.True(t, totals.ProcessingFee.IsEqual(chf(t, "150")))
		assert.True(t, totals.TotalWithoutVAT.IsEqual(chf(t, "450")))
		// 8.1 % of 450 is 36.45, already a multiple of 0.05.
		assert.True(t, totals.VATPart.IsEqual(chf(t, "36.45")))
		assert.True(t, totals.TotalWithVAT.IsEqual(chf(t, "486.45")))
	})

	t.Run("should round totals to the nearest five cents", func(t *testing.T) {
		totals, err := engine.ComputeTotals([]*order.OrderItem{
			pricedItem(t, "0", "10.02"),
		})

		require.NoError(t, err)
		assert.True(t, totals.TotalWithoutVAT.IsEqual(chf(t, "10")))
	})

	t.Run("should refuse an unsettled item price", func(t *testing.T) {
		item, err := order.NewOrderItem(kernel.NewUUID(), kernel.NewUUID(), "geopackage")
		require.NoError(t, err)

		_, err = engine.ComputeTotals([]*order.OrderItem{item})

		assert.Error(t, err)
	})
}

func TestPricingEngine_PriceOrder(t *testing.T) {
	engine, err := services.NewPricingEngine(services.DefaultVATRate)
	require.NoError(t, err)

	newOrderWith := func(t *testing.T, products ...*product.Product) (*order.Order, map[kernel.UUID]*product.Product) {
		t.Helper()
		o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), "parcel data", polygon(t, squareWKT))
		require.NoError(t, err)
		byID := make(map[kernel.UUID]*product.Product, len(products))
		for _, p := range products {
			item, err := order.NewOrderItem(kernel.NewUUID(), p.ID(), "geopackage")
			require.NoError(t, err)
			require.NoError(t, o.AddItem(item))
			byID[p.ID()] = p
		}
		return o, byID
	}

	t.Run("should settle every automatic price and store totals", func(t *testing.T) {
		o, products := newOrderWith(t,
			newProduct(t, product.PricingSingle, "50", "150"),
			newProduct(t, product.PricingFree, "0", "0"),
		)

		require.NoError(t, engine.PriceOrder(o, products, o.Polygon().Area()))

		assert.True(t, o.AllPricesCalculated())
		assert.True(t, o.TotalsComputed())
		assert.True(t, o.TotalWithoutVAT().IsEqual(chf(t, "200")))
		require.NoError(t, o.Confirm(time.Now()))
		assert.Equal(t, order.Ready, o.Status())
	})

	t.Run("should leave manual items pending without totals", func(t *testing.T) {
		o, products := newOrderWith(t,
			newProduct(t, product.PricingSingle, "50", "150"),
			newProduct(t, product.PricingManual, "0", "0"),
		)

		require.NoError(t, engine.PriceOrder(o, products, o.Polygon().Area()))

		assert.False(t, o.AllPricesCalculated())
		assert.False(t, o.TotalsComputed())
		require.NoError(t, o.Confirm(time.Now()))
		assert.Equal(t, order.Pending, o.Status())
	})

	t.Run("should bill area products on the billable area, not the polygon", func(t *testing.T) {
		o, products := newOrderWith(t, newProduct(t, product.PricingByArea, "0", "100"))

		// Half of a 5 km2 polygon is covered by ownership grants.
		require.NoError(t, engine.PriceOrder(o, products, 2_500_000))

		require.True(t, o.AllPricesCalculated())
		assert.True(t, o.Items()[0].Price().IsEqual(chf(t, "250")))
	})

	t.Run("should fail for an item of an unknown product", func(t *testing.T) {
		o, _ := newOrderWith(t, newProduct(t, product.PricingSingle, "50", "150"))

		err := engine.PriceOrder(o, nil, o.Polygon().Area())

		assert.Error(t, err)
	})
}
