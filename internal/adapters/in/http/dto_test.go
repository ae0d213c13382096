package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/ports"
)

func Test_ExtractOrdersFromClaimedItems(t *testing.T) {
	t.Run("should fold items of the same order under one perimeter", func(t *testing.T) {
		firstOrder := kernel.NewUUID()
		secondOrder := kernel.NewUUID()
		claimed := []ports.ClaimedItem{
			{
				OrderID:    firstOrder,
				ItemID:     kernel.NewUUID(),
				ProductID:  kernel.NewUUID(),
				DataFormat: "geopackage",
				PolygonWKT: "POLYGON((0 0, 10 0, 10 10, 0 10, 0 0))",
				SRID:       kernel.DefaultSRID,
			},
			{
				OrderID:    firstOrder,
				ItemID:     kernel.NewUUID(),
				ProductID:  kernel.NewUUID(),
				DataFormat: "shapefile",
				PolygonWKT: "POLYGON((0 0, 10 0, 10 10, 0 10, 0 0))",
				SRID:       kernel.DefaultSRID,
			},
			{
				OrderID:    secondOrder,
				ItemID:     kernel.NewUUID(),
				ProductID:  kernel.NewUUID(),
				DataFormat: "geopackage",
				PolygonWKT: "POLYGON((20 20, 30 20, 30 30, 20 30, 20 20))",
				SRID:       kernel.DefaultSRID,
			},
		}

		grouped := extractOrdersFromClaimedItems(claimed)

		require.Len(t, grouped, 2)
		assert.Equal(t, firstOrder.String(), grouped[0].OrderID)
		assert.Equal(t, claimed[0].PolygonWKT, grouped[0].PolygonWKT)
		require.Len(t, grouped[0].Items, 2)
		assert.Equal(t, claimed[0].ItemID.String(), grouped[0].Items[0].ItemID)
		assert.Equal(t, "shapefile", grouped[0].Items[1].DataFormat)

		assert.Equal(t, secondOrder.String(), grouped[1].OrderID)
		require.Len(t, grouped[1].Items, 1)
		assert.Equal(t, claimed[2].ProductID.String(), grouped[1].Items[0].ProductID)
	})

	t.Run("should return an empty list for an empty claim", func(t *testing.T) {
		assert.Empty(t, extractOrdersFromClaimedItems(nil))
	})
}
