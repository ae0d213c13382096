package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoshop/internal/core/application/usecases/commands"
	"geoshop/internal/core/domain/model/kernel"
)

func TestNewCreateOrderCommand_ValidInput(t *testing.T) {
	orderID := kernel.NewUUID()
	clientID := kernel.NewUUID()
	items := []commands.OrderItemSpec{{ProductID: kernel.NewUUID(), DataFormat: "geopackage"}}

	cmd, err := commands.NewCreateOrderCommand(orderID, clientID, "parcel data", "city block",
		squareWKT, kernel.DefaultSRID, items, nil, "PO-2041")

	require.NoError(t, err)
	assert.Equal(t, orderID, cmd.OrderID())
	assert.Equal(t, clientID, cmd.ClientID())
	assert.Equal(t, "parcel data", cmd.Title())
	assert.Equal(t, "city block", cmd.Description())
	assert.Equal(t, squareWKT, cmd.PolygonWKT())
	assert.Equal(t, kernel.DefaultSRID, cmd.SRID())
	assert.Len(t, cmd.Items(), 1)
	assert.Equal(t, "PO-2041", cmd.InvoiceReference())
}

func TestNewCreateOrderCommand_EmptyTitle(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), kernel.NewUUID(), "",
		"", squareWKT, kernel.DefaultSRID, nil, nil, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrTitleIsRequired)
}

func TestNewCreateOrderCommand_MissingPolygon(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), kernel.NewUUID(), "parcel data",
		"", "", kernel.DefaultSRID, nil, nil, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrPolygonIsRequired)
}

func TestNewCreateOrderCommand_InvalidSRID(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), kernel.NewUUID(), "parcel data",
		"", squareWKT, 0, nil, nil, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrSRIDIsInvalid)
}

func TestNewCreateOrderCommand_InvalidItemProduct(t *testing.T) {
	items := []commands.OrderItemSpec{{ProductID: kernel.UUID{}, DataFormat: "geopackage"}}
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), kernel.NewUUID(), "parcel data",
		"", squareWKT, kernel.DefaultSRID, items, nil, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrItemProductIsInvalid)
}
