package commands

import (
	"errors"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/guard"
)

var ErrDeleteOrderItemCommandIsNotConstructed = errors.New(
	"DeleteOrderItemCommand must be created via NewDeleteOrderItemCommand constructor",
)

// DeleteOrderItemCommand represents a request to remove one item from a
// draft order.
type DeleteOrderItemCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	itemID   kernel.UUID
	clientID kernel.UUID

	guard guard.ConstructorGuard
}

// NewDeleteOrderItemCommand creates a command to remove an order item.
func NewDeleteOrderItemCommand(orderID, itemID, clientID kernel.UUID) (DeleteOrderItemCommand, error) {
	cmd := DeleteOrderItemCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setItemID(itemID),
		cmd.setClientID(clientID),
	); err != nil {
		return DeleteOrderItemCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c DeleteOrderItemCommand) Validate() error {
	return c.guard.Validate(ErrDeleteOrderItemCommandIsNotConstructed)
}

// OrderID returns the order owning the item.
func (c DeleteOrderItemCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ItemID returns the item to remove.
func (c DeleteOrderItemCommand) ItemID() kernel.UUID {
	return c.itemID
}

// ClientID returns the acting client.
func (c DeleteOrderItemCommand) ClientID() kernel.UUID {
	return c.clientID
}

func (c *DeleteOrderItemCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *DeleteOrderItemCommand) setItemID(itemID kernel.UUID) error {
	if err := itemID.Validate(); err != nil {
		return err
	}
	c.itemID = itemID
	return nil
}

func (c *DeleteOrderItemCommand) setClientID(clientID kernel.UUID) error {
	if err := clientID.Validate(); err != nil {
		return err
	}
	c.clientID = clientID
	return nil
}
