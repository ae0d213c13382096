package commands

import (
	"errors"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/guard"
)

var ErrUpdateOrderCommandIsNotConstructed = errors.New(
	"UpdateOrderCommand must be created via NewUpdateOrderCommand constructor",
)

// UpdateOrderCommand represents a request to rework a draft order: title,
// description, perimeter, invoice details and the full item list. The
// submitted items replace the current ones; items for products that stay
// in the list survive with their identity.
type UpdateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID          kernel.UUID
	clientID         kernel.UUID
	title            string
	description      string
	polygonWKT       string
	srid             int
	items            []OrderItemSpec
	invoiceContactID *kernel.UUID
	invoiceReference string

	guard guard.ConstructorGuard
}

// NewUpdateOrderCommand creates a command to rework a draft order.
// An empty polygonWKT keeps the current perimeter.
func NewUpdateOrderCommand(
	orderID kernel.UUID,
	clientID kernel.UUID,
	title string,
	description string,
	polygonWKT string,
	srid int,
	items []OrderItemSpec,
	invoiceContactID *kernel.UUID,
	invoiceReference string,
) (UpdateOrderCommand, error) {
	cmd := UpdateOrderCommand{
		description:      description,
		invoiceReference: invoiceReference,
		guard:            guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setClientID(clientID),
		cmd.setTitle(title),
		cmd.setPolygon(polygonWKT, srid),
		cmd.setItems(items),
		cmd.setInvoiceContactID(invoiceContactID),
	); err != nil {
		return UpdateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateOrderCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderCommandIsNotConstructed)
}

// OrderID returns the order to rework.
func (c UpdateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ClientID returns the acting client.
func (c UpdateOrderCommand) ClientID() kernel.UUID {
	return c.clientID
}

// Title returns the new order title.
func (c UpdateOrderCommand) Title() string {
	return c.title
}

// Description returns the new order description.
func (c UpdateOrderCommand) Description() string {
	return c.description
}

// PolygonWKT returns the new perimeter as WKT, empty to keep the current one.
func (c UpdateOrderCommand) PolygonWKT() string {
	return c.polygonWKT
}

// SRID returns the spatial reference of the new perimeter.
func (c UpdateOrderCommand) SRID() int {
	return c.srid
}

// Items returns the submitted order lines.
func (c UpdateOrderCommand) Items() []OrderItemSpec {
	return c.items
}

// InvoiceContactID returns the alternate invoice contact, if any.
func (c UpdateOrderCommand) InvoiceContactID() *kernel.UUID {
	return c.invoiceContactID
}

// InvoiceReference returns the client's invoice reference.
func (c UpdateOrderCommand) InvoiceReference() string {
	return c.invoiceReference
}

func (c *UpdateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *UpdateOrderCommand) setClientID(clientID kernel.UUID) error {
	if err := clientID.Validate(); err != nil {
		return err
	}
	c.clientID = clientID
	return nil
}

func (c *UpdateOrderCommand) setTitle(title string) error {
	if title == "" {
		return ErrTitleIsRequired
	}
	c.title = title
	return nil
}

func (c *UpdateOrderCommand) setPolygon(polygonWKT string, srid int) error {
	if polygonWKT != "" && srid <= 0 {
		return ErrSRIDIsInvalid
	}
	c.polygonWKT = polygonWKT
	c.srid = srid
	return nil
}

func (c *UpdateOrderCommand) setItems(items []OrderItemSpec) error {
	for _, item := range items {
		if err := item.ProductID.Validate(); err != nil {
			return errors.Join(ErrItemProductIsInvalid, err)
		}
	}
	c.items = items
	return nil
}

func (c *UpdateOrderCommand) setInvoiceContactID(id *kernel.UUID) error {
	if id != nil {
		if err := id.Validate(); err != nil {
			return err
		}
	}
	c.invoiceContactID = id
	return nil
}
