package commands

import (
	"errors"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrTitleIsRequired      = errors.New("title is required")
	ErrPolygonIsRequired    = errors.New("polygon is required")
	ErrSRIDIsInvalid        = errors.New("srid must be greater than 0")
	ErrItemProductIsInvalid = errors.New("item product id is invalid")
)

// OrderItemSpec is a client-submitted line of an order: a product and the
// delivery format wanted for it. The format may stay empty while the order
// is a draft.
type OrderItemSpec struct {
	ProductID  kernel.UUID
	DataFormat string
}

// CreateOrderCommand represents a request to open a new draft order with an
// extraction perimeter and an initial set of items.
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
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

// NewCreateOrderCommand creates a command to open a new draft order.
// The polygon is passed as WKT with its SRID; parsing happens in the handler.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	clientID kernel.UUID,
	title string,
	description string,
	polygonWKT string,
	srid int,
	items []OrderItemSpec,
	invoiceContactID *kernel.UUID,
	invoiceReference string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
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
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the new order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ClientID returns the ordering client.
func (c CreateOrderCommand) ClientID() kernel.UUID {
	return c.clientID
}

// Title returns the order title.
func (c CreateOrderCommand) Title() string {
	return c.title
}

// Description returns the order description.
func (c CreateOrderCommand) Description() string {
	return c.description
}

// PolygonWKT returns the extraction perimeter as WKT.
func (c CreateOrderCommand) PolygonWKT() string {
	return c.polygonWKT
}

// SRID returns the spatial reference of the perimeter.
func (c CreateOrderCommand) SRID() int {
	return c.srid
}

// Items returns the requested order lines.
func (c CreateOrderCommand) Items() []OrderItemSpec {
	return c.items
}

// InvoiceContactID returns the alternate invoice contact, if any.
func (c CreateOrderCommand) InvoiceContactID() *kernel.UUID {
	return c.invoiceContactID
}

// InvoiceReference returns the client's invoice reference.
func (c CreateOrderCommand) InvoiceReference() string {
	return c.invoiceReference
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setClientID(clientID kernel.UUID) error {
	if err := clientID.Validate(); err != nil {
		return err
	}
	c.clientID = clientID
	return nil
}

func (c *CreateOrderCommand) setTitle(title string) error {
	if title == "" {
		return ErrTitleIsRequired
	}
	c.title = title
	return nil
}

func (c *CreateOrderCommand) setPolygon(polygonWKT string, srid int) error {
	if polygonWKT == "" {
		return ErrPolygonIsRequired
	}
	if srid <= 0 {
		return ErrSRIDIsInvalid
	}
	c.polygonWKT = polygonWKT
	c.srid = srid
	return nil
}

func (c *CreateOrderCommand) setItems(items []OrderItemSpec) error {
	for _, item := range items {
		if err := item.ProductID.Validate(); err != nil {
			return errors.Join(ErrItemProductIsInvalid, err)
		}
	}
	c.items = items
	return nil
}

func (c *CreateOrderCommand) setInvoiceContactID(id *kernel.UUID) error {
	if id != nil {
		if err := id.Validate(); err != nil {
			return err
		}
	}
	c.invoiceContactID = id
	return nil
}
