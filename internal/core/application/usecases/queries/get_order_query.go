package queries

import (
	"errors"
	"time"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves the full detail of one order. The client filter
// keeps one client from reading another's orders.
type GetOrderQuery struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	clientID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for one order's detail.
func NewGetOrderQuery(orderID, clientID kernel.UUID) (GetOrderQuery, error) {
	q := GetOrderQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderID.Validate(),
		clientID.Validate(),
	); err != nil {
		return GetOrderQuery{}, err
	}
	q.orderID = orderID
	q.clientID = clientID

	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the order to load.
func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// ClientID returns the requesting client.
func (q GetOrderQuery) ClientID() kernel.UUID {
	return q.clientID
}

// OrderDetailResponse is the full projection of one order.
type OrderDetailResponse struct {
	ID               kernel.UUID
	Title            string
	Description      string
	PolygonWKT       string
	SRID             int
	Status           string
	DownloadToken    kernel.UUID
	InvoiceContactID *kernel.UUID
	InvoiceReference string
	ProcessingFee    string
	TotalWithoutVAT  string
	VATPart          string
	TotalWithVAT     string
	TotalsComputed   bool
	OrderedAt        *time.Time
	ProcessedAt      *time.Time
	DownloadedAt     *time.Time
	Items            []OrderItemResponse
}

// OrderItemResponse is the projection of one order item.
type OrderItemResponse struct {
	ID          kernel.UUID
	ProductID   kernel.UUID
	DataFormat  string
	Price       string
	PriceStatus string
	Status      string
	Comment     string
}
