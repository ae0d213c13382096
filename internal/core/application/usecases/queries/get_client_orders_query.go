// Package queries contains read-only operations against the database.
// Implements the query side of the CQRS architecture: handlers run raw SQL
// and project rows into response structs, bypassing the domain aggregates.
package queries

import (
	"errors"
	"time"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/guard"
)

var ErrGetClientOrdersQueryIsNotConstructed = errors.New(
	"GetClientOrdersQuery must be created via NewGetClientOrdersQuery constructor",
)

// GetClientOrdersQuery retrieves the order digest list of one client,
// newest first. Drafts are included so the client can resume composing.
type GetClientOrdersQuery struct { //nolint:recvcheck //using for validation
	clientID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetClientOrdersQuery creates a query for a client's order list.
func NewGetClientOrdersQuery(clientID kernel.UUID) (GetClientOrdersQuery, error) {
	q := GetClientOrdersQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := clientID.Validate(); err != nil {
		return GetClientOrdersQuery{}, err
	}
	q.clientID = clientID

	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q GetClientOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetClientOrdersQueryIsNotConstructed)
}

// ClientID returns the client whose orders are listed.
func (q GetClientOrdersQuery) ClientID() kernel.UUID {
	return q.clientID
}

// OrderDigestResponse is one row of a client's order list.
type OrderDigestResponse struct {
	ID           kernel.UUID
	Title        string
	Status       string
	ItemCount    int
	TotalWithVAT string
	OrderedAt    *time.Time
	ProcessedAt  *time.Time
}
