package queries

import (
	"errors"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/guard"
)

var ErrGetPublicOrderQueryIsNotConstructed = errors.New(
	"GetPublicOrderQuery must be created via NewGetPublicOrderQuery constructor",
)

// GetPublicOrderQuery retrieves one order by its download token. The token is
// the only credential; no client identity is involved.
type GetPublicOrderQuery struct { //nolint:recvcheck //using for validation
	token kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetPublicOrderQuery creates a query for the order behind a download token.
func NewGetPublicOrderQuery(token kernel.UUID) (GetPublicOrderQuery, error) {
	q := GetPublicOrderQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := token.Validate(); err != nil {
		return GetPublicOrderQuery{}, err
	}
	q.token = token

	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q GetPublicOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetPublicOrderQueryIsNotConstructed)
}

// Token returns the download token.
func (q GetPublicOrderQuery) Token() kernel.UUID {
	return q.token
}
