package queries

import (
	"errors"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/guard"
)

var ErrGetLastDraftQueryIsNotConstructed = errors.New(
	"GetLastDraftQuery must be created via NewGetLastDraftQuery constructor",
)

// GetLastDraftQuery retrieves the client's most recent draft order, the one
// the shop front resumes when the client comes back to the basket.
type GetLastDraftQuery struct { //nolint:recvcheck //using for validation
	clientID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetLastDraftQuery creates a query for the client's latest draft.
func NewGetLastDraftQuery(clientID kernel.UUID) (GetLastDraftQuery, error) {
	q := GetLastDraftQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := clientID.Validate(); err != nil {
		return GetLastDraftQuery{}, err
	}
	q.clientID = clientID

	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q GetLastDraftQuery) Validate() error {
	return q.guard.Validate(ErrGetLastDraftQueryIsNotConstructed)
}

// ClientID returns the client whose draft is looked up.
func (q GetLastDraftQuery) ClientID() kernel.UUID {
	return q.clientID
}
