package ports

import (
	"context"

	"geoshop/internal/core/domain/model/kernel"
)

// IdentityService resolves account facts the ordering flow needs but does
// not own. Accounts and group membership live in the identity system.
type IdentityService interface {
	// GetClientGroups returns the groups the client belongs to. Ownership
	// grants are held by groups, not by individual clients.
	GetClientGroups(ctx context.Context, clientID kernel.UUID) ([]kernel.UUID, error)
}
