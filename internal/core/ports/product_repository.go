package ports

import (
	"context"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/product"
)

// ProductRepository defines the read contract for the product catalog.
// Products are administered outside the ordering flow, so the ordering
// side never writes them.
type ProductRepository interface {
	// Get retrieves a product by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*product.Product, error)

	// GetByIDs retrieves the products with the given identifiers. A
	// missing identifier is an error.
	GetByIDs(ctx context.Context, ids []kernel.UUID) ([]*product.Product, error)

	// GetCatalog loads the whole product tree for group expansion.
	GetCatalog(ctx context.Context) (*product.Catalog, error)
}

// OwnershipRepository defines the read contract for geographic ownership
// grants.
type OwnershipRepository interface {
	// GetForProductsAndGroups retrieves the grants matching any of the
	// given products and any of the given client groups.
	GetForProductsAndGroups(ctx context.Context, productIDs, groupIDs []kernel.UUID) ([]*product.Ownership, error)
}
