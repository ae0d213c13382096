package product

import (
	"errors"

	"geoshop/internal/core/domain/model/kernel"
)

// ErrOwnershipIsNotConstructed is returned when an Ownership instance was
// not created through NewOwnership.
var ErrOwnershipIsNotConstructed = errors.New("Ownership must be created via NewOwnership")

// Ownership grants a client group the right to order a product inside a
// geographic perimeter. A client may order any polygon covered by the union
// of the ownership perimeters of their groups for the ordered products.
type Ownership struct {
	productID kernel.UUID
	groupID   kernel.UUID
	perimeter kernel.Geometry

	isConstructed bool
}

// NewOwnership creates an ownership grant.
func NewOwnership(productID, groupID kernel.UUID, perimeter kernel.Geometry) (*Ownership, error) {
	if err := errors.Join(
		productID.Validate(),
		groupID.Validate(),
		perimeter.Validate(),
	); err != nil {
		return nil, err
	}

	return &Ownership{
		productID:     productID,
		groupID:       groupID,
		perimeter:     perimeter,
		isConstructed: true,
	}, nil
}

// Validate ensures the Ownership was created through NewOwnership.
func (o *Ownership) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOwnershipIsNotConstructed
	}
	return nil
}

// ProductID returns the granted product.
func (o *Ownership) ProductID() kernel.UUID {
	return o.productID
}

// GroupID returns the client group holding the grant.
func (o *Ownership) GroupID() kernel.UUID {
	return o.groupID
}

// Perimeter returns the area the grant covers.
func (o *Ownership) Perimeter() kernel.Geometry {
	return o.perimeter
}
