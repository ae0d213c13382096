package services

import (
	"errors"
	"fmt"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/product"
	"geoshop/internal/pkg/errs"
)

// AreaLimitExceededError is returned when the part of an order polygon that
// lies outside the client's owned perimeters is larger than the configured
// limit. It carries the figures the client needs to shrink the request.
type AreaLimitExceededError struct {
	// MaxArea is the configured limit in square units of the working SRID.
	MaxArea float64

	// RequestedArea is the area of the order polygon.
	RequestedArea float64

	// ExcludedArea is the part of the polygon not covered by any ownership
	// perimeter.
	ExcludedArea float64
}

func (e *AreaLimitExceededError) Error() string {
	return fmt.Sprintf(
		"area limit exceeded: requested %.2f with %.2f outside owned perimeters, limit is %.2f",
		e.RequestedArea, e.ExcludedArea, e.MaxArea)
}

func (e *AreaLimitExceededError) Unwrap() error {
	return errs.ErrValueIsInvalid
}

// OwnershipResolver is a domain service checking an order polygon against
// the client's geographic ownership grants.
//
// The client may order any polygon covered by the union of the ownership
// perimeters their groups hold for the ordered products. The part of the
// polygon outside that union is tolerated up to a configured area; beyond
// it the order is refused with the exact figures.
//
// A zero limit disables the check entirely.
type OwnershipResolver struct {
	maxOrderArea float64
}

// NewOwnershipResolver creates an OwnershipResolver with the given area
// limit. maxOrderArea must not be negative; zero disables the check.
func NewOwnershipResolver(maxOrderArea float64) (OwnershipResolver, error) {
	if maxOrderArea < 0 {
		return OwnershipResolver{}, errs.NewValueIsInvalidErrorWithCause("maxOrderArea",
			fmt.Errorf("%f is negative", maxOrderArea))
	}
	return OwnershipResolver{maxOrderArea: maxOrderArea}, nil
}

// ComputeExcludedArea returns the part of the polygon not covered by the
// union of the given ownership perimeters. Grants for products the order
// does not contain or groups the client is not part of must be filtered
// out by the caller; the resolver unions whatever it is given.
//
// The result only depends on the set of perimeters, not their order, and
// feeding the result back yields the same answer.
func (r OwnershipResolver) ComputeExcludedArea(
	polygon kernel.Geometry,
	ownerships []*product.Ownership,
) (kernel.Geometry, error) {
	if err := polygon.Validate(); err != nil {
		return kernel.Geometry{}, err
	}

	owned := kernel.NewEmptyGeometry(polygon.SRID())
	for _, o := range ownerships {
		if err := o.Validate(); err != nil {
			return kernel.Geometry{}, err
		}
		merged, err := owned.Union(o.Perimeter())
		if err != nil {
			return kernel.Geometry{}, err
		}
		owned = merged
	}

	return polygon.Difference(owned)
}

// CheckOrderArea verifies the order polygon against the client's grants and
// returns the excluded area, the basis for area-based prices.
//
// Returns:
//   - the excluded area when it is within the limit; with a disabled check
//     the area is still computed, only the limit is waived
//   - *AreaLimitExceededError when the excluded area exceeds the limit
//   - other errors on invalid inputs
func (r OwnershipResolver) CheckOrderArea(
	polygon kernel.Geometry,
	ownerships []*product.Ownership,
) (float64, error) {
	excluded, err := r.ComputeExcludedArea(polygon, ownerships)
	if err != nil {
		return 0, err
	}

	area := excluded.Area()
	if r.maxOrderArea > 0 && area > r.maxOrderArea {
		return 0, &AreaLimitExceededError{
			MaxArea:       r.maxOrderArea,
			RequestedArea: polygon.Area(),
			ExcludedArea:  area,
		}
	}
	return area, nil
}

// AsAreaLimitExceeded extracts an AreaLimitExceededError from an error
// chain, nil if the chain does not contain one.
func AsAreaLimitExceeded(err error) *AreaLimitExceededError {
	var limitErr *AreaLimitExceededError
	if errors.As(err, &limitErr) {
		return limitErr
	}
	return nil
}
