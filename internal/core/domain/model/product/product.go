package product

import (
	"errors"
	"fmt"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/errs"
)

// ErrProductIsNotConstructed is returned when a Product instance was not
// created through NewProduct or RestoreProduct.
var ErrProductIsNotConstructed = errors.New("Product must be created via NewProduct or RestoreProduct")

// Product is a catalog entry a client can order an extract of.
//
// A product either carries data itself (a leaf, fulfilled by its provider)
// or groups child products (a node of the product tree). Group membership is
// expressed through the parent reference; a product with at least one child
// is a group and is expanded into its intersecting published leaf
// descendants when an order is confirmed.
type Product struct {
	id kernel.UUID

	// providerID is the account responsible for extracting this product.
	providerID kernel.UUID

	// parentID points at the enclosing group product, nil at the tree root.
	parentID *kernel.UUID

	label string

	status Status

	pricingKind PricingKind

	// baseFee participates in the order processing fee (the maximum base
	// fee among the order's items).
	baseFee kernel.Money

	// unitPrice is the flat price (PricingSingle) or price per square
	// kilometre (PricingByArea). Unused for free and manual pricing.
	unitPrice kernel.Money

	// footprint is the area the product covers. Group expansion only keeps
	// leaves whose footprint intersects the order polygon.
	footprint kernel.Geometry

	// validationNeeded gates extraction behind a one-time manual approval.
	validationNeeded bool

	isConstructed bool
}

// NewProduct creates a published leaf or group product.
func NewProduct(
	id kernel.UUID,
	providerID kernel.UUID,
	parentID *kernel.UUID,
	label string,
	status Status,
	pricingKind PricingKind,
	baseFee kernel.Money,
	unitPrice kernel.Money,
	footprint kernel.Geometry,
	validationNeeded bool,
) (*Product, error) {
	if err := errors.Join(
		id.Validate(),
		providerID.Validate(),
		status.Validate(),
		pricingKind.Validate(),
		baseFee.Validate(),
		unitPrice.Validate(),
		footprint.Validate(),
	); err != nil {
		return nil, err
	}
	if label == "" {
		return nil, errs.NewValueIsRequiredError("label")
	}
	if parentID != nil {
		if err := parentID.Validate(); err != nil {
			return nil, err
		}
	}

	return &Product{
		id:               id,
		providerID:       providerID,
		parentID:         parentID,
		label:            label,
		status:           status,
		pricingKind:      pricingKind,
		baseFee:          baseFee,
		unitPrice:        unitPrice,
		footprint:        footprint,
		validationNeeded: validationNeeded,
		isConstructed:    true,
	}, nil
}

// RestoreProduct reconstructs a Product from persistence.
func RestoreProduct(
	id kernel.UUID,
	providerID kernel.UUID,
	parentID *kernel.UUID,
	label string,
	status Status,
	pricingKind PricingKind,
	baseFee kernel.Money,
	unitPrice kernel.Money,
	footprint kernel.Geometry,
	validationNeeded bool,
) (*Product, error) {
	return NewProduct(id, providerID, parentID, label, status, pricingKind,
		baseFee, unitPrice, footprint, validationNeeded)
}

// Validate ensures the Product was created through a constructor function.
func (p *Product) Validate() error {
	if p == nil || !p.isConstructed {
		return ErrProductIsNotConstructed
	}
	return nil
}

// ID returns the product identifier.
func (p *Product) ID() kernel.UUID {
	return p.id
}

// ProviderID returns the account responsible for extracting this product.
func (p *Product) ProviderID() kernel.UUID {
	return p.providerID
}

// ParentID returns the enclosing group product, nil at the tree root.
func (p *Product) ParentID() *kernel.UUID {
	return p.parentID
}

// Label returns the human-readable product name.
func (p *Product) Label() string {
	return p.label
}

// Status returns the publication status.
func (p *Product) Status() Status {
	return p.status
}

// PricingKind returns how the product is priced.
func (p *Product) PricingKind() PricingKind {
	return p.pricingKind
}

// BaseFee returns the product's contribution to the order processing fee.
func (p *Product) BaseFee() kernel.Money {
	return p.baseFee
}

// UnitPrice returns the flat or per-square-kilometre price.
func (p *Product) UnitPrice() kernel.Money {
	return p.unitPrice
}

// Footprint returns the covered area.
func (p *Product) Footprint() kernel.Geometry {
	return p.footprint
}

// ValidationNeeded reports whether extraction requires a one-time manual
// approval of the order item.
func (p *Product) ValidationNeeded() bool {
	return p.validationNeeded
}

// Status represents the publication state of a product.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// StatusDraft hides the product everywhere.
	StatusDraft

	// StatusPublished makes the product orderable directly and through groups.
	StatusPublished

	// StatusPublishedOnlyInGroup hides the product from the catalog but keeps
	// it reachable through group expansion.
	StatusPublishedOnlyInGroup

	// StatusDeprecated retires the product; existing orders keep referencing it.
	StatusDeprecated
)

func getProductStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:              "UNKNOWN",
		StatusDraft:                "DRAFT",
		StatusPublished:            "PUBLISHED",
		StatusPublishedOnlyInGroup: "PUBLISHED_ONLY_IN_GROUP",
		StatusDeprecated:           "DEPRECATED",
	}
}

// Validate checks that the Status value is one of the defined states.
func (s Status) Validate() error {
	if s == StatusUnknown {
		return errs.NewValueIsInvalidErrorWithCause("product status",
			fmt.Errorf("%d is not a valid status", s))
	}
	if _, ok := getProductStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("product status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the persisted name of the status.
func (s Status) String() string {
	if str, ok := getProductStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// ExpandableInGroup reports whether group expansion may select this status.
func (s Status) ExpandableInGroup() bool {
	return s == StatusPublished || s == StatusPublishedOnlyInGroup
}

// PricingKind represents how an item of this product is priced.
type PricingKind int

const (
	// PricingUnknown represents an invalid or undefined kind.
	PricingUnknown PricingKind = iota

	// PricingFree yields a zero price.
	PricingFree

	// PricingSingle yields the flat unit price.
	PricingSingle

	// PricingByArea yields the unit price per square kilometre of the
	// order's billable area.
	PricingByArea

	// PricingManual defers pricing to an operator quote; the item price
	// stays pending and the order goes through the quote flow.
	PricingManual
)

func getPricingKindStrings() map[PricingKind]string {
	return map[PricingKind]string{
		PricingUnknown: "UNKNOWN",
		PricingFree:    "FREE",
		PricingSingle:  "SINGLE",
		PricingByArea:  "BY_AREA",
		PricingManual:  "MANUAL",
	}
}

// Validate checks that the PricingKind value is one of the defined kinds.
func (k PricingKind) Validate() error {
	if k == PricingUnknown {
		return errs.NewValueIsInvalidErrorWithCause("pricing kind",
			fmt.Errorf("%d is not a valid pricing kind", k))
	}
	if _, ok := getPricingKindStrings()[k]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("pricing kind",
			fmt.Errorf("%d is not a valid pricing kind", k))
	}
	return nil
}

// String returns the persisted name of the pricing kind.
func (k PricingKind) String() string {
	if str, ok := getPricingKindStrings()[k]; ok {
		return str
	}
	return "UNKNOWN"
}
