// Package productrepo provides data transfer objects and mapping functions
// for the product catalog and ownership grants. Products and grants are
// written by back-office tooling; this repository only reads them.
package productrepo

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/product"
)

// ProductDTO represents the database structure for catalog products.
// The footprint is stored as WKT next to its SRID.
type ProductDTO struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProviderID       uuid.UUID  `gorm:"type:uuid;index"`
	ParentID         *uuid.UUID `gorm:"type:uuid;index"`
	Label            string     `gorm:"type:text"`
	Status           int        `gorm:"index"`
	PricingKind      int
	BaseFee          decimal.Decimal `gorm:"type:numeric"`
	UnitPrice        decimal.Decimal `gorm:"type:numeric"`
	Currency         string          `gorm:"type:varchar(3)"`
	FootprintWKT     string          `gorm:"column:footprint_wkt;type:text"`
	SRID             int             `gorm:"column:srid"`
	ValidationNeeded bool
}

// TableName specifies the database table name for product entities.
func (ProductDTO) TableName() string {
	return "products"
}

// OwnershipDTO represents one grant: a group of clients may order the
// product within the stored perimeter.
type OwnershipDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID    uuid.UUID `gorm:"type:uuid;index"`
	GroupID      uuid.UUID `gorm:"type:uuid;index"`
	PerimeterWKT string    `gorm:"column:perimeter_wkt;type:text"`
	SRID         int       `gorm:"column:srid"`
}

// TableName specifies the database table name for ownership grants.
func (OwnershipDTO) TableName() string {
	return "ownerships"
}

// productFromDomain converts a product domain entity to its database representation.
func productFromDomain(p *product.Product) ProductDTO {
	var parentID *uuid.UUID
	if id := p.ParentID(); id != nil {
		raw := id.Bytes()
		parentID = &raw
	}

	return ProductDTO{
		ID:               p.ID().Bytes(),
		ProviderID:       p.ProviderID().Bytes(),
		ParentID:         parentID,
		Label:            p.Label(),
		Status:           int(p.Status()),
		PricingKind:      int(p.PricingKind()),
		BaseFee:          p.BaseFee().Amount(),
		UnitPrice:        p.UnitPrice().Amount(),
		Currency:         p.UnitPrice().Currency(),
		FootprintWKT:     p.Footprint().AsWKT(),
		SRID:             p.Footprint().SRID(),
		ValidationNeeded: p.ValidationNeeded(),
	}
}

// productToDomain converts a database DTO to a product domain entity.
func productToDomain(dto ProductDTO) (*product.Product, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	providerID, err := kernel.UUIDFromBytes(dto.ProviderID[:])
	if err != nil {
		return nil, err
	}

	var parentID *kernel.UUID
	if dto.ParentID != nil {
		parent, parentErr := kernel.UUIDFromBytes((*dto.ParentID)[:])
		if parentErr != nil {
			return nil, parentErr
		}
		parentID = &parent
	}

	baseFee, err := kernel.NewMoney(dto.BaseFee, dto.Currency)
	if err != nil {
		return nil, err
	}
	unitPrice, err := kernel.NewMoney(dto.UnitPrice, dto.Currency)
	if err != nil {
		return nil, err
	}

	footprint, err := kernel.GeometryFromWKT(dto.FootprintWKT, dto.SRID)
	if err != nil {
		return nil, err
	}

	return product.RestoreProduct(
		id,
		providerID,
		parentID,
		dto.Label,
		product.Status(dto.Status),
		product.PricingKind(dto.PricingKind),
		baseFee,
		unitPrice,
		footprint,
		dto.ValidationNeeded,
	)
}

// ownershipToDomain converts a database DTO to an ownership grant.
func ownershipToDomain(dto OwnershipDTO) (*product.Ownership, error) {
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return nil, err
	}
	groupID, err := kernel.UUIDFromBytes(dto.GroupID[:])
	if err != nil {
		return nil, err
	}

	perimeter, err := kernel.GeometryFromWKT(dto.PerimeterWKT, dto.SRID)
	if err != nil {
		return nil, err
	}

	return product.NewOwnership(productID, groupID, perimeter)
}
