package productrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/product"
	"geoshop/internal/pkg/errs"
)

// GormProductRepository implements ProductRepository using GORM.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GORM product repository.
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Add saves a catalog product. Ordering never writes products; this serves
// back-office imports and test seeding.
func (r *GormProductRepository) Add(ctx context.Context, p *product.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}

	dto := productFromDomain(p)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Get retrieves a product by ID.
func (r *GormProductRepository) Get(ctx context.Context, id kernel.UUID) (*product.Product, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ProductDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("product", id.String())
		}
		return nil, err
	}

	return productToDomain(dto)
}

// GetByIDs retrieves the products with the given IDs. Unknown IDs are
// silently absent from the result.
func (r *GormProductRepository) GetByIDs(ctx context.Context, ids []kernel.UUID) ([]*product.Product, error) {
	if len(ids) == 0 {
		return []*product.Product{}, nil
	}

	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		raw = append(raw, id.Bytes())
	}

	var dtos []ProductDTO
	if err := r.db.WithContext(ctx).Find(&dtos, "id IN ?", raw).Error; err != nil {
		return nil, err
	}

	return productsToDomain(dtos)
}

// GetCatalog loads the whole product tree.
func (r *GormProductRepository) GetCatalog(ctx context.Context) (*product.Catalog, error) {
	var dtos []ProductDTO
	if err := r.db.WithContext(ctx).Find(&dtos).Error; err != nil {
		return nil, err
	}

	products, err := productsToDomain(dtos)
	if err != nil {
		return nil, err
	}
	return product.NewCatalog(products)
}

func productsToDomain(dtos []ProductDTO) ([]*product.Product, error) {
	products := make([]*product.Product, 0, len(dtos))
	for _, dto := range dtos {
		p, err := productToDomain(dto)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// GormOwnershipRepository implements OwnershipRepository using GORM.
type GormOwnershipRepository struct {
	db *gorm.DB
}

// NewGormOwnershipRepository creates a new GORM ownership repository.
func NewGormOwnershipRepository(db *gorm.DB) *GormOwnershipRepository {
	return &GormOwnershipRepository{db: db}
}

// Add saves an ownership grant. Ordering never writes grants; this serves
// back-office imports and test seeding.
func (r *GormOwnershipRepository) Add(ctx context.Context, ownership *product.Ownership) error {
	if err := ownership.Validate(); err != nil {
		return err
	}

	dto := OwnershipDTO{
		ID:           uuid.New(),
		ProductID:    ownership.ProductID().Bytes(),
		GroupID:      ownership.GroupID().Bytes(),
		PerimeterWKT: ownership.Perimeter().AsWKT(),
		SRID:         ownership.Perimeter().SRID(),
	}
	return r.db.WithContext(ctx).Create(&dto).Error
}

// GetForProductsAndGroups retrieves the grants any of the groups hold on any
// of the products.
func (r *GormOwnershipRepository) GetForProductsAndGroups(
	ctx context.Context,
	productIDs []kernel.UUID,
	groupIDs []kernel.UUID,
) ([]*product.Ownership, error) {
	if len(productIDs) == 0 || len(groupIDs) == 0 {
		return []*product.Ownership{}, nil
	}

	rawProducts := make([]uuid.UUID, 0, len(productIDs))
	for _, id := range productIDs {
		rawProducts = append(rawProducts, id.Bytes())
	}
	rawGroups := make([]uuid.UUID, 0, len(groupIDs))
	for _, id := range groupIDs {
		rawGroups = append(rawGroups, id.Bytes())
	}

	var dtos []OwnershipDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "product_id IN ? AND group_id IN ?", rawProducts, rawGroups).Error
	if err != nil {
		return nil, err
	}

	ownerships := make([]*product.Ownership, 0, len(dtos))
	for _, dto := range dtos {
		ownership, convErr := ownershipToDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		ownerships = append(ownerships, ownership)
	}
	return ownerships, nil
}
