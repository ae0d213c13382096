package product

import (
	"errors"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/errs"
)

// ErrCatalogIsNotConstructed is returned when a Catalog instance was not
// created through NewCatalog.
var ErrCatalogIsNotConstructed = errors.New("Catalog must be created via NewCatalog")

// Catalog is an in-memory view of the product tree used to resolve group
// products into extractable leaves. It is built once per request from the
// products a repository loaded and does not observe later catalog changes.
type Catalog struct {
	products map[kernel.UUID]*Product
	children map[kernel.UUID][]*Product

	isConstructed bool
}

// NewCatalog builds a Catalog from the given products.
func NewCatalog(products []*Product) (*Catalog, error) {
	byID := make(map[kernel.UUID]*Product, len(products))
	children := make(map[kernel.UUID][]*Product, len(products))

	for _, p := range products {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, ok := byID[p.ID()]; ok {
			return nil, errs.NewConflictError("product " + p.ID().String())
		}
		byID[p.ID()] = p
	}
	for _, p := range products {
		if p.ParentID() != nil {
			children[*p.ParentID()] = append(children[*p.ParentID()], p)
		}
	}

	return &Catalog{
		products:      byID,
		children:      children,
		isConstructed: true,
	}, nil
}

// Validate ensures the Catalog was created through NewCatalog.
func (c *Catalog) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCatalogIsNotConstructed
	}
	return nil
}

// Get returns the product with the given ID.
func (c *Catalog) Get(id kernel.UUID) (*Product, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	p, ok := c.products[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("product", id)
	}
	return p, nil
}

// IsGroup reports whether the product has at least one child.
func (c *Catalog) IsGroup(id kernel.UUID) bool {
	if c == nil || !c.isConstructed {
		return false
	}
	return len(c.children[id]) > 0
}

// ExpandGroup resolves a group product into its leaf descendants that are
// expandable (published or published only in group) and whose footprint
// intersects the given polygon. The result order follows a depth-first walk
// of the tree and is deterministic for a given catalog.
func (c *Catalog) ExpandGroup(groupID kernel.UUID, polygon kernel.Geometry) ([]*Product, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, err := c.Get(groupID); err != nil {
		return nil, err
	}
	if err := polygon.Validate(); err != nil {
		return nil, err
	}

	var leaves []*Product
	// visited guards against parent cycles in stored data; a group is
	// expanded at most once.
	visited := map[kernel.UUID]bool{groupID: true}
	var walk func(id kernel.UUID) error
	walk = func(id kernel.UUID) error {
		for _, child := range c.children[id] {
			if c.IsGroup(child.ID()) {
				if visited[child.ID()] {
					continue
				}
				visited[child.ID()] = true
				if err := walk(child.ID()); err != nil {
					return err
				}
				continue
			}
			if !child.Status().ExpandableInGroup() {
				continue
			}
			if child.Footprint().Intersects(polygon) {
				leaves = append(leaves, child)
			}
		}
		return nil
	}
	if err := walk(groupID); err != nil {
		return nil, err
	}
	return leaves, nil
}
