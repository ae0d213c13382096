// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"geoshop/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// ProductRepoFactory provides access to the product repository within a transaction.
	ProductRepoFactory interface {
		ProductRepository() ports.ProductRepository
	}

	// OwnershipRepoFactory provides access to the ownership repository within a transaction.
	OwnershipRepoFactory interface {
		OwnershipRepository() ports.OwnershipRepository
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// OrderProductUoW manages transactions for operations reading products
	// next to order changes.
	OrderProductUoW interface {
		TxManager
		OrderRepoFactory
		ProductRepoFactory
	}

	// OrderProductUoWFactory creates new order/product unit of work instances.
	OrderProductUoWFactory interface {
		Create() OrderProductUoW
	}

	// UoW manages transactions across orders, the product catalog and
	// ownership grants. Used by confirmation, which touches all three.
	UoW interface {
		TxManager
		OrderRepoFactory
		ProductRepoFactory
		OwnershipRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)
