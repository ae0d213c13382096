package orderrepo

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/order"
	"geoshop/internal/core/ports"
	"geoshop/internal/pkg/errs"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order and its items to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing order. Items are replaced wholesale: drafts
// reconcile their item list freely, so the stored rows follow the aggregate.
// Callers load the aggregate through Get* first, which takes a row lock, so
// the rewrite never clobbers a concurrent writer inside the same store.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	if err := db.Where("order_id = ?", dto.ID).Delete(&OrderItemDTO{}).Error; err != nil {
		return err
	}

	items := dto.Items
	dto.Items = nil
	result := db.Model(&OrderDTO{}).Where("id = ?", dto.ID).Select("*").Omit("id", "created_at").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if len(items) > 0 {
		if err := db.Create(&items).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order with its items by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.getFirst(ctx, id.String(), "id = ?", id.Bytes())
}

// GetByItemID retrieves the order owning the given item.
func (r *GormOrderRepository) GetByItemID(ctx context.Context, itemID kernel.UUID) (*order.Order, error) {
	if err := itemID.Validate(); err != nil {
		return nil, err
	}

	var itemDTO OrderItemDTO
	if err := r.db.WithContext(ctx).First(&itemDTO, "id = ?", itemID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order item", itemID.String())
		}
		return nil, err
	}

	return r.getFirst(ctx, itemID.String(), "id = ?", itemDTO.OrderID)
}

// GetByValidationToken retrieves the order holding the given approval token.
func (r *GormOrderRepository) GetByValidationToken(ctx context.Context, token kernel.UUID) (*order.Order, error) {
	if err := token.Validate(); err != nil {
		return nil, err
	}

	var itemDTO OrderItemDTO
	if err := r.db.WithContext(ctx).First(&itemDTO, "validation_token = ?", token.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("validation token", token.String())
		}
		return nil, err
	}

	return r.getFirst(ctx, token.String(), "id = ?", itemDTO.OrderID)
}

// GetByDownloadToken retrieves the order behind the given download token.
func (r *GormOrderRepository) GetByDownloadToken(ctx context.Context, token kernel.UUID) (*order.Order, error) {
	if err := token.Validate(); err != nil {
		return nil, err
	}
	return r.getFirst(ctx, token.String(), "download_token = ?", token.Bytes())
}

// Delete removes an order and its items from storage.
func (r *GormOrderRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id.Bytes()).Delete(&OrderItemDTO{}).Error; err != nil {
		return err
	}

	result := db.Where("id = ?", id.Bytes()).Delete(&OrderDTO{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", id.String())
	}
	return nil
}

// ClaimPendingItemsForProvider atomically moves every claimable item of the
// provider to InExtract and returns the extraction jobs sorted by parent
// order. An item is claimable when it is pending and its order is open for
// extraction. Both the item and its order row are locked; SKIP LOCKED keeps
// concurrent claimers and result uploads from blocking each other, skipped
// items surface again on the next poll.
func (r *GormOrderRepository) ClaimPendingItemsForProvider(
	ctx context.Context,
	providerID kernel.UUID,
) ([]ports.ClaimedItem, error) {
	if err := providerID.Validate(); err != nil {
		return nil, err
	}

	rows, err := r.db.WithContext(ctx).Raw(`
		UPDATE order_items AS items
		SET status = ?
		FROM orders, products
		WHERE items.id IN (
			SELECT i.id
			FROM order_items i
			JOIN orders o ON o.id = i.order_id
			JOIN products p ON p.id = i.product_id
			WHERE i.status = ?
			  AND o.status IN (?, ?)
			  AND p.provider_id = ?
			ORDER BY i.order_id
			FOR UPDATE OF i, o SKIP LOCKED
		)
		  AND orders.id = items.order_id
		  AND products.id = items.product_id
		RETURNING items.order_id, items.id, items.product_id, items.data_format,
		          orders.polygon_wkt, orders.srid
	`, order.ItemInExtract, order.ItemPending, order.Ready, order.PartiallyDelivered,
		providerID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claimed := make([]ports.ClaimedItem, 0)
	for rows.Next() {
		var orderID, itemID, productID uuid.UUID
		var dataFormat, polygonWKT string
		var srid int

		if err = rows.Scan(&orderID, &itemID, &productID, &dataFormat, &polygonWKT, &srid); err != nil {
			return nil, err
		}

		job := ports.ClaimedItem{
			DataFormat: dataFormat,
			PolygonWKT: polygonWKT,
			SRID:       srid,
		}
		if job.OrderID, err = kernel.UUIDFromBytes(orderID[:]); err != nil {
			return nil, err
		}
		if job.ItemID, err = kernel.UUIDFromBytes(itemID[:]); err != nil {
			return nil, err
		}
		if job.ProductID, err = kernel.UUIDFromBytes(productID[:]); err != nil {
			return nil, err
		}
		claimed = append(claimed, job)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	// UPDATE ... RETURNING does not honour the subquery ordering.
	sort.Slice(claimed, func(i, j int) bool {
		a, b := claimed[i].OrderID.Bytes(), claimed[j].OrderID.Bytes()
		return bytes.Compare(a[:], b[:]) < 0
	})
	return claimed, nil
}

// GetAllProcessedWithoutResult retrieves processed orders whose result
// archive is missing.
func (r *GormOrderRepository) GetAllProcessedWithoutResult(ctx context.Context) ([]*order.Order, error) {
	return r.findAll(ctx, "status = ? AND result_path = ''", order.Processed)
}

// GetAllProcessedBefore retrieves processed orders older than the cutoff.
func (r *GormOrderRepository) GetAllProcessedBefore(ctx context.Context, cutoff time.Time) ([]*order.Order, error) {
	return r.findAll(ctx, "status = ? AND processed_at < ?", order.Processed, cutoff)
}

// getFirst loads one order with its items. The order row is locked for the
// rest of the transaction, serializing read-modify-write cycles on the same
// aggregate.
func (r *GormOrderRepository) getFirst(ctx context.Context, lookupID, query string, args ...any) (*order.Order, error) {
	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&dto, append([]any{query}, args...)...).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", lookupID)
		}
		return nil, err
	}
	return toDomain(dto)
}

func (r *GormOrderRepository) findAll(ctx context.Context, query string, args ...any) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).Preload("Items").
		Find(&dtos, append([]any{query}, args...)...).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		aggregate, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		orders = append(orders, aggregate)
	}
	return orders, nil
}
