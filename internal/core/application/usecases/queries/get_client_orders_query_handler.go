package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/order"
)

// GetClientOrdersQueryHandler retrieves a client's order list from the
// database, newest first.
type GetClientOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetClientOrdersQueryHandler creates a handler for client order lists.
func NewGetClientOrdersQueryHandler(db *gorm.DB) GetClientOrdersQueryHandler {
	return GetClientOrdersQueryHandler{db: db}
}

// Handle executes the query and returns one digest row per order.
func (h GetClientOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetClientOrdersQuery,
) ([]OrderDigestResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	digests := make([]OrderDigestResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.title,
			o.status,
			o.total_with_vat,
			o.currency,
			o.ordered_at,
			o.processed_at,
			COUNT(i.id)
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		WHERE o.client_id = ?
		GROUP BY o.id
		ORDER BY o.created_at DESC
	`, query.ClientID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var digest OrderDigestResponse
		var id uuid.UUID
		var status int
		var totalWithVAT decimal.Decimal
		var currency string
		var orderedAt, processedAt *time.Time
		var itemCount int

		err = rows.Scan(
			&id,
			&digest.Title,
			&status,
			&totalWithVAT,
			&currency,
			&orderedAt,
			&processedAt,
			&itemCount,
		)
		if err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		total, moneyErr := kernel.NewMoney(totalWithVAT, currency)
		if moneyErr != nil {
			return nil, moneyErr
		}

		digest.ID = orderID
		digest.Status = order.Status(status).String()
		digest.ItemCount = itemCount
		digest.TotalWithVAT = total.String()
		digest.OrderedAt = orderedAt
		digest.ProcessedAt = processedAt
		digests = append(digests, digest)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return digests, nil
}
