package queries

import (
	"context"

	"gorm.io/gorm"

	"geoshop/internal/core/domain/model/order"
)

// GetLastDraftQueryHandler retrieves the client's most recent draft order
// from the database.
type GetLastDraftQueryHandler struct {
	db *gorm.DB
}

// NewGetLastDraftQueryHandler creates a handler for last-draft queries.
func NewGetLastDraftQueryHandler(db *gorm.DB) GetLastDraftQueryHandler {
	return GetLastDraftQueryHandler{db: db}
}

// Handle executes the query. A client without a draft reads as not found.
func (h GetLastDraftQueryHandler) Handle(
	ctx context.Context,
	query GetLastDraftQuery,
) (*OrderDetailResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return loadOrderDetail(ctx, h.db, query.ClientID().String(),
		"o.client_id = ? AND o.status = ?",
		query.ClientID().Bytes(), int(order.Draft))
}
