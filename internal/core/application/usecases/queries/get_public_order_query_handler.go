package queries

import (
	"context"

	"gorm.io/gorm"
)

// GetPublicOrderQueryHandler retrieves an order by download token so the
// download page can show what the token unlocks.
type GetPublicOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetPublicOrderQueryHandler creates a handler for token lookups.
func NewGetPublicOrderQueryHandler(db *gorm.DB) GetPublicOrderQueryHandler {
	return GetPublicOrderQueryHandler{db: db}
}

// Handle executes the query. An unknown token reads as not found.
func (h GetPublicOrderQueryHandler) Handle(
	ctx context.Context,
	query GetPublicOrderQuery,
) (*OrderDetailResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return loadOrderDetail(ctx, h.db, query.Token().String(),
		"o.download_token = ?", query.Token().Bytes())
}
