package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/order"
	"geoshop/internal/pkg/errs"
)

// GetOrderQueryHandler retrieves one order's full detail from the database.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for order detail queries.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query. An order belonging to another client reads as
// not found.
func (h GetOrderQueryHandler) Handle(
	ctx context.Context,
	query GetOrderQuery,
) (*OrderDetailResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return loadOrderDetail(ctx, h.db, query.OrderID().String(),
		"o.id = ? AND o.client_id = ?",
		query.OrderID().Bytes(), query.ClientID().Bytes())
}

// loadOrderDetail projects one order row and its item rows. Shared by the
// detail and last-draft queries.
func loadOrderDetail(
	ctx context.Context,
	db *gorm.DB,
	lookupID string,
	where string,
	args ...any,
) (*OrderDetailResponse, error) {
	row := db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.title,
			o.description,
			o.polygon_wkt,
			o.srid,
			o.status,
			o.download_token,
			o.invoice_contact_id,
			o.invoice_reference,
			o.processing_fee,
			o.total_without_vat,
			o.vat_part,
			o.total_with_vat,
			o.currency,
			o.totals_computed,
			o.ordered_at,
			o.processed_at,
			o.downloaded_at
		FROM orders o
		WHERE `+where+`
		ORDER BY o.created_at DESC
		LIMIT 1
	`, args...).Row()

	var detail OrderDetailResponse
	var id, downloadToken uuid.UUID
	var invoiceContactID *uuid.UUID
	var status int
	var processingFee, totalWithout, vatPart, totalWithVAT decimal.Decimal
	var currency string
	var orderedAt, processedAt, downloadedAt *time.Time

	err := row.Scan(
		&id,
		&detail.Title,
		&detail.Description,
		&detail.PolygonWKT,
		&detail.SRID,
		&status,
		&downloadToken,
		&invoiceContactID,
		&detail.InvoiceReference,
		&processingFee,
		&totalWithout,
		&vatPart,
		&totalWithVAT,
		&currency,
		&detail.TotalsComputed,
		&orderedAt,
		&processedAt,
		&downloadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NewObjectNotFoundError("order", lookupID)
		}
		return nil, err
	}

	if detail.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return nil, err
	}
	if detail.DownloadToken, err = kernel.UUIDFromBytes(downloadToken[:]); err != nil {
		return nil, err
	}
	if invoiceContactID != nil {
		contactID, contactErr := kernel.UUIDFromBytes((*invoiceContactID)[:])
		if contactErr != nil {
			return nil, contactErr
		}
		detail.InvoiceContactID = &contactID
	}

	detail.Status = order.Status(status).String()
	detail.ProcessingFee = moneyString(processingFee, currency)
	detail.TotalWithoutVAT = moneyString(totalWithout, currency)
	detail.VATPart = moneyString(vatPart, currency)
	detail.TotalWithVAT = moneyString(totalWithVAT, currency)
	detail.OrderedAt = orderedAt
	detail.ProcessedAt = processedAt
	detail.DownloadedAt = downloadedAt

	items, err := loadOrderItems(ctx, db, id)
	if err != nil {
		return nil, err
	}
	detail.Items = items

	return &detail, nil
}

func loadOrderItems(ctx context.Context, db *gorm.DB, orderID uuid.UUID) ([]OrderItemResponse, error) {
	rows, err := db.WithContext(ctx).Raw(`
		SELECT
			id,
			product_id,
			data_format,
			price,
			currency,
			price_status,
			status,
			comment
		FROM order_items
		WHERE order_id = ?
		ORDER BY id
	`, orderID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]OrderItemResponse, 0)
	for rows.Next() {
		var item OrderItemResponse
		var id, productID uuid.UUID
		var price decimal.Decimal
		var currency string
		var priceStatus, status int

		err = rows.Scan(
			&id,
			&productID,
			&item.DataFormat,
			&price,
			&currency,
			&priceStatus,
			&status,
			&item.Comment,
		)
		if err != nil {
			return nil, err
		}

		if item.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if item.ProductID, err = kernel.UUIDFromBytes(productID[:]); err != nil {
			return nil, err
		}
		item.Price = moneyString(price, currency)
		item.PriceStatus = order.PriceStatus(priceStatus).String()
		item.Status = order.ItemStatus(status).String()
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func moneyString(amount decimal.Decimal, currency string) string {
	m, err := kernel.NewMoney(amount, currency)
	if err != nil {
		return amount.StringFixed(2)
	}
	return m.String()
}
