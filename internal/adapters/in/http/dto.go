package http

import (
	"time"

	"geoshop/internal/core/application/usecases/commands"
	"geoshop/internal/core/application/usecases/queries"
	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/ports"
)

// OrderRequest is the body of order create and update calls.
type OrderRequest struct {
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	PolygonWKT       string             `json:"polygon_wkt"`
	SRID             int                `json:"srid"`
	Items            []OrderItemRequest `json:"items"`
	InvoiceContactID string             `json:"invoice_contact_id,omitempty"`
	InvoiceReference string             `json:"invoice_reference,omitempty"`
}

type OrderItemRequest struct {
	ProductID  string `json:"product_id"`
	DataFormat string `json:"data_format,omitempty"`
}

// ValidationRequest is the body of the manual item validation call.
type ValidationRequest struct {
	Approved bool   `json:"approved"`
	Comment  string `json:"comment,omitempty"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type OrderDigest struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Status       string     `json:"status"`
	ItemCount    int        `json:"item_count"`
	TotalWithVAT string     `json:"total_with_vat"`
	OrderedAt    *time.Time `json:"ordered_at,omitempty"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
}

type OrderDetail struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description,omitempty"`
	PolygonWKT       string      `json:"polygon_wkt"`
	SRID             int         `json:"srid"`
	Status           string      `json:"status"`
	DownloadToken    string      `json:"download_token"`
	InvoiceContactID string      `json:"invoice_contact_id,omitempty"`
	InvoiceReference string      `json:"invoice_reference,omitempty"`
	ProcessingFee    string      `json:"processing_fee"`
	TotalWithoutVAT  string      `json:"total_without_vat"`
	VATPart          string      `json:"vat_part"`
	TotalWithVAT     string      `json:"total_with_vat"`
	TotalsComputed   bool        `json:"totals_computed"`
	OrderedAt        *time.Time  `json:"ordered_at,omitempty"`
	ProcessedAt      *time.Time  `json:"processed_at,omitempty"`
	DownloadedAt     *time.Time  `json:"downloaded_at,omitempty"`
	Items            []OrderItem `json:"items"`
}

type OrderItem struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	DataFormat  string `json:"data_format,omitempty"`
	Price       string `json:"price"`
	PriceStatus string `json:"price_status"`
	Status      string `json:"status"`
	Comment     string `json:"comment,omitempty"`
}

// ExtractOrder is one order with claimed items handed to an extraction
// provider. The perimeter is carried once per order; the provider extracts
// every listed item against it.
type ExtractOrder struct {
	OrderID    string           `json:"order_id"`
	PolygonWKT string           `json:"polygon_wkt"`
	SRID       int              `json:"srid"`
	Items      []ExtractJobItem `json:"items"`
}

// ExtractJobItem is one claimed item within an ExtractOrder.
type ExtractJobItem struct {
	ItemID     string `json:"item_id"`
	ProductID  string `json:"product_id"`
	DataFormat string `json:"data_format"`
}

func (r OrderRequest) itemSpecs() ([]commands.OrderItemSpec, error) {
	specs := make([]commands.OrderItemSpec, 0, len(r.Items))
	for _, item := range r.Items {
		productID, err := kernel.UUIDFromString(item.ProductID)
		if err != nil {
			return nil, err
		}
		specs = append(specs, commands.OrderItemSpec{
			ProductID:  productID,
			DataFormat: item.DataFormat,
		})
	}
	return specs, nil
}

func (r OrderRequest) invoiceContactID() (*kernel.UUID, error) {
	if r.InvoiceContactID == "" {
		return nil, nil
	}
	id, err := kernel.UUIDFromString(r.InvoiceContactID)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func orderDigestFromResponse(digest queries.OrderDigestResponse) OrderDigest {
	return OrderDigest{
		ID:           digest.ID.String(),
		Title:        digest.Title,
		Status:       digest.Status,
		ItemCount:    digest.ItemCount,
		TotalWithVAT: digest.TotalWithVAT,
		OrderedAt:    digest.OrderedAt,
		ProcessedAt:  digest.ProcessedAt,
	}
}

func orderDetailFromResponse(detail *queries.OrderDetailResponse) OrderDetail {
	items := make([]OrderItem, 0, len(detail.Items))
	for _, item := range detail.Items {
		items = append(items, OrderItem{
			ID:          item.ID.String(),
			ProductID:   item.ProductID.String(),
			DataFormat:  item.DataFormat,
			Price:       item.Price,
			PriceStatus: item.PriceStatus,
			Status:      item.Status,
			Comment:     item.Comment,
		})
	}

	invoiceContactID := ""
	if detail.InvoiceContactID != nil {
		invoiceContactID = detail.InvoiceContactID.String()
	}

	return OrderDetail{
		ID:               detail.ID.String(),
		Title:            detail.Title,
		Description:      detail.Description,
		PolygonWKT:       detail.PolygonWKT,
		SRID:             detail.SRID,
		Status:           detail.Status,
		DownloadToken:    detail.DownloadToken.String(),
		InvoiceContactID: invoiceContactID,
		InvoiceReference: detail.InvoiceReference,
		ProcessingFee:    detail.ProcessingFee,
		TotalWithoutVAT:  detail.TotalWithoutVAT,
		VATPart:          detail.VATPart,
		TotalWithVAT:     detail.TotalWithVAT,
		TotalsComputed:   detail.TotalsComputed,
		OrderedAt:        detail.OrderedAt,
		ProcessedAt:      detail.ProcessedAt,
		DownloadedAt:     detail.DownloadedAt,
		Items:            items,
	}
}

// extractOrdersFromClaimedItems groups claimed items by their parent order.
// The input arrives sorted by order id, so consecutive items with the same
// order fold into one ExtractOrder.
func extractOrdersFromClaimedItems(claimed []ports.ClaimedItem) []ExtractOrder {
	response := make([]ExtractOrder, 0, len(claimed))
	for _, item := range claimed {
		orderID := item.OrderID.String()
		if len(response) == 0 || response[len(response)-1].OrderID != orderID {
			response = append(response, ExtractOrder{
				OrderID:    orderID,
				PolygonWKT: item.PolygonWKT,
				SRID:       item.SRID,
			})
		}
		last := &response[len(response)-1]
		last.Items = append(last.Items, ExtractJobItem{
			ItemID:     item.ItemID.String(),
			ProductID:  item.ProductID.String(),
			DataFormat: item.DataFormat,
		})
	}
	return response
}
