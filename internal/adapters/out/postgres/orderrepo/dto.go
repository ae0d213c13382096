// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/domain/model/order"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The polygon is stored as WKT next to its SRID; money columns share one
// currency per order. Items live in their own table and are loaded eagerly.
type OrderDTO struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ClientID         uuid.UUID  `gorm:"type:uuid;index"`
	Title            string     `gorm:"type:text"`
	Description      string     `gorm:"type:text"`
	PolygonWKT       string     `gorm:"column:polygon_wkt;type:text"`
	SRID             int        `gorm:"column:srid"`
	Status           int        `gorm:"index"`
	DownloadToken    uuid.UUID  `gorm:"type:uuid;uniqueIndex"`
	InvoiceContactID *uuid.UUID `gorm:"type:uuid"`
	InvoiceReference string     `gorm:"type:text"`

	ProcessingFee   decimal.Decimal `gorm:"type:numeric"`
	TotalWithoutVAT decimal.Decimal `gorm:"column:total_without_vat;type:numeric"`
	VATPart         decimal.Decimal `gorm:"column:vat_part;type:numeric"`
	TotalWithVAT    decimal.Decimal `gorm:"column:total_with_vat;type:numeric"`
	Currency        string          `gorm:"type:varchar(3)"`
	TotalsComputed  bool

	ResultPath   string `gorm:"type:text"`
	CreatedAt    time.Time
	OrderedAt    *time.Time
	ProcessedAt  *time.Time
	DownloadedAt *time.Time

	Items []OrderItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO represents the database structure for persisting order items.
// The validation token column is unique so an approval link resolves to
// exactly one item; NULLs do not collide.
type OrderItemDTO struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID         uuid.UUID       `gorm:"type:uuid;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;index"`
	DataFormat      string          `gorm:"type:text"`
	BaseFee         decimal.Decimal `gorm:"type:numeric"`
	Price           decimal.Decimal `gorm:"type:numeric"`
	Currency        string          `gorm:"type:varchar(3)"`
	PriceStatus     int
	Status          int        `gorm:"index"`
	ValidationToken *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	ResultPath      string     `gorm:"type:text"`
	Comment         string     `gorm:"type:text"`
	LastDownloadAt  *time.Time
}

// TableName specifies the database table name for order item entities.
func (OrderItemDTO) TableName() string {
	return "order_items"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	var invoiceContactID *uuid.UUID
	if id := aggregate.InvoiceContactID(); id != nil {
		raw := id.Bytes()
		invoiceContactID = &raw
	}

	items := make([]OrderItemDTO, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, itemFromDomain(aggregate.ID(), item))
	}

	return OrderDTO{
		ID:               aggregate.ID().Bytes(),
		ClientID:         aggregate.ClientID().Bytes(),
		Title:            aggregate.Title(),
		Description:      aggregate.Description(),
		PolygonWKT:       aggregate.Polygon().AsWKT(),
		SRID:             aggregate.Polygon().SRID(),
		Status:           int(aggregate.Status()),
		DownloadToken:    aggregate.DownloadToken().Bytes(),
		InvoiceContactID: invoiceContactID,
		InvoiceReference: aggregate.InvoiceReference(),
		ProcessingFee:    aggregate.ProcessingFee().Amount(),
		TotalWithoutVAT:  aggregate.TotalWithoutVAT().Amount(),
		VATPart:          aggregate.VATPart().Amount(),
		TotalWithVAT:     aggregate.TotalWithVAT().Amount(),
		Currency:         aggregate.TotalWithVAT().Currency(),
		TotalsComputed:   aggregate.TotalsComputed(),
		ResultPath:       aggregate.ResultPath(),
		OrderedAt:        aggregate.OrderedAt(),
		ProcessedAt:      aggregate.ProcessedAt(),
		DownloadedAt:     aggregate.DownloadedAt(),
		Items:            items,
	}
}

func itemFromDomain(orderID kernel.UUID, item *order.OrderItem) OrderItemDTO {
	var validationToken *uuid.UUID
	if token := item.ValidationToken(); token != nil {
		raw := token.Bytes()
		validationToken = &raw
	}

	return OrderItemDTO{
		ID:              item.ID().Bytes(),
		OrderID:         orderID.Bytes(),
		ProductID:       item.ProductID().Bytes(),
		DataFormat:      item.DataFormat(),
		BaseFee:         item.BaseFee().Amount(),
		Price:           item.Price().Amount(),
		Currency:        item.Price().Currency(),
		PriceStatus:     int(item.PriceStatus()),
		Status:          int(item.Status()),
		ValidationToken: validationToken,
		ResultPath:      item.ResultPath(),
		Comment:         item.Comment(),
		LastDownloadAt:  item.LastDownloadAt(),
	}
}

// toDomain converts a database DTO to an order domain aggregate.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	clientID, err := kernel.UUIDFromBytes(dto.ClientID[:])
	if err != nil {
		return nil, err
	}
	downloadToken, err := kernel.UUIDFromBytes(dto.DownloadToken[:])
	if err != nil {
		return nil, err
	}

	var invoiceContactID *kernel.UUID
	if dto.InvoiceContactID != nil {
		contactID, contactErr := kernel.UUIDFromBytes((*dto.InvoiceContactID)[:])
		if contactErr != nil {
			return nil, contactErr
		}
		invoiceContactID = &contactID
	}

	polygon, err := kernel.GeometryFromWKT(dto.PolygonWKT, dto.SRID)
	if err != nil {
		return nil, err
	}

	processingFee, err := kernel.NewMoney(dto.ProcessingFee, dto.Currency)
	if err != nil {
		return nil, err
	}
	totalWithout, err := kernel.NewMoney(dto.TotalWithoutVAT, dto.Currency)
	if err != nil {
		return nil, err
	}
	vatPart, err := kernel.NewMoney(dto.VATPart, dto.Currency)
	if err != nil {
		return nil, err
	}
	totalWithVAT, err := kernel.NewMoney(dto.TotalWithVAT, dto.Currency)
	if err != nil {
		return nil, err
	}

	items := make([]*order.OrderItem, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := itemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(
		id,
		clientID,
		dto.Title,
		dto.Description,
		polygon,
		order.Status(dto.Status),
		items,
		downloadToken,
		invoiceContactID,
		dto.InvoiceReference,
		processingFee,
		totalWithout,
		vatPart,
		totalWithVAT,
		dto.TotalsComputed,
		dto.ResultPath,
		dto.OrderedAt,
		dto.ProcessedAt,
		dto.DownloadedAt,
	)
}

func itemToDomain(dto OrderItemDTO) (*order.OrderItem, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return nil, err
	}

	var validationToken *kernel.UUID
	if dto.ValidationToken != nil {
		token, tokenErr := kernel.UUIDFromBytes((*dto.ValidationToken)[:])
		if tokenErr != nil {
			return nil, tokenErr
		}
		validationToken = &token
	}

	baseFee, err := kernel.NewMoney(dto.BaseFee, dto.Currency)
	if err != nil {
		return nil, err
	}
	price, err := kernel.NewMoney(dto.Price, dto.Currency)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrderItem(
		id,
		productID,
		dto.DataFormat,
		baseFee,
		price,
		order.PriceStatus(dto.PriceStatus),
		order.ItemStatus(dto.Status),
		validationToken,
		dto.ResultPath,
		dto.Comment,
		dto.LastDownloadAt,
	)
}
