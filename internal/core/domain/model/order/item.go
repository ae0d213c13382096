package order

import (
	"errors"
	"fmt"
	"time"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/errs"
)

// ErrOrderItemIsNotConstructed is returned when an OrderItem instance was
// not created through NewOrderItem or RestoreOrderItem.
var ErrOrderItemIsNotConstructed = errors.New("OrderItem must be created via NewOrderItem or RestoreOrderItem")

// PriceStatus represents whether an item's price is settled.
type PriceStatus int

const (
	// PriceUnknown represents an invalid or undefined status.
	PriceUnknown PriceStatus = iota

	// PricePending means the price is not settled yet, either because the
	// order is still a draft or because the item awaits a manual quote.
	PricePending

	// PriceCalculated means the price is settled, by the pricing engine or
	// by an operator quote.
	PriceCalculated
)

func getPriceStatusStrings() map[PriceStatus]string {
	return map[PriceStatus]string{
		PriceUnknown:    "UNKNOWN",
		PricePending:    "PENDING",
		PriceCalculated: "CALCULATED",
	}
}

// Validate checks if the PriceStatus value is valid.
func (s PriceStatus) Validate() error {
	if s != PricePending && s != PriceCalculated {
		return errs.NewValueIsInvalidErrorWithCause("price status",
			fmt.Errorf("%d is not a valid price status", s))
	}
	return nil
}

// String returns the persisted name of the status.
func (s PriceStatus) String() string {
	if str, ok := getPriceStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// OrderItem is one product extract requested by an order. It is an entity
// owned by the Order aggregate; all state changes go through Order methods
// so that order-level aggregation stays consistent.
type OrderItem struct {
	id        kernel.UUID
	productID kernel.UUID

	// dataFormat is the delivery format the client picked. It may stay
	// empty while the order is a draft but must be set to confirm.
	dataFormat string

	baseFee     kernel.Money
	price       kernel.Money
	priceStatus PriceStatus

	status ItemStatus

	// validationToken authenticates the out-of-band approval link for
	// items in ValidationPending. Nil otherwise.
	validationToken *kernel.UUID

	// resultPath is where the provider's result file was stored. Empty
	// until the item is processed.
	resultPath string

	// comment carries the provider's rejection reason.
	comment string

	lastDownloadAt *time.Time

	isConstructed bool
}

// NewOrderItem creates a pending, unpriced item for a draft order.
func NewOrderItem(id, productID kernel.UUID, dataFormat string) (*OrderItem, error) {
	if err := errors.Join(
		id.Validate(),
		productID.Validate(),
	); err != nil {
		return nil, err
	}

	return &OrderItem{
		id:            id,
		productID:     productID,
		dataFormat:    dataFormat,
		baseFee:       kernel.ZeroMoney(kernel.DefaultCurrency),
		price:         kernel.ZeroMoney(kernel.DefaultCurrency),
		priceStatus:   PricePending,
		status:        ItemPending,
		isConstructed: true,
	}, nil
}

// RestoreOrderItem reconstructs an OrderItem from persistence.
func RestoreOrderItem(
	id kernel.UUID,
	productID kernel.UUID,
	dataFormat string,
	baseFee kernel.Money,
	price kernel.Money,
	priceStatus PriceStatus,
	status ItemStatus,
	validationToken *kernel.UUID,
	resultPath string,
	comment string,
	lastDownloadAt *time.Time,
) (*OrderItem, error) {
	if err := errors.Join(
		id.Validate(),
		productID.Validate(),
		baseFee.Validate(),
		price.Validate(),
		priceStatus.Validate(),
		status.Validate(),
	); err != nil {
		return nil, err
	}
	if validationToken != nil {
		if err := validationToken.Validate(); err != nil {
			return nil, err
		}
	}

	return &OrderItem{
		id:              id,
		productID:       productID,
		dataFormat:      dataFormat,
		baseFee:         baseFee,
		price:           price,
		priceStatus:     priceStatus,
		status:          status,
		validationToken: validationToken,
		resultPath:      resultPath,
		comment:         comment,
		lastDownloadAt:  lastDownloadAt,
		isConstructed:   true,
	}, nil
}

// Validate ensures the OrderItem was created through a constructor function.
func (i *OrderItem) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrOrderItemIsNotConstructed
	}
	return nil
}

// IsEqual compares two items by their unique identifiers.
func (i *OrderItem) IsEqual(other *OrderItem) bool {
	return other != nil && i.id.IsEqual(other.id)
}

// ID returns the item identifier.
func (i *OrderItem) ID() kernel.UUID {
	return i.id
}

// ProductID returns the ordered product.
func (i *OrderItem) ProductID() kernel.UUID {
	return i.productID
}

// DataFormat returns the delivery format the client picked.
func (i *OrderItem) DataFormat() string {
	return i.dataFormat
}

// BaseFee returns the item's contribution to the order processing fee.
func (i *OrderItem) BaseFee() kernel.Money {
	return i.baseFee
}

// Price returns the item price without VAT.
func (i *OrderItem) Price() kernel.Money {
	return i.price
}

// PriceStatus reports whether the item price is settled.
func (i *OrderItem) PriceStatus() PriceStatus {
	return i.priceStatus
}

// Status returns the current item status.
func (i *OrderItem) Status() ItemStatus {
	return i.status
}

// ValidationToken returns the approval token, nil unless the item awaits
// validation.
func (i *OrderItem) ValidationToken() *kernel.UUID {
	return i.validationToken
}

// ResultPath returns where the result file was stored, empty until the
// item is processed.
func (i *OrderItem) ResultPath() string {
	return i.resultPath
}

// Comment returns the provider's rejection reason, if any.
func (i *OrderItem) Comment() string {
	return i.comment
}

// LastDownloadAt returns when the item's result was last downloaded.
func (i *OrderItem) LastDownloadAt() *time.Time {
	return i.lastDownloadAt
}

// setDataFormat replaces the delivery format. Only called by Order while
// the order is editable.
func (i *OrderItem) setDataFormat(format string) {
	i.dataFormat = format
}

// setPrice settles the item price.
func (i *OrderItem) setPrice(baseFee, price kernel.Money) error {
	if err := errors.Join(baseFee.Validate(), price.Validate()); err != nil {
		return err
	}
	i.baseFee = baseFee
	i.price = price
	i.priceStatus = PriceCalculated
	return nil
}

// markPricePending resets the price to an unsettled state, used when the
// polygon or format changes invalidate an earlier calculation.
func (i *OrderItem) markPricePending() {
	i.baseFee = kernel.ZeroMoney(kernel.DefaultCurrency)
	i.price = kernel.ZeroMoney(kernel.DefaultCurrency)
	i.priceStatus = PricePending
}

// requireValidation parks the item behind a one-time approval and issues
// the token authenticating the approval link.
func (i *OrderItem) requireValidation() kernel.UUID {
	token := kernel.NewUUID()
	i.validationToken = &token
	i.status = ItemValidationPending
	return token
}

// claim marks the item as being extracted by its provider.
func (i *OrderItem) claim() error {
	newStatus, err := i.status.Claim()
	if err != nil {
		return err
	}
	i.status = newStatus
	return nil
}

// complete stores the extract result and moves the item to Processed.
func (i *OrderItem) complete(resultPath string) error {
	if resultPath == "" {
		return errs.NewValueIsRequiredError("resultPath")
	}
	newStatus, err := i.status.Complete()
	if err != nil {
		return err
	}
	i.status = newStatus
	i.resultPath = resultPath
	return nil
}

// rejectExtract records the provider's refusal with a reason.
func (i *OrderItem) rejectExtract(comment string) error {
	newStatus, err := i.status.Reject()
	if err != nil {
		return err
	}
	i.status = newStatus
	i.comment = comment
	return nil
}

// approveValidation releases the item for extraction and burns the token.
func (i *OrderItem) approveValidation() error {
	newStatus, err := i.status.ApproveValidation()
	if err != nil {
		return err
	}
	i.status = newStatus
	i.validationToken = nil
	return nil
}

// rejectValidation declines the item and burns the token.
func (i *OrderItem) rejectValidation(comment string) error {
	if i.status != ItemValidationPending {
		return errs.NewOperationForbiddenError(
			"reject item validation",
			fmt.Sprintf("%s is not a valid status to reject", i.status.String()),
		)
	}
	i.status = ItemRejected
	i.comment = comment
	i.validationToken = nil
	return nil
}

// markDownloaded stamps the last download time.
func (i *OrderItem) markDownloaded(at time.Time) {
	i.lastDownloadAt = &at
}
