package order

import (
	"errors"
	"fmt"
	"time"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created
// through NewOrder or RestoreOrder. This ensures all orders are properly
// validated.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

// Order represents a geodata extract order. It is the aggregate root that
// manages the order lifecycle from draft composition through confirmation,
// extraction and delivery.
//
// Order follows these invariants:
//   - Must have a valid unique identifier, client and polygon
//   - Polygon, items and invoice details only change while the order is a draft
//   - Confirmation requires at least one item, each with a delivery format
//   - Status transitions follow the state machine defined on Status
//   - The download token is issued at creation and never changes
//
// The Order struct uses private fields to ensure encapsulation and maintains
// its invariants through validated methods.
type Order struct {
	id       kernel.UUID
	clientID kernel.UUID

	title       string
	description string

	// polygon is the requested extraction perimeter.
	polygon kernel.Geometry

	status Status

	items []*OrderItem

	// downloadToken authenticates the public result download link.
	downloadToken kernel.UUID

	invoiceContactID *kernel.UUID
	invoiceReference string

	// processingFee is the maximum base fee among the order's items.
	processingFee  kernel.Money
	totalWithout   kernel.Money
	vatPart        kernel.Money
	totalWithVAT   kernel.Money
	totalsComputed bool

	// resultPath is where the result archive was stored, empty until the
	// first results are delivered.
	resultPath string

	orderedAt    *time.Time
	processedAt  *time.Time
	downloadedAt *time.Time

	isConstructed bool
}

// NewOrder creates a draft order for the given client.
//
// The polygon must be a constructed geometry; topological validity is the
// caller's concern and checked at confirmation time. A fresh download token
// is issued and stays with the order for its whole life.
func NewOrder(id, clientID kernel.UUID, title string, polygon kernel.Geometry) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		clientID.Validate(),
		polygon.Validate(),
	); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, errs.NewValueIsRequiredError("title")
	}

	zero := kernel.ZeroMoney(kernel.DefaultCurrency)
	return &Order{
		id:            id,
		clientID:      clientID,
		title:         title,
		polygon:       polygon,
		status:        Draft,
		downloadToken: kernel.NewUUID(),
		processingFee: zero,
		totalWithout:  zero,
		vatPart:       zero,
		totalWithVAT:  zero,
		isConstructed: true,
	}, nil
}

// RestoreOrder reconstructs an Order from persistence.
func RestoreOrder(
	id kernel.UUID,
	clientID kernel.UUID,
	title string,
	description string,
	polygon kernel.Geometry,
	status Status,
	items []*OrderItem,
	downloadToken kernel.UUID,
	invoiceContactID *kernel.UUID,
	invoiceReference string,
	processingFee kernel.Money,
	totalWithout kernel.Money,
	vatPart kernel.Money,
	totalWithVAT kernel.Money,
	totalsComputed bool,
	resultPath string,
	orderedAt *time.Time,
	processedAt *time.Time,
	downloadedAt *time.Time,
) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		clientID.Validate(),
		polygon.Validate(),
		status.Validate(),
		downloadToken.Validate(),
		processingFee.Validate(),
		totalWithout.Validate(),
		vatPart.Validate(),
		totalWithVAT.Validate(),
	); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, errs.NewValueIsRequiredError("title")
	}
	if invoiceContactID != nil {
		if err := invoiceContactID.Validate(); err != nil {
			return nil, err
		}
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}

	return &Order{
		id:               id,
		clientID:         clientID,
		title:            title,
		description:      description,
		polygon:          polygon,
		status:           status,
		items:            items,
		downloadToken:    downloadToken,
		invoiceContactID: invoiceContactID,
		invoiceReference: invoiceReference,
		processingFee:    processingFee,
		totalWithout:     totalWithout,
		vatPart:          vatPart,
		totalWithVAT:     totalWithVAT,
		totalsComputed:   totalsComputed,
		resultPath:       resultPath,
		orderedAt:        orderedAt,
		processedAt:      processedAt,
		downloadedAt:     downloadedAt,
		isConstructed:    true,
	}, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// ClientID returns the owning client.
func (o *Order) ClientID() kernel.UUID {
	return o.clientID
}

// Title returns the order title.
func (o *Order) Title() string {
	return o.title
}

// Description returns the order description.
func (o *Order) Description() string {
	return o.description
}

// Polygon returns the requested extraction perimeter.
func (o *Order) Polygon() kernel.Geometry {
	return o.polygon
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// Items returns the order's items. The returned slice is shared with the
// aggregate and must not be mutated by the caller.
func (o *Order) Items() []*OrderItem {
	return o.items
}

// Item returns the item with the given ID.
func (o *Order) Item(itemID kernel.UUID) (*OrderItem, error) {
	for _, item := range o.items {
		if item.ID().IsEqual(itemID) {
			return item, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("order item", itemID)
}

// DownloadToken returns the token authenticating the public download link.
func (o *Order) DownloadToken() kernel.UUID {
	return o.downloadToken
}

// InvoiceContactID returns the alternate invoice contact, nil when the
// client is billed directly.
func (o *Order) InvoiceContactID() *kernel.UUID {
	return o.invoiceContactID
}

// InvoiceReference returns the client's free-form invoice reference.
func (o *Order) InvoiceReference() string {
	return o.invoiceReference
}

// ProcessingFee returns the one-off processing fee.
func (o *Order) ProcessingFee() kernel.Money {
	return o.processingFee
}

// TotalWithoutVAT returns the order total excluding VAT.
func (o *Order) TotalWithoutVAT() kernel.Money {
	return o.totalWithout
}

// VATPart returns the VAT amount.
func (o *Order) VATPart() kernel.Money {
	return o.vatPart
}

// TotalWithVAT returns the order total including VAT.
func (o *Order) TotalWithVAT() kernel.Money {
	return o.totalWithVAT
}

// TotalsComputed reports whether order totals were calculated.
func (o *Order) TotalsComputed() bool {
	return o.totalsComputed
}

// ResultPath returns where the result archive was stored, empty until the
// first results are delivered.
func (o *Order) ResultPath() string {
	return o.resultPath
}

// OrderedAt returns when the order was first confirmed.
func (o *Order) OrderedAt() *time.Time {
	return o.orderedAt
}

// ProcessedAt returns when every item reached a terminal state.
func (o *Order) ProcessedAt() *time.Time {
	return o.processedAt
}

// DownloadedAt returns when the result was last downloaded.
func (o *Order) DownloadedAt() *time.Time {
	return o.downloadedAt
}

// UpdateDetails changes the title and description of a draft order.
func (o *Order) UpdateDetails(title, description string) error {
	if err := o.ensureEditable("update order"); err != nil {
		return err
	}
	if title == "" {
		return errs.NewValueIsRequiredError("title")
	}
	o.title = title
	o.description = description
	return nil
}

// ChangePolygon replaces the extraction perimeter of a draft order.
// Item prices depend on the perimeter, so all of them become pending again.
func (o *Order) ChangePolygon(polygon kernel.Geometry) error {
	if err := o.ensureEditable("change order polygon"); err != nil {
		return err
	}
	if err := polygon.Validate(); err != nil {
		return err
	}
	o.polygon = polygon
	for _, item := range o.items {
		item.markPricePending()
	}
	return nil
}

// SetInvoice changes the invoice contact and reference of a draft order.
func (o *Order) SetInvoice(invoiceContactID *kernel.UUID, invoiceReference string) error {
	if err := o.ensureEditable("set order invoice"); err != nil {
		return err
	}
	if invoiceContactID != nil {
		if err := invoiceContactID.Validate(); err != nil {
			return err
		}
	}
	o.invoiceContactID = invoiceContactID
	o.invoiceReference = invoiceReference
	return nil
}

// AddItem appends a new item to a draft order. A product may only be
// ordered once per order.
func (o *Order) AddItem(item *OrderItem) error {
	if err := o.ensureEditable("add order item"); err != nil {
		return err
	}
	if err := item.Validate(); err != nil {
		return err
	}
	for _, existing := range o.items {
		if existing.ProductID().IsEqual(item.ProductID()) {
			return errs.NewConflictError("product " + item.ProductID().String())
		}
	}
	o.items = append(o.items, item)
	return nil
}

// RemoveItem removes an item from the order. Allowed while the order is a
// draft and, unlike other edits, while it waits for an operator quote: the
// client may still trim the order instead of abandoning it. The caller
// recomputes totals afterwards.
func (o *Order) RemoveItem(itemID kernel.UUID) error {
	if o.status != Draft && o.status != Pending {
		return errs.NewOperationForbiddenError(
			"remove order item",
			fmt.Sprintf("%s is not a valid status to remove items", o.status.String()),
		)
	}
	for idx, item := range o.items {
		if item.ID().IsEqual(itemID) {
			o.items = append(o.items[:idx], o.items[idx+1:]...)
			return nil
		}
	}
	return errs.NewObjectNotFoundError("order item", itemID)
}

// ReplaceItems swaps the whole item list of a draft order. Callers
// reconciling a client-submitted list keep surviving items (with their IDs)
// and pass new items for added products.
func (o *Order) ReplaceItems(items []*OrderItem) error {
	if err := o.ensureEditable("replace order items"); err != nil {
		return err
	}
	seen := make(map[kernel.UUID]bool, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		if seen[item.ProductID()] {
			return errs.NewConflictError("product " + item.ProductID().String())
		}
		seen[item.ProductID()] = true
	}
	o.items = items
	return nil
}

// SetItemDataFormat changes the delivery format of an item in a draft
// order. The item price becomes pending again.
func (o *Order) SetItemDataFormat(itemID kernel.UUID, format string) error {
	if err := o.ensureEditable("set item data format"); err != nil {
		return err
	}
	if format == "" {
		return errs.NewValueIsRequiredError("dataFormat")
	}
	item, err := o.Item(itemID)
	if err != nil {
		return err
	}
	item.setDataFormat(format)
	item.markPricePending()
	return nil
}

// PriceItem settles an item price. Used by automatic pricing before
// confirmation and by operator quotes while the order is pending.
func (o *Order) PriceItem(itemID kernel.UUID, baseFee, price kernel.Money) error {
	if o.status != Draft && o.status != Pending && o.status != QuoteDone {
		return errs.NewOperationForbiddenError(
			"price order item",
			fmt.Sprintf("%s is not a valid status to price items", o.status.String()),
		)
	}
	item, err := o.Item(itemID)
	if err != nil {
		return err
	}
	return item.setPrice(baseFee, price)
}

// SetTotals records the totals the pricing engine calculated.
func (o *Order) SetTotals(processingFee, totalWithout, vatPart, totalWithVAT kernel.Money) error {
	if err := errors.Join(
		processingFee.Validate(),
		totalWithout.Validate(),
		vatPart.Validate(),
		totalWithVAT.Validate(),
	); err != nil {
		return err
	}
	o.processingFee = processingFee
	o.totalWithout = totalWithout
	o.vatPart = vatPart
	o.totalWithVAT = totalWithVAT
	o.totalsComputed = true
	return nil
}

// AllPricesCalculated reports whether every item price is settled.
func (o *Order) AllPricesCalculated() bool {
	for _, item := range o.items {
		if item.PriceStatus() != PriceCalculated {
			return false
		}
	}
	return true
}

// Confirm moves the order out of composition.
//
// This method enforces the following business rules:
//   - The order must be in Draft or QuoteDone status (permission error)
//   - The order must have at least one item (validation error)
//   - Every item must have a delivery format (validation error)
//
// The target status depends on pricing: Ready when every item price is
// settled, Pending when at least one item awaits a manual quote. The first
// confirmation stamps the ordering time.
func (o *Order) Confirm(now time.Time) error {
	if len(o.items) == 0 {
		return errs.NewValueIsRequiredError("order items")
	}
	for _, item := range o.items {
		if item.DataFormat() == "" {
			return errs.NewValueIsInvalidErrorWithCause("order items",
				fmt.Errorf("item %s has no data format", item.ID()))
		}
	}

	newStatus, err := o.status.Confirm(o.AllPricesCalculated())
	if err != nil {
		return err
	}
	o.status = newStatus
	if o.orderedAt == nil {
		o.orderedAt = &now
	}
	return nil
}

// FinishQuote marks the operator quote as done. Every item price must be
// settled first.
func (o *Order) FinishQuote() error {
	if !o.AllPricesCalculated() {
		return errs.NewOperationForbiddenError("finish quote", "not all item prices are calculated")
	}
	newStatus, err := o.status.SetQuoteDone()
	if err != nil {
		return err
	}
	o.status = newStatus
	return nil
}

// RequireItemValidation parks an item behind a one-time manual approval and
// returns the token authenticating the approval link. Called right after
// confirmation for items of products flagged for validation.
func (o *Order) RequireItemValidation(itemID kernel.UUID) (kernel.UUID, error) {
	item, err := o.Item(itemID)
	if err != nil {
		return kernel.UUID{}, err
	}
	if item.Status() != ItemPending {
		return kernel.UUID{}, errs.NewOperationForbiddenError(
			"require item validation",
			fmt.Sprintf("%s is not a valid item status to require validation", item.Status().String()),
		)
	}
	return item.requireValidation(), nil
}

// ItemByValidationToken returns the item holding the given approval token.
func (o *Order) ItemByValidationToken(token kernel.UUID) (*OrderItem, error) {
	for _, item := range o.items {
		if item.ValidationToken() != nil && item.ValidationToken().IsEqual(token) {
			return item, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("validation token", token)
}

// ApproveItemValidation releases the item holding the token for extraction.
func (o *Order) ApproveItemValidation(token kernel.UUID, now time.Time) error {
	item, err := o.ItemByValidationToken(token)
	if err != nil {
		return err
	}
	if err := item.approveValidation(); err != nil {
		return err
	}
	o.reevaluate(now)
	return nil
}

// RejectItemValidation declines the item holding the token.
func (o *Order) RejectItemValidation(token kernel.UUID, comment string, now time.Time) error {
	item, err := o.ItemByValidationToken(token)
	if err != nil {
		return err
	}
	if err := item.rejectValidation(comment); err != nil {
		return err
	}
	o.reevaluate(now)
	return nil
}

// ClaimItem marks an item as being extracted by its provider. The order
// must be open for extraction.
func (o *Order) ClaimItem(itemID kernel.UUID) error {
	if !o.status.IsOpenForExtract() {
		return errs.NewOperationForbiddenError(
			"claim order item",
			fmt.Sprintf("%s is not a valid status to claim items", o.status.String()),
		)
	}
	item, err := o.Item(itemID)
	if err != nil {
		return err
	}
	return item.claim()
}

// CompleteItem stores an extract result for a claimed item and reevaluates
// the order status.
func (o *Order) CompleteItem(itemID kernel.UUID, resultPath string, now time.Time) error {
	item, err := o.Item(itemID)
	if err != nil {
		return err
	}
	if err := item.complete(resultPath); err != nil {
		return err
	}
	o.reevaluate(now)
	return nil
}

// RejectItem records a provider's refusal to extract a claimed item and
// reevaluates the order status.
func (o *Order) RejectItem(itemID kernel.UUID, comment string, now time.Time) error {
	item, err := o.Item(itemID)
	if err != nil {
		return err
	}
	if err := item.rejectExtract(comment); err != nil {
		return err
	}
	o.reevaluate(now)
	return nil
}

// reevaluate recomputes the order status from its item statuses. It only
// acts between Ready and Processed; earlier and final statuses are left
// alone. Calling it twice in a row is a no-op.
func (o *Order) reevaluate(now time.Time) {
	if o.status != Ready && o.status != PartiallyDelivered && o.status != Processed {
		return
	}

	allTerminal := true
	anyTerminal := false
	for _, item := range o.items {
		if item.Status().IsTerminal() {
			anyTerminal = true
		} else {
			allTerminal = false
		}
	}

	switch {
	case allTerminal && len(o.items) > 0:
		if o.status != Processed {
			o.status = Processed
			o.processedAt = &now
		}
	case anyTerminal:
		o.status = PartiallyDelivered
		o.processedAt = nil
	default:
		o.status = Ready
		o.processedAt = nil
	}
}

// SetResultPath records where the result archive was stored. The archive is
// built once the order is processed and refreshed while it is partially
// delivered and new results arrive.
func (o *Order) SetResultPath(path string) error {
	if o.status != Processed && o.status != PartiallyDelivered {
		return errs.NewOperationForbiddenError(
			"set order result",
			fmt.Sprintf("%s is not a valid status to store a result", o.status.String()),
		)
	}
	o.resultPath = path
	return nil
}

// MarkDownloaded stamps the download time on the order and its processed
// items. The result must exist.
func (o *Order) MarkDownloaded(now time.Time) error {
	if o.status != Processed {
		return errs.NewOperationForbiddenError(
			"download order result",
			fmt.Sprintf("%s is not a valid status to download", o.status.String()),
		)
	}
	o.downloadedAt = &now
	for _, item := range o.items {
		if item.Status() == ItemProcessed {
			item.markDownloaded(now)
		}
	}
	return nil
}

// Archive retires a processed order. The result archive location is
// cleared; the caller removes the file itself.
func (o *Order) Archive() error {
	newStatus, err := o.status.Archive()
	if err != nil {
		return err
	}
	o.status = newStatus
	o.resultPath = ""
	return nil
}

// RejectQuote cancels an order waiting in the quote flow.
func (o *Order) RejectQuote() error {
	newStatus, err := o.status.Reject()
	if err != nil {
		return err
	}
	o.status = newStatus
	return nil
}

// CanBeHardDeleted reports whether the order may be removed from storage
// entirely. Only drafts qualify; confirmed orders are kept for bookkeeping.
func (o *Order) CanBeHardDeleted() bool {
	return o.status == Draft
}

func (o *Order) ensureEditable(operation string) error {
	if !o.status.IsEditable() {
		return errs.NewOperationForbiddenError(
			operation,
			fmt.Sprintf("%s is not a valid status to edit", o.status.String()),
		)
	}
	return nil
}
