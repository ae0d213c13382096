package order

import (
	"fmt"

	"geoshop/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions to ensure
// orders follow the correct fulfillment workflow.
//
// State transitions:
//
//	Draft ──────> Ready ──> PartiallyDelivered ──> Processed ──> Archived
//	  │             ^            │      ^             ^
//	  │             │            └──────┴─────────────┘
//	  │             │         (extract results arrive)
//	  └──> Pending ─┴─ QuoteDone ──> Rejected
//	  (manual quote)   (confirm)     (quote declined)
//
// An order confirmed while every item price is already calculated goes
// straight to Ready. Items priced manually park the order in Pending until
// an operator sets the quote (QuoteDone); a second confirmation then moves
// it to Ready.
//
// Status is a value object that validates state transitions
// and provides string representations for persistence and display.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Draft is the initial status. The client is still composing the order
	// and may freely change its polygon and items.
	Draft

	// Pending indicates the order was confirmed but at least one item needs
	// a manual quote. The order waits for an operator.
	Pending

	// QuoteDone indicates an operator priced every manually quoted item.
	// The client must confirm again to accept the quote.
	QuoteDone

	// Ready indicates the order is fully priced and its items are open for
	// extraction by providers.
	Ready

	// PartiallyDelivered indicates some items reached a terminal state while
	// others are still being extracted.
	PartiallyDelivered

	// Processed indicates every item reached a terminal state and the result
	// archive is available for download.
	Processed

	// Archived indicates an aged processed order. The result archive is
	// removed and the order is kept for bookkeeping only.
	Archived

	// Rejected indicates the order was cancelled, either by declining a
	// quote or by an operator. This is a final state.
	Rejected
)

// getStatusStrings returns a map of Status values to their string representations.
// All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:            "UNKNOWN",
		Draft:              "DRAFT",
		Pending:            "PENDING",
		QuoteDone:          "QUOTE_DONE",
		Ready:              "READY",
		PartiallyDelivered: "PARTIALLY_DELIVERED",
		Processed:          "PROCESSED",
		Archived:           "ARCHIVED",
		Rejected:           "REJECTED",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
// Only valid statuses are included to support validation.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Draft:              "DRAFT",
		Pending:            "PENDING",
		QuoteDone:          "QUOTE_DONE",
		Ready:              "READY",
		PartiallyDelivered: "PARTIALLY_DELIVERED",
		Processed:          "PROCESSED",
		Archived:           "ARCHIVED",
		Rejected:           "REJECTED",
	}
}

// StatusFromString returns the Status persisted under the given name.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is valid.
// Unknown (0) and any other undefined values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the persisted name of the status.
//
// This method implements the fmt.Stringer interface and is safe
// to call on any Status value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// ValidateConfirm checks if the status allows confirmation without
// performing the transition.
//
// Valid statuses for confirmation:
//   - Draft (initial confirmation)
//   - QuoteDone (accepting an operator quote)
func (s Status) ValidateConfirm() error {
	if s != Draft && s != QuoteDone {
		return errs.NewOperationForbiddenError(
			"confirm order",
			fmt.Sprintf("%s is not a valid status to confirm", s.String()),
		)
	}
	return nil
}

// Confirm transitions the status out of Draft or QuoteDone.
//
// Valid transitions:
//   - Draft -> Ready (every item price is calculated)
//   - Draft -> Pending (at least one item needs a manual quote)
//   - QuoteDone -> Ready (client accepts the quote)
//
// Returns:
//   - the target status on a valid transition
//   - (0, error) if confirmation is not allowed from the current status
func (s Status) Confirm(allPricesCalculated bool) (Status, error) {
	if err := s.ValidateConfirm(); err != nil {
		return 0, err
	}
	if !allPricesCalculated {
		return Pending, nil
	}
	return Ready, nil
}

// SetQuoteDone transitions the status to QuoteDone.
//
// Valid transitions:
//   - Pending -> QuoteDone (operator priced every manual item)
func (s Status) SetQuoteDone() (Status, error) {
	if s != Pending {
		return 0, errs.NewOperationForbiddenError(
			"set quote done",
			fmt.Sprintf("%s is not a valid status to finish a quote", s.String()),
		)
	}
	return QuoteDone, nil
}

// Archive transitions the status to Archived.
//
// Valid transitions:
//   - Processed -> Archived (result retention expired)
func (s Status) Archive() (Status, error) {
	if s != Processed {
		return 0, errs.NewOperationForbiddenError(
			"archive order",
			fmt.Sprintf("%s is not a valid status to archive", s.String()),
		)
	}
	return Archived, nil
}

// Reject transitions the status to Rejected.
//
// Valid transitions:
//   - QuoteDone -> Rejected (client declines the quote)
//
// An order waiting in Pending belongs to the operator; the client cannot
// withdraw it anymore.
func (s Status) Reject() (Status, error) {
	if s != QuoteDone {
		return 0, errs.NewOperationForbiddenError(
			"reject order",
			fmt.Sprintf("%s is not a valid status to reject", s.String()),
		)
	}
	return Rejected, nil
}

// IsOpenForExtract reports whether providers may claim pending items of an
// order in this status.
func (s Status) IsOpenForExtract() bool {
	return s == Ready || s == PartiallyDelivered
}

// IsEditable reports whether the client may still change the order's
// polygon and items.
func (s Status) IsEditable() bool {
	return s == Draft
}
