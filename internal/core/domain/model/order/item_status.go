package order

import (
	"fmt"

	"geoshop/internal/pkg/errs"
)

// ItemStatus represents the lifecycle state of a single order item.
//
// State transitions:
//
//	ValidationPending ──> Pending ──> InExtract ──┬──> Processed
//	        │         (approved)  (claimed)       │
//	        └─────────────────────────────────────┴──> Rejected
//	   (validation rejected)                  (provider rejected)
//
// Items of products flagged for validation start in ValidationPending at
// confirmation time and only become claimable once an operator approves
// them. Processed and Rejected are terminal.
type ItemStatus int

const (
	// ItemUnknown represents an invalid or undefined status.
	ItemUnknown ItemStatus = iota

	// ItemValidationPending waits for a one-time manual approval before the
	// item becomes claimable.
	ItemValidationPending

	// ItemPending is claimable by the product's provider once the enclosing
	// order is open for extraction.
	ItemPending

	// ItemInExtract is claimed by the provider and being extracted.
	ItemInExtract

	// ItemProcessed carries an extract result file. Terminal.
	ItemProcessed

	// ItemRejected was declined by the provider or by validation. Terminal.
	ItemRejected
)

func getItemStatusStrings() map[ItemStatus]string {
	return map[ItemStatus]string{
		ItemUnknown:           "UNKNOWN",
		ItemValidationPending: "VALIDATION_PENDING",
		ItemPending:           "PENDING",
		ItemInExtract:         "IN_EXTRACT",
		ItemProcessed:         "PROCESSED",
		ItemRejected:          "REJECTED",
	}
}

func getValidItemStatusStrings() map[ItemStatus]string {
	//nolint:exhaustive // ItemUnknown is intentionally excluded as it's invalid
	return map[ItemStatus]string{
		ItemValidationPending: "VALIDATION_PENDING",
		ItemPending:           "PENDING",
		ItemInExtract:         "IN_EXTRACT",
		ItemProcessed:         "PROCESSED",
		ItemRejected:          "REJECTED",
	}
}

// ItemStatusFromString returns the ItemStatus persisted under the given name.
func ItemStatusFromString(s string) (ItemStatus, error) {
	for status, str := range getValidItemStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return ItemUnknown, errs.NewValueIsInvalidErrorWithCause("item status",
		fmt.Errorf("%q is not a valid item status", s))
}

// Validate checks if the ItemStatus value is valid.
func (s ItemStatus) Validate() error {
	if _, ok := getValidItemStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("item status",
			fmt.Errorf("%d is not a valid item status", s))
	}
	return nil
}

// String returns the persisted name of the status.
func (s ItemStatus) String() string {
	if str, ok := getItemStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether the item reached a final state.
func (s ItemStatus) IsTerminal() bool {
	return s == ItemProcessed || s == ItemRejected
}

// Claim transitions the status to InExtract.
//
// Valid transitions:
//   - Pending -> InExtract (provider claimed the item)
func (s ItemStatus) Claim() (ItemStatus, error) {
	if s != ItemPending {
		return 0, errs.NewOperationForbiddenError(
			"claim item",
			fmt.Sprintf("%s is not a valid status to claim", s.String()),
		)
	}
	return ItemInExtract, nil
}

// Complete transitions the status to Processed.
//
// Valid transitions:
//   - InExtract -> Processed (provider uploaded a result file)
func (s ItemStatus) Complete() (ItemStatus, error) {
	if s != ItemInExtract {
		return 0, errs.NewOperationForbiddenError(
			"complete item",
			fmt.Sprintf("%s is not a valid status to complete", s.String()),
		)
	}
	return ItemProcessed, nil
}

// Reject transitions the status to Rejected.
//
// Valid transitions:
//   - InExtract -> Rejected (provider declined the extraction)
//   - ValidationPending -> Rejected (operator declined the validation)
func (s ItemStatus) Reject() (ItemStatus, error) {
	if s != ItemInExtract && s != ItemValidationPending {
		return 0, errs.NewOperationForbiddenError(
			"reject item",
			fmt.Sprintf("%s is not a valid status to reject", s.String()),
		)
	}
	return ItemRejected, nil
}

// ApproveValidation transitions the status to Pending.
//
// Valid transitions:
//   - ValidationPending -> Pending (operator approved the item)
func (s ItemStatus) ApproveValidation() (ItemStatus, error) {
	if s != ItemValidationPending {
		return 0, errs.NewOperationForbiddenError(
			"approve item validation",
			fmt.Sprintf("%s is not a valid status to approve", s.String()),
		)
	}
	return ItemPending, nil
}
