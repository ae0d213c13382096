package commands

import (
	"errors"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/guard"
)

var ErrValidateOrderItemCommandIsNotConstructed = errors.New(
	"ValidateOrderItemCommand must be created via NewValidateOrderItemCommand constructor",
)

// ValidateOrderItemCommand represents the out-of-band decision on an item
// parked behind a one-time approval. The bearer token authenticates the
// decision; no account is involved.
type ValidateOrderItemCommand struct { //nolint:recvcheck //using for validation
	token    kernel.UUID
	approved bool
	comment  string

	guard guard.ConstructorGuard
}

// NewValidateOrderItemCommand creates a command deciding an item validation.
func NewValidateOrderItemCommand(token kernel.UUID, approved bool, comment string) (ValidateOrderItemCommand, error) {
	cmd := ValidateOrderItemCommand{
		approved: approved,
		comment:  comment,
		guard:    guard.NewConstructorGuard(),
	}

	if err := cmd.setToken(token); err != nil {
		return ValidateOrderItemCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ValidateOrderItemCommand) Validate() error {
	return c.guard.Validate(ErrValidateOrderItemCommandIsNotConstructed)
}

// Token returns the bearer token of the approval link.
func (c ValidateOrderItemCommand) Token() kernel.UUID {
	return c.token
}

// Approved reports whether the item was approved.
func (c ValidateOrderItemCommand) Approved() bool {
	return c.approved
}

// Comment returns the reason for a refusal.
func (c ValidateOrderItemCommand) Comment() string {
	return c.comment
}

func (c *ValidateOrderItemCommand) setToken(token kernel.UUID) error {
	if err := token.Validate(); err != nil {
		return err
	}
	c.token = token
	return nil
}
