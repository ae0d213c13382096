package commands

import (
	"errors"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/guard"
)

var ErrFetchExtractOrdersCommandIsNotConstructed = errors.New(
	"FetchExtractOrdersCommand must be created via NewFetchExtractOrdersCommand constructor",
)

// FetchExtractOrdersCommand represents a provider polling for work. It is a
// command, not a query: fetched items are claimed in the same operation so
// concurrent polls never hand out the same item twice.
type FetchExtractOrdersCommand struct { //nolint:recvcheck //using for validation
	providerID kernel.UUID

	guard guard.ConstructorGuard
}

// NewFetchExtractOrdersCommand creates a command to claim pending items for
// a provider.
func NewFetchExtractOrdersCommand(providerID kernel.UUID) (FetchExtractOrdersCommand, error) {
	cmd := FetchExtractOrdersCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setProviderID(providerID); err != nil {
		return FetchExtractOrdersCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c FetchExtractOrdersCommand) Validate() error {
	return c.guard.Validate(ErrFetchExtractOrdersCommandIsNotConstructed)
}

// ProviderID returns the polling provider.
func (c FetchExtractOrdersCommand) ProviderID() kernel.UUID {
	return c.providerID
}

func (c *FetchExtractOrdersCommand) setProviderID(providerID kernel.UUID) error {
	if err := providerID.Validate(); err != nil {
		return err
	}
	c.providerID = providerID
	return nil
}
