package commands

import (
	"errors"
	"time"

	"geoshop/internal/pkg/guard"
)

var (
	ErrArchiveOrdersCommandIsNotConstructed = errors.New(
		"ArchiveOrdersCommand must be created via NewArchiveOrdersCommand constructor",
	)
	ErrCutoffIsRequired = errors.New("cutoff is required")
)

// ArchiveOrdersCommand represents a request to archive every processed
// order older than the cutoff, dropping its stored files.
type ArchiveOrdersCommand struct { //nolint:recvcheck //using for validation
	cutoff time.Time

	guard guard.ConstructorGuard
}

// NewArchiveOrdersCommand creates a command to archive aged orders.
func NewArchiveOrdersCommand(cutoff time.Time) (ArchiveOrdersCommand, error) {
	cmd := ArchiveOrdersCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setCutoff(cutoff); err != nil {
		return ArchiveOrdersCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ArchiveOrdersCommand) Validate() error {
	return c.guard.Validate(ErrArchiveOrdersCommandIsNotConstructed)
}

// Cutoff returns the processing-time threshold; older orders are archived.
func (c ArchiveOrdersCommand) Cutoff() time.Time {
	return c.cutoff
}

func (c *ArchiveOrdersCommand) setCutoff(cutoff time.Time) error {
	if cutoff.IsZero() {
		return ErrCutoffIsRequired
	}
	c.cutoff = cutoff
	return nil
}
