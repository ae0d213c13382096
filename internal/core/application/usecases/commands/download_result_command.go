package commands

import (
	"errors"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/guard"
)

var ErrDownloadResultCommandIsNotConstructed = errors.New(
	"DownloadResultCommand must be created via NewDownloadResultCommand constructor",
)

// DownloadResultCommand represents a request to download an order's result
// archive through its public link. The bearer token authenticates the
// download; no account is involved.
type DownloadResultCommand struct { //nolint:recvcheck //using for validation
	token kernel.UUID

	guard guard.ConstructorGuard
}

// NewDownloadResultCommand creates a command to download a result archive.
func NewDownloadResultCommand(token kernel.UUID) (DownloadResultCommand, error) {
	cmd := DownloadResultCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setToken(token); err != nil {
		return DownloadResultCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c DownloadResultCommand) Validate() error {
	return c.guard.Validate(ErrDownloadResultCommandIsNotConstructed)
}

// Token returns the bearer token of the download link.
func (c DownloadResultCommand) Token() kernel.UUID {
	return c.token
}

func (c *DownloadResultCommand) setToken(token kernel.UUID) error {
	if err := token.Validate(); err != nil {
		return err
	}
	c.token = token
	return nil
}
