package commands

import (
	"errors"
	"io"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/guard"
)

var (
	ErrUploadExtractResultCommandIsNotConstructed = errors.New(
		"UploadExtractResultCommand must be created via NewUploadExtractResultCommand constructor",
	)
	ErrResultFileIsRequired = errors.New("a result file is required unless the item is rejected")
)

// UploadExtractResultCommand represents a provider returning the outcome of
// an extraction: a result file, or a rejection with a reason.
type UploadExtractResultCommand struct { //nolint:recvcheck //using for validation
	itemID     kernel.UUID
	providerID kernel.UUID
	fileName   string
	content    io.Reader
	rejected   bool
	comment    string

	guard guard.ConstructorGuard
}

// NewUploadExtractResultCommand creates a command carrying an extraction
// outcome. For a rejection, fileName and content stay empty and the comment
// explains the refusal.
func NewUploadExtractResultCommand(
	itemID kernel.UUID,
	providerID kernel.UUID,
	fileName string,
	content io.Reader,
	rejected bool,
	comment string,
) (UploadExtractResultCommand, error) {
	cmd := UploadExtractResultCommand{
		rejected: rejected,
		comment:  comment,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setItemID(itemID),
		cmd.setProviderID(providerID),
		cmd.setResult(fileName, content, rejected),
	); err != nil {
		return UploadExtractResultCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c UploadExtractResultCommand) Validate() error {
	return c.guard.Validate(ErrUploadExtractResultCommandIsNotConstructed)
}

// ItemID returns the item the outcome is for.
func (c UploadExtractResultCommand) ItemID() kernel.UUID {
	return c.itemID
}

// ProviderID returns the acting provider.
func (c UploadExtractResultCommand) ProviderID() kernel.UUID {
	return c.providerID
}

// FileName returns the uploaded file name, empty for rejections.
func (c UploadExtractResultCommand) FileName() string {
	return c.fileName
}

// Content returns the uploaded file content, nil for rejections.
func (c UploadExtractResultCommand) Content() io.Reader {
	return c.content
}

// Rejected reports whether the provider refused the extraction.
func (c UploadExtractResultCommand) Rejected() bool {
	return c.rejected
}

// Comment returns the provider's reason for a rejection.
func (c UploadExtractResultCommand) Comment() string {
	return c.comment
}

func (c *UploadExtractResultCommand) setItemID(itemID kernel.UUID) error {
	if err := itemID.Validate(); err != nil {
		return err
	}
	c.itemID = itemID
	return nil
}

func (c *UploadExtractResultCommand) setProviderID(providerID kernel.UUID) error {
	if err := providerID.Validate(); err != nil {
		return err
	}
	c.providerID = providerID
	return nil
}

func (c *UploadExtractResultCommand) setResult(fileName string, content io.Reader, rejected bool) error {
	if !rejected && (fileName == "" || content == nil) {
		return ErrResultFileIsRequired
	}
	c.fileName = fileName
	c.content = content
	return nil
}
