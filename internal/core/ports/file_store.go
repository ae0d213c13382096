package ports

import (
	"context"
	"io"

	"geoshop/internal/core/domain/model/kernel"
)

// FileStore abstracts result file storage. Paths returned by Save methods
// are store-relative and persisted on the aggregates.
type FileStore interface {
	// SaveItemResult stores a provider's result file for an item and
	// returns its path. A previous result for the same item is replaced.
	SaveItemResult(ctx context.Context, orderID, itemID kernel.UUID, fileName string, content io.Reader) (string, error)

	// BuildOrderArchive combines the stored item results of an order into
	// one zip archive and returns its path.
	BuildOrderArchive(ctx context.Context, orderID kernel.UUID, itemPaths []string) (string, error)

	// Open streams a stored file.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Remove deletes a stored file. Removing a missing file is not an error.
	Remove(ctx context.Context, path string) error

	// RemoveOrderFiles deletes every stored file of an order.
	RemoveOrderFiles(ctx context.Context, orderID kernel.UUID) error
}
