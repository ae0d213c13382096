package filestore

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/errs"
)

const (
	ordersDir   = "orders"
	archiveName = "result.zip"
)

// LocalFileStore keeps order result files under a media root directory on
// the local filesystem. Every order gets its own directory and the paths it
// returns are relative to the root.
type LocalFileStore struct {
	root string
}

// NewLocalFileStore creates a store rooted at the given directory. The
// directory is created if it does not exist.
func NewLocalFileStore(root string) (*LocalFileStore, error) {
	if root == "" {
		return nil, errs.NewValueIsRequiredError("root")
	}
	if err := os.MkdirAll(filepath.Join(root, ordersDir), 0o755); err != nil {
		return nil, err
	}
	return &LocalFileStore{root: root}, nil
}

func (s *LocalFileStore) SaveItemResult(
	_ context.Context,
	orderID, itemID kernel.UUID,
	fileName string,
	content io.Reader,
) (string, error) {
	if fileName == "" {
		return "", errs.NewValueIsRequiredError("fileName")
	}

	orderDir := s.orderDir(orderID)
	if err := os.MkdirAll(orderDir, 0o755); err != nil {
		return "", err
	}

	// A retried extraction replaces whatever the previous attempt stored.
	if err := s.removeItemFiles(orderDir, itemID); err != nil {
		return "", err
	}

	name := itemID.String() + "_" + sanitizeFileName(fileName)
	file, err := os.Create(filepath.Join(orderDir, name))
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err = io.Copy(file, content); err != nil {
		return "", err
	}
	if err = file.Close(); err != nil {
		return "", err
	}

	return filepath.ToSlash(filepath.Join(ordersDir, orderID.String(), name)), nil
}

func (s *LocalFileStore) BuildOrderArchive(
	_ context.Context,
	orderID kernel.UUID,
	itemPaths []string,
) (string, error) {
	orderDir := s.orderDir(orderID)
	if err := os.MkdirAll(orderDir, 0o755); err != nil {
		return "", err
	}

	archivePath := filepath.Join(orderDir, archiveName)
	archive, err := os.Create(archivePath)
	if err != nil {
		return "", err
	}
	defer archive.Close()

	writer := zip.NewWriter(archive)
	for _, itemPath := range itemPaths {
		if err = s.addToArchive(writer, itemPath); err != nil {
			writer.Close()
			return "", err
		}
	}
	if err = writer.Close(); err != nil {
		return "", err
	}
	if err = archive.Close(); err != nil {
		return "", err
	}

	return filepath.ToSlash(filepath.Join(ordersDir, orderID.String(), archiveName)), nil
}

func (s *LocalFileStore) Open(_ context.Context, path string) (io.ReadCloser, error) {
	absPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(absPath)
	if os.IsNotExist(err) {
		return nil, errs.NewObjectNotFoundError("path", path)
	}
	return file, err
}

func (s *LocalFileStore) Remove(_ context.Context, path string) error {
	absPath, err := s.resolve(path)
	if err != nil {
		return err
	}
	err = os.Remove(absPath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *LocalFileStore) RemoveOrderFiles(_ context.Context, orderID kernel.UUID) error {
	return os.RemoveAll(s.orderDir(orderID))
}

func (s *LocalFileStore) orderDir(orderID kernel.UUID) string {
	return filepath.Join(s.root, ordersDir, orderID.String())
}

func (s *LocalFileStore) removeItemFiles(orderDir string, itemID kernel.UUID) error {
	matches, err := filepath.Glob(filepath.Join(orderDir, itemID.String()+"_*"))
	if err != nil {
		return err
	}
	for _, match := range matches {
		if err = os.Remove(match); err != nil {
			return err
		}
	}
	return nil
}

func (s *LocalFileStore) addToArchive(writer *zip.Writer, itemPath string) error {
	absPath, err := s.resolve(itemPath)
	if err != nil {
		return err
	}

	file, err := os.Open(absPath)
	if os.IsNotExist(err) {
		return errs.NewObjectNotFoundError("itemPath", itemPath)
	}
	if err != nil {
		return err
	}
	defer file.Close()

	entry, err := writer.Create(archiveEntryName(itemPath))
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, file)
	return err
}

// resolve maps a store-relative path to an absolute one and rejects paths
// escaping the root.
func (s *LocalFileStore) resolve(path string) (string, error) {
	if path == "" {
		return "", errs.NewValueIsRequiredError("path")
	}
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", errs.NewValueIsInvalidErrorWithCause(
			"path", fmt.Errorf("%q escapes the media root", path))
	}
	return filepath.Join(s.root, cleaned), nil
}

// archiveEntryName strips the item ID prefix so the archive lists the
// provider's original file names.
func archiveEntryName(itemPath string) string {
	base := filepath.Base(filepath.FromSlash(itemPath))
	if _, name, found := strings.Cut(base, "_"); found {
		return name
	}
	return base
}

func sanitizeFileName(fileName string) string {
	return filepath.Base(filepath.Clean(filepath.FromSlash(fileName)))
}
