package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore persists document content. Metadata lives in the database; the
// store deals only in opaque bytes keyed by a path it hands back on save.
type BlobStore interface {
	Save(key string, r io.Reader) (path string, size int64, err error)
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
}

// FileStore keeps blobs on the local filesystem under a single root
// directory. Keys are flattened to a safe file name.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Save writes the reader's content under the given key and returns the stored
// path and byte count.
func (s *FileStore) Save(key string, r io.Reader) (string, int64, error) {
	name := sanitize(key)
	if name == "" {
		return "", 0, fmt.Errorf("invalid blob key %q", key)
	}
	path := filepath.Join(s.root, name)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create blob file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to write blob: %w", err)
	}
	return path, size, nil
}

// Open returns a reader over a previously saved blob.
func (s *FileStore) Open(path string) (io.ReadCloser, error) {
	// Stored paths always live under the root; reject anything else.
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(abs, rootAbs+string(filepath.Separator)) {
		return nil, fmt.Errorf("blob path %q outside store", path)
	}
	return os.Open(path)
}

// Remove deletes a stored blob. A missing file is not an error.
func (s *FileStore) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// sanitize flattens a key into a single safe path element.
func sanitize(key string) string {
	key = filepath.Base(key)
	key = strings.ReplaceAll(key, string(filepath.Separator), "_")
	if key == "." || key == ".." {
		return ""
	}
	return key
}
